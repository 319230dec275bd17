// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package chanlog

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the codec applied to a finished day's log file
// at rollover. Chat logs are plain text and compress well with zstd;
// lz4 trades ratio for cheaper CPU on busy channels; none keeps the
// raw .log file for setups that post-process logs themselves.
type Compression uint8

const (
	// CompressionNone leaves finished day files uncompressed.
	CompressionNone Compression = iota

	// CompressionLZ4 compresses finished day files with LZ4 frames
	// (".log.lz4").
	CompressionLZ4

	// CompressionZstd compresses finished day files with zstd
	// (".log.zst"). The default.
	CompressionZstd
)

// String returns the codec name as used in the config file.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a codec name from the config file.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	case "none":
		return CompressionNone, nil
	default:
		return 0, fmt.Errorf("unknown log compression %q (want none, lz4, or zstd)", name)
	}
}

// extension returns the suffix appended to ".log" for this codec.
func (c Compression) extension() string {
	switch c {
	case CompressionLZ4:
		return ".lz4"
	case CompressionZstd:
		return ".zst"
	default:
		return ""
	}
}

// compressFile rewrites path as path+extension using the codec and
// removes the original. CompressionNone is a no-op.
func compressFile(path string, codec Compression) error {
	if codec == CompressionNone {
		return nil
	}

	source, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s for compression: %w", path, err)
	}
	defer source.Close()

	destination, err := os.Create(path + codec.extension())
	if err != nil {
		return fmt.Errorf("creating compressed log: %w", err)
	}

	var writer io.WriteCloser
	switch codec {
	case CompressionLZ4:
		writer = lz4.NewWriter(destination)
	case CompressionZstd:
		zw, err := zstd.NewWriter(destination)
		if err != nil {
			destination.Close()
			return fmt.Errorf("initializing zstd writer: %w", err)
		}
		writer = zw
	}

	if _, err := io.Copy(writer, source); err != nil {
		writer.Close()
		destination.Close()
		return fmt.Errorf("compressing %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		destination.Close()
		return fmt.Errorf("finishing compressed log: %w", err)
	}
	if err := destination.Close(); err != nil {
		return fmt.Errorf("closing compressed log: %w", err)
	}

	return os.Remove(path)
}
