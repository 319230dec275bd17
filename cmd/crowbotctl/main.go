// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

// crowbotctl is the operator CLI for a running crowbot: a one-shot
// CBOR client for the admin socket.
//
//	crowbotctl --socket /run/crowbot/admin.sock status
//	crowbotctl --socket /run/crowbot/admin.sock reload
//	crowbotctl --socket /run/crowbot/admin.sock clear-tells
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/crowbot-irc/crowbot/gateway"
	"github.com/crowbot-irc/crowbot/lib/process"
	"github.com/crowbot-irc/crowbot/lib/service"
	"github.com/crowbot-irc/crowbot/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var socketPath string
	var showVersion bool

	flagSet := pflag.NewFlagSet("crowbotctl", pflag.ContinueOnError)
	flagSet.StringVarP(&socketPath, "socket", "s", "", "path to the crowbot admin socket")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}

	if showVersion {
		version.Print("crowbotctl")
		return nil
	}

	if socketPath == "" {
		socketPath = os.Getenv("CROWBOT_ADMIN_SOCKET")
	}
	if socketPath == "" {
		return fmt.Errorf("no admin socket: pass --socket or set CROWBOT_ADMIN_SOCKET")
	}

	args := flagSet.Args()
	if len(args) != 1 {
		return fmt.Errorf("usage: crowbotctl --socket PATH {status|reload|clear-tells}")
	}

	client := service.NewSocketClient(socketPath)
	ctx := context.Background()

	switch args[0] {
	case "status":
		var status gateway.StatusResult
		if err := client.Call(ctx, "status", nil, &status); err != nil {
			return err
		}
		fmt.Printf("active connections: %d\n", status.ActiveConnections)
		fmt.Printf("factoids:           %d\n", status.Factoids)
		fmt.Printf("secrets:            %d\n", status.Secrets)
		fmt.Printf("pending tells:      %d\n", status.PendingTells)
		return nil

	case "reload":
		var reload gateway.ReloadResult
		if err := client.Call(ctx, "reload", nil, &reload); err != nil {
			return err
		}
		fmt.Printf("%d secrets and %d factoids loaded.\n", reload.Secrets, reload.Factoids)
		return nil

	case "clear-tells":
		if err := client.Call(ctx, "clear-tells", nil, nil); err != nil {
			return err
		}
		fmt.Println("Tell queue cleared successfully.")
		return nil

	default:
		return fmt.Errorf("unknown action %q (want status, reload, or clear-tells)", args[0])
	}
}
