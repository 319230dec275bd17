// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package webhook

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/crowbot-irc/crowbot/lib/ref"
	"github.com/crowbot-irc/crowbot/lib/service"
)

// maxBodySize is the maximum webhook payload we will read. Issue and
// pull request payloads are well under 1 MB; 8 MB gives headroom for
// payloads with long bodies attached.
const maxBodySize = 8 * 1024 * 1024

// Broadcaster delivers a formatted announcement to a channel. The
// broadcast router satisfies this.
type Broadcaster interface {
	SendToChannel(channel ref.ChannelID, text string)
}

// Handler processes GitHub webhook deliveries. It is an http.Handler
// suitable for use with service.HTTPServer.
type Handler struct {
	bindings    *Bindings
	broadcaster Broadcaster
	logger      *slog.Logger
}

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	// Bindings is the repository routing and secret state. Required.
	Bindings *Bindings

	// Broadcaster receives formatted announcements. Required.
	Broadcaster Broadcaster

	// Logger is the structured logger. Required.
	Logger *slog.Logger
}

// NewHandler creates a webhook handler.
func NewHandler(config HandlerConfig) *Handler {
	if config.Bindings == nil {
		panic("webhook.Handler: Bindings is required")
	}
	if config.Broadcaster == nil {
		panic("webhook.Handler: Broadcaster is required")
	}
	if config.Logger == nil {
		panic("webhook.Handler: Logger is required")
	}
	return &Handler{
		bindings:    config.Bindings,
		broadcaster: config.Broadcaster,
		logger:      config.Logger,
	}
}

// respond writes a plain-text response. The short bodies double as
// stage markers: a sender reading the response can tell which
// validation stage rejected the delivery.
func respond(writer http.ResponseWriter, status int, body string) {
	writer.Header().Set("Content-Type", "text/plain")
	writer.WriteHeader(status)
	io.WriteString(writer, body)
}

// ServeHTTP handles a single webhook delivery.
func (h *Handler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		h.logger.Info("webhook: non-POST request",
			"method", request.Method,
			"remote_addr", request.RemoteAddr,
		)
		respond(writer, http.StatusBadRequest, "does not compute")
		return
	}

	body, err := io.ReadAll(io.LimitReader(request.Body, maxBodySize))
	if err != nil {
		h.logger.Error("webhook: failed to read body", "error", err)
		respond(writer, http.StatusInternalServerError, "")
		return
	}

	event := request.Header.Get("X-GitHub-Event")
	switch event {
	case "ping":
		h.handlePing(writer, body)
	case "issues":
		h.handleIssues(writer, request, body)
	case "pull_request":
		h.handlePullRequest(writer, request, body)
	default:
		h.logger.Warn("webhook: unsupported event", "event", event)
		respond(writer, http.StatusBadRequest, "wtf event")
	}
}

// handlePing acknowledges the delivery GitHub sends when a webhook is
// first configured. No signature check: a ping carries no routing
// information and triggers no broadcast.
func (h *Handler) handlePing(writer http.ResponseWriter, body []byte) {
	var payload ghPingPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.Hook == nil {
		h.logger.Warn("webhook: malformed ping payload")
		respond(writer, http.StatusBadRequest, "wtf info")
		return
	}
	h.logger.Info("webhook: ping", "zen", payload.Zen)
	respond(writer, http.StatusOK, "pong")
}

// verify runs the signature and routing stages shared by the issue
// and pull request paths. Returns the target channel and true, or
// writes the rejection response and returns false.
func (h *Handler) verify(writer http.ResponseWriter, request *http.Request, body []byte, repo string) (ref.ChannelID, bool) {
	secret, ok := h.bindings.Secret(repo)
	if !ok {
		h.logger.Warn("webhook: no secret configured", "repo", repo)
		respond(writer, http.StatusBadRequest, "wtf signature")
		return ref.ChannelID{}, false
	}

	// The digest covers the raw request bytes. Re-serializing the
	// parsed payload is not guaranteed byte-identical, so the raw
	// body is kept around for exactly this check.
	signature := request.Header.Get("X-Hub-Signature")
	if err := service.VerifyWebhookHMAC(secret, body, signature); err != nil {
		h.logger.Warn("webhook: signature rejected",
			"repo", repo,
			"error", err,
			"remote_addr", request.RemoteAddr,
		)
		respond(writer, http.StatusBadRequest, "wtf signature")
		return ref.ChannelID{}, false
	}

	channel, ok := h.bindings.Channel(repo)
	if !ok {
		h.logger.Warn("webhook: repository not mapped to a channel", "repo", repo)
		respond(writer, http.StatusBadRequest, "wtf unauthorized")
		return ref.ChannelID{}, false
	}
	return channel, true
}

func (h *Handler) handleIssues(writer http.ResponseWriter, request *http.Request, body []byte) {
	var payload ghIssuesPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Warn("webhook: unparsable issues payload", "error", err)
		respond(writer, http.StatusBadRequest, "wtf info")
		return
	}

	fields := map[string]string{
		"repo":   payload.Repository.Name,
		"actor":  payload.Sender.Login,
		"action": payload.Action,
		"number": strconv.Itoa(payload.Issue.Number),
		"title":  payload.Issue.Title,
		"url":    payload.Issue.HTMLURL,
	}
	if payload.Repository.Name == "" || payload.Repository.FullName == "" ||
		payload.Sender.Login == "" || payload.Action == "" ||
		payload.Issue.Number == 0 || payload.Issue.Title == "" ||
		payload.Issue.HTMLURL == "" {
		h.logger.Warn("webhook: issues payload missing required fields")
		respond(writer, http.StatusBadRequest, "wtf info")
		return
	}

	channel, ok := h.verify(writer, request, body, payload.Repository.FullName)
	if !ok {
		return
	}

	var template string
	switch payload.Action {
	case "opened", "closed", "reopened", "unassigned":
		template = issueTemplate
	case "assigned":
		if payload.Assignee == nil || payload.Assignee.Login == "" {
			h.logger.Warn("webhook: assigned action without assignee")
			respond(writer, http.StatusBadRequest, "wtf info")
			return
		}
		fields["assignee"] = payload.Assignee.Login
		template = issueAssignTemplate
	default:
		h.logger.Info("webhook: unhandled issues action", "action", payload.Action)
		respond(writer, http.StatusOK, "wtf action")
		return
	}

	h.announce(channel, template, fields, "issues", payload.Repository.FullName)
	respond(writer, http.StatusOK, "ack")
}

func (h *Handler) handlePullRequest(writer http.ResponseWriter, request *http.Request, body []byte) {
	var payload ghPullRequestPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Warn("webhook: unparsable pull_request payload", "error", err)
		respond(writer, http.StatusBadRequest, "wtf info")
		return
	}

	fields := map[string]string{
		"repo":   payload.Repository.Name,
		"actor":  payload.Sender.Login,
		"action": payload.Action,
		"number": strconv.Itoa(payload.PullRequest.Number),
		"title":  payload.PullRequest.Title,
		"url":    payload.PullRequest.HTMLURL,
		"branch": payload.PullRequest.Head.Ref,
	}
	if payload.Repository.Name == "" || payload.Repository.FullName == "" ||
		payload.Sender.Login == "" || payload.Action == "" ||
		payload.PullRequest.Number == 0 || payload.PullRequest.Title == "" ||
		payload.PullRequest.HTMLURL == "" || payload.PullRequest.Head.Ref == "" {
		h.logger.Warn("webhook: pull_request payload missing required fields")
		respond(writer, http.StatusBadRequest, "wtf info")
		return
	}

	channel, ok := h.verify(writer, request, body, payload.Repository.FullName)
	if !ok {
		return
	}

	var template string
	switch payload.Action {
	case "opened", "closed", "reopened", "unassigned":
		template = pullRequestTemplate
	case "assigned":
		if payload.Assignee == nil || payload.Assignee.Login == "" {
			h.logger.Warn("webhook: assigned action without assignee")
			respond(writer, http.StatusBadRequest, "wtf info")
			return
		}
		fields["assignee"] = payload.Assignee.Login
		template = pullRequestAssignTemplate
	case "review_requested":
		if payload.RequestedReviewer == nil || payload.RequestedReviewer.Login == "" {
			h.logger.Warn("webhook: review_requested action without reviewer")
			respond(writer, http.StatusBadRequest, "wtf info")
			return
		}
		fields["reviewer"] = payload.RequestedReviewer.Login
		template = reviewRequestTemplate
	case "review_request_removed":
		if payload.RequestedReviewer == nil || payload.RequestedReviewer.Login == "" {
			h.logger.Warn("webhook: review_request_removed action without reviewer")
			respond(writer, http.StatusBadRequest, "wtf info")
			return
		}
		fields["reviewer"] = payload.RequestedReviewer.Login
		template = reviewRequestRemovedTemplate
	default:
		h.logger.Info("webhook: unhandled pull_request action", "action", payload.Action)
		respond(writer, http.StatusOK, "wtf action")
		return
	}

	h.announce(channel, template, fields, "pull_request", payload.Repository.FullName)
	respond(writer, http.StatusOK, "ack")
}

// announce formats and broadcasts one event.
func (h *Handler) announce(channel ref.ChannelID, template string, fields map[string]string, event, repo string) {
	text := formatTemplate(template, fields)
	h.logger.Info("webhook: broadcasting",
		"event", event,
		"repo", repo,
		"action", fields["action"],
		"channel", channel,
	)
	h.broadcaster.SendToChannel(channel, text)
}
