// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package webhook

// GitHub webhook payload types. These are minimal structs that extract
// only the fields the chat templates need. They do not attempt to
// model the complete GitHub API — webhook payloads contain hundreds
// of fields that are irrelevant to a one-line chat announcement.
//
// JSON field names match GitHub's webhook payload documentation.

// ghUser is a GitHub user reference. Appears in sender, assignee,
// and requested_reviewer.
type ghUser struct {
	Login string `json:"login"`
}

// ghRepository is a GitHub repository reference.
type ghRepository struct {
	Name     string `json:"name"`      // short name
	FullName string `json:"full_name"` // "owner/repo"
}

// ghIssue is a GitHub issue within an issues event payload.
type ghIssue struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	HTMLURL string `json:"html_url"`
}

// ghIssuesPayload is the webhook payload for an "issues" event.
// Assignee is set only on assignment actions.
type ghIssuesPayload struct {
	Action     string       `json:"action"` // opened, closed, reopened, assigned, ...
	Issue      ghIssue      `json:"issue"`
	Repository ghRepository `json:"repository"`
	Sender     ghUser       `json:"sender"`
	Assignee   *ghUser      `json:"assignee"`
}

// ghBranch is a git branch reference on a pull request.
type ghBranch struct {
	Ref string `json:"ref"` // branch name
}

// ghPullRequest is a GitHub pull request within a pull_request event.
type ghPullRequest struct {
	Number  int      `json:"number"`
	Title   string   `json:"title"`
	HTMLURL string   `json:"html_url"`
	Head    ghBranch `json:"head"`
}

// ghPullRequestPayload is the webhook payload for a "pull_request"
// event. Assignee and RequestedReviewer are set only on the actions
// that involve them.
type ghPullRequestPayload struct {
	Action            string        `json:"action"` // opened, closed, review_requested, ...
	PullRequest       ghPullRequest `json:"pull_request"`
	Repository        ghRepository  `json:"repository"`
	Sender            ghUser        `json:"sender"`
	Assignee          *ghUser       `json:"assignee"`
	RequestedReviewer *ghUser       `json:"requested_reviewer"`
}

// ghPingPayload is the webhook payload for the "ping" event GitHub
// sends when a webhook is first configured. Hook is a raw fragment we
// only check for presence.
type ghPingPayload struct {
	Zen  string         `json:"zen"`
	Hook map[string]any `json:"hook"`
}
