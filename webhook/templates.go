// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package webhook

import "strings"

// Message templates, keyed by (item kind, action class). The embedded
// mIRC control codes (\x03 color, \x02 bold, \x1f underline, \x0f
// reset) are part of the wire format the target channels expect and
// must survive byte-for-byte.
const (
	issueTemplate = "[\x0313{repo}\x0f] \x0315{actor}\x0f {action} issue \x02#{number}\x0f: {title} \x0302\x1f{url}\x0f"

	issueAssignTemplate = "[\x0313{repo}\x0f] \x0315{actor}\x0f {action} issue \x02#{number}\x0f to \x0315{assignee}\x0f: {title} \x0302\x1f{url}\x0f"

	pullRequestTemplate = "[\x0313{repo}\x0f] \x0315{actor}\x0f {action} pull request \x02#{number}\x0f (\x0303{branch}\x0f): {title} \x0302\x1f{url}\x0f"

	pullRequestAssignTemplate = "[\x0313{repo}\x0f] \x0315{actor}\x0f {action} pull request \x02#{number}\x0f (\x0303{branch}\x0f) to \x0315{assignee}\x0f: {title} \x0302\x1f{url}\x0f"

	reviewRequestTemplate = "[\x0313{repo}\x0f] \x0315{actor}\x0f requested review from \x0315{reviewer}\x0f on pull request \x02#{number}\x0f (\x0303{branch}\x0f): {title} \x0302\x1f{url}\x0f"

	reviewRequestRemovedTemplate = "[\x0313{repo}\x0f] \x0315{actor}\x0f removed the review request for \x0315{reviewer}\x0f on pull request \x02#{number}\x0f (\x0303{branch}\x0f): {title} \x0302\x1f{url}\x0f"
)

// formatTemplate substitutes {name} placeholders with field values.
// Placeholders without a field entry are left as-is, which only
// happens on a template/field-set mismatch (a programming error that
// shows up plainly in the rendered message).
func formatTemplate(template string, fields map[string]string) string {
	pairs := make([]string, 0, len(fields)*2)
	for name, value := range fields {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
