// Package htmlsanitize cleans user-submitted Speak Up message content.
// It uses bluemonday to strip dangerous HTML while preserving the basic
// formatting the dashboard's message editor produces.
package htmlsanitize

import (
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// policy is the shared bluemonday policy for message content.
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared sanitization policy, creating it on first use.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		// UGC policy as base: paragraphs, emphasis, lists, links.
		policy = bluemonday.UGCPolicy()

		// The message editor also emits these inline elements.
		policy.AllowElements("u", "s", "mark")

		// Reports sometimes paste external links; force them inert.
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
	})
	return policy
}

// Message cleans a Speak Up message, removing potentially dangerous
// elements and attributes while keeping safe formatting.
func Message(html string) string {
	if html == "" {
		return ""
	}
	return getPolicy().Sanitize(html)
}

// IsPlainText checks if content appears to be plain text (no HTML tags).
// Valid HTML tags require both < and >, so if either is missing the content
// is treated as plain text.
func IsPlainText(content string) bool {
	if content == "" {
		return true
	}
	return !strings.Contains(content, "<") || !strings.Contains(content, ">")
}

// PlainTextToHTML converts plain text to minimal HTML: entities escaped,
// newlines become <br>, the whole thing wrapped in a <p>.
func PlainTextToHTML(text string) string {
	if text == "" {
		return ""
	}
	escaped := template.HTMLEscapeString(text)
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return "<p>" + escaped + "</p>"
}
