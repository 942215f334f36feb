package review

import (
	"fmt"
	"strings"
)

const commentHeader = "## 🤖 AI Code Review"

// FormatComment wraps the model's review text in the posted comment layout:
// header, review body, and a footer naming the provider and model.
func FormatComment(content, provider, modelID string) string {
	var sb strings.Builder
	sb.WriteString(commentHeader)
	sb.WriteString("\n\n")
	sb.WriteString(strings.TrimSpace(content))
	sb.WriteString("\n\n---\n")
	if modelID != "" {
		fmt.Fprintf(&sb, "*Generated by %s (%s)*\n", provider, modelID)
	} else {
		fmt.Fprintf(&sb, "*Generated by %s*\n", provider)
	}
	return sb.String()
}

// FormatFailureComment builds the user-safe body posted when a review fails.
// It names the failure without leaking configuration or credentials.
func FormatFailureComment(err error) string {
	var sb strings.Builder
	sb.WriteString(commentHeader)
	sb.WriteString("\n\n")
	sb.WriteString("The automated review could not be completed.\n\n")
	fmt.Fprintf(&sb, "Error: %v\n", err)
	return sb.String()
}
