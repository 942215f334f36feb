package prompt

import (
	"fmt"
	"log"
	"strings"

	"github.com/hoojinguyen/ai-pr-review/internal/policy"
	"github.com/hoojinguyen/ai-pr-review/internal/review"
)

// maxDiffChars is the largest patch rendered inline; longer diffs are
// replaced with a placeholder line.
const maxDiffChars = 10000

// Builder renders review prompts from a pull-request snapshot and the
// repository's policy. Rendering is deterministic and never truncates the
// overall prompt; length limits are the backend's concern.
type Builder struct{}

// NewBuilder creates a new prompt builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build constructs the full review prompt. Files excluded by the policy's
// patterns are skipped entirely. Custom-rule violations found in the diffs
// are logged as annotations; they do not gate the review.
func (b *Builder) Build(snap *review.Snapshot, pol policy.Policy) string {
	var parts []string

	if instructions := strings.TrimSpace(pol.AI.CustomInstructions); instructions != "" {
		parts = append(parts, instructions)
	}

	parts = append(parts, b.buildInstruction(pol))
	parts = append(parts, b.buildHeader(snap))
	parts = append(parts, b.buildFiles(snap, pol))

	if len(pol.CustomRules) > 0 {
		parts = append(parts, b.buildRules(pol.CustomRules))
	}

	parts = append(parts, b.buildClosing())

	return strings.Join(parts, "\n\n")
}

func (b *Builder) buildInstruction(pol policy.Policy) string {
	focus := focusLabels(pol.Focus)
	severities := severityLabels(pol.Severity)

	return fmt.Sprintf(
		"Please review this pull request focusing on: %s. Report issues using these severity levels: %s.",
		strings.Join(focus, ", "),
		strings.Join(severities, ", "),
	)
}

func (b *Builder) buildHeader(snap *review.Snapshot) string {
	title := snap.Title
	if title == "" {
		title = "Untitled pull request"
	}
	body := strings.TrimSpace(snap.Body)
	if body == "" {
		body = "No description provided."
	}
	return fmt.Sprintf("## Pull Request: %s\n\n%s", title, body)
}

func (b *Builder) buildFiles(snap *review.Snapshot, pol policy.Policy) string {
	var sb strings.Builder
	sb.WriteString("## Changed Files")

	for _, f := range snap.Files {
		if !policy.FilterPath(f.Path, pol) {
			continue
		}

		sb.WriteString("\n\n### ")
		sb.WriteString(f.Path)
		sb.WriteString("\n\n")

		if f.IsBinary || len(f.Patch) > maxDiffChars {
			sb.WriteString("_Diff omitted (binary or too large)._")
			continue
		}

		if violations := policy.ScanRules(f.Path, f.Patch, pol.CustomRules); len(violations) > 0 {
			log.Printf("[prompt] %d custom-rule match(es) in diff of %s", len(violations), f.Path)
		}

		sb.WriteString("```diff\n")
		sb.WriteString(f.Patch)
		sb.WriteString("\n```")
	}

	return sb.String()
}

func (b *Builder) buildRules(rules []policy.Rule) string {
	var sb strings.Builder
	sb.WriteString("## Custom Rules\n\nThe repository defines these additional rules:")
	for _, r := range rules {
		fmt.Fprintf(&sb, "\n- **%s**: %s (severity: %s)", r.Name, r.Description, r.Severity)
	}
	return sb.String()
}

func (b *Builder) buildClosing() string {
	return `## Output Format

Structure your review in three sections:
1. **Summary**: a short overall assessment of the change.
2. **Key Findings**: concrete issues, grouped by focus area.
3. **Recommendations**: actionable suggestions for improvement.`
}

// focusLabels maps enabled focus topics to readable labels.
func focusLabels(f policy.Focus) []string {
	var labels []string
	for _, item := range []struct {
		enabled bool
		label   string
	}{
		{f.Security, "security"},
		{f.Performance, "performance"},
		{f.CodeQuality, "code quality"},
		{f.Maintainability, "maintainability"},
		{f.Testing, "testing"},
		{f.Documentation, "documentation"},
		{f.BestPractices, "best practices"},
	} {
		if item.enabled {
			labels = append(labels, item.label)
		}
	}
	return labels
}

// severityLabels maps enabled severity levels to readable labels; info is
// spelled out as "informational".
func severityLabels(s policy.Severity) []string {
	var labels []string
	for _, item := range []struct {
		enabled bool
		label   string
	}{
		{s.Critical, "critical"},
		{s.High, "high"},
		{s.Medium, "medium"},
		{s.Low, "low"},
		{s.Info, "informational"},
	} {
		if item.enabled {
			labels = append(labels, item.label)
		}
	}
	return labels
}
