package policy

import (
	"log"
	"regexp"
	"strings"
)

// Violation is a custom-rule match found in file content. Violations are
// informational; they annotate the review rather than gate it.
type Violation struct {
	Rule        string
	Description string
	Severity    string
	Line        int
	MatchedText string
}

// ScanRules applies each rule's pattern to the file content and returns every
// match. A rule with an invalid pattern is skipped with a warning and
// contributes no violations.
func ScanRules(path, content string, rules []Rule) []Violation {
	var violations []Violation

	for _, rule := range rules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			log.Printf("[policy] warning: skipping rule %q for %s: invalid pattern: %v", rule.Name, path, err)
			continue
		}

		for _, loc := range re.FindAllStringIndex(content, -1) {
			violations = append(violations, Violation{
				Rule:        rule.Name,
				Description: rule.Description,
				Severity:    rule.Severity,
				Line:        1 + strings.Count(content[:loc[0]], "\n"),
				MatchedText: content[loc[0]:loc[1]],
			})
		}
	}

	return violations
}
