package policy

import (
	"log"
	"regexp"
	"strings"
)

// FilterPath reports whether a changed file should be reviewed under the
// policy's file patterns: the path must match at least one include pattern
// and no exclude pattern.
func FilterPath(path string, p Policy) bool {
	included := false
	for _, pattern := range p.Files.Include {
		if matchGlob(pattern, path) {
			included = true
			break
		}
	}
	if !included {
		return false
	}

	for _, pattern := range p.Files.Exclude {
		if matchGlob(pattern, path) {
			return false
		}
	}
	return true
}

// matchGlob matches a path against a glob pattern where ** crosses path
// separators, * matches within a segment, and ? matches one character.
func matchGlob(pattern, path string) bool {
	re, err := globToRegexp(pattern)
	if err != nil {
		log.Printf("[policy] warning: invalid file pattern %q: %v", pattern, err)
		return false
	}
	return re.MatchString(path)
}

func globToRegexp(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("^")

	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '*':
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				sb.WriteString(".*")
				i++
			} else {
				sb.WriteString("[^/]*")
			}
		case '?':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	sb.WriteString("$")
	return regexp.Compile(sb.String())
}
