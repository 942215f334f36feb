package policy

import "testing"

func TestFilterPath_IncludeExclude(t *testing.T) {
	p := Default()
	p.Files.Include = []string{"**/*.ts"}
	p.Files.Exclude = []string{"**/*.test.ts"}

	tests := []struct {
		path string
		want bool
	}{
		{"src/a.ts", true},
		{"src/a.test.ts", false},
		{"src/deep/nested/b.ts", true},
		{"README.md", false},
	}

	for _, tt := range tests {
		if got := FilterPath(tt.path, p); got != tt.want {
			t.Errorf("FilterPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFilterPath_Defaults(t *testing.T) {
	p := Default()

	tests := []struct {
		path string
		want bool
	}{
		{"main.go", true},
		{"src/server.go", true},
		{"vendor/github.com/x/y.go", false},
		{"node_modules/leftpad/index.js", false},
		{"yarn.lock", false},
		{"assets/app.min.js", false},
	}

	for _, tt := range tests {
		if got := FilterPath(tt.path, p); got != tt.want {
			t.Errorf("FilterPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestMatchGlob_SingleStarStaysInSegment(t *testing.T) {
	if matchGlob("src/*.go", "src/deep/main.go") {
		t.Error("* must not cross path separators")
	}
	if !matchGlob("src/*.go", "src/main.go") {
		t.Error("* should match within a segment")
	}
}

func TestMatchGlob_QuestionMark(t *testing.T) {
	if !matchGlob("file?.go", "file1.go") {
		t.Error("? should match a single character")
	}
	if matchGlob("file?.go", "file12.go") {
		t.Error("? must match exactly one character")
	}
}

func TestMatchGlob_LiteralDots(t *testing.T) {
	// The dot must not act as a regex wildcard.
	if matchGlob("*.go", "maingo") {
		t.Error("dot in pattern must be literal")
	}
}

func TestFilterPath_EmptyIncludeMatchesNothing(t *testing.T) {
	p := Policy{Files: Files{Include: nil}}
	if FilterPath("main.go", p) {
		t.Error("a path cannot be included without a matching include pattern")
	}
}
