package policy

// Policy is the per-repository review configuration. Every field carries a
// default; repository documents are merged over Default() field by field.
type Policy struct {
	General     General    `yaml:"general"`
	Focus       Focus      `yaml:"focus"`
	Severity    Severity   `yaml:"severity"`
	Files       Files      `yaml:"files"`
	CustomRules []Rule     `yaml:"custom_rules"`
	AI          AIOverride `yaml:"ai"`
}

// General holds top-level review switches.
type General struct {
	Enabled bool   `yaml:"enabled"`
	MinSize int    `yaml:"min_size"`
	MaxSize int    `yaml:"max_size"`
	Style   string `yaml:"style"`
}

// Focus selects the review topics the model is asked to cover.
type Focus struct {
	Security        bool `yaml:"security"`
	Performance     bool `yaml:"performance"`
	CodeQuality     bool `yaml:"code_quality"`
	Maintainability bool `yaml:"maintainability"`
	Testing         bool `yaml:"testing"`
	Documentation   bool `yaml:"documentation"`
	BestPractices   bool `yaml:"best_practices"`
}

// Severity selects which severity levels the model should report.
type Severity struct {
	Critical bool `yaml:"critical"`
	High     bool `yaml:"high"`
	Medium   bool `yaml:"medium"`
	Low      bool `yaml:"low"`
	Info     bool `yaml:"info"`
}

// Files holds include/exclude glob patterns for changed-file filtering.
type Files struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// Rule is a custom regex rule scanned over file content.
type Rule struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Description string `yaml:"description"`
	Severity    string `yaml:"severity"`
}

// AIOverride holds per-repository model selection overrides.
type AIOverride struct {
	Provider string `yaml:"provider"`
	ModelID  string `yaml:"model_id"`
	// Temperature is nil unless the policy sets it, so an explicit 0
	// is distinguishable from "use the provider default".
	Temperature        *float64 `yaml:"temperature"`
	MaxTokens          int      `yaml:"max_tokens"`
	CustomInstructions string   `yaml:"custom_instructions"`
	EnableFallback     bool     `yaml:"enable_fallback"`
	FallbackProvider   string   `yaml:"fallback_provider"`
}

// Default returns the baseline policy applied when a repository carries no
// policy document.
func Default() Policy {
	return Policy{
		General: General{
			Enabled: true,
			MinSize: 0,
			MaxSize: 0, // no upper bound
			Style:   "constructive",
		},
		Focus: Focus{
			Security:        true,
			Performance:     true,
			CodeQuality:     true,
			Maintainability: true,
			Testing:         false,
			Documentation:   false,
			BestPractices:   true,
		},
		Severity: Severity{
			Critical: true,
			High:     true,
			Medium:   true,
			Low:      false,
			Info:     false,
		},
		Files: Files{
			Include: []string{"**"},
			Exclude: []string{
				"**/node_modules/**",
				"**/vendor/**",
				"**/dist/**",
				"**/*.lock",
				"**/*.min.js",
			},
		},
	}
}
