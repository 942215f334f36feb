package policy

// Document is a partially specified policy as it appears in a repository.
// Pointer fields distinguish "absent" from "explicitly set to the zero value"
// so that a partial document can be merged over the defaults.
type Document struct {
	General     *GeneralDocument  `yaml:"general"`
	Focus       *FocusDocument    `yaml:"focus"`
	Severity    *SeverityDocument `yaml:"severity"`
	Files       *FilesDocument    `yaml:"files"`
	CustomRules []Rule            `yaml:"custom_rules"`
	AI          *AIDocument       `yaml:"ai"`
}

// GeneralDocument mirrors General with optional fields.
type GeneralDocument struct {
	Enabled *bool   `yaml:"enabled"`
	MinSize *int    `yaml:"min_size"`
	MaxSize *int    `yaml:"max_size"`
	Style   *string `yaml:"style"`
}

// FocusDocument mirrors Focus with optional fields.
type FocusDocument struct {
	Security        *bool `yaml:"security"`
	Performance     *bool `yaml:"performance"`
	CodeQuality     *bool `yaml:"code_quality"`
	Maintainability *bool `yaml:"maintainability"`
	Testing         *bool `yaml:"testing"`
	Documentation   *bool `yaml:"documentation"`
	BestPractices   *bool `yaml:"best_practices"`
}

// SeverityDocument mirrors Severity with optional fields.
type SeverityDocument struct {
	Critical *bool `yaml:"critical"`
	High     *bool `yaml:"high"`
	Medium   *bool `yaml:"medium"`
	Low      *bool `yaml:"low"`
	Info     *bool `yaml:"info"`
}

// FilesDocument mirrors Files; pattern lists replace the defaults wholesale.
type FilesDocument struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// AIDocument mirrors AIOverride with optional fields.
type AIDocument struct {
	Provider           *string  `yaml:"provider"`
	ModelID            *string  `yaml:"model_id"`
	Temperature        *float64 `yaml:"temperature"`
	MaxTokens          *int     `yaml:"max_tokens"`
	CustomInstructions *string  `yaml:"custom_instructions"`
	EnableFallback     *bool    `yaml:"enable_fallback"`
	FallbackProvider   *string  `yaml:"fallback_provider"`
}

// Merge lays the document over the base policy. Nested sections merge
// recursively; arrays and scalars present in the document replace the base
// field wholesale. Merging is right-biased and idempotent.
func Merge(base Policy, doc *Document) Policy {
	merged := base
	if doc == nil {
		return merged
	}

	if doc.General != nil {
		setBool(&merged.General.Enabled, doc.General.Enabled)
		setInt(&merged.General.MinSize, doc.General.MinSize)
		setInt(&merged.General.MaxSize, doc.General.MaxSize)
		setString(&merged.General.Style, doc.General.Style)
	}

	if doc.Focus != nil {
		setBool(&merged.Focus.Security, doc.Focus.Security)
		setBool(&merged.Focus.Performance, doc.Focus.Performance)
		setBool(&merged.Focus.CodeQuality, doc.Focus.CodeQuality)
		setBool(&merged.Focus.Maintainability, doc.Focus.Maintainability)
		setBool(&merged.Focus.Testing, doc.Focus.Testing)
		setBool(&merged.Focus.Documentation, doc.Focus.Documentation)
		setBool(&merged.Focus.BestPractices, doc.Focus.BestPractices)
	}

	if doc.Severity != nil {
		setBool(&merged.Severity.Critical, doc.Severity.Critical)
		setBool(&merged.Severity.High, doc.Severity.High)
		setBool(&merged.Severity.Medium, doc.Severity.Medium)
		setBool(&merged.Severity.Low, doc.Severity.Low)
		setBool(&merged.Severity.Info, doc.Severity.Info)
	}

	if doc.Files != nil {
		if doc.Files.Include != nil {
			merged.Files.Include = doc.Files.Include
		}
		if doc.Files.Exclude != nil {
			merged.Files.Exclude = doc.Files.Exclude
		}
	}

	if doc.CustomRules != nil {
		merged.CustomRules = doc.CustomRules
	}

	if doc.AI != nil {
		setString(&merged.AI.Provider, doc.AI.Provider)
		setString(&merged.AI.ModelID, doc.AI.ModelID)
		if doc.AI.Temperature != nil {
			v := *doc.AI.Temperature
			merged.AI.Temperature = &v
		}
		setInt(&merged.AI.MaxTokens, doc.AI.MaxTokens)
		setString(&merged.AI.CustomInstructions, doc.AI.CustomInstructions)
		setBool(&merged.AI.EnableFallback, doc.AI.EnableFallback)
		setString(&merged.AI.FallbackProvider, doc.AI.FallbackProvider)
	}

	return merged
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
