package ai

import (
	_ "embed"
	"strings"
	"text/template"
)

//go:embed prompts/search.md
var searchPromptRaw string

//go:embed prompts/analysis_system.md
var analysisSystemPromptRaw string

//go:embed prompts/analysis_user.md
var analysisUserPromptRaw string

var funcs = template.FuncMap{"join": strings.Join}

// Parsed once at package init; reused on every scan.
var (
	SearchTemplate         = template.Must(template.New("search").Funcs(funcs).Parse(searchPromptRaw))
	AnalysisSystemTemplate = template.Must(template.New("analysis_system").Parse(analysisSystemPromptRaw))
	AnalysisUserTemplate   = template.Must(template.New("analysis_user").Parse(analysisUserPromptRaw))
)
