package diagfmt

import (
	"encoding/json"
	"io"

	"pytutor/internal/diag"
	"pytutor/internal/kb"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

// SARIF v2.1.0, reduced to what line-level findings need.
type SarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []SarifRun `json:"runs"`
}

type SarifRun struct {
	Tool        SarifTool         `json:"tool"`
	Invocations []SarifInvocation `json:"invocations,omitempty"`
	Results     []SarifResult     `json:"results"`
}

type SarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type SarifTool struct {
	Driver SarifDriver `json:"driver"`
}

type SarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []SarifRule `json:"rules"`
}

type SarifRule struct {
	ID               string       `json:"id"`
	ShortDescription SarifMessage `json:"shortDescription"`
	FullDescription  SarifMessage `json:"fullDescription,omitzero"`
	Help             SarifMessage `json:"help,omitzero"`
}

type SarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   SarifMessage    `json:"message"`
	Locations []SarifLocation `json:"locations"`
}

type SarifMessage struct {
	Text string `json:"text"`
}

type SarifLocation struct {
	PhysicalLocation SarifPhysicalLocation `json:"physicalLocation"`
}

type SarifPhysicalLocation struct {
	ArtifactLocation SarifArtifactLocation `json:"artifactLocation"`
	Region           *SarifRegion          `json:"region,omitempty"`
}

type SarifArtifactLocation struct {
	URI string `json:"uri"`
}

type SarifRegion struct {
	StartLine uint32 `json:"startLine"`
}

func sarifLevel(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

// BuildSarif converts entries into a single-run SARIF log. Every kb kind
// becomes a rule so viewers can show the explanation next to a result.
func BuildSarif(entries []Entry, meta SarifRunMeta) SarifLog {
	rules := make([]SarifRule, 0, len(kb.Kinds()))
	for _, k := range kb.Kinds() {
		info := kb.Of(k)
		rules = append(rules, SarifRule{
			ID:               string(k),
			ShortDescription: SarifMessage{Text: info.Definition},
			FullDescription:  SarifMessage{Text: info.Cause},
			Help:             SarifMessage{Text: info.Solution},
		})
	}

	results := make([]SarifResult, 0)
	for _, e := range entries {
		for _, d := range e.Items {
			loc := SarifPhysicalLocation{ArtifactLocation: SarifArtifactLocation{URI: e.Path}}
			if d.Line > 0 {
				loc.Region = &SarifRegion{StartLine: d.Line}
			}
			results = append(results, SarifResult{
				RuleID:    string(d.Kind),
				Level:     sarifLevel(d.Severity),
				Message:   SarifMessage{Text: d.Message},
				Locations: []SarifLocation{{PhysicalLocation: loc}},
			})
		}
	}

	run := SarifRun{
		Tool: SarifTool{Driver: SarifDriver{
			Name:    meta.ToolName,
			Version: meta.ToolVersion,
			Rules:   rules,
		}},
		Results: results,
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []SarifInvocation{{Arguments: meta.InvocationArgs, ExecutionSuccessful: true}}
	}
	return SarifLog{Version: sarifVersion, Schema: sarifSchema, Runs: []SarifRun{run}}
}

// Sarif writes the SARIF log as indented JSON.
func Sarif(w io.Writer, entries []Entry, meta SarifRunMeta) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildSarif(entries, meta))
}
