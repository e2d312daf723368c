package reporter

import (
	"encoding/json"
	"fmt"
)

// SARIF Schema Structs (simplified for our needs)
// Schema: https://docs.oasis-open.org/sarif/sarif/v2.1.0/os/schemas/sarif-schema-2.1.0.json

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool       sarifTool         `json:"tool"`
	Results    []sarifResult     `json:"results"`
	Properties map[string]string `json:"properties,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string              `json:"id"`
	Name             string              `json:"name,omitempty"`
	ShortDescription sarifMessage        `json:"shortDescription"`
	Properties       sarifRuleProperties `json:"properties,omitempty"`
}

type sarifRuleProperties struct {
	Tags     []string `json:"tags,omitempty"`
	Severity string   `json:"security-severity,omitempty"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	Level               string            `json:"level"` // error, warning, note, none
	Message             sarifMessage      `json:"message"`
	Locations           []sarifLocation   `json:"locations,omitempty"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	LogicalLocations []sarifLogicalLocation `json:"logicalLocations"`
}

type sarifLogicalLocation struct {
	FullyQualifiedName string `json:"fullyQualifiedName"`
	Kind               string `json:"kind,omitempty"`
}

// Version is reported as the SARIF driver version.
var Version = "dev"

var ruleDescriptions = map[string]string{
	RuleCredentialExposure: "An account token or session was found in exfiltrated data",
	RuleCloudSecrets:       "Cloud provider secrets were found in exfiltrated data",
	RuleInfectedPackage:    "A package version known to carry the Shai-Hulud worm",
	RuleInfectedHistory:    "A package that had releases compromised by the Shai-Hulud worm",
	RuleMalwareIndicator:   "A Shai-Hulud signature (bundle hash, webhook endpoint or lifecycle script)",
	RuleSecretScanner:      "The worm's secret scanner was available on the host",
}

// renderSARIF outputs the findings in SARIF format.
func (r *Reporter) renderSARIF(report SecurityReport) error {
	run := sarifRun{
		Tool: sarifTool{
			Driver: sarifDriver{
				Name:           "crysknife",
				Version:        Version,
				InformationURI: "https://github.com/xful-bep/crysknife",
				Rules:          []sarifRule{},
			},
		},
		Results: []sarifResult{},
		Properties: map[string]string{
			"searchType": report.SearchType,
			"level":      string(report.Level),
		},
	}

	seen := make(map[string]bool)
	for _, f := range Findings(report.Analysis) {
		if !seen[f.Rule] {
			seen[f.Rule] = true
			run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{
				ID:               f.Rule,
				Name:             f.Rule,
				ShortDescription: sarifMessage{Text: ruleDescriptions[f.Rule]},
				Properties: sarifRuleProperties{
					Tags:     []string{"security", "npm", "supply-chain", "shai-hulud"},
					Severity: sarifSeverityScore(f.Severity),
				},
			})
		}

		text := f.Title
		if f.Detail != "" {
			text = fmt.Sprintf("%s: %s", f.Title, f.Detail)
		}
		result := sarifResult{
			RuleID:  f.Rule,
			Level:   sarifLevel(f.Severity),
			Message: sarifMessage{Text: text},
		}
		if f.PURL != "" {
			result.Locations = []sarifLocation{{
				LogicalLocations: []sarifLogicalLocation{{FullyQualifiedName: f.PURL, Kind: "package"}},
			}}
			result.PartialFingerprints = map[string]string{"purl": f.PURL}
		}
		run.Results = append(run.Results, result)
	}

	log := sarifLog{
		Version: "2.1.0",
		Schema:  "https://docs.oasis-open.org/sarif/sarif/v2.1.0/os/schemas/sarif-schema-2.1.0.json",
		Runs:    []sarifRun{run},
	}

	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

func sarifLevel(s Severity) string {
	switch s {
	case SeverityCritical, SeverityHigh:
		return "error"
	case SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

func sarifSeverityScore(s Severity) string {
	switch s {
	case SeverityCritical:
		return "9.0"
	case SeverityHigh:
		return "7.0"
	case SeverityMedium:
		return "5.0"
	default:
		return "1.0"
	}
}
