package formats

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"vibecheck/internal/core/app"
	"vibecheck/internal/engine/detectors"
	"vibecheck/internal/engine/scoring"
	"vibecheck/internal/shared/version"
)

// SARIF v2.1.0 schema – see https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"

	ruleIDHighRisk = "VIBE000"
)

type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID     string          `json:"ruleId"`
	Level      string          `json:"level"`
	Message    sarifMessage    `json:"message"`
	Locations  []sarifLocation `json:"locations,omitempty"`
	Properties map[string]any  `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

type sarifRegion struct {
	StartLine int `json:"startLine,omitempty"`
	EndLine   int `json:"endLine,omitempty"`
}

type detectorRule struct {
	id          detectors.ID
	ruleID      string
	name        string
	description string
}

var detectorRules = []detectorRule{
	{detectors.Security, "VIBE001", "InsecurePattern", "Hard-coded credentials, injection-prone string building or dangerous calls."},
	{detectors.Repetitive, "VIBE002", "RepetitiveStructure", "Functions or statement blocks that repeat with only names and literals changed."},
	{detectors.Naming, "VIBE003", "GenericNaming", "Generic variable and function names that say nothing about intent."},
	{detectors.Imports, "VIBE004", "SuspiciousImport", "Imports of modules that look invented or resolve nowhere."},
	{detectors.Comments, "VIBE005", "OverCommenting", "Comments that restate the code or narrate steps."},
	{detectors.Placeholders, "VIBE006", "Placeholder", "TODO markers, stubs and bodies that do nothing."},
	{detectors.Ratio, "VIBE007", "DocumentationRatio", "Documentation that outweighs or pads the code it describes."},
}

func ruleFor(id detectors.ID) (detectorRule, bool) {
	for _, r := range detectorRules {
		if r.id == id {
			return r, true
		}
	}
	return detectorRule{}, false
}

// WriteSARIF emits one VIBE000 result per high-risk file and one result per
// detector finding on visible files. URIs are relative to the scan root.
func WriteSARIF(w io.Writer, r *app.Report) error {
	doc, err := GenerateSARIF(r)
	if err != nil {
		return err
	}
	_, err = w.Write(append(doc, '\n'))
	return err
}

func GenerateSARIF(r *app.Report) ([]byte, error) {
	rules := make([]sarifRule, 0, len(detectorRules)+1)
	rules = append(rules, sarifRule{
		ID:               ruleIDHighRisk,
		Name:             "HighRiskFile",
		ShortDescription: sarifMessage{Text: fmt.Sprintf("File score is %d or higher.", scoring.HighRiskFloor)},
		DefaultConfig:    sarifRuleDefaultConfig{Level: "error"},
	})
	for _, dr := range detectorRules {
		rules = append(rules, sarifRule{
			ID:               dr.ruleID,
			Name:             dr.name,
			ShortDescription: sarifMessage{Text: dr.description},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "warning"},
		})
	}

	results := make([]sarifResult, 0)
	for _, f := range r.Visible() {
		if !f.Scored() {
			continue
		}
		uri := relativeURI(r.Root, f.RelPath)
		if f.Score.Score >= scoring.HighRiskFloor {
			results = append(results, sarifResult{
				RuleID:     ruleIDHighRisk,
				Level:      "error",
				Message:    sarifMessage{Text: fmt.Sprintf("%s: vibe score %d", f.Score.Label, f.Score.Score)},
				Locations:  []sarifLocation{fileLocation(uri, nil)},
				Properties: map[string]any{"vibeScore": f.Score.Score},
			})
		}
		for _, d := range f.Score.Detectors {
			dr, ok := ruleFor(d.Detector)
			if !ok {
				continue
			}
			for _, finding := range d.Findings {
				if finding.Kind == detectors.KindSkipped {
					continue
				}
				var region *sarifRegion
				if finding.Lines != nil {
					region = &sarifRegion{StartLine: finding.Lines.Start, EndLine: finding.Lines.End}
				}
				results = append(results, sarifResult{
					RuleID:    dr.ruleID,
					Level:     severityToLevel(finding.Severity),
					Message:   sarifMessage{Text: finding.Message},
					Locations: []sarifLocation{fileLocation(uri, region)},
					Properties: map[string]any{
						"kind":     finding.Kind,
						"severity": finding.Severity,
					},
				})
			}
		}
	}

	report := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    "vibecheck",
						Version: version.Version,
						Rules:   rules,
					},
				},
				Results: results,
			},
		},
	}
	return json.MarshalIndent(report, "", "  ")
}

func fileLocation(uri string, region *sarifRegion) sarifLocation {
	return sarifLocation{
		PhysicalLocation: sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{URI: uri, URIBaseID: "%SRCROOT%"},
			Region:           region,
		},
	}
}

// relativeURI converts a path to a forward-slash URI anchored at root.
func relativeURI(root, p string) string {
	if root != "" && filepath.IsAbs(p) {
		if rel, err := filepath.Rel(root, p); err == nil {
			p = rel
		}
	}
	return filepath.ToSlash(p)
}

func severityToLevel(severity float64) string {
	switch {
	case severity >= 0.7:
		return "error"
	case severity >= 0.4:
		return "warning"
	default:
		return "note"
	}
}
