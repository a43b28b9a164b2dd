package ado

import (
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/aks2learn/Test-Sync-Pro/internal/types"
)

// TCM Steps field XML shape. Azure DevOps stores manual test steps in
// Microsoft.VSTS.TCM.Steps as a <steps> element whose children are
// numbered from 2 and carry two parameterizedString children each
// (action, then expected result).
type stepsXML struct {
	XMLName xml.Name  `xml:"steps"`
	ID      string    `xml:"id,attr"`
	Last    string    `xml:"last,attr"`
	Steps   []stepXML `xml:"step"`
}

type stepXML struct {
	ID      string      `xml:"id,attr"`
	Type    string      `xml:"type,attr"`
	Strings []paramText `xml:"parameterizedString"`
}

type paramText struct {
	IsFormatted string `xml:"isformatted,attr"`
	Text        string `xml:",chardata"`
}

var htmlTagRegex = regexp.MustCompile(`<[^>]+>`)

// BuildStepsXML renders test steps into the TCM Steps field format.
func BuildStepsXML(steps []types.TestStep) (string, error) {
	doc := stepsXML{
		ID:   "0",
		Last: fmt.Sprintf("%d", len(steps)+1),
	}
	for i, step := range steps {
		doc.Steps = append(doc.Steps, stepXML{
			ID:   fmt.Sprintf("%d", i+2),
			Type: "ValidateStep",
			Strings: []paramText{
				{IsFormatted: "true", Text: step.Action},
				{IsFormatted: "true", Text: step.ExpectedResult},
			},
		})
	}

	out, err := xml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal steps XML: %w", err)
	}
	return string(out), nil
}

// ParseStepsXML decodes the TCM Steps field back into test steps.
// Unparseable XML is treated as no steps rather than an error: work
// items edited by hand in the ADO UI sometimes carry malformed blobs,
// and a fetch must not fail because of one bad field.
func ParseStepsXML(raw string) []types.TestStep {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var doc stepsXML
	if err := xml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil
	}

	var steps []types.TestStep
	for _, step := range doc.Steps {
		var action, expected string
		if len(step.Strings) > 0 {
			action = StripHTML(step.Strings[0].Text)
		}
		if len(step.Strings) > 1 {
			expected = StripHTML(step.Strings[1].Text)
		}
		steps = append(steps, types.TestStep{Action: action, ExpectedResult: expected})
	}
	return steps
}

// StripHTML removes markup tags and decodes HTML entities. ADO rich
// text fields store step text as HTML fragments.
func StripHTML(text string) string {
	clean := htmlTagRegex.ReplaceAllString(text, "")
	return strings.TrimSpace(html.UnescapeString(clean))
}
