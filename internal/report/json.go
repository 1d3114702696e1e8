package report

import (
	"encoding/json"

	"stacklens/internal/counter"
)

// JSONGenerator renders a Report as indented JSON for machine consumers.
type JSONGenerator struct {
	report *counter.Report
}

func NewJSONGenerator(r *counter.Report) *JSONGenerator {
	return &JSONGenerator{report: r}
}

func (j *JSONGenerator) Generate() (string, error) {
	data, err := json.MarshalIndent(j.report, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
