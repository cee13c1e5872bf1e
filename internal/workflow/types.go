package workflow

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// State is the terminal state of one classification attempt.
type State string

const (
	StateSuccess     State = "success"
	StateNoDetection State = "no_detection"
)

// Category values after normalization.
const (
	CategoryOrganic    = "organic"
	CategoryInorganic  = "inorganic"
	CategoryHazardous  = "hazardous"
	CategoryElectronic = "electronic"
)

// Number decodes a JSON number or a numeric string such as "40" or "40%".
// null and strings with no readable number, such as "sekitar 40", decode
// to zero; Validate reports the latter as a warning.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f, _ := parsePercentage(s)
		*n = Number(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// parsePercentage reads "40", "40%" or "40,5". ok is false for text that
// is not a number; an empty string is a readable zero.
func parsePercentage(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Flag decodes a JSON boolean or a yes/no string.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch t := v.(type) {
	case bool:
		*f = Flag(t)
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "ya", "1":
			*f = true
		default:
			*f = false
		}
	case float64:
		*f = t != 0
	default:
		*f = false
	}
	return nil
}

// Material is one material share within a waste type.
type Material struct {
	Type       string `json:"type"`
	Percentage Number `json:"percentage"`
}

// WasteType is one identified kind of waste in an image.
type WasteType struct {
	Name              string     `json:"name"`
	Category          string     `json:"category"`
	Percentage        Number     `json:"percentage"`
	Recyclable        Flag       `json:"recyclable"`
	RecycleReason     string     `json:"recycle_reason"`
	DecompositionTime string     `json:"decomposition_time"`
	Materials         []Material `json:"materials"`
	UnknownCategory   bool       `json:"unknown_category,omitempty"`
}

// AnalysisResult is the validated classification payload.
type AnalysisResult struct {
	WasteTypes              []WasteType `json:"waste_types"`
	OverallAssessment       string      `json:"overall_assessment"`
	DisposalRecommendations []string    `json:"disposal_recommendations"`
	EnvironmentalImpact     string      `json:"environmental_impact"`
	Error                   string      `json:"error,omitempty"`
}

// Percentages returns the waste type percentages in order.
func (a *AnalysisResult) Percentages() []float64 {
	out := make([]float64, len(a.WasteTypes))
	for i, w := range a.WasteTypes {
		out[i] = float64(w.Percentage)
	}
	return out
}

// Verdict is the Validator's decision on a parsed response.
type Verdict struct {
	State    State
	Analysis *AnalysisResult
	Message  string
	Warnings []string
}
