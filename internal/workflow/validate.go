package workflow

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/sapulidi/sapulidi/internal/prompts"
)

// sumTolerance is how far a percentage list may drift from 100.
const sumTolerance = 1.0

var categoryAliases = map[string]string{
	"organik":     CategoryOrganic,
	"organic":     CategoryOrganic,
	"anorganik":   CategoryInorganic,
	"non-organik": CategoryInorganic,
	"inorganic":   CategoryInorganic,
	"b3":          CategoryHazardous,
	"berbahaya":   CategoryHazardous,
	"hazardous":   CategoryHazardous,
	"limbah b3":   CategoryHazardous,
	"elektronik":  CategoryElectronic,
	"e-waste":     CategoryElectronic,
	"electronic":  CategoryElectronic,
}

// NormalizeCategory maps a category alias to its canonical value. ok is
// false for unknown categories, which are returned trimmed and lower-cased.
func NormalizeCategory(category string) (string, bool) {
	c := strings.ToLower(strings.TrimSpace(category))
	if canonical, ok := categoryAliases[c]; ok {
		return canonical, true
	}
	return c, false
}

// Validate checks parsed data against the classification contract. A
// non-empty error field or an empty waste_types list is a no-detection
// verdict. Sum violations and unknown categories only add warnings.
func Validate(parsed any) (Verdict, error) {
	obj, err := asObject(parsed)
	if err != nil {
		return Verdict{}, err
	}

	if msg, ok := obj["error"].(string); ok && strings.TrimSpace(msg) != "" {
		return Verdict{State: StateNoDetection, Message: strings.TrimSpace(msg)}, nil
	}

	if _, ok := obj["waste_types"].([]any); !ok {
		return Verdict{}, fmt.Errorf("%w: waste_types missing or not a list", ErrMalformedResponse)
	}

	var result AnalysisResult
	if err := redecode(obj, &result); err != nil {
		return Verdict{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if len(result.WasteTypes) == 0 {
		return Verdict{State: StateNoDetection, Message: prompts.NoDetectionMessage}, nil
	}

	warnings := unreadablePercentages(obj["waste_types"].([]any))
	for i := range result.WasteTypes {
		w := &result.WasteTypes[i]

		category, known := NormalizeCategory(w.Category)
		w.Category = category
		if !known {
			w.UnknownCategory = true
			warnings = append(warnings, fmt.Sprintf("waste type %q has unknown category %q", w.Name, category))
		}

		if len(w.Materials) > 0 {
			if sum := materialSum(w.Materials); offBy(sum) {
				warnings = append(warnings, fmt.Sprintf("materials of %q sum to %.1f, not 100", w.Name, sum))
			}
		}
	}

	if sum := total(result.Percentages()); offBy(sum) {
		warnings = append(warnings, fmt.Sprintf("waste type percentages sum to %.1f, not 100", sum))
	}

	return Verdict{State: StateSuccess, Analysis: &result, Warnings: warnings}, nil
}

// unreadablePercentages warns about percentage strings that decoded to
// zero because they held no number.
func unreadablePercentages(wasteTypes []any) []string {
	var warnings []string
	check := func(owner string, v any) {
		if s, ok := v.(string); ok {
			if _, readable := parsePercentage(s); !readable {
				warnings = append(warnings, fmt.Sprintf("%s has non-numeric percentage %q, treated as 0", owner, s))
			}
		}
	}

	for _, raw := range wasteTypes {
		w, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := w["name"].(string)
		check(fmt.Sprintf("waste type %q", name), w["percentage"])

		materials, _ := w["materials"].([]any)
		for _, rawMaterial := range materials {
			if m, ok := rawMaterial.(map[string]any); ok {
				kind, _ := m["type"].(string)
				check(fmt.Sprintf("material %q of %q", kind, name), m["percentage"])
			}
		}
	}
	return warnings
}

func asObject(parsed any) (map[string]any, error) {
	switch v := parsed.(type) {
	case map[string]any:
		return v, nil
	case nil:
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}

	var data []byte
	switch v := parsed.(type) {
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	default:
		b, err := json.Marshal(parsed)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		data = b
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, fmt.Errorf("%w: response is not a JSON object", ErrMalformedResponse)
	}
	return obj, nil
}

func redecode(obj map[string]any, v any) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func materialSum(materials []Material) float64 {
	var sum float64
	for _, m := range materials {
		sum += float64(m.Percentage)
	}
	return sum
}

func total(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}

func offBy(sum float64) bool {
	return math.Abs(sum-100) > sumTolerance
}
