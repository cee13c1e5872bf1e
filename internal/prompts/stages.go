package prompts

import (
	"encoding/json"
	"slices"
)

// Stage is an AI call site whose instructions can be overridden.
type Stage string

const (
	StageClassify Stage = "classify"
	StageChat     Stage = "chat"
)

var stages = []Stage{
	StageClassify,
	StageChat,
}

// Stages returns the valid stages.
func Stages() []Stage {
	return stages
}

// UnmarshalJSON rejects unknown stages.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStage validates a string as a known stage.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}

// Locale selects the language of the built-in prompts.
type Locale string

const (
	LocaleID Locale = "id"
	LocaleEN Locale = "en"
)

// ParseLocale validates a locale code.
func ParseLocale(s string) (Locale, error) {
	switch Locale(s) {
	case LocaleID, LocaleEN:
		return Locale(s), nil
	}
	return "", ErrInvalidLocale
}
