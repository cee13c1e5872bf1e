package prompts_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/sapulidi/sapulidi/internal/prompts"
	"github.com/sapulidi/sapulidi/pkg/query"
)

func ptr[T any](v T) *T { return &v }

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", prompts.ErrNotFound, http.StatusNotFound},
		{"duplicate", prompts.ErrDuplicate, http.StatusConflict},
		{"invalid stage", prompts.ErrInvalidStage, http.StatusBadRequest},
		{"invalid prompt", prompts.ErrInvalidPrompt, http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("find: %w", prompts.ErrNotFound), http.StatusNotFound},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := prompts.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestStageUnmarshalJSON(t *testing.T) {
	var s prompts.Stage
	if err := json.Unmarshal([]byte(`"chat"`), &s); err != nil {
		t.Fatalf("unmarshal chat: %v", err)
	}
	if s != prompts.StageChat {
		t.Errorf("stage = %q, want chat", s)
	}

	if err := json.Unmarshal([]byte(`"enhance"`), &s); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("unmarshal enhance err = %v, want ErrInvalidStage", err)
	}
}

func TestParseLocale(t *testing.T) {
	for _, in := range []string{"id", "en"} {
		if _, err := prompts.ParseLocale(in); err != nil {
			t.Errorf("ParseLocale(%q) error: %v", in, err)
		}
	}
	if _, err := prompts.ParseLocale("fr"); !errors.Is(err, prompts.ErrInvalidLocale) {
		t.Errorf("ParseLocale(fr) err = %v, want ErrInvalidLocale", err)
	}
}

func TestDefaults(t *testing.T) {
	for _, locale := range []prompts.Locale{prompts.LocaleID, prompts.LocaleEN} {
		for _, stage := range prompts.Stages() {
			t.Run(string(locale)+"/"+string(stage), func(t *testing.T) {
				instructions, err := prompts.Instructions(locale, stage)
				if err != nil || strings.TrimSpace(instructions) == "" {
					t.Errorf("Instructions = %q, %v", instructions, err)
				}
				spec, err := prompts.Spec(locale, stage)
				if err != nil || strings.TrimSpace(spec) == "" {
					t.Errorf("Spec = %q, %v", spec, err)
				}
			})
		}
	}

	t.Run("classify spec carries schema keys", func(t *testing.T) {
		spec, _ := prompts.Spec(prompts.LocaleID, prompts.StageClassify)
		for _, key := range []string{"waste_types", "materials", "overall_assessment", "recyclable", "recycle_reason"} {
			if !strings.Contains(spec, key) {
				t.Errorf("classify spec missing %q", key)
			}
		}
		if !strings.Contains(spec, prompts.NoDetectionMessage) {
			t.Errorf("classify spec missing no-detection message")
		}
	})

	t.Run("unknown stage", func(t *testing.T) {
		if _, err := prompts.Instructions(prompts.LocaleID, prompts.Stage("enhance")); !errors.Is(err, prompts.ErrInvalidStage) {
			t.Errorf("err = %v, want ErrInvalidStage", err)
		}
	})
}

func TestFiltersFromQuery(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStage  *prompts.Stage
		wantName   *string
		wantActive *bool
	}{
		{"empty", "", nil, nil, nil},
		{"all set", "stage=classify&name=strict&active=false", ptr(prompts.StageClassify), ptr("strict"), ptr(false)},
		{"invalid stage ignored", "stage=enhance", nil, nil, nil},
		{"invalid bool ignored", "active=maybe", nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			f := prompts.FiltersFromQuery(values)

			if !equalPtr(f.Stage, tt.wantStage) {
				t.Errorf("Stage = %v, want %v", f.Stage, tt.wantStage)
			}
			if !equalPtr(f.Name, tt.wantName) {
				t.Errorf("Name = %v, want %v", f.Name, tt.wantName)
			}
			if !equalPtr(f.Active, tt.wantActive) {
				t.Errorf("Active = %v, want %v", f.Active, tt.wantActive)
			}
		})
	}
}

func TestFiltersApply(t *testing.T) {
	proj := query.NewProjectionMap("public", "prompts", "p").
		Project("stage", "Stage").
		Project("name", "Name").
		Project("active", "Active")

	f := prompts.Filters{Stage: ptr(prompts.StageChat), Active: ptr(true)}
	sql, args := f.Apply(query.NewBuilder(proj)).Build()

	if !strings.Contains(sql, "p.stage = $1") || !strings.Contains(sql, "p.active = $2") {
		t.Errorf("sql = %q", sql)
	}
	if len(args) != 2 {
		t.Errorf("args = %v, want 2", args)
	}
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
