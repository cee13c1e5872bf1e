package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/sapulidi/sapulidi/internal/prompts"
)

// Prompt is a composed model instruction and the version that produced it.
type Prompt struct {
	Text    string `json:"text"`
	Version string `json:"version"`
}

// ComposePrompt joins the effective instructions for stage with its fixed
// output contract. An active override supplies the instructions when one
// exists; otherwise the built-in default for the configured locale does.
func ComposePrompt(ctx context.Context, ps prompts.System, stage prompts.Stage) (Prompt, error) {
	spec, err := ps.Spec(stage)
	if err != nil {
		return Prompt{}, fmt.Errorf("load spec for %s: %w", stage, err)
	}

	active, err := ps.Active(ctx, stage)
	switch {
	case err == nil:
		return Prompt{
			Text:    join(active.Instructions, spec),
			Version: "override:" + active.ID.String(),
		}, nil
	case errors.Is(err, prompts.ErrNotFound):
		return DefaultPrompt(ps.Locale(), stage)
	default:
		return Prompt{}, fmt.Errorf("load instructions for %s: %w", stage, err)
	}
}

// DefaultPrompt composes the built-in prompt for stage without touching
// the prompt store.
func DefaultPrompt(locale prompts.Locale, stage prompts.Stage) (Prompt, error) {
	instructions, err := prompts.Instructions(locale, stage)
	if err != nil {
		return Prompt{}, err
	}
	spec, err := prompts.Spec(locale, stage)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{
		Text:    join(instructions, spec),
		Version: "default:" + string(locale),
	}, nil
}

func join(instructions, spec string) string {
	return instructions + "\n\n" + spec
}
