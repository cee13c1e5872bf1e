// Package workflow runs one waste classification attempt: compose the
// prompt, invoke the model, normalize its envelope, and validate the
// result against the classification contract.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sapulidi/sapulidi/internal/ai"
	"github.com/sapulidi/sapulidi/internal/prompts"
	"github.com/sapulidi/sapulidi/pkg/formatting"
)

// Runtime bundles the dependencies a classification attempt requires.
type Runtime struct {
	AI      ai.Capability
	Prompts prompts.System
	Logger  *slog.Logger
	Metrics *Metrics
	Options ai.Options
	// MalformedRetries is how many extra model calls are made when the
	// response cannot be normalized or validated.
	MalformedRetries int
}

// Request is one classification attempt.
type Request struct {
	// Image is a base64 image data URI.
	Image string
}

// Result is the terminal state of a successful attempt. Analysis is nil
// for StateNoDetection.
type Result struct {
	State         State              `json:"state"`
	Analysis      *AnalysisResult    `json:"analysis,omitempty"`
	Message       string             `json:"message,omitempty"`
	Warnings      []string           `json:"warnings,omitempty"`
	PromptVersion string             `json:"prompt_version"`
	Attempts      int                `json:"attempts"`
	Image         formatting.DataURI `json:"-"`
}

// Execute runs the attempt state machine. Transport and availability
// failures end the attempt immediately; malformed responses are retried
// up to rt.MalformedRetries times before ErrMalformedResponse is returned.
func Execute(ctx context.Context, rt *Runtime, req Request) (*Result, error) {
	image, err := formatting.ParseDataURI(req.Image)
	if err != nil || !image.IsImage() {
		rt.Metrics.outcome(OutcomeInvalidImage)
		return nil, ErrInvalidImage
	}

	prompt := composeOrDefault(ctx, rt)
	logger := rt.Logger.With("prompt_version", prompt.Version, "model", rt.Options.Model)

	var lastErr error
	attempts := 1 + max(rt.MalformedRetries, 0)

	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err := rt.AI.Invoke(ctx, prompt.Text, image.String(), rt.Options)
		if err != nil {
			return nil, fail(rt, logger, attempt, invokeError(ctx, err))
		}

		verdict, err := interpret(raw)
		if err != nil {
			lastErr = err
			logger.WarnContext(ctx, "malformed ai response", "attempt", attempt, "error", err)
			continue
		}

		rt.Metrics.observeAttempts(attempt)
		for _, w := range verdict.Warnings {
			logger.WarnContext(ctx, "classification contract violation", "warning", w)
		}
		rt.Metrics.warned(len(verdict.Warnings))

		result := &Result{
			State:         verdict.State,
			Analysis:      verdict.Analysis,
			Message:       verdict.Message,
			Warnings:      verdict.Warnings,
			PromptVersion: prompt.Version,
			Attempts:      attempt,
			Image:         image,
		}

		if verdict.State == StateNoDetection {
			rt.Metrics.outcome(OutcomeNoDetection)
			logger.InfoContext(ctx, "no waste detected", "attempt", attempt, "message", verdict.Message)
		} else {
			rt.Metrics.outcome(OutcomeSuccess)
			logger.InfoContext(ctx, "classification complete",
				"attempt", attempt,
				"waste_types", len(verdict.Analysis.WasteTypes),
			)
		}
		return result, nil
	}

	return nil, fail(rt, logger, attempts, lastErr)
}

func interpret(raw any) (Verdict, error) {
	parsed, err := Normalize(raw)
	if err != nil {
		return Verdict{}, err
	}
	return Validate(parsed)
}

func composeOrDefault(ctx context.Context, rt *Runtime) Prompt {
	prompt, err := ComposePrompt(ctx, rt.Prompts, prompts.StageClassify)
	if err == nil {
		return prompt
	}

	rt.Logger.WarnContext(ctx, "prompt override unavailable, using default", "error", err)
	prompt, _ = DefaultPrompt(rt.Prompts.Locale(), prompts.StageClassify)
	return prompt
}

func invokeError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ai.ErrUnavailable):
		return fmt.Errorf("%w: %w", ErrCapabilityUnavailable, err)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	default:
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
}

func fail(rt *Runtime, logger *slog.Logger, attempt int, err error) error {
	var outcome string
	switch {
	case errors.Is(err, ErrCapabilityUnavailable):
		outcome = OutcomeUnavailable
	case errors.Is(err, ErrMalformedResponse):
		outcome = OutcomeMalformed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		outcome = OutcomeCancelled
	default:
		outcome = OutcomeTransport
	}

	rt.Metrics.outcome(outcome)
	logger.Warn("classification failed", "outcome", outcome, "attempt", attempt, "error", err)
	return err
}
