package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sapulidi/sapulidi/internal/ai"
	"github.com/sapulidi/sapulidi/internal/prompts"
	"github.com/sapulidi/sapulidi/internal/workflow"
	"github.com/sapulidi/sapulidi/pkg/formatting"
)

type repo struct {
	store   Store
	ai      ai.Capability
	prompts prompts.System
	opts    ai.Options
	logger  *slog.Logger
}

// New creates the chat system. capability should already carry the retry
// policy; opts selects the chat model and sampling settings.
func New(store Store, capability ai.Capability, ps prompts.System, opts ai.Options, logger *slog.Logger) System {
	return &repo{
		store:   store,
		ai:      capability,
		prompts: ps,
		opts:    opts,
		logger:  logger.With("system", "chat"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) FAQs() []string {
	return FAQs()
}

func (r *repo) Send(ctx context.Context, userID string, cmd SendCommand) (*Message, error) {
	message := strings.TrimSpace(cmd.Message)
	if message == "" || utf8.RuneCountInString(message) > MaxMessageLength {
		return nil, ErrInvalidMessage
	}

	prompt, err := workflow.ComposePrompt(ctx, r.prompts, prompts.StageChat)
	if err != nil {
		r.logger.WarnContext(ctx, "prompt store unavailable, using default", "error", err)
		if prompt, err = workflow.DefaultPrompt(r.prompts.Locale(), prompts.StageChat); err != nil {
			return nil, fmt.Errorf("compose chat prompt: %w", err)
		}
	}

	raw, err := r.ai.Invoke(ctx, prompt.Text+questionPrefix+message, "", r.opts)
	if err != nil {
		return nil, r.invokeError(ctx, err)
	}

	response := responseText(raw)
	if response == "" {
		r.logger.WarnContext(ctx, "empty chat response", "user_id", userID)
		response = fallbackResponse
	}

	m, err := r.store.Insert(ctx, userID, message, response)
	if err != nil {
		return nil, err
	}

	r.logger.Info("chat answered", "id", m.ID, "user_id", userID, "prompt_version", prompt.Version)
	return &m, nil
}

func (r *repo) List(ctx context.Context, userID string) ([]Message, error) {
	return r.store.ListByUser(ctx, userID)
}

func (r *repo) Clear(ctx context.Context, userID string) (int64, error) {
	n, err := r.store.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	r.logger.Info("chat history cleared", "user_id", userID, "deleted", n)
	return n, nil
}

func (r *repo) invokeError(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, ai.ErrUnavailable):
		return ErrUnavailable
	default:
		r.logger.ErrorContext(ctx, "chat invocation failed", "error", err)
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
}

func responseText(raw any) string {
	switch v := formatting.Unwrap(raw).(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return ""
	}
}
