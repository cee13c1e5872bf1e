package chat

import "context"

// System defines the chat assistant contract.
type System interface {
	Handler() *Handler

	Send(ctx context.Context, userID string, cmd SendCommand) (*Message, error)
	List(ctx context.Context, userID string) ([]Message, error)
	Clear(ctx context.Context, userID string) (int64, error)
	FAQs() []string
}
