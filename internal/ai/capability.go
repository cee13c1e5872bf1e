// Package ai invokes external generative models. Providers return raw,
// untyped response envelopes; interpreting them is the caller's job.
package ai

import (
	"context"

	"github.com/sapulidi/sapulidi/pkg/lifecycle"
)

// Options shape a single model call.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int32
}

// Capability sends a prompt and an optional data URI image to a model.
// image is empty for text-only calls.
type Capability interface {
	Invoke(ctx context.Context, prompt, image string, opts Options) (any, error)
}

// CapabilityFunc adapts a function to Capability.
type CapabilityFunc func(ctx context.Context, prompt, image string, opts Options) (any, error)

func (f CapabilityFunc) Invoke(ctx context.Context, prompt, image string, opts Options) (any, error) {
	return f(ctx, prompt, image, opts)
}

// System is a Capability bound to the application lifecycle.
type System interface {
	Capability
	// Start registers the hook that creates the provider client.
	Start(lc *lifecycle.Coordinator) error
	// Ready reports whether the provider client exists.
	Ready() bool
	// Provider names the configured provider.
	Provider() string
}
