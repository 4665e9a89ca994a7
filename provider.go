package chatstream

import "context"

// Provider is a strategy pattern interface for chat completion backends.
// Implementations force streaming on regardless of args.Stream.
type Provider interface {
	ChatStream(ctx context.Context, args ChatArguments) (Stream, error)
}
