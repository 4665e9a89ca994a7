// Package mock provides test doubles for chatstream interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/chatstream"
)

// Interface compliance check.
var _ chatstream.Provider = (*Provider)(nil)

// Provider is a test double for chatstream.Provider.
// Set ChatStreamFn before calling ChatStream.
type Provider struct {
	ChatStreamFn func(ctx context.Context, args chatstream.ChatArguments) (chatstream.Stream, error)
}

// ChatStream delegates to ChatStreamFn.
func (p *Provider) ChatStream(ctx context.Context, args chatstream.ChatArguments) (chatstream.Stream, error) {
	return p.ChatStreamFn(ctx, args)
}
