// Package mock provides test doubles for mdstream interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/mdstream"
)

// Interface compliance check.
var _ mdstream.Provider = (*Provider)(nil)

// Provider is a test double for mdstream.Provider.
// Set StreamFn before calling Stream.
type Provider struct {
	StreamFn func(ctx context.Context, req mdstream.Request) (mdstream.Source, error)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req mdstream.Request) (mdstream.Source, error) {
	return p.StreamFn(ctx, req)
}
