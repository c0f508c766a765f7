package sink

import (
	"context"

	"dadosabertos/relatorio/internal/core/report"
)

// Discard drops every artifact. It backs workflows that only build direct links.
type Discard struct{}

func (Discard) Deliver(context.Context, *report.Artifact) error { return nil }
