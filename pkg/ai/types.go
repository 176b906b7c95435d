package ai

import "context"

// Summarizer turns a set of raw findings into a short human-readable summary.
type Summarizer interface {
	Summarize(ctx context.Context, findings string) (string, error)
}
