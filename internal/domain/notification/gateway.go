package notification

import "context"

// Gateway sends one message to one recipient. Implementations are
// best-effort: no retry or delivery guarantee is assumed by callers.
type Gateway interface {
	Send(ctx context.Context, to, message string) error
}
