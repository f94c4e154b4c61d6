package capability

import "context"

// Watch sends nothing.  It keeps the link open so telemetry and the
// keep-alive flow until the link drops or ctx is cancelled.
type Watch struct{}

// Handle waits.
func (Watch) Handle(ctx context.Context, pad Pad, _ IO) error {
	select {
	case <-ctx.Done():
	case <-pad.Done():
	}
	return nil
}
