package channel

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SimulatedSendDelay is the fixed artificial latency of simulated sends, so
// an unconfigured pipeline still exercises realistic timing.
const SimulatedSendDelay = 20 * time.Millisecond

// simulator stands in for a real transport when no credentials are
// configured. It deterministically succeeds after a fixed delay with a
// synthesized message id, which keeps the whole pipeline usable in
// development. This is first-class behavior, not a test stub.
type simulator struct {
	channel Channel
	delay   time.Duration
}

func newSimulator(ch Channel) simulator {
	return simulator{channel: ch, delay: SimulatedSendDelay}
}

// send simulates one provider call.
func (s simulator) send(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(s.delay):
	}
	return fmt.Sprintf("sim-%s-%s", s.channel, uuid.NewString()), nil
}
