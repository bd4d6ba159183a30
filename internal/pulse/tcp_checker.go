package pulse

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Compile-time interface guard.
var _ Checker = (*TCPChecker)(nil)

// TCPChecker polls TCP-based types (agent, ssh, telnet, ...) by dialing
// host:port. A successful dial yields the value "1".
type TCPChecker struct {
	dialer net.Dialer
}

// NewTCPChecker creates a TCP checker with the given dial timeout.
func NewTCPChecker(timeout time.Duration) *TCPChecker {
	return &TCPChecker{dialer: net.Dialer{Timeout: timeout}}
}

func (c *TCPChecker) Check(ctx context.Context, target string) (*Result, error) {
	if _, _, err := net.SplitHostPort(target); err != nil {
		err = fmt.Errorf("invalid target %q: %w", target, err)
		return failedResult(0, err), err
	}

	start := time.Now()
	conn, err := c.dialer.DialContext(ctx, "tcp", target)
	elapsed := time.Since(start)
	if err != nil {
		return failedResult(elapsed, err), fmt.Errorf("tcp connect %s: %w", target, err)
	}
	_ = conn.Close()

	return &Result{
		Success:   true,
		Value:     "1",
		LatencyMs: millis(elapsed),
		CheckedAt: time.Now().UTC(),
	}, nil
}

func failedResult(elapsed time.Duration, err error) *Result {
	return &Result{
		LatencyMs:    millis(elapsed),
		PacketLoss:   100,
		ErrorMessage: err.Error(),
		CheckedAt:    time.Now().UTC(),
	}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
