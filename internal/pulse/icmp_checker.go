package pulse

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// Compile-time interface guard.
var _ Checker = (*ICMPChecker)(nil)

var errNoReply = errors.New("no echo reply")

// ICMPChecker polls simple checks with ICMP echo. The value is the average
// round-trip time in milliseconds.
type ICMPChecker struct {
	count      int
	timeout    time.Duration
	privileged bool
}

// NewICMPChecker creates an ICMP checker sending count echoes per poll.
func NewICMPChecker(count int, timeout time.Duration) *ICMPChecker {
	if count <= 0 {
		count = 1
	}
	return &ICMPChecker{
		count:   count,
		timeout: timeout,
		// Unprivileged (UDP) ping is not supported on Windows.
		privileged: runtime.GOOS == "windows",
	}
}

func (c *ICMPChecker) Check(ctx context.Context, target string) (*Result, error) {
	pinger, err := probing.NewPinger(target)
	if err != nil {
		err = fmt.Errorf("resolve %q: %w", target, err)
		return failedResult(0, err), err
	}
	pinger.Count = c.count
	pinger.Timeout = c.timeout
	pinger.SetPrivileged(c.privileged)

	done := make(chan error, 1)
	go func() { done <- pinger.Run() }()

	select {
	case err = <-done:
	case <-ctx.Done():
		pinger.Stop()
		<-done
		return failedResult(0, ctx.Err()), ctx.Err()
	}
	if err != nil {
		return failedResult(0, err), fmt.Errorf("ping %s: %w", target, err)
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return failedResult(c.timeout, errNoReply), fmt.Errorf("ping %s: %w", target, errNoReply)
	}
	avg := millis(stats.AvgRtt)
	return &Result{
		Success:    true,
		Value:      fmt.Sprintf("%.3f", avg),
		LatencyMs:  avg,
		PacketLoss: stats.PacketLoss,
		CheckedAt:  time.Now().UTC(),
	}, nil
}
