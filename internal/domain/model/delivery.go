package model

import "fmt"

// DeliveryResult aggregates one delivery invocation: per-recipient counts and
// the human-readable line log used for the on-demand progress stream and the
// scheduled-run digest. It lives only for the invocation.
type DeliveryResult struct {
	RunID     string
	MessageID string
	Sent      int
	Failed    int
	Lines     []string
}

func (r *DeliveryResult) Logf(format string, args ...any) {
	r.Lines = append(r.Lines, fmt.Sprintf(format, args...))
}

// Tail returns the last n log lines (all of them when n exceeds the log).
func (r *DeliveryResult) Tail(n int) []string {
	if n <= 0 || len(r.Lines) <= n {
		return r.Lines
	}
	return r.Lines[len(r.Lines)-n:]
}

// Merge folds another result into this one, keeping line order.
func (r *DeliveryResult) Merge(other *DeliveryResult) {
	if other == nil {
		return
	}
	r.Sent += other.Sent
	r.Failed += other.Failed
	r.Lines = append(r.Lines, other.Lines...)
}

func (r *DeliveryResult) Summary() string {
	return fmt.Sprintf("%d sent, %d failed", r.Sent, r.Failed)
}
