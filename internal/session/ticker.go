package session

import "time"

// TickKind identifies one of the recurring tasks of a running session.
type TickKind int

// Tick kinds.
const (
	// LiveTick refreshes live stats and applies tick XP.
	LiveTick TickKind = iota
	// CountdownTick advances the countdown by one second.
	CountdownTick
)

func (k TickKind) String() string {
	switch k {
	case LiveTick:
		return "live"
	case CountdownTick:
		return "countdown"
	default:
		return "unknown"
	}
}

// TickRequest asks the caller to deliver a tick after Interval.
// The Tag must be handed back to Session.HandleTick unchanged.
type TickRequest struct {
	Kind     TickKind
	Tag      uint64
	Interval time.Duration
}

// Ticker is a recurring task that is live only while armed. Each arming
// and each cancellation bumps the tag, so ticks scheduled under an older
// tag are dropped when they arrive.
type Ticker struct {
	kind     TickKind
	interval time.Duration
	tag      uint64
	armed    bool
}

// NewTicker returns a disarmed Ticker.
func NewTicker(kind TickKind, interval time.Duration) *Ticker {
	return &Ticker{kind: kind, interval: interval}
}

// Arm starts a new generation and returns the first request for it.
func (t *Ticker) Arm() TickRequest {
	t.tag++
	t.armed = true
	return t.request()
}

// Cancel disarms the ticker. Outstanding ticks become stale.
func (t *Ticker) Cancel() {
	if !t.armed {
		return
	}
	t.armed = false
	t.tag++
}

// Live reports whether a tick carrying tag belongs to the armed generation.
func (t *Ticker) Live(tag uint64) bool {
	return t.armed && t.tag == tag
}

// Armed reports whether the ticker is armed.
func (t *Ticker) Armed() bool {
	return t.armed
}

func (t *Ticker) request() TickRequest {
	return TickRequest{Kind: t.kind, Tag: t.tag, Interval: t.interval}
}
