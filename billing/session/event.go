package session

// Kind classifies session events.
type Kind string

const (
	// KindRecalculated signals that totals, offers, or the item list were
	// refreshed (locally or from a calculator response).
	KindRecalculated Kind = "recalculated"
	// KindNotice is a user-facing notice for the host shell to render.
	KindNotice Kind = "notice"
)

// Severity grades a notice.
type Severity string

const (
	// SeverityInfo is an informational notice.
	SeverityInfo Severity = "info"
	// SeverityError is an error notice.
	SeverityError Severity = "error"
)

// Event is emitted by the session and consumed by whatever host shell
// renders it. The channel is buffered; events are dropped rather than
// blocking the engine when the consumer falls behind.
type Event struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity,omitempty"`
	Message  string   `json:"message,omitempty"`
}

func (s *Session) emit(event Event) {
	select {
	case s.events <- event:
	default:
	}
}

// Events returns the session event stream. The channel is never closed;
// consumers stop reading when the session is done.
func (s *Session) Events() <-chan Event {
	return s.events
}
