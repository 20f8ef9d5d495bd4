package entity

// Status is the delivery state of an outbox event.
type Status string

const (
	Pending    Status = "pending"
	Processing Status = "processing"
	Processed  Status = "processed"
	Failed     Status = "failed"
)

// Terminal reports whether the relay is done with an event in this status.
// Only terminal events are eligible for cleanup.
func (s Status) Terminal() bool {
	return s == Processed || s == Failed
}

// TerminalStatuses lists every status for which Terminal is true.
func TerminalStatuses() []string {
	return []string{string(Processed), string(Failed)}
}
