package entities

import "time"

// Timestamp is a write-side instant. It either carries a concrete time or
// asks storage to stamp the row with its own clock.
type Timestamp struct {
	at     time.Time
	server bool
}

// ServerTimestamp returns the sentinel resolved by storage at write time
func ServerTimestamp() Timestamp {
	return Timestamp{server: true}
}

// At returns a concrete timestamp
func At(t time.Time) Timestamp {
	return Timestamp{at: t.UTC()}
}

// IsServer reports whether the value is the server-clock sentinel
func (t Timestamp) IsServer() bool {
	return t.server
}

// Time returns the concrete instant, zero for the sentinel
func (t Timestamp) Time() time.Time {
	return t.at
}
