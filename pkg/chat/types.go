package chat

// Connection is the outbound capability of one attached client. The
// transport owns the read side of the stream; the core only ever writes.
type Connection interface {
	// ID uniquely identifies the underlying connection for its lifetime.
	ID() string

	// Send queues one line of text for delivery. Implementations must not
	// block on a slow peer; backpressure is reported as an error.
	Send(p []byte) error

	// Close releases the connection. Safe to call more than once.
	Close() error
}

// IsRoomName reports whether s is a well-formed room name: a '#' prefix
// followed by at least one character.
func IsRoomName(s string) bool {
	return len(s) > 1 && s[0] == '#'
}

// IsUserRef reports whether s is a '@user' reference token.
func IsUserRef(s string) bool {
	return len(s) > 1 && s[0] == '@'
}
