package directory

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"gorc/pkg/chat"
)

// User is one registered chat participant. The rooms set is guarded by the
// Directory mutex because it must stay in lockstep with each Room's member
// map. Preferences and the inbox are guarded by the user's own mutex: they
// are touched from other users' connection workers (DM delivery, broadcast
// filtering) and never reach back into the Directory.
type User struct {
	id   string
	conn chat.Connection

	rooms map[string]struct{}

	mu      sync.Mutex
	blocked map[string]struct{}
	muted   map[string]struct{}
	inbox   map[string]string // sender id -> latest unread message
}

func newUser(id string, conn chat.Connection) *User {
	return &User{
		id:      id,
		conn:    conn,
		rooms:   make(map[string]struct{}),
		blocked: make(map[string]struct{}),
		muted:   make(map[string]struct{}),
		inbox:   make(map[string]string),
	}
}

func (u *User) ID() string { return u.id }

// Send writes one line of text to the user's connection.
func (u *User) Send(text string) error {
	return u.conn.Send([]byte(text))
}

// DeliverDM stores text as the latest unread message from sender and
// notifies the recipient. A new message from the same sender overwrites the
// unread one. If the recipient has blocked the sender the message is
// dropped silently: the sender is deliberately not told.
func (u *User) DeliverDM(sender, text string) bool {
	u.mu.Lock()
	if _, blocked := u.blocked[sender]; blocked {
		u.mu.Unlock()
		return false
	}
	u.inbox[sender] = text
	u.mu.Unlock()

	// Notification is best-effort; the message stays readable either way.
	_ = u.Send(chat.FormatDMNotice(sender))
	return true
}

// ReadAllDMs renders every pending message, one line per sender. Reading
// does not clear the inbox; messages stay until overwritten.
func (u *User) ReadAllDMs() string {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.inbox) == 0 {
		return "No direct messages"
	}
	senders := make([]string, 0, len(u.inbox))
	for sender := range u.inbox {
		senders = append(senders, sender)
	}
	sort.Strings(senders)

	lines := make([]string, 0, len(senders))
	for _, sender := range senders {
		lines = append(lines, fmt.Sprintf("From @%s: %s", sender, u.inbox[sender]))
	}
	return strings.Join(lines, "\n")
}

// ReadDM returns the latest message from one sender.
func (u *User) ReadDM(sender string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	text, ok := u.inbox[sender]
	if !ok {
		return "", ErrNoMessages
	}
	return text, nil
}

// Block adds other to the block set. Returns false if already blocked.
func (u *User) Block(other string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.blocked[other]; ok {
		return false
	}
	u.blocked[other] = struct{}{}
	return true
}

// Unblock removes other from the block set. Returns false if not blocked.
func (u *User) Unblock(other string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.blocked[other]; !ok {
		return false
	}
	delete(u.blocked, other)
	return true
}

func (u *User) HasBlocked(other string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	_, ok := u.blocked[other]
	return ok
}

// Mute suppresses broadcast delivery from room without leaving it.
// Returns false if already muted.
func (u *User) Mute(room string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.muted[room]; ok {
		return false
	}
	u.muted[room] = struct{}{}
	return true
}

// Unmute re-enables broadcast delivery from room. Returns false if the room
// was not muted.
func (u *User) Unmute(room string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.muted[room]; !ok {
		return false
	}
	delete(u.muted, room)
	return true
}

// UnmuteAll clears the mute set and returns how many rooms were unmuted.
func (u *User) UnmuteAll() int {
	u.mu.Lock()
	defer u.mu.Unlock()

	n := len(u.muted)
	u.muted = make(map[string]struct{})
	return n
}

func (u *User) HasMuted(room string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	_, ok := u.muted[room]
	return ok
}
