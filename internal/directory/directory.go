package directory

import (
	"sort"
	"sync"

	"gorc/internal/logger"
	"gorc/pkg/chat"
)

// DefaultRoom always exists and can never be left or deleted.
const DefaultRoom = "#lobby"

// fanout is a snapshot of one delivery taken under the mutex. The actual
// sends happen after the lock is released so a blocked peer cannot stall
// unrelated room operations.
type fanout struct {
	line string
	to   []*User
}

// Directory is the process-wide registry of users and rooms. All structural
// mutation (register, unregister, join, leave, room deletion on empty) runs
// under one coarse mutex; a room's member map and its members' room sets
// are only ever updated together, which keeps membership bidirectional.
type Directory struct {
	mu    sync.Mutex
	rooms map[string]*Room
	users map[string]*User
	log   *logger.Logger
}

// New creates a Directory seeded with the default room.
func New(log *logger.Logger) *Directory {
	d := &Directory{
		rooms: make(map[string]*Room),
		users: make(map[string]*User),
		log:   log,
	}
	d.rooms[DefaultRoom] = newRoom(DefaultRoom)
	return d
}

// Register creates a user, adds it to the default room and announces the
// join to that room. Registration is not an upsert: a taken id fails with
// ErrUserExists and the caller must retry with a different one.
func (d *Directory) Register(id string, conn chat.Connection) (*User, error) {
	d.mu.Lock()
	if _, ok := d.users[id]; ok {
		d.mu.Unlock()
		return nil, ErrUserExists
	}
	u := newUser(id, conn)
	d.users[id] = u
	lobby := d.rooms[DefaultRoom]
	lobby.add(u)
	u.rooms[DefaultRoom] = struct{}{}
	out := fanout{chat.FormatJoined(id, DefaultRoom), lobby.recipients(id)}
	d.mu.Unlock()

	d.deliver(out)
	return u, nil
}

// Unregister removes the user from every room it occupies, announcing the
// leave to each room that stays non-empty, and deletes the user record.
// Unknown ids are a no-op, so disconnect cleanup can run unconditionally.
func (d *Directory) Unregister(id string) {
	d.mu.Lock()
	u, ok := d.users[id]
	if !ok {
		d.mu.Unlock()
		return
	}
	var outs []fanout
	for name := range u.rooms {
		r := d.rooms[name]
		r.remove(id)
		if r.empty() {
			if name != DefaultRoom {
				delete(d.rooms, name)
			}
			continue
		}
		outs = append(outs, fanout{chat.FormatLeft(id, name), r.recipients(id)})
	}
	delete(d.users, id)
	d.mu.Unlock()

	for _, out := range outs {
		d.deliver(out)
	}
}

// Join adds the user to the named room, creating the room if needed, and
// announces the join. Joining is additive: the user stays in every other
// room it occupies.
func (d *Directory) Join(id, room string) error {
	d.mu.Lock()
	u, ok := d.users[id]
	if !ok {
		d.mu.Unlock()
		return ErrUnknownUser
	}
	r, exists := d.rooms[room]
	if exists && r.has(id) {
		d.mu.Unlock()
		return ErrAlreadyMember
	}
	if !exists {
		r = newRoom(room)
		d.rooms[room] = r
	}
	r.add(u)
	u.rooms[room] = struct{}{}
	out := fanout{chat.FormatJoined(id, room), r.recipients(id)}
	d.mu.Unlock()

	d.deliver(out)
	return nil
}

// Create makes a new room with the user as sole member. Unlike Join it
// refuses to touch a room that already exists.
func (d *Directory) Create(id, room string) error {
	d.mu.Lock()
	u, ok := d.users[id]
	if !ok {
		d.mu.Unlock()
		return ErrUnknownUser
	}
	if _, exists := d.rooms[room]; exists {
		d.mu.Unlock()
		return ErrRoomExists
	}
	r := newRoom(room)
	d.rooms[room] = r
	r.add(u)
	u.rooms[room] = struct{}{}
	out := fanout{chat.FormatJoined(id, room), r.recipients(id)}
	d.mu.Unlock()

	d.deliver(out)
	return nil
}

// Leave removes the user from exactly the named room; there is no
// automatic rejoin of any other room. The room is announced to if it stays
// non-empty and deleted if it empties (default room excepted).
func (d *Directory) Leave(id, room string) error {
	d.mu.Lock()
	u, ok := d.users[id]
	if !ok {
		d.mu.Unlock()
		return ErrUnknownUser
	}
	if room == DefaultRoom {
		d.mu.Unlock()
		return ErrCannotLeaveDefault
	}
	r, exists := d.rooms[room]
	if !exists {
		d.mu.Unlock()
		return ErrNoSuchRoom
	}
	if !r.has(id) {
		d.mu.Unlock()
		return ErrNotMember
	}
	r.remove(id)
	delete(u.rooms, room)
	var outs []fanout
	if r.empty() {
		delete(d.rooms, room)
	} else {
		outs = append(outs, fanout{chat.FormatLeft(id, room), r.recipients(id)})
	}
	d.mu.Unlock()

	for _, out := range outs {
		d.deliver(out)
	}
	return nil
}

// LeaveAll removes the user from every room except the default. Fails with
// ErrOnlyDefaultRoom when there is nothing to leave.
func (d *Directory) LeaveAll(id string) error {
	d.mu.Lock()
	u, ok := d.users[id]
	if !ok {
		d.mu.Unlock()
		return ErrUnknownUser
	}
	var outs []fanout
	left := 0
	for name := range u.rooms {
		if name == DefaultRoom {
			continue
		}
		left++
		r := d.rooms[name]
		r.remove(id)
		delete(u.rooms, name)
		if r.empty() {
			delete(d.rooms, name)
			continue
		}
		outs = append(outs, fanout{chat.FormatLeft(id, name), r.recipients(id)})
	}
	d.mu.Unlock()

	if left == 0 {
		return ErrOnlyDefaultRoom
	}
	for _, out := range outs {
		d.deliver(out)
	}
	return nil
}

// Broadcast delivers text to every member of the room except members who
// muted the room or blocked the sender. Delivery is best-effort: a failed
// send is logged and skipped without aborting the rest.
func (d *Directory) Broadcast(room, sender, text string) error {
	d.mu.Lock()
	r, ok := d.rooms[room]
	if !ok {
		d.mu.Unlock()
		return ErrNoSuchRoom
	}
	out := fanout{chat.FormatBroadcast(room, sender, text), r.recipients(sender)}
	d.mu.Unlock()

	d.deliver(out)
	return nil
}

// BroadcastAll sends text to every room the sender currently occupies.
func (d *Directory) BroadcastAll(sender, text string) error {
	d.mu.Lock()
	u, ok := d.users[sender]
	if !ok {
		d.mu.Unlock()
		return ErrUnknownUser
	}
	outs := make([]fanout, 0, len(u.rooms))
	for name := range u.rooms {
		r := d.rooms[name]
		outs = append(outs, fanout{chat.FormatBroadcast(name, sender, text), r.recipients(sender)})
	}
	d.mu.Unlock()

	for _, out := range outs {
		d.deliver(out)
	}
	return nil
}

func (d *Directory) deliver(out fanout) {
	for _, u := range out.to {
		if err := u.Send(out.line); err != nil {
			d.log.Printf("deliver to %s: %v", u.id, err)
		}
	}
}

// User looks up a registered user by id.
func (d *Directory) User(id string) (*User, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[id]
	return u, ok
}

// ShareRoom reports whether users a and b occupy at least one common room.
func (d *Directory) ShareRoom(a, b string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	ua, ok := d.users[a]
	if !ok {
		return false
	}
	for name := range ua.rooms {
		if d.rooms[name].has(b) {
			return true
		}
	}
	return false
}

// ListRooms returns the names of all active rooms, sorted.
func (d *Directory) ListRooms() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	names := make([]string, 0, len(d.rooms))
	for name := range d.rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListUsersIn returns the member ids of one room, sorted.
func (d *Directory) ListUsersIn(room string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.rooms[room]
	if !ok {
		return nil, ErrNoSuchRoom
	}
	return r.memberIDs(), nil
}

// ListAllUsers returns every registered user id, sorted.
func (d *Directory) ListAllUsers() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	ids := make([]string, 0, len(d.users))
	for id := range d.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RoomsOf returns the names of the rooms the user occupies, sorted.
func (d *Directory) RoomsOf(id string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[id]
	if !ok {
		return nil, ErrUnknownUser
	}
	names := make([]string, 0, len(u.rooms))
	for name := range u.rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Shutdown drops all state and closes every connection. The directory is
// reset to a fresh default room and stays usable.
func (d *Directory) Shutdown() {
	d.mu.Lock()
	users := make([]*User, 0, len(d.users))
	for _, u := range d.users {
		users = append(users, u)
	}
	d.users = make(map[string]*User)
	d.rooms = map[string]*Room{DefaultRoom: newRoom(DefaultRoom)}
	d.mu.Unlock()

	for _, u := range users {
		if err := u.conn.Close(); err != nil {
			d.log.Printf("close %s: %v", u.id, err)
		}
	}
}
