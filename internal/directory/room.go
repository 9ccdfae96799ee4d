package directory

import "sort"

// Room is a named set of member users. Rooms hold non-owning references:
// the Directory's user table owns the User records, and every access to the
// member map happens under the Directory mutex.
type Room struct {
	name    string
	members map[string]*User
}

func newRoom(name string) *Room {
	return &Room{
		name:    name,
		members: make(map[string]*User),
	}
}

func (r *Room) Name() string { return r.name }

func (r *Room) has(id string) bool {
	_, ok := r.members[id]
	return ok
}

func (r *Room) add(u *User) {
	r.members[u.id] = u
}

func (r *Room) remove(id string) {
	delete(r.members, id)
}

func (r *Room) empty() bool {
	return len(r.members) == 0
}

func (r *Room) memberIDs() []string {
	ids := make([]string, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// recipients snapshots the members that should receive a broadcast from
// sender: everyone except members who muted this room or blocked the
// sender. The sender, if a member, is included.
func (r *Room) recipients(sender string) []*User {
	out := make([]*User, 0, len(r.members))
	for _, u := range r.members {
		if u.HasMuted(r.name) || u.HasBlocked(sender) {
			continue
		}
		out = append(out, u)
	}
	return out
}
