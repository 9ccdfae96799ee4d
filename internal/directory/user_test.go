package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliverDMStoresAndNotifies(t *testing.T) {
	d := newTestDirectory(t)
	bob, bobConn := register(t, d, "bob")

	assert.True(t, bob.DeliverDM("alice", "hi bob"))

	text, err := bob.ReadDM("alice")
	require.NoError(t, err)
	assert.Equal(t, "hi bob", text)
	assert.Contains(t, bobConn.Lines(), "New message from alice! Use /dms @alice to read")
}

func TestDeliverDMLatestPerSender(t *testing.T) {
	d := newTestDirectory(t)
	bob, _ := register(t, d, "bob")

	bob.DeliverDM("alice", "first")
	bob.DeliverDM("alice", "second")
	bob.DeliverDM("carol", "hello")

	// Same-sender messages overwrite; distinct senders coexist.
	text, err := bob.ReadDM("alice")
	require.NoError(t, err)
	assert.Equal(t, "second", text)
	assert.Equal(t, "From @alice: second\nFrom @carol: hello", bob.ReadAllDMs())
}

func TestDeliverDMBlockedIsSilent(t *testing.T) {
	d := newTestDirectory(t)
	bob, bobConn := register(t, d, "bob")
	bob.Block("alice")
	before := len(bobConn.Lines())

	assert.False(t, bob.DeliverDM("alice", "hi"))

	_, err := bob.ReadDM("alice")
	assert.ErrorIs(t, err, ErrNoMessages)
	assert.Len(t, bobConn.Lines(), before, "no notification for a blocked sender")
}

func TestReadDoesNotClearInbox(t *testing.T) {
	d := newTestDirectory(t)
	bob, _ := register(t, d, "bob")
	bob.DeliverDM("alice", "sticky")

	assert.Equal(t, "From @alice: sticky", bob.ReadAllDMs())
	assert.Equal(t, "From @alice: sticky", bob.ReadAllDMs())

	text, err := bob.ReadDM("alice")
	require.NoError(t, err)
	assert.Equal(t, "sticky", text)
	text, err = bob.ReadDM("alice")
	require.NoError(t, err)
	assert.Equal(t, "sticky", text)
}

func TestReadAllDMsEmpty(t *testing.T) {
	d := newTestDirectory(t)
	bob, _ := register(t, d, "bob")

	assert.Equal(t, "No direct messages", bob.ReadAllDMs())
}

func TestBlockIdempotence(t *testing.T) {
	d := newTestDirectory(t)
	bob, _ := register(t, d, "bob")

	assert.True(t, bob.Block("alice"))
	assert.False(t, bob.Block("alice"), "second block reports prior state")
	assert.True(t, bob.HasBlocked("alice"))

	assert.True(t, bob.Unblock("alice"))
	assert.False(t, bob.Unblock("alice"), "unblock of non-blocked is a reported no-op")
	assert.False(t, bob.HasBlocked("alice"))
}

func TestMuteIdempotence(t *testing.T) {
	d := newTestDirectory(t)
	bob, _ := register(t, d, "bob")

	assert.True(t, bob.Mute("#dnd"))
	assert.False(t, bob.Mute("#dnd"))
	assert.True(t, bob.HasMuted("#dnd"))

	assert.True(t, bob.Unmute("#dnd"))
	assert.False(t, bob.Unmute("#dnd"))
}

func TestUnmuteAll(t *testing.T) {
	d := newTestDirectory(t)
	bob, _ := register(t, d, "bob")

	assert.Equal(t, 0, bob.UnmuteAll())

	bob.Mute("#dnd")
	bob.Mute("#chess")
	assert.Equal(t, 2, bob.UnmuteAll())
	assert.False(t, bob.HasMuted("#dnd"))
	assert.False(t, bob.HasMuted("#chess"))
}
