package server

import (
	"bufio"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorc/internal/directory"
	"gorc/internal/dispatcher"
	"gorc/internal/logger"
)

type harness struct {
	dir *directory.Directory
	srv *Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	lg := logger.New("test")
	dir := directory.New(lg)
	disp := dispatcher.New(dir, lg)
	return &harness{
		dir: dir,
		srv: New("", dir, disp, lg),
	}
}

// connect drives the wire handshake from the peer side of a pipe.
func (h *harness) connect(t *testing.T, name string) (net.Conn, *bufio.Reader) {
	t.Helper()
	local, remote := net.Pipe()
	go h.srv.handle(local)

	r := bufio.NewReader(remote)
	remote.SetReadDeadline(time.Now().Add(2 * time.Second))

	line, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "Connected to server\n", line)

	fmt.Fprintf(remote, "%s\n", name)
	return remote, r
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 10*time.Millisecond, msg)
}

func TestHandleRegistersAndBroadcasts(t *testing.T) {
	h := newHarness(t)

	aliceConn, aliceR := h.connect(t, "alice")
	defer aliceConn.Close()
	waitFor(t, func() bool {
		return len(h.dir.ListAllUsers()) == 1
	}, "alice should register")

	// alice hears her own lobby join notice.
	line, err := aliceR.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "alice joined #lobby!\n", line)

	fmt.Fprintf(aliceConn, "hello\n")
	line, err = aliceR.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "#lobby alice : hello\n", line)
}

func TestHandleRejectsTakenName(t *testing.T) {
	h := newHarness(t)

	aliceConn, _ := h.connect(t, "alice")
	defer aliceConn.Close()
	waitFor(t, func() bool {
		return len(h.dir.ListAllUsers()) == 1
	}, "alice should register")

	impostorConn, impostorR := h.connect(t, "alice")
	defer impostorConn.Close()

	line, err := impostorR.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "alice is already in this instance!\n", line)

	// Retrying with a fresh name on the same connection succeeds.
	fmt.Fprintf(impostorConn, "alice2\n")
	waitFor(t, func() bool {
		return len(h.dir.ListAllUsers()) == 2
	}, "alice2 should register after retry")
}

func TestHandleRejectsMalformedName(t *testing.T) {
	h := newHarness(t)

	conn, r := h.connect(t, "#rooms-are-not-names")
	defer conn.Close()

	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "Error: invalid name, try another\n", line)
	assert.Empty(t, h.dir.ListAllUsers())
}

func TestHandleCleansUpOnDisconnect(t *testing.T) {
	h := newHarness(t)

	aliceConn, _ := h.connect(t, "alice")
	waitFor(t, func() bool {
		return len(h.dir.ListAllUsers()) == 1
	}, "alice should register")

	fmt.Fprintf(aliceConn, "/join #dnd\n")
	waitFor(t, func() bool {
		users, err := h.dir.ListUsersIn("#dnd")
		return err == nil && len(users) == 1
	}, "alice should join #dnd")

	// Abrupt close: the worker must unregister and empty rooms must go.
	aliceConn.Close()
	waitFor(t, func() bool {
		return len(h.dir.ListAllUsers()) == 0
	}, "alice should unregister on disconnect")

	assert.NotContains(t, h.dir.ListRooms(), "#dnd")
	assert.Contains(t, h.dir.ListRooms(), directory.DefaultRoom)
}
