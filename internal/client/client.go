package client

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
)

const helpText = `Commands:
  <text>                        broadcast to every room you are in
  /join #room [#room2 ...]      join (or create) rooms
  /create #room                 create a room
  /leave #room | all            leave a room, or all non-lobby rooms
  /rooms                        list active rooms
  /users #room                  list members of a room
  /message @user <text>         send a direct message
  /dms [@user]                  read direct messages
  /whisper @user <text>         message a user in a shared room
  /block @user | /unblock @user
  /mute #room | /unmute #room | /unmute all
  /help                         show this text
  /quit                         disconnect`

// Run connects to a chat server, presents name, and shuttles lines between
// stdin and the socket until either side closes. /quit and /help are
// handled locally; everything else goes to the server verbatim.
func Run(addr, name string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	if _, err := fmt.Fprintf(conn, "%s\n", name); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			fmt.Println(scanner.Text())
		}
	}()

	stdin := bufio.NewScanner(os.Stdin)
	for stdin.Scan() {
		select {
		case <-done:
			return io.EOF
		default:
		}
		line := strings.TrimSpace(stdin.Text())
		switch line {
		case "":
		case "/quit":
			return nil
		case "/help":
			fmt.Println(helpText)
		default:
			if _, err := fmt.Fprintf(conn, "%s\n", line); err != nil {
				return err
			}
		}
	}
	return stdin.Err()
}
