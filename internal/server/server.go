package server

import (
	"bufio"
	"fmt"
	"net"
	"strings"

	"gorc/internal/directory"
	"gorc/internal/dispatcher"
	"gorc/internal/logger"
	"gorc/pkg/chat"
)

// Server accepts TCP connections and runs one worker goroutine per client.
// The transport owns line framing and the handshake; everything after that
// is a straight feed of decoded lines into the dispatcher.
type Server struct {
	addr string
	dir  *directory.Directory
	disp *dispatcher.Dispatcher
	log  *logger.Logger
}

func New(addr string, dir *directory.Directory, disp *dispatcher.Dispatcher, log *logger.Logger) *Server {
	return &Server{addr: addr, dir: dir, disp: disp, log: log}
}

func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	defer ln.Close()
	s.log.Printf("chat server listening on %s", s.addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
		go s.handle(conn)
	}
}

// handle runs the lifetime of one connection: handshake, read loop, and
// the cleanup contract. Unregister runs exactly once on every exit path,
// including abnormal I/O termination, so no stale user can linger in any
// room's member set.
func (s *Server) handle(conn net.Conn) {
	client, err := NewClient(conn)
	if err != nil {
		s.log.Printf("client setup: %v", err)
		conn.Close()
		return
	}
	go client.WritePump()

	_ = client.Send([]byte("Connected to server"))

	scanner := bufio.NewScanner(conn)

	id, ok := s.handshake(client, scanner)
	if !ok {
		client.Close()
		return
	}
	s.log.Printf("%s connected (conn %s)", id, client.ID())

	defer func() {
		s.dir.Unregister(id)
		client.Close()
		s.log.Printf("%s disconnected", id)
	}()

	for scanner.Scan() {
		s.disp.Dispatch(id, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		s.log.Printf("read from %s: %v", id, err)
	}
}

// handshake reads name lines until one registers. A taken or malformed
// name is reported on the same connection and the client may try again.
func (s *Server) handshake(client *Client, scanner *bufio.Scanner) (string, bool) {
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" || strings.ContainsAny(name[:1], "/#@") {
			_ = client.Send([]byte(chat.FormatError("invalid name, try another")))
			continue
		}
		if _, err := s.dir.Register(name, client); err != nil {
			_ = client.Send([]byte(fmt.Sprintf("%s is already in this instance!", name)))
			continue
		}
		return name, true
	}
	return "", false
}
