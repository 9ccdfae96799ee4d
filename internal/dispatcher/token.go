package dispatcher

import (
	"strings"

	"gorc/pkg/chat"
)

// TokenKind classifies one whitespace-separated word of a command line.
type TokenKind int

const (
	// Text is any word that is not a command, room or user reference.
	Text TokenKind = iota
	// Command is a leading word starting with '/', kept verbatim.
	Command
	// RoomRef is a '#room' word; the value keeps its '#' prefix because
	// room names are keyed with it.
	RoomRef
	// UserRef is a '@user' word; the value has the '@' stripped.
	UserRef
)

type Token struct {
	Kind  TokenKind
	Value string
}

// Tokenize splits a command line on whitespace into typed tokens. Only the
// first word can be a Command.
func Tokenize(line string) []Token {
	words := strings.Fields(line)
	toks := make([]Token, 0, len(words))
	for i, w := range words {
		switch {
		case i == 0 && strings.HasPrefix(w, "/"):
			toks = append(toks, Token{Command, w})
		case chat.IsRoomName(w):
			toks = append(toks, Token{RoomRef, w})
		case chat.IsUserRef(w):
			toks = append(toks, Token{UserRef, w[1:]})
		default:
			toks = append(toks, Token{Text, w})
		}
	}
	return toks
}

// joinText reassembles the message body from the tokens after the
// argument list, restoring the stripped '@' on user references.
func joinText(toks []Token) string {
	words := make([]string, 0, len(toks))
	for _, t := range toks {
		if t.Kind == UserRef {
			words = append(words, "@"+t.Value)
			continue
		}
		words = append(words, t.Value)
	}
	return strings.Join(words, " ")
}

// countUserRefs returns how many '@user' tokens appear in toks.
func countUserRefs(toks []Token) int {
	n := 0
	for _, t := range toks {
		if t.Kind == UserRef {
			n++
		}
	}
	return n
}
