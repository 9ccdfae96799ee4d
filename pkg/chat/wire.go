package chat

import "fmt"

// Server-to-client line formats. Clients and the compatibility test suite
// match on these exact strings, so changes here are protocol changes.

func FormatBroadcast(room, sender, text string) string {
	return fmt.Sprintf("%s %s : %s", room, sender, text)
}

func FormatJoined(user, room string) string {
	return fmt.Sprintf("%s joined %s!", user, room)
}

func FormatLeft(user, room string) string {
	return fmt.Sprintf("%s left %s!", user, room)
}

func FormatDMNotice(sender string) string {
	return fmt.Sprintf("New message from %s! Use /dms @%s to read", sender, sender)
}

func FormatWhisper(sender, text string) string {
	return fmt.Sprintf("/whisper @%s: %s", sender, text)
}

func FormatError(text string) string {
	return "Error: " + text
}
