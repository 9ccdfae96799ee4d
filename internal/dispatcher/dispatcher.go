package dispatcher

import (
	"fmt"
	"strings"

	"gorc/internal/directory"
	"gorc/internal/logger"
	"gorc/pkg/chat"
)

// Dispatcher routes one decoded command line into Directory and User
// operations. It keeps no state of its own, so a single instance serves
// every connection worker concurrently. Replies, including every error,
// go only to the issuing user's connection.
type Dispatcher struct {
	dir *directory.Directory
	log *logger.Logger
}

func New(dir *directory.Directory, log *logger.Logger) *Dispatcher {
	return &Dispatcher{dir: dir, log: log}
}

// Dispatch handles one line from sender. A line whose first word does not
// start with '/' is broadcast to every room the sender occupies; anything
// else is parsed as a command. Argument validation always precedes state
// mutation, so a rejected command has no partial effect.
func (dp *Dispatcher) Dispatch(sender, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	user, ok := dp.dir.User(sender)
	if !ok {
		dp.log.Printf("line from unregistered sender %q dropped", sender)
		return
	}

	if !strings.HasPrefix(line, "/") {
		if err := dp.dir.BroadcastAll(sender, line); err != nil {
			dp.log.Printf("broadcast from %s: %v", sender, err)
		}
		return
	}

	toks := Tokenize(line)
	cmd, args := toks[0], toks[1:]

	var reply string
	switch cmd.Value {
	case "/join":
		reply = dp.join(sender, args)
	case "/create":
		reply = dp.create(sender, args)
	case "/leave":
		reply = dp.leave(sender, args)
	case "/rooms":
		reply = dp.rooms()
	case "/users":
		reply = dp.users(args)
	case "/message":
		reply = dp.message(sender, args)
	case "/dms":
		reply = dp.dms(user, args)
	case "/whisper":
		reply = dp.whisper(sender, args)
	case "/block":
		reply = dp.block(user, args)
	case "/unblock":
		reply = dp.unblock(user, args)
	case "/mute":
		reply = dp.mute(user, args)
	case "/unmute":
		reply = dp.unmute(user, args)
	default:
		reply = fmt.Sprintf("%s is not a valid command!", cmd.Value)
	}

	if reply == "" {
		return
	}
	if err := user.Send(reply); err != nil {
		dp.log.Printf("reply to %s: %v", sender, err)
	}
}

func (dp *Dispatcher) join(sender string, args []Token) string {
	if len(args) == 0 {
		return "/join requires a #room_name argument.\nPlease enter: /join #roomname\n"
	}
	for _, a := range args {
		if a.Kind != RoomRef {
			return "/join requires a #room_name argument with '#' in front.\nPlease enter: /join #roomname\n"
		}
	}
	var replies []string
	for _, a := range args {
		switch err := dp.dir.Join(sender, a.Value); err {
		case nil:
			replies = append(replies, fmt.Sprintf("Joined %s!", a.Value))
		case directory.ErrAlreadyMember:
			replies = append(replies, chat.FormatError(fmt.Sprintf("you are already in %s!", a.Value)))
		default:
			replies = append(replies, chat.FormatError(err.Error()))
		}
	}
	return strings.Join(replies, "\n")
}

func (dp *Dispatcher) create(sender string, args []Token) string {
	if len(args) == 0 {
		return chat.FormatError("must include a room name argument separated with a space\nex: /create #room_name")
	}
	if args[0].Kind != RoomRef {
		return chat.FormatError("must include a \"#\" when denoting a room name!\nex: /create #room_name")
	}
	switch err := dp.dir.Create(sender, args[0].Value); err {
	case nil:
		return ""
	case directory.ErrRoomExists:
		return chat.FormatError(fmt.Sprintf("%s already exists!", args[0].Value))
	default:
		return chat.FormatError(err.Error())
	}
}

func (dp *Dispatcher) leave(sender string, args []Token) string {
	if len(args) == 0 {
		return "/leave requires a #room_name argument.\nPlease enter: /leave #roomname\n"
	}
	if args[0].Kind == Text && args[0].Value == "all" {
		if err := dp.dir.LeaveAll(sender); err != nil {
			return chat.FormatError(fmt.Sprintf("you are only in %s!\nUse /quit to exit", directory.DefaultRoom))
		}
		return ""
	}
	if args[0].Kind != RoomRef {
		return "/leave requires a #roomname argument to begin with '#'.\n"
	}
	room := args[0].Value
	switch err := dp.dir.Leave(sender, room); err {
	case nil:
		return fmt.Sprintf("Leaving %s...", room)
	case directory.ErrNoSuchRoom:
		return chat.FormatError(fmt.Sprintf("%s does not exist", room))
	case directory.ErrNotMember:
		return chat.FormatError(fmt.Sprintf("You are not in %s", room))
	case directory.ErrCannotLeaveDefault:
		return chat.FormatError(fmt.Sprintf("cannot leave %s!", directory.DefaultRoom))
	default:
		return chat.FormatError(err.Error())
	}
}

func (dp *Dispatcher) rooms() string {
	return "Active rooms: \n" + strings.Join(dp.dir.ListRooms(), " ")
}

func (dp *Dispatcher) users(args []Token) string {
	if len(args) == 0 {
		return chat.FormatError("/users requires a #room_name argument.\nex: /users #room_name")
	}
	if args[0].Kind != RoomRef {
		return chat.FormatError("must include a \"#\" when denoting a room name!\nex: /users #room_name")
	}
	room := args[0].Value
	ids, err := dp.dir.ListUsersIn(room)
	if err != nil {
		return chat.FormatError(fmt.Sprintf("%s does not exist!", room))
	}
	return fmt.Sprintf("%s users: \n%s", room, strings.Join(ids, " "))
}

func (dp *Dispatcher) message(sender string, args []Token) string {
	if len(args) == 0 {
		return chat.FormatError("/message requires a username argument.\nex: /message @<user_name> <message>")
	}
	if countUserRefs(args) > 1 {
		return chat.FormatError("/message only takes one username argument.\nex: /message @<user_name> <message>")
	}
	if args[0].Kind != UserRef {
		return chat.FormatError("/message requires a username argument.\nex: /message @<user_name> <message>")
	}
	receiver := args[0].Value
	target, ok := dp.dir.User(receiver)
	if !ok {
		return chat.FormatError(fmt.Sprintf("%s not in app instance!", receiver))
	}
	// A blocked sender gets no reply either way; silence is the point.
	target.DeliverDM(sender, joinText(args[1:]))
	return ""
}

func (dp *Dispatcher) dms(user *directory.User, args []Token) string {
	if len(args) == 0 {
		return user.ReadAllDMs()
	}
	if args[0].Kind != UserRef {
		return chat.FormatError("/dms requires a \"@\" character to denote a user, ie @user_name")
	}
	from := args[0].Value
	text, err := user.ReadDM(from)
	if err != nil {
		return fmt.Sprintf("No messages from %s!", from)
	}
	return fmt.Sprintf("From @%s: %s", from, text)
}

func (dp *Dispatcher) whisper(sender string, args []Token) string {
	if len(args) == 0 {
		return chat.FormatError("No username argument found!\nuse syntax /whisper @<user_name> <message>")
	}
	if countUserRefs(args) > 1 {
		return chat.FormatError("too many username arguments found!\nuse syntax /whisper @<user_name> <message>")
	}
	if args[0].Kind != UserRef {
		return chat.FormatError("No username argument found!\nuse syntax /whisper @<user_name> <message>")
	}
	receiver := args[0].Value
	target, ok := dp.dir.User(receiver)
	if !ok {
		return chat.FormatError(fmt.Sprintf("%s not in application instance!", receiver))
	}
	if !dp.dir.ShareRoom(sender, receiver) {
		return chat.FormatError(fmt.Sprintf("you are not in a room with %s!", receiver))
	}
	if target.HasBlocked(sender) {
		return chat.FormatError(fmt.Sprintf("you were blocked by %s!", receiver))
	}
	if err := target.Send(chat.FormatWhisper(sender, joinText(args[1:]))); err != nil {
		dp.log.Printf("whisper to %s: %v", receiver, err)
	}
	return ""
}

func (dp *Dispatcher) block(user *directory.User, args []Token) string {
	if len(args) == 0 {
		return chat.FormatError("/block requires at least one user_name argument!")
	}
	var replies []string
	for _, a := range args {
		if a.Kind != UserRef {
			continue
		}
		if user.Block(a.Value) {
			replies = append(replies, fmt.Sprintf("%s has been blocked.", a.Value))
		} else {
			replies = append(replies, fmt.Sprintf("%s is already blocked.", a.Value))
		}
	}
	return strings.Join(replies, "\n")
}

func (dp *Dispatcher) unblock(user *directory.User, args []Token) string {
	if len(args) == 0 {
		return chat.FormatError("/unblock requires at least one user_name argument!")
	}
	var replies []string
	for _, a := range args {
		if a.Kind != UserRef {
			continue
		}
		if user.Unblock(a.Value) {
			replies = append(replies, fmt.Sprintf("%s has been unblocked!", a.Value))
		} else {
			replies = append(replies, fmt.Sprintf("%s was not blocked!", a.Value))
		}
	}
	return strings.Join(replies, "\n")
}

func (dp *Dispatcher) mute(user *directory.User, args []Token) string {
	if len(args) == 0 {
		return chat.FormatError("/mute requires at least one #room_name argument!")
	}
	for _, a := range args {
		if a.Kind != RoomRef {
			return chat.FormatError("room names must begin with '#'!\nex: /mute #room_name")
		}
	}
	var replies []string
	for _, a := range args {
		if user.Mute(a.Value) {
			replies = append(replies, fmt.Sprintf("%s has been muted.", a.Value))
		} else {
			replies = append(replies, fmt.Sprintf("%s is already muted.", a.Value))
		}
	}
	return strings.Join(replies, "\n")
}

func (dp *Dispatcher) unmute(user *directory.User, args []Token) string {
	if len(args) == 0 {
		return chat.FormatError("/unmute requires at least one #room_name argument!")
	}
	if args[0].Kind == Text && args[0].Value == "all" {
		if n := user.UnmuteAll(); n == 0 {
			return "No muted rooms!"
		}
		return "All rooms unmuted."
	}
	for _, a := range args {
		if a.Kind != RoomRef {
			return chat.FormatError("room names must begin with '#'!\nex: /unmute #room_name")
		}
	}
	var replies []string
	for _, a := range args {
		if user.Unmute(a.Value) {
			replies = append(replies, fmt.Sprintf("%s has been unmuted!", a.Value))
		} else {
			replies = append(replies, fmt.Sprintf("%s was not muted!", a.Value))
		}
	}
	return strings.Join(replies, "\n")
}
