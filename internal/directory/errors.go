package directory

import "errors"

var (
	ErrUserExists         = errors.New("user id already registered")
	ErrUnknownUser        = errors.New("user not registered")
	ErrNoSuchRoom         = errors.New("room does not exist")
	ErrRoomExists         = errors.New("room already exists")
	ErrAlreadyMember      = errors.New("already a member of room")
	ErrNotMember          = errors.New("not a member of room")
	ErrCannotLeaveDefault = errors.New("cannot leave the default room")
	ErrOnlyDefaultRoom    = errors.New("no rooms joined besides the default")
	ErrNoMessages         = errors.New("no messages")
)
