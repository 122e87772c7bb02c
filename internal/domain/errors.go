package domain

import "errors"

// Domain errors
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomExists      = errors.New("room code already in use")
	ErrRoomStarted     = errors.New("game already started")
	ErrRoomFull        = errors.New("room is full")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrEmptyUsername   = errors.New("username cannot be empty")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPhase    = errors.New("invalid action for current phase")
	ErrCannotVoteSelf  = errors.New("cannot vote for yourself")
	ErrInvalidTarget   = errors.New("invalid vote target")
)
