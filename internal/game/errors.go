package game

import "errors"

var (
	// ErrInsufficientPool means the selection matched fewer than two stations.
	ErrInsufficientPool = errors.New("not enough stations to play")

	// ErrInvalidTransition is returned for actions the current state does not
	// allow, such as answering twice. The session is left unchanged.
	ErrInvalidTransition = errors.New("action not allowed in current state")
)
