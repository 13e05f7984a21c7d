package game

import "errors"

// Sentinel errors for programmer and setup mistakes. Rule violations during
// play are never surfaced as errors; they travel through State.Warning or
// State.Aborted instead.
var (
	// ErrTerminated is returned when Step is called on an environment whose
	// episode has already ended. Callers must Reset before stepping again.
	ErrTerminated = errors.New("environment already terminated")

	// ErrNoActionSpace indicates that no action space was registered for the
	// acting player before stepping.
	ErrNoActionSpace = errors.New("no action space registered for player")

	// ErrNoObservation indicates that no observation was registered for the
	// requested player.
	ErrNoObservation = errors.New("no observation registered for player")

	// ErrInvalidActionType indicates an action whose type is not part of the
	// acting player's current action space.
	ErrInvalidActionType = errors.New("action type not in action space")

	// ErrUnknownPlayer indicates an operation on a player the environment has
	// never seen.
	ErrUnknownPlayer = errors.New("unknown player")

	// ErrObjectNotFound indicates a removal of an object that is not present
	// in the cell it claims to occupy.
	ErrObjectNotFound = errors.New("object not found at its position")

	// ErrNoPlayers indicates a game master that was asked to play without any
	// registered players.
	ErrNoPlayers = errors.New("no players have been added to the game")

	// ErrDuplicatePlayer indicates that a player with the same name was added
	// twice.
	ErrDuplicatePlayer = errors.New("player already registered")
)
