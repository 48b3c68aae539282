// Package discordpod - errors.go
// Defines store and agent-specific errors.

package discordpod

import "errors"

var (
	ErrKeyNotFound     = errors.New("key not found")
	ErrInvalidKey      = errors.New("invalid key")
	ErrEmptyCompletion = errors.New("completion returned no choices")
	ErrToolRoundLimit  = errors.New("tool call rounds exceeded the limit")
)
