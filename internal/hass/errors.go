package hass

import "errors"

// Domain-specific errors for the Home Assistant connection.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrAuthFailed is returned when Home Assistant rejects the access token.
	ErrAuthFailed = errors.New("hass: authentication failed")

	// ErrNotConnected is returned when a command is issued on a closed client.
	ErrNotConnected = errors.New("hass: not connected")

	// ErrCommandFailed is returned when Home Assistant answers a command with success=false.
	ErrCommandFailed = errors.New("hass: command failed")

	// ErrUnexpectedMessage is returned when the handshake deviates from the protocol.
	ErrUnexpectedMessage = errors.New("hass: unexpected message")

	// ErrInvalidSnapshot is returned when a snapshot file cannot be decoded.
	ErrInvalidSnapshot = errors.New("hass: invalid snapshot")
)
