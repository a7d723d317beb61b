package mqtt

import "errors"

// Sentinel errors. Callers wrap them with the topic or broker detail.
var (
	ErrNotConnected     = errors.New("mqtt: client not connected")
	ErrConnectionFailed = errors.New("mqtt: connection failed")
	ErrPublishFailed    = errors.New("mqtt: publish failed")
	ErrSubscribeFailed  = errors.New("mqtt: subscribe failed")

	// ErrInvalidTopic rejects an empty topic before it reaches the broker.
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")
)
