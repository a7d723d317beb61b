package influxdb

import "errors"

var (
	// ErrDisabled means influxdb.enabled is false; generation metrics are
	// simply not recorded.
	ErrDisabled = errors.New("influxdb: disabled in configuration")

	// ErrConnectionFailed wraps a failed startup ping.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrNotConnected is returned once the client has been closed.
	ErrNotConnected = errors.New("influxdb: not connected")
)
