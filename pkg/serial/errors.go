package serial

import "errors"

var (
	// ErrRunning indicates Begin on a running link.
	ErrRunning = errors.New("serial link already running")
	// ErrNotRunning indicates End or Write on an idle link.
	ErrNotRunning = errors.New("serial link not running")
	// ErrNoDevice indicates Begin without a way to open the stream.
	ErrNoDevice = errors.New("serial device not configured")
)
