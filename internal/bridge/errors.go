package bridge

import "fmt"

// StartupError is a failure to bring the bridge up: the listener could not
// bind, the peer could not be resolved, or a handle could not be attached.
// It is the only error the bridge surfaces to its caller.
type StartupError struct {
	Op  string
	Err error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup: %s: %v", e.Op, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// SendError is a failed send to the peer. The event is dropped.
type SendError struct {
	Peer Peer
	Err  error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send to %s: %v", e.Peer, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }
