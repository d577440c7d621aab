package listener

import (
	"errors"
	"fmt"
	"syscall"
)

// BindError is returned by Start when the listening socket cannot be acquired.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	if errors.Is(e.Err, syscall.EADDRINUSE) {
		return fmt.Sprintf("address %s is already in use (another server running?)", e.Addr)
	}
	return fmt.Sprintf("listening on %s: %s", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}
