package background

import (
	"errors"
	"fmt"
)

var (
	ErrSurfaceDetached = errors.New("display surface is not attached")
	ErrAlreadyMounted  = errors.New("controller is already mounted")
	ErrNotRunning      = errors.New("controller is not running")
)

// SetupError is returned by Mount. The controller has already released
// whatever it managed to create, so the caller can leave the background empty.
type SetupError struct {
	Stage string
	Err   error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("background setup failed at %s: %v", e.Stage, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}
