package method

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrUnknownMethod = errors.New("unknown method")
	ErrInvalidConfig = errors.New("invalid method configuration")
)

// UnknownMethodError is returned when a method is not registered in both tables.
type UnknownMethodError struct {
	Name string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("method '%s' is unknown, make sure it was added to the size and matcher tables", e.Name)
}

// Is lets errors.Is match ErrUnknownMethod.
func (e *UnknownMethodError) Is(target error) bool {
	return target == ErrUnknownMethod
}
