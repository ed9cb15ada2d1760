package steering

import (
	"errors"
	"fmt"
)

var ErrInvalidBehavior = errors.New("invalid steering behavior")

func errorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidBehavior}, args...)...)
}
