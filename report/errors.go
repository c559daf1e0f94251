package report

import (
	"fmt"

	"github.com/pkg/errors"
)

// ExportError is a fatal, user-facing export failure. It aborts the whole
// session immediately and is surfaced verbatim.
type ExportError struct {
	msg string
}

func (e *ExportError) Error() string {
	return e.msg
}

func ExportErrorf(format string, a ...interface{}) error {
	return &ExportError{msg: fmt.Sprintf(format, a...)}
}

func IsExportError(err error) bool {
	var ee *ExportError
	return errors.As(err, &ee)
}
