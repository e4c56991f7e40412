// Package handlers fans reassembled LRIT files out to the configured
// sinks: bulletin text, imagery, DCS messages, debug dumps, and the
// sqlite catalog.
package handlers

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goesrx/goesrx/internal/lrit"
)

// ErrSkipped is returned by a handler that recognised the file as not its
// kind. It is not a failure; dispatch moves on to the next handler.
var ErrSkipped = errors.New("skipped")

// MissingHeaderError reports a file that should carry a header record for
// its type but does not: either corrupt or a bug upstream.
type MissingHeaderError struct {
	Header string
}

func (e *MissingHeaderError) Error() string {
	return fmt.Sprintf("missing %s header", e.Header)
}

// ParseError reports malformed file content inside a handler.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return e.Reason }

// Handler consumes one finished LRIT file. Implementations select their
// work by the primary filetype code and must not mutate the file.
type Handler interface {
	Handle(l *lrit.LRIT) error
}

// Dispatch runs the file through every handler in list order. Skips are
// silent; failures are logged and do not stop the fan-out.
func Dispatch(hs []Handler, l *lrit.LRIT, log *zap.SugaredLogger) {
	for _, h := range hs {
		err := h.Handle(l)
		if err == nil || errors.Is(err, ErrSkipped) {
			continue
		}
		log.Warnf("handler %T: %v", h, err)
	}
}
