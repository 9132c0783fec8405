package stream

import (
	"fmt"
	"io"
)

// Mode is the wire framing a stream response uses, spec.md §4.G /
// §6's transport-chosen output shape.
type Mode int

const (
	// TabMode serializes each item then writes a trailing '\t' delimiter.
	TabMode Mode = iota
	// EventStreamMode prefixes each item "data: ", terminates it with a
	// blank line, and writes a trailing termination event.
	EventStreamMode
)

const eventStreamTerminator = "event: done\n\n"

// ErrorFrame is the JSON shape written as a stream's first frame on
// failure, per spec.md §4.G: "the first frame of any stream may be an
// error object; clients must parse the first frame before committing to
// stream semantics."
type ErrorFrame struct {
	Type string `json:"type"`
	Msg  string `json:"msg"`
}

// WriteFrames writes every doc in docs to w under the chosen Mode. An
// error frame (if errFrame is non-empty) is always written first,
// regardless of mode, and no further frames follow it.
func WriteFrames(w io.Writer, mode Mode, errFrame string, docs []string) error {
	if errFrame != "" {
		return writeOne(w, mode, errFrame, true)
	}
	for _, d := range docs {
		if err := writeOne(w, mode, d, false); err != nil {
			return err
		}
	}
	if mode == EventStreamMode {
		if _, err := io.WriteString(w, eventStreamTerminator); err != nil {
			return err
		}
	}
	return nil
}

func writeOne(w io.Writer, mode Mode, doc string, isError bool) error {
	switch mode {
	case EventStreamMode:
		if _, err := fmt.Fprintf(w, "data: %s\n\n", doc); err != nil {
			return err
		}
		if isError {
			_, err := io.WriteString(w, eventStreamTerminator)
			return err
		}
		return nil
	default: // TabMode
		_, err := fmt.Fprintf(w, "%s\t", doc)
		return err
	}
}
