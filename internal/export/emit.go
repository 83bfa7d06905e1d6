package export

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Emitter writes one JSON object per line. Each record is written with a
// single Write call as soon as it is emitted so consumers can stream.
type Emitter struct {
	w   io.Writer
	buf bytes.Buffer
}

func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

func (e *Emitter) Emit(record Record) error {
	e.buf.Reset()

	enc := json.NewEncoder(&e.buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(record); err != nil {
		return errors.Wrap(err, "error encoding log entry")
	}

	if _, err := e.w.Write(e.buf.Bytes()); err != nil {
		return errors.Wrapf(ErrOutput, "%v", err)
	}
	return nil
}
