package frame

import (
	"bufio"
	"io"
)

// Writer renders units onto a stream, flushing after each one.
type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w: bufio.NewWriter(w),
	}
}

func (w *Writer) Write(u Unit) error {
	b, err := u.Render()
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.Flush()
}
