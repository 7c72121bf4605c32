package io

import (
	"bufio"
	"bytes"
	"io"
)

// IndentWriter prefixes every line written through it and flushes after each
// write, so step output shows up nested under its trace line as it arrives.
type IndentWriter struct {
	w           io.Writer
	flusher     interface{ Flush() error }
	prefix      []byte
	atLineStart bool
}

// NewIndentWriter creates an IndentWriter. If the writer already supports
// flushing, it uses that directly. Otherwise, it wraps it in a bufio.Writer.
func NewIndentWriter(w io.Writer, prefix string) *IndentWriter {
	iw := &IndentWriter{
		w:           w,
		prefix:      []byte(prefix),
		atLineStart: true,
	}

	if f, ok := w.(interface{ Flush() error }); ok {
		iw.flusher = f
	} else {
		bw := bufio.NewWriter(w)
		iw.w = bw
		iw.flusher = bw
	}

	return iw
}

// Write indents p line by line and flushes. The returned count refers to p,
// not to the prefixed output.
func (iw *IndentWriter) Write(p []byte) (int, error) {
	var buf bytes.Buffer
	for _, b := range p {
		if iw.atLineStart {
			buf.Write(iw.prefix)
			iw.atLineStart = false
		}
		buf.WriteByte(b)
		if b == '\n' {
			iw.atLineStart = true
		}
	}

	if _, err := iw.w.Write(buf.Bytes()); err != nil {
		return 0, err
	}

	if err := iw.flusher.Flush(); err != nil {
		return len(p), err
	}

	return len(p), nil
}

// WriteBlock writes text followed by a newline unless it already ends in one.
// Empty text writes nothing.
func (iw *IndentWriter) WriteBlock(text string) error {
	if text == "" {
		return nil
	}
	if text[len(text)-1] != '\n' {
		text += "\n"
	}
	_, err := iw.Write([]byte(text))
	return err
}

// Flush explicitly flushes any buffered data.
func (iw *IndentWriter) Flush() error {
	return iw.flusher.Flush()
}
