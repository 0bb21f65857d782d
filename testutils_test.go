package rombp

/*------------------------------------------------------------------
 *
 * Purpose:	In-memory Stream for exercising the decoders without
 *		touching the filesystem.
 *
 *---------------------------------------------------------------*/

import (
	"bytes"
	"io"
)

// memStream is a Stream backed by an in-memory byte buffer. It grows
// on write, same as a real file opened O_RDWR|O_TRUNC.
type memStream struct {
	buf bytes.Buffer
	pos int64
}

func newMemStream(initial []byte) *memStream {
	m := &memStream{}
	m.buf.Write(initial)

	return m
}

func (m *memStream) Read(p []byte) (int, error) {
	data := m.buf.Bytes()
	if m.pos >= int64(len(data)) {
		return 0, io.EOF
	}

	// A short read returns what is available with a nil error, as
	// *os.File does; io.EOF comes on the next call.
	n := copy(p, data[m.pos:])
	m.pos += int64(n)

	return n, nil
}

func (m *memStream) Write(p []byte) (int, error) {
	data := m.buf.Bytes()

	if m.pos < int64(len(data)) {
		// Overwrite in place where the write lands inside existing
		// content, append past the end - matching *os.File semantics
		// for a seek-then-write.
		end := m.pos + int64(len(p))
		if end > int64(len(data)) {
			data = append(data, make([]byte, end-int64(len(data)))...)
		}

		copy(data[m.pos:end], p)
		m.buf.Reset()
		m.buf.Write(data)
	} else {
		if m.pos > int64(len(data)) {
			m.buf.Write(make([]byte, m.pos-int64(len(data))))
		}

		m.buf.Write(p)
	}

	m.pos += int64(len(p))

	return len(p), nil
}

func (m *memStream) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		m.pos = offset
	case io.SeekCurrent:
		m.pos += offset
	case io.SeekEnd:
		m.pos = int64(m.buf.Len()) + offset
	}

	return m.pos, nil
}

func (m *memStream) Len() (int64, error) { return int64(m.buf.Len()), nil }
func (m *memStream) Flush() error        { return nil }
func (m *memStream) Close() error        { return nil }

func (m *memStream) Bytes() []byte {
	return append([]byte{}, m.buf.Bytes()...)
}
