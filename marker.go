package rombp

/*------------------------------------------------------------------
 *
 * Purpose:	Read exactly len(expected) bytes from a stream at its
 *		current position and compare against an expected magic.
 *
 * Description:	Does not rewind on mismatch - callers (the dispatcher)
 *		own rewinding between probes.
 *
 *---------------------------------------------------------------*/

import (
	"bytes"
	"io"
)

// VerifyMarker reads len(expected) bytes from r and returns true iff
// they match expected exactly. A short read is treated as "no match",
// not an error - the dispatcher moves on to the next candidate format.
func VerifyMarker(r io.Reader, expected []byte) (bool, error) {
	buf := make([]byte, len(expected))

	n, err := io.ReadFull(r, buf)
	if err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return false, nil
		}

		return false, err
	}

	return n == len(expected) && bytes.Equal(buf, expected), nil
}
