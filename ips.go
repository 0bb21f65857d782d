package rombp

/*------------------------------------------------------------------
 *
 * Purpose:	IPS decoder - streaming iterator over IPS hunks.
 *
 * Description:	IPS is an overlay format: before the first hunk is
 *		applied, the output file must already be a byte-exact
 *		copy of the input. Start does that copy; Next applies
 *		one hunk (literal or RLE) per call.
 *
 *---------------------------------------------------------------*/

import (
	"errors"
	"io"
)

var ipsMagic = []byte("PATCH")
var ipsFooter = []byte("EOF")

// IPSDecoder implements the IPS side of the format dispatcher's
// start/next/end facade (spec §4.6).
type IPSDecoder struct {
	patch Stream
}

// NewIPSDecoder returns a decoder ready to Start once the marker has
// already been consumed from patch by the dispatcher's probe.
func NewIPSDecoder() *IPSDecoder {
	return &IPSDecoder{}
}

// Start byte-copies in to out in full - the overlay base that every
// subsequent hunk modifies in place.
func (d *IPSDecoder) Start(in, out, patch Stream) error {
	d.patch = patch

	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return err
	}

	if _, err := out.Seek(0, io.SeekStart); err != nil {
		return err
	}

	buf := make([]byte, 32*1024)

	if _, err := io.CopyBuffer(out, in, buf); err != nil {
		return err
	}

	return out.Flush()
}

// Next applies one IPS hunk: a literal payload hunk or an RLE fill.
func (d *IPSDecoder) Next(out Stream) IterStatus {
	header := make([]byte, 5)

	n, err := io.ReadFull(d.patch, header)
	if err != nil {
		if isCleanIPSEnd(header[:n], err) {
			return IterDone
		}

		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return IterFormatError
		}

		return IterIOError
	}

	if string(header[:3]) == string(ipsFooter) {
		// Tolerate the canonical 3-byte "EOF" footer even when more
		// bytes happened to follow it in the 5-byte read buffer
		// (spec §9, Open Question: IPS terminator, option (b)).
		// Rewind the two extra bytes we over-read so callers relying
		// on patch-stream position (none currently do, but future
		// callers might) see a consistent position.
		_, _ = d.patch.Seek(-2, io.SeekCurrent)

		return IterDone
	}

	offset := int64(header[0])<<16 | int64(header[1])<<8 | int64(header[2])
	length := int(header[3])<<8 | int(header[4])

	if _, err := out.Seek(offset, io.SeekStart); err != nil {
		return IterIOError
	}

	if length == 0 {
		rleHeader := make([]byte, 4)
		if _, err := io.ReadFull(d.patch, rleHeader); err != nil {
			return IterIOError
		}

		rleLength := int(rleHeader[0])<<16 | int(rleHeader[1])<<8 | int(rleHeader[2])
		rleValue := rleHeader[3]

		if rleLength == 0 {
			// Malformed by convention, but the spec requires this be
			// a no-op rather than an error.
			return IterNext
		}

		fill := make([]byte, rleLength)
		for i := range fill {
			fill[i] = rleValue
		}

		if _, err := out.Write(fill); err != nil {
			return IterIOError
		}

		return IterNext
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(d.patch, payload); err != nil {
		return IterIOError
	}

	if _, err := out.Write(payload); err != nil {
		return IterIOError
	}

	return IterNext
}

// End has no terminal validation for IPS and always succeeds.
func (d *IPSDecoder) End() TerminalStatus {
	return Ok
}

// isCleanIPSEnd implements the dual-form terminator tolerance from
// spec §9: the 5-byte hunk-header read came up short (io.ReadFull
// reports io.ErrUnexpectedEOF, or io.EOF if nothing was read) and
// the 3 or 4 bytes it did get start with the "EOF" footer - the
// stream ended cleanly right after the canonical 3-byte footer, or
// one stray byte followed it. A full 5-byte read starting with "EOF"
// is handled in Next.
func isCleanIPSEnd(got []byte, err error) bool {
	if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false
	}

	if len(got) < 3 {
		return false
	}

	return string(got[:3]) == string(ipsFooter)
}
