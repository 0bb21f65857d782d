package rombp

/*------------------------------------------------------------------
 *
 * Purpose:	BPS decoder - streaming iterator over BPS commands.
 *
 * Description:	Unlike _examples/mgius-bps (which reads the whole
 *		source/patch into memory up front), this decoder works
 *		against the Stream abstraction so arbitrarily large ROMs
 *		don't need to fit in RAM twice over. The command dispatch
 *		itself - SourceRead/TargetRead/SourceCopy/TargetCopy - is
 *		the same four-tag scheme.
 *
 *---------------------------------------------------------------*/

import (
	"encoding/binary"
	"io"
)

var bpsMagic = []byte("BPS1")

const (
	bpsSourceRead = iota
	bpsTargetRead
	bpsSourceCopy
	bpsTargetCopy
)

const bpsTrailerSize = 12

// BPSHeader is the per-job state created by Start, mutated by Next,
// and consumed by End.
type BPSHeader struct {
	SourceSize   uint64
	TargetSize   uint64
	MetadataSize uint64
	Metadata     []byte
	PatchSize    int64

	OutputOffset int64

	SourceRelativeOffset int64
	TargetRelativeOffset int64

	OutputCRC32 *CRCWriter

	// SourceCRC32, TargetCRC32 and PatchCRC32 are decoded from the
	// trailer at End time. End compares TargetCRC32 against
	// OutputCRC32; SourceCRC32 and PatchCRC32 are not validated -
	// they're exposed for a caller that wants to check them itself.
	SourceCRC32 uint32
	TargetCRC32 uint32
	PatchCRC32  uint32
}

// BPSDecoder implements the BPS side of the format dispatcher's
// start/next/end facade (spec §4.6).
type BPSDecoder struct {
	header BPSHeader
	patch  Stream
}

// NewBPSDecoder returns a decoder ready to Start once the marker has
// already been consumed from patch by the dispatcher's probe.
func NewBPSDecoder() *BPSDecoder {
	return &BPSDecoder{}
}

// Header returns the decoder's header state, valid after Start.
func (d *BPSDecoder) Header() *BPSHeader {
	return &d.header
}

// Start reads the BPS header (sizes + metadata) and records the
// patch stream's total size from patch.Len().
func (d *BPSDecoder) Start(patch Stream) error {
	d.patch = patch

	br := &streamByteReader{s: patch}

	sourceSize, err := DecodeVarint(br)
	if err != nil {
		return err
	}

	targetSize, err := DecodeVarint(br)
	if err != nil {
		return err
	}

	metadataSize, err := DecodeVarint(br)
	if err != nil {
		return err
	}

	metadata := make([]byte, metadataSize)
	if metadataSize > 0 {
		if _, err := io.ReadFull(patch, metadata); err != nil {
			return err
		}
	}

	patchSize, err := patch.Len()
	if err != nil {
		return err
	}

	d.header = BPSHeader{
		SourceSize:   sourceSize,
		TargetSize:   targetSize,
		MetadataSize: metadataSize,
		Metadata:     metadata,
		PatchSize:    patchSize,
		OutputCRC32:  NewCRCWriter(),
	}

	return nil
}

// Next decodes and applies one BPS command (spec §4.5, I1-I5).
func (d *BPSDecoder) Next(in, out Stream) IterStatus {
	h := &d.header

	pos, err := d.patch.Seek(0, io.SeekCurrent)
	if err != nil {
		return IterIOError
	}

	if pos >= h.PatchSize-bpsTrailerSize {
		return IterDone
	}

	br := &streamByteReader{s: d.patch}

	v, err := DecodeVarint(br)
	if err != nil {
		return IterIOError
	}

	command := v & 0b11
	length := int64(v>>2) + 1

	switch command {
	case bpsSourceRead:
		// A SourceCopy/SourceRead running past the end of the source
		// file must surface IOError rather than silently zero-fill,
		// so a short read here is treated the same as any other I/O
		// failure (spec §8 boundary behavior).
		if err := d.copySourceRead(in, out, length); err != nil {
			return IterIOError
		}
	case bpsTargetRead:
		if err := d.copyTargetRead(out, length); err != nil {
			return IterIOError
		}
	case bpsSourceCopy:
		delta, err := DecodeVarint(br)
		if err != nil {
			return IterIOError
		}

		h.SourceRelativeOffset += zigzagDelta(delta)

		if err := d.copySourceCopy(in, out, length); err != nil {
			return IterIOError
		}
	case bpsTargetCopy:
		delta, err := DecodeVarint(br)
		if err != nil {
			return IterIOError
		}

		h.TargetRelativeOffset += zigzagDelta(delta)

		if err := d.copyTargetCopy(out, length); err != nil {
			return IterIOError
		}
	default:
		return IterFormatError
	}

	if h.OutputOffset > int64(h.TargetSize) {
		// I1: output_offset must never exceed target_size.
		return IterFormatError
	}

	return IterNext
}

// End reads the 12-byte trailer and validates the target CRC against
// the running output CRC (spec §4.5's "end").
func (d *BPSDecoder) End() TerminalStatus {
	if _, err := d.patch.Seek(-bpsTrailerSize, io.SeekEnd); err != nil {
		return IOError
	}

	trailer := make([]byte, bpsTrailerSize)
	if _, err := io.ReadFull(d.patch, trailer); err != nil {
		return IOError
	}

	d.header.SourceCRC32 = binary.LittleEndian.Uint32(trailer[0:4])
	d.header.TargetCRC32 = binary.LittleEndian.Uint32(trailer[4:8])
	d.header.PatchCRC32 = binary.LittleEndian.Uint32(trailer[8:12])

	if d.header.OutputOffset != int64(d.header.TargetSize) {
		return InvalidOutputSize
	}

	if d.header.OutputCRC32.Sum32() != d.header.TargetCRC32 {
		return InvalidOutputChecksum
	}

	return Ok
}

// copySourceRead streams length bytes from source at output_offset to
// output at output_offset.
func (d *BPSDecoder) copySourceRead(in, out Stream, length int64) error {
	h := &d.header

	if _, err := in.Seek(h.OutputOffset, io.SeekStart); err != nil {
		return err
	}

	return d.streamCopy(in, out, length)
}

// copyTargetRead streams length bytes from the patch stream's current
// read position to output at output_offset.
func (d *BPSDecoder) copyTargetRead(out Stream, length int64) error {
	return d.streamCopy(d.patch, out, length)
}

// copySourceCopy streams length bytes from source at
// source_relative_offset, then advances that offset by length.
func (d *BPSDecoder) copySourceCopy(in, out Stream, length int64) error {
	h := &d.header

	if _, err := in.Seek(h.SourceRelativeOffset, io.SeekStart); err != nil {
		return err
	}

	if err := d.streamCopy(in, out, length); err != nil {
		return err
	}

	h.SourceRelativeOffset += length

	return nil
}

// copyTargetCopy copies length bytes from the output already written,
// starting at target_relative_offset, byte-by-byte so self-referential
// RLE-like fills (spec invariant I4) see each byte they just wrote.
func (d *BPSDecoder) copyTargetCopy(out Stream, length int64) error {
	h := &d.header

	if err := out.Flush(); err != nil {
		return err
	}

	one := make([]byte, 1)

	for i := int64(0); i < length; i++ {
		if _, err := out.Seek(h.TargetRelativeOffset, io.SeekStart); err != nil {
			return err
		}

		if _, err := io.ReadFull(out, one); err != nil {
			return err
		}

		if _, err := out.Seek(h.OutputOffset, io.SeekStart); err != nil {
			return err
		}

		if _, err := out.Write(one); err != nil {
			return err
		}

		if _, err := h.OutputCRC32.Write(one); err != nil {
			return err
		}

		h.TargetRelativeOffset++
		h.OutputOffset++
	}

	return nil
}

// streamCopy copies length bytes from src to out at output_offset,
// buffered, feeding every written byte through the running CRC. It and
// copyTargetCopy are the only places the CRC is updated, each at the
// point it writes to out (spec invariant I5).
func (d *BPSDecoder) streamCopy(src, out Stream, length int64) error {
	h := &d.header

	if err := out.Flush(); err != nil {
		return err
	}

	if _, err := out.Seek(h.OutputOffset, io.SeekStart); err != nil {
		return err
	}

	buf := make([]byte, 4096)
	remaining := length

	for remaining > 0 {
		chunk := int64(len(buf))
		if remaining < chunk {
			chunk = remaining
		}

		n, err := io.ReadFull(src, buf[:chunk])
		if err != nil {
			return err
		}

		if _, err := out.Write(buf[:n]); err != nil {
			return err
		}

		if _, err := h.OutputCRC32.Write(buf[:n]); err != nil {
			return err
		}

		h.OutputOffset += int64(n)
		remaining -= int64(n)
	}

	return nil
}

// zigzagDelta turns a decoded delta varint into a signed magnitude:
// the LSB is the sign (1 = negative), the remaining bits are the
// magnitude.
func zigzagDelta(delta uint64) int64 {
	magnitude := int64(delta >> 1)
	if delta&1 == 1 {
		return -magnitude
	}

	return magnitude
}

// streamByteReader adapts a Stream to io.ByteReader for DecodeVarint,
// reading one byte at a time from the stream's current position.
type streamByteReader struct {
	s   Stream
	buf [1]byte
}

func (r *streamByteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(r.s, r.buf[:]); err != nil {
		return 0, err
	}

	return r.buf[0], nil
}
