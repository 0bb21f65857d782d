package rombp

/*------------------------------------------------------------------
 *
 * Purpose:	Format dispatcher - detects which wire format a patch
 *		stream uses, then exposes a uniform start/next/end facade
 *		over whichever concrete decoder matches.
 *
 * Description:	Replaces the C original's tagged union of per-format
 *		header structs with a small interface (patchDecoder)
 *		implemented by *IPSDecoder and *BPSDecoder (spec §9).
 *
 *---------------------------------------------------------------*/

import "io"

// patchDecoder is the interface both concrete decoders satisfy for the
// "end" step; Next still branches on Kind because IPS and BPS need a
// different set of streams (spec §9's tagged-variant replacement for
// the C union covers the header state, not every method's signature).
type patchDecoder interface {
	End() TerminalStatus
}

// Dispatcher detects a patch format and runs its decoder to completion.
type Dispatcher struct {
	Kind    PatchKind
	ips     *IPSDecoder
	bps     *BPSDecoder
	current patchDecoder
}

// Detect probes the patch stream for the IPS marker, rewinding and
// probing for the BPS marker on a miss. A marker mismatch is not an
// error by itself - only exhausting every candidate format is (spec
// §7's propagation policy).
func Detect(patch Stream) (PatchKind, error) {
	if _, err := patch.Seek(0, io.SeekStart); err != nil {
		return KindUnknown, err
	}

	ok, err := VerifyMarker(patch, ipsMagic)
	if err != nil {
		return KindUnknown, err
	}

	if ok {
		return KindIPS, nil
	}

	if _, err := patch.Seek(0, io.SeekStart); err != nil {
		return KindUnknown, err
	}

	ok, err = VerifyMarker(patch, bpsMagic)
	if err != nil {
		return KindUnknown, err
	}

	if ok {
		return KindBPS, nil
	}

	return KindUnknown, nil
}

// Start detects the format and initializes the matching decoder.
func (d *Dispatcher) Start(in, out, patch Stream) error {
	kind, err := Detect(patch)
	if err != nil {
		return err
	}

	d.Kind = kind

	switch kind {
	case KindIPS:
		d.ips = NewIPSDecoder()
		d.current = d.ips

		return d.ips.Start(in, out, patch)
	case KindBPS:
		d.bps = NewBPSDecoder()
		d.current = d.bps

		return d.bps.Start(patch)
	default:
		return ErrUnknownPatchType
	}
}

// ErrUnknownPatchType is returned by Start when neither the IPS nor the
// BPS marker is found.
var ErrUnknownPatchType = unknownPatchTypeError{}

type unknownPatchTypeError struct{}

func (unknownPatchTypeError) Error() string { return "rombp: unknown patch type" }

// Next advances the underlying decoder by one hunk/command. BPS needs
// the source stream for SourceRead/SourceCopy; IPS only ever touches
// out, so in is ignored on that path.
func (d *Dispatcher) Next(in, out Stream) IterStatus {
	switch d.Kind {
	case KindBPS:
		return d.bps.Next(in, out)
	case KindIPS:
		return d.ips.Next(out)
	default:
		return IterFormatError
	}
}

// End finalizes the job. IPS has no terminal validation and always
// returns Ok; BPS verifies the output CRC trailer.
func (d *Dispatcher) End() TerminalStatus {
	if d.current == nil {
		return UnknownPatchType
	}

	return d.current.End()
}

// BPSHeaderState exposes the BPS header after Start, or nil for IPS
// jobs. Useful for callers that hold a Dispatcher and want to report
// source/target sizes without duplicating the dispatcher's detection.
func (d *Dispatcher) BPSHeaderState() *BPSHeader {
	if d.bps == nil {
		return nil
	}

	return d.bps.Header()
}
