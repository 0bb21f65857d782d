// Package rombp applies IPS and BPS ROM patches, turning a source binary
// into the target binary the patch author intended.
package rombp

/*------------------------------------------------------------------
 *
 * Purpose:	Status taxonomies shared by every decoder and the job
 *		runner. Kept as two distinct sum types because the UI
 *		needs to tell "the whole job failed" (TerminalStatus)
 *		apart from "this one hunk iteration failed" (IterStatus).
 *
 *---------------------------------------------------------------*/

import "fmt"

// PatchKind identifies which wire format a patch stream uses.
type PatchKind int

const (
	KindUnknown PatchKind = iota
	KindIPS
	KindBPS
)

func (k PatchKind) String() string {
	switch k {
	case KindIPS:
		return "IPS"
	case KindBPS:
		return "BPS"
	default:
		return "Unknown"
	}
}

// TerminalStatus is the outcome of a whole patch job: Start, the Next
// loop, and End all eventually collapse into one of these.
type TerminalStatus int

const (
	Ok TerminalStatus = iota
	InvalidHeader
	IOError
	InvalidInputSize
	InvalidOutputSize
	InvalidInputChecksum
	InvalidOutputChecksum
	UnknownPatchType
	FormatError
)

func (s TerminalStatus) String() string {
	switch s {
	case Ok:
		return "Ok"
	case InvalidHeader:
		return "InvalidHeader"
	case IOError:
		return "IOError"
	case InvalidInputSize:
		return "InvalidInputSize"
	case InvalidOutputSize:
		return "InvalidOutputSize"
	case InvalidInputChecksum:
		return "InvalidInputChecksum"
	case InvalidOutputChecksum:
		return "InvalidOutputChecksum"
	case UnknownPatchType:
		return "UnknownPatchType"
	case FormatError:
		return "FormatError"
	default:
		return fmt.Sprintf("TerminalStatus(%d)", int(s))
	}
}

// Message returns the user-facing message class from spec §7's table.
func (s TerminalStatus) Message(hunkCount int) string {
	switch s {
	case Ok:
		return fmt.Sprintf("Success! Wrote %d hunks", hunkCount)
	case InvalidOutputSize:
		return "Invalid output size"
	case InvalidOutputChecksum:
		return "Invalid output checksum"
	case InvalidInputSize:
		return "Invalid input size"
	case InvalidInputChecksum:
		return "Invalid input checksum"
	case InvalidHeader:
		return "Invalid header"
	case UnknownPatchType:
		return "Unknown patch type"
	case IOError:
		return "I/O error"
	case FormatError:
		return "Cannot write ROM"
	default:
		return "Cannot write ROM"
	}
}

// IterStatus is the outcome of a single call to Next.
type IterStatus int

const (
	IterNone IterStatus = iota
	IterNext
	IterDone
	IterIOError
	IterFormatError
)

func (s IterStatus) String() string {
	switch s {
	case IterNone:
		return "None"
	case IterNext:
		return "Next"
	case IterDone:
		return "Done"
	case IterIOError:
		return "IOError"
	case IterFormatError:
		return "FormatError"
	default:
		return fmt.Sprintf("IterStatus(%d)", int(s))
	}
}
