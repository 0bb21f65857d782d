package rombp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_PatchKind_String(t *testing.T) {
	assert.Equal(t, "IPS", KindIPS.String())
	assert.Equal(t, "BPS", KindBPS.String())
	assert.Equal(t, "Unknown", KindUnknown.String())
}

func Test_TerminalStatus_Message(t *testing.T) {
	assert.Equal(t, "Success! Wrote 3 hunks", Ok.Message(3))
	assert.Equal(t, "Invalid output checksum", InvalidOutputChecksum.Message(0))
	assert.Equal(t, "Unknown patch type", UnknownPatchType.Message(0))
	assert.Equal(t, "Cannot write ROM", FormatError.Message(0))
}

func Test_TerminalStatus_FormatError_String(t *testing.T) {
	assert.Equal(t, "FormatError", FormatError.String())
}

func Test_TerminalStatus_StringUnknownValue(t *testing.T) {
	assert.Equal(t, "TerminalStatus(99)", TerminalStatus(99).String())
}

func Test_IterStatus_String(t *testing.T) {
	assert.Equal(t, "Next", IterNext.String())
	assert.Equal(t, "Done", IterDone.String())
	assert.Equal(t, "IOError", IterIOError.String())
}
