package rombp

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// brokenStream fails every call, simulating a genuine I/O failure
// distinct from a marker mismatch.
type brokenStream struct{}

func (brokenStream) Read([]byte) (int, error)      { return 0, errors.New("broken: read") }
func (brokenStream) Write([]byte) (int, error)      { return 0, errors.New("broken: write") }
func (brokenStream) Seek(int64, int) (int64, error) { return 0, errors.New("broken: seek") }
func (brokenStream) Len() (int64, error)            { return 0, errors.New("broken: len") }
func (brokenStream) Flush() error                   { return nil }
func (brokenStream) Close() error                   { return nil }

var _ Stream = brokenStream{}

func Test_NewJob_OpensAllThreeStreams(t *testing.T) {
	dir := t.TempDir()

	inputPath := filepath.Join(dir, "input.bin")
	patchPath := filepath.Join(dir, "patch.ips")
	outputPath := filepath.Join(dir, "output.bin")

	assert.NoError(t, os.WriteFile(inputPath, []byte{0xAA, 0xBB}, 0o644))
	assert.NoError(t, os.WriteFile(patchPath, []byte("PATCHEOF"), 0o644))

	job, err := NewJob(PatchCommand{InputFile: inputPath, PatchFile: patchPath, OutputFile: outputPath})
	assert.NoError(t, err)
	assert.NotNil(t, job)

	job.Close()

	_, statErr := os.Stat(outputPath)
	assert.NoError(t, statErr)
}

func Test_NewJob_MissingInputClosesNothingLeaked(t *testing.T) {
	dir := t.TempDir()

	job, err := NewJob(PatchCommand{
		InputFile:  filepath.Join(dir, "does-not-exist.bin"),
		PatchFile:  filepath.Join(dir, "patch.ips"),
		OutputFile: filepath.Join(dir, "output.bin"),
	})

	assert.Error(t, err)
	assert.Nil(t, job)
}

func Test_NewJob_MissingPatchClosesInputAndOutput(t *testing.T) {
	dir := t.TempDir()

	inputPath := filepath.Join(dir, "input.bin")
	assert.NoError(t, os.WriteFile(inputPath, []byte{0x01}, 0o644))

	job, err := NewJob(PatchCommand{
		InputFile:  inputPath,
		PatchFile:  filepath.Join(dir, "does-not-exist.ips"),
		OutputFile: filepath.Join(dir, "output.bin"),
	})

	assert.Error(t, err)
	assert.Nil(t, job)

	// The output file is still created (truncate-on-open happens before
	// the patch file is opened), but nothing should be left dangling
	// open - Close is never reachable on a nil job, so this just checks
	// the file exists and isn't still held exclusively.
	_, statErr := os.Stat(filepath.Join(dir, "output.bin"))
	assert.NoError(t, statErr)
}

func Test_Job_RunHeadless_IPSIdentity(t *testing.T) {
	in := newMemStream([]byte{0xAA, 0xBB, 0xCC})
	out := newMemStream(nil)
	patch := newMemStream([]byte("PATCHEOF"))

	job := NewJobWithStreams(in, out, patch)

	term := job.RunHeadless()

	assert.Equal(t, Ok, term)
	assert.Equal(t, KindIPS, job.Kind())

	hunkCount, iterStatus, terminal, jobErr := job.Status.Snapshot()
	assert.Equal(t, 0, hunkCount)
	assert.Equal(t, IterDone, iterStatus)
	assert.NotNil(t, terminal)
	assert.Equal(t, Ok, *terminal)
	assert.NoError(t, jobErr)
}

func Test_Job_RunHeadless_UnknownFormat(t *testing.T) {
	in := newMemStream(nil)
	out := newMemStream(nil)
	patch := newMemStream([]byte("GARBAGE!"))

	job := NewJobWithStreams(in, out, patch)

	term := job.RunHeadless()

	assert.Equal(t, UnknownPatchType, term)

	_, _, terminal, jobErr := job.Status.Snapshot()
	assert.NotNil(t, terminal)
	assert.Equal(t, UnknownPatchType, *terminal)
	assert.Error(t, jobErr)
	assert.ErrorIs(t, jobErr, ErrUnknownPatchType)
}

func Test_Job_RunHeadless_GenuineIOErrorIsNotUnknownPatchType(t *testing.T) {
	job := NewJobWithStreams(newMemStream(nil), newMemStream(nil), brokenStream{})

	term := job.RunHeadless()

	assert.Equal(t, IOError, term)

	_, _, terminal, jobErr := job.Status.Snapshot()
	assert.NotNil(t, terminal)
	assert.Equal(t, IOError, *terminal)
	assert.Error(t, jobErr)
	assert.False(t, errors.Is(jobErr, ErrUnknownPatchType))
}

func Test_Job_RunInteractiveBatch_StopsAtBatchSize(t *testing.T) {
	// Three literal hunks, one byte each, driven two at a time.
	patchBytes := []byte{
		0x50, 0x41, 0x54, 0x43, 0x48, // "PATCH"
		0x00, 0x00, 0x00, 0x00, 0x01, 0x11, // offset 0, length 1
		0x00, 0x00, 0x01, 0x00, 0x01, 0x22, // offset 1, length 1
		0x00, 0x00, 0x02, 0x00, 0x01, 0x33, // offset 2, length 1
		0x45, 0x4F, 0x46,
	}

	in := newMemStream([]byte{0x00, 0x00, 0x00})
	out := newMemStream(nil)
	patch := newMemStream(patchBytes)

	job := NewJobWithStreams(in, out, patch)

	assert.NoError(t, job.StartInteractive())

	first := job.RunInteractiveBatch(2)
	assert.Nil(t, first.Terminal)
	assert.Equal(t, IterNext, first.Iter)

	hunkCount, _, _, _ := job.Status.Snapshot()
	assert.Equal(t, 2, hunkCount)

	second := job.RunInteractiveBatch(2)
	assert.NotNil(t, second.Terminal)
	assert.Equal(t, Ok, *second.Terminal)
	assert.Equal(t, IterDone, second.Iter)

	hunkCount, _, _, _ = job.Status.Snapshot()
	assert.Equal(t, 3, hunkCount)
	assert.Equal(t, []byte{0x11, 0x22, 0x33}, out.Bytes())
}

func Test_Job_RunInteractiveBatch_DefaultsBatchSize(t *testing.T) {
	in := newMemStream(nil)
	out := newMemStream(nil)
	patch := newMemStream([]byte("PATCHEOF"))

	job := NewJobWithStreams(in, out, patch)
	assert.NoError(t, job.StartInteractive())

	result := job.RunInteractiveBatch(0)
	assert.NotNil(t, result.Terminal)
	assert.Equal(t, Ok, *result.Terminal)
}
