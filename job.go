package rombp

/*------------------------------------------------------------------
 *
 * Purpose:	Job runner - opens the three streams, drives the
 *		dispatcher to completion, and publishes progress to
 *		whatever is watching.
 *
 * Description:	Two run modes share one state machine: headless mode
 *		runs the whole job on a background goroutine and joins
 *		it; interactive mode steps a bounded batch of hunks per
 *		call so a UI loop stays responsive. Status is the only
 *		datum shared between the worker and a foreground reader,
 *		guarded by a mutex - the same shape as the teacher's
 *		tq_mutex guarding the transmit queue between producer and
 *		consumer goroutines.
 *
 *---------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// DefaultInteractiveBatch is the recommended number of Next calls per
// UI frame in interactive mode (spec §4.7).
const DefaultInteractiveBatch = 10

// PatchCommand is the record a UI collaborator hands to the job
// runner: which three files to open (spec §6's UI collaborator
// contract).
type PatchCommand struct {
	InputFile  string
	PatchFile  string
	OutputFile string
}

// Status is the mutable record a worker publishes and a foreground
// reader samples, guarded by a mutex per spec §5.
type Status struct {
	mu         sync.Mutex
	hunkCount  int
	iterStatus IterStatus
	terminal   *TerminalStatus
	err        error
}

// Snapshot returns a copy of the current status, safe to read from any
// goroutine.
func (s *Status) Snapshot() (hunkCount int, iterStatus IterStatus, terminal *TerminalStatus, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hunkCount, s.iterStatus, s.terminal, s.err
}

func (s *Status) setIter(st IterStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.iterStatus = st
}

func (s *Status) incHunk() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hunkCount++
}

func (s *Status) setTerminal(t TerminalStatus, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.terminal = &t
	s.err = err
}

// Job owns the three open streams and the dispatcher for one patch
// application. It is not safe for concurrent use by more than one
// worker at a time - only the Status is shared.
type Job struct {
	cmd    PatchCommand
	in     Stream
	out    Stream
	patch  Stream
	disp   Dispatcher
	Status *Status

	// SkipChecksum treats a BPS job's InvalidOutputChecksum as Ok at
	// End. cmd/rombp-diff sets this: its output stream is a
	// DiscardStream that reads back zeroes instead of the bytes
	// written, so a TargetCopy of non-zero bytes makes the output
	// CRC differ from the trailer and the checksum check is
	// meaningless for a dry-run report.
	SkipChecksum bool
}

// NewJob opens the three streams from cmd. On any failure, already
// opened streams are closed before returning (spec §4.7 step 1).
func NewJob(cmd PatchCommand) (*Job, error) {
	j := &Job{cmd: cmd, Status: &Status{}}

	in, err := OpenFileStream(cmd.InputFile, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("rombp: opening input: %w", err)
	}

	out, err := OpenFileStream(cmd.OutputFile, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		_ = in.Close()

		return nil, fmt.Errorf("rombp: opening output: %w", err)
	}

	patch, err := OpenFileStream(cmd.PatchFile, os.O_RDONLY, 0)
	if err != nil {
		_ = in.Close()
		_ = out.Close()

		return nil, fmt.Errorf("rombp: opening patch: %w", err)
	}

	j.in, j.out, j.patch = in, out, patch

	return j, nil
}

// NewJobWithStreams builds a Job from already-open streams - used by
// cmd/rombp-diff to swap in a DiscardStream for out.
func NewJobWithStreams(in, out, patch Stream) *Job {
	return &Job{in: in, out: out, patch: patch, Status: &Status{}}
}

// Close releases all three streams. Safe to call more than once.
func (j *Job) Close() {
	if j.in != nil {
		_ = j.in.Close()
	}

	if j.out != nil {
		_ = j.out.Close()
	}

	if j.patch != nil {
		_ = j.patch.Close()
	}
}

// RunHeadless runs the job to completion on a worker goroutine, waits
// for it, and returns the terminal status - headless mode's
// worker-plus-join shape.
func (j *Job) RunHeadless() TerminalStatus {
	done := make(chan TerminalStatus, 1)

	go func() { done <- j.runToCompletion() }()

	return <-done
}

// runToCompletion is RunHeadless's worker body: Start, the Next loop,
// and End.
func (j *Job) runToCompletion() TerminalStatus {
	if err := j.disp.Start(j.in, j.out, j.patch); err != nil {
		term := IOError
		if errors.Is(err, ErrUnknownPatchType) {
			term = UnknownPatchType
		}

		j.Status.setTerminal(term, err)

		return term
	}

	LogJobStarted(j.cmd, j.disp.Kind)

	for {
		st := j.disp.Next(j.in, j.out)
		j.Status.setIter(st)

		switch st {
		case IterNext:
			j.Status.incHunk()

			hunkCount, _, _, _ := j.Status.Snapshot()
			LogHunkApplied(hunkCount)

			continue
		case IterDone:
			term := j.disp.End()
			if j.SkipChecksum && term == InvalidOutputChecksum {
				term = Ok
			}

			j.Status.setTerminal(term, nil)

			return term
		case IterFormatError:
			j.Status.setTerminal(FormatError, nil)

			return FormatError
		default:
			j.Status.setTerminal(IOError, nil)

			return IOError
		}
	}
}

// StepResult reports what one interactive batch accomplished.
type StepResult struct {
	Terminal *TerminalStatus // non-nil once the job has reached a terminal state
	Iter     IterStatus
}

// RunInteractiveBatch advances the job by up to n Next calls, stopping
// early on Done or any error - the cooperative, single-threaded mode a
// UI loop drives between frames (spec §4.7's two run modes, §5's
// cooperative scheduling).
func (j *Job) RunInteractiveBatch(n int) StepResult {
	if n <= 0 {
		n = DefaultInteractiveBatch
	}

	for i := 0; i < n; i++ {
		st := j.disp.Next(j.in, j.out)
		j.Status.setIter(st)

		switch st {
		case IterNext:
			j.Status.incHunk()

			continue
		case IterDone:
			term := j.disp.End()
			if j.SkipChecksum && term == InvalidOutputChecksum {
				term = Ok
			}

			j.Status.setTerminal(term, nil)

			return StepResult{Terminal: &term, Iter: st}
		case IterFormatError:
			j.Status.setTerminal(FormatError, nil)
			t := FormatError

			return StepResult{Terminal: &t, Iter: st}
		default:
			j.Status.setTerminal(IOError, nil)
			t := IOError

			return StepResult{Terminal: &t, Iter: st}
		}
	}

	return StepResult{Iter: IterNext}
}

// StartInteractive runs only Start, the half of the contract an
// interactive UI needs before it starts pumping RunInteractiveBatch.
func (j *Job) StartInteractive() error {
	if err := j.disp.Start(j.in, j.out, j.patch); err != nil {
		term := IOError
		if errors.Is(err, ErrUnknownPatchType) {
			term = UnknownPatchType
		}

		j.Status.setTerminal(term, err)

		return err
	}

	LogJobStarted(j.cmd, j.disp.Kind)

	return nil
}

// Kind returns the detected patch format, valid after Start.
func (j *Job) Kind() PatchKind {
	return j.disp.Kind
}
