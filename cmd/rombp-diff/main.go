package main

/*------------------------------------------------------------------
 *
 * Purpose:   	Report what a patch would touch, without writing any
 *		output file.
 *
 * Description:	Runs the same dispatcher/decoder pipeline as cmd/rombp,
 *		but against an in-memory DiscardStream instead of a real
 *		output file - exactly the scenario spec §9 asks the
 *		Stream abstraction to support. Modeled on the teacher's
 *		read-only inspector binaries (cmd/decode_aprs,
 *		cmd/tt2text) that parse a binary format and print a
 *		report without mutating anything. DiscardStream never
 *		retains the bytes a BPS TargetCopy reads back, so a
 *		TargetCopy of non-zero bytes makes its output CRC differ
 *		from the trailer; the job is run with SkipChecksum so that
 *		mismatch doesn't fail the report. The report prints the
 *		detected kind, the hunk count, and one line per write the
 *		decoder made to the output (offset and length).
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"github.com/blakesmith/rombp"
	"github.com/spf13/pflag"
)

func main() {
	var (
		inputFile = pflag.StringP("input", "i", "", "Input ROM file.")
		patchFile = pflag.StringP("patch", "p", "", "Patch file, IPS or BPS.")
		help      = pflag.BoolP("help", "h", false, "Display help text.")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - Report what a patch would touch, without applying it.\n\n", os.Args[0])
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help || *inputFile == "" || *patchFile == "" {
		pflag.Usage()

		if *help {
			return
		}

		os.Exit(1)
	}

	os.Exit(run(*inputFile, *patchFile))
}

func run(inputFile, patchFile string) int {
	in, err := rombp.OpenFileStream(inputFile, os.O_RDONLY, 0)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return 1
	}
	defer in.Close()

	patch, err := rombp.OpenFileStream(patchFile, os.O_RDONLY, 0)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return 1
	}
	defer patch.Close()

	out := rombp.NewDiscardStream()
	job := rombp.NewJobWithStreams(in, out, patch)
	job.SkipChecksum = true

	term := job.RunHeadless()
	hunkCount, _, _, _ := job.Status.Snapshot()

	fmt.Printf("kind: %s\n", job.Kind())
	fmt.Printf("hunks: %d\n", hunkCount)

	for i, r := range out.Touched {
		fmt.Printf("  [%d] offset=%d length=%d\n", i, r.Offset, r.Length)
	}

	fmt.Println(term.Message(hunkCount))

	return rombp.ExitCode(term)
}
