package main

/*------------------------------------------------------------------
 *
 * Purpose:   	Command line front end for the rombp patch interpreter.
 *
 * Description:	Applies one IPS or BPS patch, or - with --manifest - a
 *		whole batch of them from a YAML file. This is the
 *		"headless" run mode from spec §4.7; the interactive UI
 *		mode is an external collaborator, out of scope here.
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
		inputFile       = pflag.StringP("input", "i", "", "Input ROM file.")
		patchFile       = pflag.StringP("patch", "p", "", "Patch file, IPS or BPS.")
		outputFile      = pflag.StringP("output", "o", "", "Output ROM file.")
		manifestFile    = pflag.String("manifest", "", "Run a batch of jobs from a YAML manifest instead of a single -i/-p/-o job.")
		verbose         = pflag.BoolP("verbose", "v", false, "Verbose logging.")
		timestampFormat = pflag.String("timestamp-format", "", "Add a 'ts' field with a 'strftime' format time stamp to log lines.")
		help            = pflag.BoolP("help", "h", false, "Display help text.")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - Apply an IPS or BPS patch to a ROM file.\n\n", os.Args[0])
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()

		return
	}

	if err := rombp.ConfigureLogger(os.Stderr, *verbose, *timestampFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid --timestamp-format: %s\n", err)
		os.Exit(1)
	}

	if *manifestFile != "" {
		os.Exit(runManifestMode(*manifestFile))
	}

	os.Exit(runSingleJob(*inputFile, *patchFile, *outputFile))
}

func runSingleJob(input, patch, output string) int {
	flags := rombp.SingleJobFlags{Input: input, Patch: patch, Output: output}
	if err := flags.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: -i, -p and -o are all required.\n\n", os.Args[0])
		pflag.Usage()

		return 1
	}

	cmd := rombp.PatchCommand{InputFile: input, PatchFile: patch, OutputFile: output}

	job, err := rombp.NewJob(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot write ROM: %s\n", err)

		return 1
	}
	defer job.Close()

	term := job.RunHeadless()
	hunkCount, _, _, jobErr := job.Status.Snapshot()

	if jobErr != nil {
		fmt.Fprintln(os.Stderr, jobErr)
	}

	rombp.LogJobFinished(cmd, term, hunkCount)
	fmt.Println(term.Message(hunkCount))

	return rombp.ExitCode(term)
}

func runManifestMode(path string) int {
	manifest, err := rombp.LoadManifest(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return 1
	}

	results := rombp.RunManifest(manifest)

	for _, r := range results {
		fmt.Printf("%s -> %s: %s\n", r.Job.Patch, r.Job.Output, r.Terminal.Message(r.HunkCount))
	}

	if rombp.AnyFailed(results) {
		return 1
	}

	return 0
}
