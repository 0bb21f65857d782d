package rombp

/*------------------------------------------------------------------
 *
 * Purpose:	Batch manifest - run several patch jobs unattended from
 *		one YAML document (SPEC_FULL.md §3).
 *
 * Description:	Grounded on the teacher's tocalls.yaml decode pattern
 *		(src/deviceid.go) for the yaml.v3 usage, and on
 *		cmd/log2gpx's "keep going on one bad entry, summarize,
 *		nonzero exit on any failure" shape.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ManifestJob is one entry in a batch manifest.
type ManifestJob struct {
	Input  string `yaml:"input"`
	Patch  string `yaml:"patch"`
	Output string `yaml:"output"`
}

// Manifest is a batch of patch jobs to run sequentially.
type Manifest struct {
	Jobs []ManifestJob `yaml:"jobs"`
}

// LoadManifest reads and parses a YAML manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("rombp: reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("rombp: parsing manifest: %w", err)
	}

	return &m, nil
}

// ManifestResult is the outcome of running one manifest entry.
type ManifestResult struct {
	Job       ManifestJob
	Terminal  TerminalStatus
	HunkCount int
	Err       error
}

// RunManifest runs every job in m sequentially through the same job
// runner the single-job CLI path uses (no parallelism, consistent
// with spec §5's single-worker-per-job model). A failing job is
// recorded and does not stop the remaining jobs.
func RunManifest(m *Manifest) []ManifestResult {
	results := make([]ManifestResult, 0, len(m.Jobs))

	for _, job := range m.Jobs {
		cmd := PatchCommand{InputFile: job.Input, PatchFile: job.Patch, OutputFile: job.Output}

		j, err := NewJob(cmd)
		if err != nil {
			results = append(results, ManifestResult{Job: job, Terminal: IOError, Err: err})

			continue
		}

		term := j.RunHeadless()
		hunkCount, _, _, _ := j.Status.Snapshot()

		LogJobFinished(cmd, term, hunkCount)

		j.Close()

		results = append(results, ManifestResult{Job: job, Terminal: term, HunkCount: hunkCount})
	}

	return results
}

// AnyFailed reports whether any result in results is not Ok - the
// manifest runner's nonzero-exit-code signal.
func AnyFailed(results []ManifestResult) bool {
	for _, r := range results {
		if r.Terminal != Ok {
			return true
		}
	}

	return false
}
