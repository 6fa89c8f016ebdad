package preflight

import (
	"errors"
	"strings"

	"chaptersplit/internal/config"
	"chaptersplit/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check a run needs before any pipeline stage starts:
// required tools, the input file, and the output location.
func RunAll(cfg *config.Config, inputPath, outputDir string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range CheckSystemDeps(cfg) {
		detail := status.Path
		if !status.Available {
			detail = status.Detail
		}
		results = append(results, Result{Name: status.Name, Passed: status.Available || status.Optional, Detail: detail})
	}
	results = append(results, CheckInputFile(inputPath))
	results = append(results, CheckOutputParent(outputDir))
	return results
}

// Err folds failed results into a single setup failure, or nil when all passed.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r.Name+": "+r.Detail)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrSetup, "preflight", "", strings.Join(failed, "; "), errors.New("preflight checks failed"))
}
