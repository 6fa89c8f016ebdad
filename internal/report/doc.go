// Package report gathers the per-file summary printed after a run.
package report
