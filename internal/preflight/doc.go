// Package preflight provides readiness checks for the external tools and
// filesystem paths a run depends on.
//
// These checks run in two contexts:
//   - The pipeline calls RunAll before probing; any failure is a setup
//     failure and nothing is written.
//   - The CLI "check" command uses CheckSystemDeps to display tool status.
package preflight
