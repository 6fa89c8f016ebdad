// Package segment extracts each chapter of an input file into its own
// container file using ffmpeg stream copy.
//
// Chapters run strictly in ordinal order; the first failing chapter aborts
// the split with an *Error naming it.
package segment
