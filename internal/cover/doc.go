// Package cover locates an attached-picture stream and copies it out as
// folder.jpg. Extraction is best effort.
package cover
