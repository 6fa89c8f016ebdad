// Package testsupport holds helpers shared by package tests: stub ffmpeg and
// ffprobe binaries, probe JSON fixtures, and config builders.
package testsupport
