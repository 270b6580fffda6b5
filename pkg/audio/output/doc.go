// ABOUTME: Host audio device boundary package
// ABOUTME: Defines the pull-callback Device interface and the oto backend
// Package output defines the host audio device boundary.
//
// The mixing engine renders into a 32-bit accumulator; a Device pulls those
// blocks at a fixed cadence and converts them to its native sample format on
// the way out. The Oto backend is the default cross-platform implementation.
package output
