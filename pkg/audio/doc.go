// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines the Source type and sample width conversion functions
// Package audio provides the decoded sample buffer played by a session.
//
// A Source holds interleaved int32 samples scaled to full 32-bit range, so a
// 16-bit value v is stored as v<<16 and a 24-bit value as v<<8. Converting to
// a device representation is a plain arithmetic shift (see package convert).
//
// Example:
//
//	src, err := audio.NewSource(samples, 2, 44100)
//	fmt.Println(src.Len(), src.Duration())
package audio
