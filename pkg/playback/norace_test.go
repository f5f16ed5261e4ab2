//go:build !race

// ABOUTME: Race detector build flag for tests
// ABOUTME: Allocation assertions run when the race detector is off
package playback

const raceEnabled = false
