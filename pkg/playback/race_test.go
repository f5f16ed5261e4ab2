//go:build race

// ABOUTME: Race detector build flag for tests
// ABOUTME: Allocation assertions are skipped under the race detector
package playback

const raceEnabled = true
