// ABOUTME: Audio file decoder package for multiple codec support
// ABOUTME: Decodes MP3, FLAC, WAV and Ogg Opus files into a playable Source
// Package decode turns an encoded audio file into an audio.Source.
//
// Supports: MP3, FLAC, WAV (PCM) and Ogg Opus.
//
// Every decoder reads the whole stream and scales samples to the full
// 32-bit range, so the result can be played without further conversion
// state.
//
// Example:
//
//	src, err := decode.DecodeFile("track.flac")
package decode
