// ABOUTME: Sample format conversion package for device output
// ABOUTME: Maps full-scale int32 samples onto a device's native representation
// Package convert describes a device's native output representation and
// converts source samples into it.
//
// Four encodings are supported: 32-bit normalized float, 16-bit integer,
// 24-bit in a 32-bit container (aligned high or low) and 32-bit integer.
// All integer conversions are arithmetic shifts and are exact.
//
// Example:
//
//	f := convert.Format{BitsPerChannel: 16, Channels: 2}
//	n := convert.Fill(deviceBuffer, f, src.Samples, cursor)
package convert
