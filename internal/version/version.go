// ABOUTME: Version and product constants
// ABOUTME: Identifies the player build in logs and the TUI header
package version

const (
	// Version of the player
	Version = "0.1.0"

	// Product name shown in the TUI and startup log
	Product = "Sendspin Device Player"

	// Manufacturer of the software
	Manufacturer = "Sendspin"
)
