// Package constants defines application-wide constants and version information.
package constants

import "runtime"

// Version holds the application version information
const Version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

// Environment variables that supply command-line defaults
const (
	EnvConfig   = "HILAL_CONFIG"
	EnvLocation = "HILAL_LOCATION"
	EnvFormat   = "HILAL_FORMAT"
)
