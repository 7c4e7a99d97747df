// Package version holds the application version.
package version

// Version is the current release version.
const Version = "1.0.0"
