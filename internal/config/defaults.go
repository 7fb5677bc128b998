// ABOUTME: Centralized configuration defaults for castkeep
// ABOUTME: Display formats and filesystem constants shared by the CLI

package config

// Display settings
const (
	DefaultListLimit = 20
	SnippetLength    = 120
	DateFormatShort  = "02 Jan 2006"
	DateFormatLong   = "Mon, 02 Jan 2006 15:04 MST"
)

// Storage settings
const (
	DefaultDirPerms = 0755
)
