package constants

// UI-related constants for console output formatting.
const (
	// HeaderSeparatorLength is the length of separator lines in headers.
	HeaderSeparatorLength = 50
)
