package config

// Default file names, resolved against the working directory
const (
	// DefaultClippingsPath is the name the Kindle gives its export
	DefaultClippingsPath = "My Clippings.txt"

	DefaultOutputPath   = "output.json"
	DefaultProgressPath = "processed_entries.json"
)
