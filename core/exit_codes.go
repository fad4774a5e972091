package core

// Process exit codes.
const (
	ExitCodeSuccess     = 0
	ExitCodeError       = 1
	ExitCodeConfigError = 2
)
