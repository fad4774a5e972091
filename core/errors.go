package core

import "fmt"

// ConfigError is a configuration problem with an actionable instruction.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors.
const (
	ErrCodeNoPipeline  = "NO_PIPELINE"
	ErrCodeInvalidPort = "INVALID_PORT"
	ErrCodeBadModel    = "BAD_MODEL_PATH"
)

// ErrNoPipeline reports that neither a local model nor a cloud key is
// configured, so no generation backend can be constructed.
func ErrNoPipeline() *ConfigError {
	return &ConfigError{
		Code:    ErrCodeNoPipeline,
		Message: "No generation pipeline configured",
		Action:  "Set SD_MODEL_PATH to a local model file, or OPENAI_API_KEY for the cloud fallback",
	}
}

// ErrInvalidPort reports an out-of-range listen port.
func ErrInvalidPort(port int) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidPort,
		Message: fmt.Sprintf("Invalid PORT value %d", port),
		Action:  "Set PORT to a value between 1 and 65535",
	}
}
