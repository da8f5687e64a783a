// Package exitcode provides standardized exit codes for assetpipe
package exitcode

// Exit codes for the assetpipe CLI
const (
	Success         = 0
	GeneralError    = 1
	ConfigError     = 2
	ValidationError = 3
	FileSystemError = 4
	PartialFailure  = 5
	ToolNotFound    = 6
	Aborted         = 7
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case ValidationError:
		return "Validation error"
	case FileSystemError:
		return "File system error"
	case PartialFailure:
		return "Completed with per-item errors"
	case ToolNotFound:
		return "External tool not found"
	case Aborted:
		return "Aborted by user"
	default:
		return "Unknown error"
	}
}
