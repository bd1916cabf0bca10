package exitcode

// Exit codes for the dxfsync CLI.
// A scheduler can use these to decide whether a rerun makes sense.
const (
	// Success - pass completed; per-row failures are recorded in the table
	Success = 0

	// ConfigError - missing or invalid configuration
	// Don't retry: fix the config first
	ConfigError = 1

	// NetworkError - transient failure reaching Grist (timeout, DNS, refused)
	// Retry on the next schedule
	NetworkError = 2

	// APIError - Grist returned an error (auth, unknown doc/table, bad request)
	// Check logs, may need manual intervention
	APIError = 3

	// StorageError - MinIO bucket check or creation failed
	// Retry on the next schedule
	StorageError = 4
)
