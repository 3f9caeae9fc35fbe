package mailbox

// Version information for the mailbox module.
const (
	// Version is the current version of the mailbox module.
	Version = "1.0.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "1.0.0"
)
