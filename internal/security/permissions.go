package security

import "os"

const (
	// PermConfigFile is for configuration files containing the webhook secret.
	// rw-r----- (0640): owner can read/write, group can read, others have no access.
	PermConfigFile os.FileMode = 0640

	// PermLogFile is for log files that may contain deployment information.
	// rw-r----- (0640): owner can read/write, group can read, others have no access.
	PermLogFile os.FileMode = 0640

	// PermDirectory is for directories created by the service (log directories).
	// rwxr-x--- (0750): owner has full access, group can read/enter, others have no access.
	PermDirectory os.FileMode = 0750
)
