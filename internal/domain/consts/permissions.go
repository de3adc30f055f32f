package consts

// Recommended permissions for different types of files and directories Zeku might create.
const (
	// ** World Readable **
	PermsGenericDir  = 0o755
	PermsHomeProgDir = 0o755

	// Other files
	PermsLogFile = 0o644

	// ** Private **
	// Per-download scratch directories hold partial files and exported cookies.
	PermsCacheDir   = 0o750
	PermsCookieFile = 0o600
	PermsConfigFile = 0o600
)
