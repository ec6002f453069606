package version

var (
	// Version is the main version number that is being run at the
	// moment.
	Version = "0.1.0"

	// VersionPrerelease is a pre-release marker for the version. If
	// this is "" (empty string) then it means that it is a final
	// release. Otherwise, this is a pre-release such as "dev".
	VersionPrerelease = "dev"
)

// GetVersion returns the full version string.
func GetVersion() string {
	version := Version
	if VersionPrerelease != "" {
		version += "-" + VersionPrerelease
	}
	return version
}
