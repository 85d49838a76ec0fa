package version

// Overridden at build time with -ldflags "-X deckcounter/version.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	GitURL    = "unknown"
	BuildDate = "unknown"
)
