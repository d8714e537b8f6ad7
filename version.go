package dbevolve

var (
	Version   = "v0.0.0-dev"
	GitCommit = "unknown"
)
