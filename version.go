package diastole

// Build metadata, overridden at link time:
//
//	go build -ldflags "-X github.com/aretw0/diastole.Version=v0.3.0 -X github.com/aretw0/diastole.Commit=$(git rev-parse --short HEAD)"
var (
	Version   = "0.2.2"
	Commit    = "none"
	BuildDate = "unknown"
)
