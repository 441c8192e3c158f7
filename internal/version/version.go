package version

// Version is the current version of the QuickShare CLI.
// This value can be overridden at build time using:
//
//	go build -ldflags="-X 'github.com/jeettech-root/QuickShare-P2P/internal/version.Version=v1.0.0'"
var Version = "dev"
