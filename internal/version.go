package internal

// Version is the build version, overridden at build time with
// -ldflags "-X github.com/vocdoni/modelpass/internal.Version=v1.2.3".
var Version = "dev"
