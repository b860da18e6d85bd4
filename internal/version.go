package internal

// Version is the build version string, overridden at build time with
// -ldflags "-X github.com/zkforge/snarkpipe/internal.Version=...".
var Version = "dev"
