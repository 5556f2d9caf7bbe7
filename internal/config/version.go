package config

// Version is the LifeOS server version, reported by /health.
// Set at build time via: -ldflags "-X github.com/lifeos-app/lifeos/internal/config.Version=<tag>"
var Version = "dev"
