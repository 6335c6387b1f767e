package config

// Version is the rulekeeper binary version.
// Set at build time via: -ldflags "-X github.com/gfcbot/rulekeeper/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
