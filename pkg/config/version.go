package config

// Version is the version of the client, set at build time.
var Version = "0.0.0-dev"
