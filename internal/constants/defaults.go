package constants

import "time"

// Deployment defaults. Every value here can be overridden in stackup.yaml or
// via STACKUP_* environment variables.
const (
	DefaultProject     = "fotogram"
	DefaultEnvironment = "production"
	DefaultRegion      = "us-east-1"

	DefaultNetworkTemplate   = "network.yml"
	DefaultNetworkParameters = "network-parameters.json"

	DefaultAppTemplate   = "app.yml"
	DefaultAppParameters = "app-parameters.json"

	DefaultAssetSource      = "static/index.html"
	DefaultAssetKey         = "index.html"
	DefaultAssetContentType = "text/html"
)

// DefaultConfigFileName is the project-local configuration file used when
// --config is not given.
const DefaultConfigFileName = "stackup.yaml"

// Stack polling. Interval times attempts bounds the wait for any single
// stack operation (30s x 120 = 60 minutes).
const (
	DefaultPollInterval    = 30 * time.Second
	DefaultPollMaxAttempts = 120
)

// DefaultCommandTimeout caps an entire deploy or destroy run, covering two
// sequential stack waits plus request overhead.
const DefaultCommandTimeout = 3 * time.Hour

// ScriptContextTimeout is the timeout for script context operations.
const ScriptContextTimeout = 10 * time.Second

// LongScriptContextTimeout is the timeout for longer script context operations.
const LongScriptContextTimeout = 30 * time.Second
