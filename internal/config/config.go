// Package config loads receiver settings from the environment with flag
// overrides. Every key is also reachable as a GOESRX_-prefixed variable
// so containerised deployments need no argv plumbing.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultEndpoint is where goesrecv publishes decoded frames by default.
const DefaultEndpoint = "tcp://127.0.0.1:5004"

// Config holds the receiver's settings.
type Config struct {
	// Endpoint is the nanomsg pub-sub address publishing 892-byte frames.
	Endpoint string

	// OutputRoot is where handlers write their files.
	OutputRoot string

	// CatalogPath is the sqlite index of emitted files; empty disables it.
	CatalogPath string

	// MetricsAddr serves prometheus metrics when non-empty, e.g. ":9101".
	MetricsAddr string

	LogLevel string

	// NoUI disables the terminal dashboard and logs to stderr instead.
	NoUI bool

	// FrameQueue bounds the frames waiting between the network reader and
	// the processing loop.
	FrameQueue int
}

// Load reads the environment, applies flag overrides, and takes the
// endpoint from the first positional argument if present.
func Load(args []string) (*Config, error) {
	c := &Config{
		Endpoint:    getEnv("GOESRX_ENDPOINT", DefaultEndpoint),
		OutputRoot:  getEnv("GOESRX_OUTPUT", "./goes_out"),
		CatalogPath: os.Getenv("GOESRX_CATALOG"),
		MetricsAddr: os.Getenv("GOESRX_METRICS_ADDR"),
		LogLevel:    getEnv("GOESRX_LOG_LEVEL", "info"),
		NoUI:        getEnvBool("GOESRX_NO_UI", false),
		FrameQueue:  getEnvInt("GOESRX_FRAME_QUEUE", 64),
	}

	fs := flag.NewFlagSet("goesrx", flag.ContinueOnError)
	out := fs.String("out", c.OutputRoot, "Output root directory")
	catalog := fs.String("catalog", c.CatalogPath, "Sqlite catalog path (empty = disabled)")
	metrics := fs.String("metrics", c.MetricsAddr, "Prometheus listen address (empty = disabled)")
	level := fs.String("loglevel", c.LogLevel, "Log level (debug, info, warn, error)")
	noUI := fs.Bool("no-ui", c.NoUI, "Disable the terminal dashboard")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	c.OutputRoot = *out
	c.CatalogPath = *catalog
	c.MetricsAddr = *metrics
	c.LogLevel = *level
	c.NoUI = *noUI

	switch fs.NArg() {
	case 0:
	case 1:
		c.Endpoint = fs.Arg(0)
	default:
		return nil, fmt.Errorf("config: at most one endpoint argument expected, got %d", fs.NArg())
	}

	if !strings.Contains(c.Endpoint, "://") {
		return nil, fmt.Errorf("config: endpoint %q is not a URL", c.Endpoint)
	}
	if c.FrameQueue < 1 {
		c.FrameQueue = 1
	}
	return c, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "":
		return def
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}
