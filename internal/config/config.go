// Package config loads the gateway's TOML configuration file and resolves
// process environment overrides, following the Config/DefaultConfig/
// Validate convention used throughout the teacher's server packages.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultPort is used when the PORT environment variable is unset.
const DefaultPort = "8080"

// DefaultRefillInterval matches spec §4.2's default.
const DefaultRefillInterval = 1 * time.Second

// DefaultMaxRetries and DefaultBaseDelay match spec §4.3's defaults.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 100 * time.Millisecond
)

// DefaultMaxBodyBytes matches spec §3's MAX_BODY.
const DefaultMaxBodyBytes = 1 << 20 // 1 MiB

// RPCServer is one upstream entry in the TOML file.
type RPCServer struct {
	URL          string `toml:"url"`
	CurrentLimit uint32 `toml:"current_limit"`
	RequestLimit uint32 `toml:"request_limit"`
}

// Chain is the TOML representation of one tenant's upstream set.
type Chain struct {
	RPCURLs []RPCServer `toml:"rpc_urls"`
}

// File is the top-level shape of the TOML configuration file.
type File struct {
	Chains map[string]Chain `toml:"chains"`
}

// Config is the fully resolved, validated runtime configuration: the
// parsed file plus environment overrides.
type Config struct {
	Chains         map[string]Chain
	Port           string
	RefillInterval time.Duration
	MaxRetries     int
	BaseDelay      time.Duration
	MaxBodyBytes   int64
}

// Load reads and validates the TOML file at path, then layers in the PORT
// environment variable. Any failure here is a fatal startup error — spec
// §7 classifies configuration errors as fatal, never a per-request 4xx/5xx.
func Load(path string) (*Config, error) {
	var file File
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, &Error{Op: "load", Message: fmt.Sprintf("failed to parse %s", path), Err: err}
	}

	if len(file.Chains) == 0 {
		return nil, &Error{Op: "load", Message: "configuration must define at least one chain"}
	}

	for name, chain := range file.Chains {
		if err := validateChain(name, chain); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Chains:         file.Chains,
		Port:           resolvePort(),
		RefillInterval: DefaultRefillInterval,
		MaxRetries:     DefaultMaxRetries,
		BaseDelay:      DefaultBaseDelay,
		MaxBodyBytes:   DefaultMaxBodyBytes,
	}

	return cfg, nil
}

func resolvePort() string {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		return DefaultPort
	}
	return port
}

// validateChain rejects an empty rpc_urls list and any malformed upstream
// URL or limit, per spec §6.2 and the startup-time URL validation folded
// in from original_source/.
func validateChain(name string, chain Chain) error {
	if len(chain.RPCURLs) == 0 {
		return &Error{Op: "validate", Message: fmt.Sprintf("chain %q: rpc_urls cannot be empty", name)}
	}

	for i, rpc := range chain.RPCURLs {
		if strings.TrimSpace(rpc.URL) == "" {
			return &Error{Op: "validate", Message: fmt.Sprintf("chain %q: rpc_urls[%d] has an empty url", name, i)}
		}

		parsed, err := url.Parse(rpc.URL)
		if err != nil || !parsed.IsAbs() || parsed.Host == "" {
			return &Error{Op: "validate", Message: fmt.Sprintf("chain %q: rpc_urls[%d] url %q is not an absolute HTTP(S) URL", name, i, rpc.URL)}
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return &Error{Op: "validate", Message: fmt.Sprintf("chain %q: rpc_urls[%d] url %q must be http or https", name, i, rpc.URL)}
		}

		if rpc.CurrentLimit > rpc.RequestLimit {
			return &Error{Op: "validate", Message: fmt.Sprintf("chain %q: rpc_urls[%d] current_limit (%d) exceeds request_limit (%d)", name, i, rpc.CurrentLimit, rpc.RequestLimit)}
		}
	}

	return nil
}

// Address returns the bind address for the HTTP listener: 0.0.0.0:<PORT>.
func (c *Config) Address() string {
	return "0.0.0.0:" + c.Port
}
