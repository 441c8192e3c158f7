package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
)

// Default configuration values (production)
const (
	DefaultDomain      = "quickshare.onrender.com"
	DefaultSTUN        = "stun:stun.l.google.com:19302"
	DefaultDisplayName = "QuickShare CLI"
)

// Config holds application configuration
type Config struct {
	// Domain is the relay server domain
	Domain string

	// RelayURL is the signaling websocket endpoint, derived from Domain
	// unless set explicitly
	RelayURL string

	// InviteBase is the page invite links point at
	InviteBase string

	// ICE servers for WebRTC
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
	ForceRelay bool

	// DisplayName is announced to peers we call
	DisplayName string

	// OutputDir receives incoming files
	OutputDir string
}

// Options for loading config with CLI flag overrides
type Options struct {
	Domain      string
	RelayURL    string
	STUNServer  string
	TURNServer  string
	TURNUser    string
	TURNPass    string
	DisplayName string
	OutputDir   string
	ForceRelay  bool
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables
// 3. Hardcoded defaults - lowest priority
func Load(opts Options) (*Config, error) {
	domain := pick(opts.Domain, "DOMAIN", DefaultDomain)
	domain = strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(domain, "https://"), "http://"), "/")
	if domain == "" {
		return nil, fmt.Errorf("domain must not be empty")
	}

	relayURL := pick(opts.RelayURL, "RELAY_URL", "")
	if relayURL == "" {
		scheme := "wss"
		if isLocal(domain) {
			scheme = "ws"
		}
		relayURL = fmt.Sprintf("%s://%s/ws", scheme, domain)
	}
	if u, err := url.Parse(relayURL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return nil, fmt.Errorf("invalid relay url %q: want ws:// or wss://", relayURL)
	}

	inviteScheme := "https"
	if isLocal(domain) {
		inviteScheme = "http"
	}

	return &Config{
		Domain:      domain,
		RelayURL:    relayURL,
		InviteBase:  fmt.Sprintf("%s://%s/", inviteScheme, domain),
		STUNServer:  pick(opts.STUNServer, "STUN_SERVER", DefaultSTUN),
		TURNServer:  pick(opts.TURNServer, "TURN_SERVER", ""),
		TURNUser:    pick(opts.TURNUser, "TURN_USERNAME", ""),
		TURNPass:    pick(opts.TURNPass, "TURN_PASSWORD", ""),
		ForceRelay:  opts.ForceRelay,
		DisplayName: pick(opts.DisplayName, "DISPLAY_NAME", DefaultDisplayName),
		OutputDir:   pick(opts.OutputDir, "OUTPUT_DIR", "."),
	}, nil
}

// pick returns the flag value, then the environment variable, then def.
func pick(flag, env, def string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

func isLocal(domain string) bool {
	host := domain
	if h, _, err := net.SplitHostPort(domain); err == nil {
		host = h
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// GetSTUNServers returns STUN server URLs as strings
func (c *Config) GetSTUNServers() []string {
	if c.STUNServer == "" {
		return nil
	}
	return []string{c.STUNServer}
}

// GetTURNServers returns TURN server URLs if configured
func (c *Config) GetTURNServers() []string {
	if c.TURNServer == "" {
		return nil
	}
	host := strings.TrimPrefix(c.TURNServer, "turn:")
	return []string{
		fmt.Sprintf("turn:%s:3478?transport=udp", host),
		fmt.Sprintf("turn:%s:3478?transport=tcp", host),
		fmt.Sprintf("turns:%s:5349?transport=tcp", host),
	}
}

// GetTURNCredentials returns TURN username and password
func (c *Config) GetTURNCredentials() (string, string) {
	return c.TURNUser, c.TURNPass
}
