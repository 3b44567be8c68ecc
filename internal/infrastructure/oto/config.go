package oto

import (
	"github.com/spf13/cast"
)

// Plugin configuration keys
const (
	KeyRetailerID    = "RETAILER_ID"
	KeyRetailerToken = "RETAILER_TOKEN"
	KeyAccessToken   = "ACCESS_TOKEN"
	KeySandbox       = "SANDBOX"
	KeyStoreName     = "STORE_NAME"
)

// Config is the opaque key-value plugin configuration as stored by the
// host platform. Missing keys read as zero values.
type Config map[string]any

// Get returns the raw value stored under key
func (c Config) Get(key string) any {
	if c == nil {
		return nil
	}
	return c[key]
}

// String returns the value under key as a string ("" when absent)
func (c Config) String(key string) string {
	return cast.ToString(c.Get(key))
}

// Bool returns the value under key as a bool (false when absent or not
// parseable)
func (c Config) Bool(key string) bool {
	return cast.ToBool(c.Get(key))
}

// IsSandbox reports whether requests go to the OTO sandbox
func (c Config) IsSandbox() bool {
	return c.Bool(KeySandbox)
}

// Credentials is the retailer login used against the OTO auth endpoint
type Credentials struct {
	RetailerID string `json:"retailerId"`
	Password   string `json:"password"`
}

// AuthCredentials extracts the retailer credentials from the plugin
// configuration. Values are not validated.
func AuthCredentials(cfg Config) Credentials {
	return Credentials{
		RetailerID: cfg.String(KeyRetailerID),
		Password:   cfg.String(KeyRetailerToken),
	}
}
