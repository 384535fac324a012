package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/devstack-tools/localconf/util"
)

var (
	trueTokens  = []string{"1", "yes", "Yes", "YES", "true", "True", "TRUE", "on", "On", "ON"}
	falseTokens = []string{"0", "no", "No", "NO", "false", "False", "FALSE", "off", "Off", "OFF"}
)

// ParseBool accepts the tokens DevStack's trueorfalse accepts
func ParseBool(s string) (bool, error) {
	if util.Contains(trueTokens, s) {
		return true, nil
	}
	if util.Contains(falseTokens, s) {
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean", s)
}

// ParseBytes parses sizes such as 1024, 512K, 6G or 2GB
func ParseBytes(s string) (int64, error) {
	v := strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(s)), "B")
	factor := int64(1)
	if n := len(v); n > 0 {
		switch v[n-1] {
		case 'K':
			factor = 1024
		case 'M':
			factor = 1024 * 1024
		case 'G':
			factor = 1024 * 1024 * 1024
		case 'T':
			factor = 1024 * 1024 * 1024 * 1024
		}
		if factor > 1 {
			v = v[:n-1]
		}
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("%q is not a size", s)
	}
	return i * factor, nil
}

// GetString returns the value of key, or defValue if it is not set
func (c *Config) GetString(key string, defValue string) string {
	if v, ok := c.keyValues[key]; ok {
		return v
	}
	return defValue
}

// GetBool gets value of key as bool
func (c *Config) GetBool(key string, defValue bool) bool {
	value, ok := c.keyValues[key]

	if ok {
		b, err := ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defValue
}

// GetInt gets value of the key as int
func (c *Config) GetInt(key string, defValue int) int {
	value, ok := c.keyValues[key]

	if ok {
		i, err := strconv.Atoi(strings.TrimSpace(value))
		if err == nil {
			return i
		}
	}
	return defValue
}

// GetBytes returns value of the key as a size in bytes.
//
//	SWIFT_LOOPBACK_DISK_SIZE=6G
//	IRONIC_VM_SPECS_DISK=10GB
func (c *Config) GetBytes(key string, defValue int64) int64 {
	value, ok := c.keyValues[key]

	if ok {
		i, err := ParseBytes(value)
		if err == nil {
			return i
		}
	}
	return defValue
}

// GetCIDR parses the value of key as a CIDR network
func (c *Config) GetCIDR(key string) (*net.IPNet, error) {
	value, ok := c.keyValues[key]
	if !ok {
		return nil, fmt.Errorf("%s is not set", key)
	}
	_, network, err := net.ParseCIDR(strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return network, nil
}

// GetList splits the value of key on commas
func (c *Config) GetList(key string) []string {
	value, ok := c.keyValues[key]
	if !ok {
		return make([]string, 0)
	}
	return util.SplitList(value)
}

// HasParameter checks if key has a value
func (c *Config) HasParameter(key string) bool {
	_, ok := c.keyValues[key]
	return ok
}
