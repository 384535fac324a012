package config

import (
	"os"
	"strings"
)

type options struct {
	env          map[string]string
	envFiles     []string
	environ      bool
	baseServices []string
	lenient      bool
}

// Option customizes how a local.conf is resolved
type Option func(o *options)

// WithEnv seeds variables visible to expansions
func WithEnv(env map[string]string) Option {
	return func(o *options) {
		for k, v := range env {
			o.env[k] = v
		}
	}
}

// WithEnvFile seeds variables from a KEY=value file
func WithEnvFile(path string) Option {
	return func(o *options) {
		o.envFiles = append(o.envFiles, path)
	}
}

// WithEnviron seeds variables from the process environment
func WithEnviron() Option {
	return func(o *options) {
		o.environ = true
	}
}

// WithBaseServices sets ENABLED_SERVICES before local.conf is applied
func WithBaseServices(names []string) Option {
	return func(o *options) {
		o.baseServices = append([]string(nil), names...)
	}
}

// WithLenient expands unresolved references to the empty string and
// records them instead of failing
func WithLenient() Option {
	return func(o *options) {
		o.lenient = true
	}
}

func environ() map[string]string {
	result := make(map[string]string)
	for _, env := range os.Environ() {
		t := strings.SplitN(env, "=", 2)
		if len(t) == 2 {
			result[t[0]] = t[1]
		}
	}
	return result
}
