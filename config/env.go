package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-envparse"
	log "github.com/sirupsen/logrus"
)

// ReadEnvFile reads a file of KEY=value lines such as an openrc or .env file
func ReadEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := envparse.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse env file %s: %w", path, err)
	}
	log.WithFields(log.Fields{"file": path, "variables": len(r)}).Debug("read env file")
	return r, nil
}
