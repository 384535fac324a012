// Package metaconfig renders the parts of a local.conf that DevStack
// writes to disk: the extracted localrc, resolved variables, and the INI
// payloads of meta-sections merged into their target files.
package metaconfig

import (
	"fmt"
	"io"

	"github.com/devstack-tools/localconf/config"
	"github.com/kballard/go-shellquote"
	log "github.com/sirupsen/logrus"
)

// WriteLocalrc writes the localrc sections of c, as written, to path
func WriteLocalrc(c *config.Config, path string) error {
	text := c.Document().LocalrcText()
	if err := writeFile(path, []byte(text)); err != nil {
		return err
	}
	log.WithFields(log.Fields{"file": path, "source": c.File()}).Info("write localrc")
	return nil
}

// WriteEnv writes the resolved variables of c as export statements a
// shell can source
func WriteEnv(w io.Writer, c *config.Config) error {
	for _, key := range c.Keys() {
		value, _ := c.Get(key)
		if _, err := fmt.Fprintf(w, "export %s=%s\n", key, shellquote.Join(value)); err != nil {
			return err
		}
	}
	return nil
}

// Merge merges the INI payload of sec into the INI file at target
func Merge(sec *config.Section, target string) error {
	ini, err := config.LoadINIFile(target)
	if err != nil {
		return fmt.Errorf("load %q: %w", target, err)
	}
	ini.Merge(sec.INI())
	return writeFile(target, []byte(ini.String()))
}

// Apply merges every meta-section of phase into its target file below
// root. Section file names are expanded with c.Expand first, so
// [[post-config|$NOVA_CONF]] lands in root/etc/nova/nova.conf.
func Apply(c *config.Config, phase string, root string) ([]*Result, error) {
	w := NewWriter(root)

	order := make([]string, 0)
	merged := make(map[string]*config.INI)
	names := make(map[string]string)
	for _, sec := range c.Document().Find(phase, "") {
		if sec.IsLocalrc() {
			continue
		}
		name, err := c.Expand(sec.File)
		if err != nil {
			return nil, fmt.Errorf("[[%s|%s]]: %w", sec.Phase, sec.File, err)
		}
		fullPath, err := w.Path(name)
		if err != nil {
			return nil, err
		}

		ini, ok := merged[fullPath]
		if !ok {
			if ini, err = config.LoadINIFile(fullPath); err != nil {
				return nil, fmt.Errorf("load %q: %w", fullPath, err)
			}
			merged[fullPath] = ini
			order = append(order, fullPath)
			names[fullPath] = name
		}
		ini.Merge(sec.INI())
		log.WithFields(log.Fields{"phase": phase, "section": sec.File, "file": fullPath}).Debug("merge meta-section")
	}

	files := make([]*File, 0, len(order))
	for _, fullPath := range order {
		files = append(files, &File{
			Name:    fmt.Sprintf("[[%s|%s]]", phase, names[fullPath]),
			Path:    names[fullPath],
			Content: merged[fullPath].String(),
		})
	}
	return w.Commit(files)
}
