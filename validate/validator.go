package validate

import (
	"github.com/devstack-tools/localconf/config"
	log "github.com/sirupsen/logrus"
)

// Rule inspects a resolved configuration and reports findings
type Rule struct {
	Name  string
	Check func(c *config.Config, r *Report)
}

// DefaultRules are applied by Check when no rules are given
var DefaultRules = []Rule{
	{Name: "unresolved", Check: checkUnresolved},
	{Name: "password-consistency", Check: checkPasswords},
	{Name: "typed-values", Check: checkTypedValues},
	{Name: "duplicate-key", Check: checkDuplicates},
	{Name: "service-conflict", Check: checkServiceConflicts},
	{Name: "plugin-url", Check: checkPluginURLs},
	{Name: "ironic-driver", Check: checkIronic},
	{Name: "network", Check: checkNetwork},
	{Name: "meta-phase", Check: checkPhases},
}

// Check applies rules, or DefaultRules if none are given, to c
func Check(c *config.Config, rules ...Rule) *Report {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	r := newReport(c.File())
	for _, rule := range rules {
		rule.Check(c, r)
	}
	r.sort()

	log.WithFields(log.Fields{
		"file":     c.File(),
		"errors":   r.Count(Error),
		"warnings": r.Count(Warning),
	}).Debug("checked configuration")
	return r
}

// Select returns the default rules named, in default order
func Select(names ...string) []Rule {
	result := make([]Rule, 0, len(names))
	for _, rule := range DefaultRules {
		for _, name := range names {
			if rule.Name == name {
				result = append(result, rule)
				break
			}
		}
	}
	return result
}

func checkUnresolved(c *config.Config, r *Report) {
	for _, ure := range c.Unresolved() {
		r.Errorf("unresolved", ure.Key, ure.Line, "%s", ure.Error())
	}
}
