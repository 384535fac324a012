package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/devstack-tools/localconf/config"
	"github.com/devstack-tools/localconf/services"
	"github.com/devstack-tools/localconf/validate"
	"github.com/kballard/go-shellquote"
)

// CheckCommand loads the configuration and reports check findings
type CheckCommand struct {
	Rules []string `short:"r" long:"rule" description:"only apply the named rule, may be repeated"`
}

// ShowCommand prints resolved variables
type ShowCommand struct {
	Format string `short:"f" long:"format" description:"output format" choice:"plain" choice:"shell" choice:"json" default:"plain"`
}

// ServicesCommand prints the enabled services
type ServicesCommand struct {
	Plugins  bool `short:"p" long:"plugins" description:"print the enabled plugins instead"`
	Disabled bool `short:"d" long:"disabled" description:"print the explicitly disabled services instead"`
	Groups   bool `short:"g" long:"groups" description:"print the enabled members of each service group"`
}

// SectionsCommand prints the meta-sections
type SectionsCommand struct {
}

var checkCommand CheckCommand
var showCommand ShowCommand
var servicesCommand ServicesCommand
var sectionsCommand SectionsCommand

// Execute loads the configuration and applies the check rules. A parse or
// resolve error and any error finding fail the command.
func (x *CheckCommand) Execute(args []string) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}

	rules := validate.DefaultRules
	if len(x.Rules) > 0 {
		rules = validate.Select(x.Rules...)
		if len(rules) != len(x.Rules) {
			return fmt.Errorf("unknown rule in %s", strings.Join(x.Rules, ", "))
		}
	}
	r := validate.Check(c, rules...)
	for _, f := range r.Findings {
		fmt.Fprintln(out, r.Format(f))
	}

	if n := r.Count(validate.Error); n > 0 {
		return fmt.Errorf("%s: %d errors, %d warnings", c.File(), n, r.Count(validate.Warning))
	}
	fmt.Fprintf(out, "%s: ok, %d warnings\n", c.File(), r.Count(validate.Warning))
	return nil
}

// Execute prints the variables named in args, or all of them
func (x *ShowCommand) Execute(args []string) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}

	keys := args
	if len(keys) == 0 {
		keys = c.Keys()
	}
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		v, ok := c.Get(key)
		if !ok {
			return fmt.Errorf("%s is not set in %s", key, c.File())
		}
		values[key] = v
	}

	switch x.Format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(values)
	case "shell":
		for _, key := range keys {
			fmt.Fprintf(out, "export %s=%s\n", key, shellquote.Join(values[key]))
		}
	default:
		for _, key := range keys {
			fmt.Fprintf(out, "%s=%s\n", key, values[key])
		}
	}
	return nil
}

// Execute prints one service or plugin per line
func (x *ServicesCommand) Execute(args []string) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}

	switch {
	case x.Plugins:
		for _, p := range c.Plugins() {
			fmt.Fprintln(out, strings.TrimSpace(strings.Join([]string{p.Name, p.URL, p.Branch}, " ")))
		}
	case x.Groups:
		groups := services.DefaultGroups()
		for _, group := range groups.GetAllGroup() {
			if members := groups.Members(group, c.Services()); len(members) > 0 {
				fmt.Fprintf(out, "%s\t%s\n", group, strings.Join(members, ","))
			}
		}
	case x.Disabled:
		for _, name := range c.Disabled().Names() {
			fmt.Fprintln(out, name)
		}
	default:
		for _, name := range c.Services().Names() {
			fmt.Fprintln(out, name)
		}
	}
	return nil
}

// Execute prints the meta-sections with their expanded target files
func (x *SectionsCommand) Execute(args []string) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}
	for _, sec := range c.Sections() {
		target := sec.File
		if !sec.IsLocalrc() {
			if expanded, err := c.Expand(sec.File); err == nil {
				target = expanded
			} else if !config.IsUnresolved(err) {
				return err
			}
		}
		fmt.Fprintf(out, "%d\t[[%s|%s]]\t%s\n", sec.Line, sec.Phase, sec.File, target)
	}
	return nil
}

func init() {
	parser.AddCommand("check",
		"check the configuration",
		"The check subcommand loads the configuration and reports password, type, service and plugin problems",
		&checkCommand)
	parser.AddCommand("show",
		"show resolved variables",
		"The show subcommand prints the resolved value of the given variables, or of all variables",
		&showCommand)
	parser.AddCommand("services",
		"list enabled services",
		"The services subcommand prints the services enabled after applying every directive",
		&servicesCommand)
	parser.AddCommand("sections",
		"list meta-sections",
		"The sections subcommand prints every [[phase|file]] section with its expanded file name",
		&sectionsCommand)
}
