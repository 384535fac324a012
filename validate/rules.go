package validate

import (
	"net"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/devstack-tools/localconf/config"
	"github.com/devstack-tools/localconf/util"
)

const adminPasswordKey = "ADMIN_PASSWORD"

var (
	boolKeys = []string{
		"SWIFT_ENABLE_TEMPURLS", "IRONIC_BAREMETAL_BASIC_OPS", "IRONIC_BUILD_DEPLOY_RAMDISK",
		"IRONIC_IS_HARDWARE", "IRONIC_USE_MOD_WSGI", "IRONIC_VM_LOG_CONSOLE", "RECLONE",
		"OFFLINE", "FORCE", "USE_PYTHON3", "Q_USE_SECGROUP", "INSTALL_TEMPEST", "LOG_COLOR",
		"VERBOSE", "DEBUG_LIBVIRT", "ENABLE_DEBUG_LOG_LEVEL",
	}
	intKeys = []string{
		"IRONIC_VM_COUNT", "IRONIC_VM_SPECS_RAM", "IRONIC_VM_SPECS_DISK", "IRONIC_VM_SPECS_CPU",
		"IRONIC_VM_EPHEMERAL_DISK", "FIXED_NETWORK_SIZE", "NUM_NETWORKS", "SWIFT_REPLICAS",
		"API_WORKERS", "IRONIC_HTTP_PORT",
	}
	cidrKeys = []string{"IPV4_ADDRS_SAFE_TO_USE", "IPV6_ADDRS_SAFE_TO_USE", "IRONIC_PROVISION_SUBNET_PREFIX"}
	ipKeys   = []string{"HOST_IP", "HOST_IPV6", "SERVICE_HOST", "IRONIC_PROVISION_SUBNET_GATEWAY"}
	sizeKeys = []string{"SWIFT_LOOPBACK_DISK_SIZE", "VOLUME_BACKING_FILE_SIZE"}
	pathKeys = []string{"DEST", "LOGFILE", "SCREEN_LOGDIR", "LOGDIR"}

	pluginSchemes = []string{"http", "https", "git", "ssh", "file"}
	scpLikeURL    = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9.-]+:[^/].*$`)

	defaultHardwareTypes = "ipmi,fake-hardware"
)

func isPasswordKey(key string) bool {
	return strings.HasSuffix(key, "_PASSWORD") || key == "SERVICE_TOKEN"
}

// lastAssignment returns the final assignment of key, if any
func lastAssignment(c *config.Config, key string) (config.Assignment, bool) {
	assignments := c.AssignmentsOf(key)
	if len(assignments) == 0 {
		return config.Assignment{}, false
	}
	return assignments[len(assignments)-1], true
}

func checkPasswords(c *config.Config, r *Report) {
	admin, _ := c.Get(adminPasswordKey)
	_, adminSet := c.Lookup(adminPasswordKey)
	adminAssignments := c.AssignmentsOf(adminPasswordKey)

	hasPasswords := false
	for _, key := range c.Keys() {
		if !isPasswordKey(key) {
			continue
		}
		hasPasswords = true
		a, ok := lastAssignment(c, key)
		if !ok {
			continue
		}
		if a.Value == "" {
			r.Errorf("password-consistency", key, a.Line, "password is empty")
			continue
		}
		if key == adminPasswordKey || !a.References(adminPasswordKey) {
			continue
		}

		// the value ADMIN_PASSWORD had when key was assigned
		then, thenKnown := "", false
		reassigned := 0
		for _, aa := range adminAssignments {
			if aa.Line < a.Line {
				then, thenKnown = aa.Value, true
			} else if aa.Line > a.Line {
				reassigned = aa.Line
			}
		}
		if reassigned > 0 && (!thenKnown || then != admin) {
			r.Errorf("password-consistency", key, a.Line,
				"resolved $%s before it was reassigned at line %d, the values differ", adminPasswordKey, reassigned)
		}
	}

	if hasPasswords && !adminSet {
		r.Warnf("password-consistency", adminPasswordKey, 0, "not set, stack.sh will prompt for it")
	}
}

func checkTypedValues(c *config.Config, r *Report) {
	for _, key := range c.Keys() {
		a, ok := lastAssignment(c, key)
		if !ok || a.Value == "" {
			continue
		}
		v := a.Value
		switch {
		case util.Contains(boolKeys, key):
			if _, err := config.ParseBool(v); err != nil {
				r.Errorf("typed-values", key, a.Line, "%q is not a boolean (True or False)", v)
			}
		case util.Contains(intKeys, key) || strings.HasSuffix(key, "_COUNT") || strings.HasSuffix(key, "_PORT"):
			if c.GetInt(key, -1) < 0 {
				r.Errorf("typed-values", key, a.Line, "%q is not a non-negative integer", v)
			}
		case util.Contains(cidrKeys, key) || strings.HasSuffix(key, "_RANGE"):
			if _, err := c.GetCIDR(key); err != nil {
				r.Errorf("typed-values", key, a.Line, "%q is not a CIDR", v)
			}
		case util.Contains(ipKeys, key) || strings.HasSuffix(key, "_GATEWAY"):
			if net.ParseIP(v) == nil {
				r.Errorf("typed-values", key, a.Line, "%q is not an IP address", v)
			}
		case util.Contains(sizeKeys, key) || strings.HasSuffix(key, "_DISK_SIZE"):
			if _, err := config.ParseBytes(v); err != nil {
				r.Errorf("typed-values", key, a.Line, "%q is not a size", v)
			}
		case util.Contains(pathKeys, key) || strings.HasSuffix(key, "_DIR"):
			if !filepath.IsAbs(v) {
				r.Warnf("typed-values", key, a.Line, "%q is not an absolute path", v)
			}
		}
	}
}

func checkDuplicates(c *config.Config, r *Report) {
	for _, key := range c.Keys() {
		lines := make([]int, 0)
		for _, a := range c.AssignmentsOf(key) {
			if !a.Append {
				lines = append(lines, a.Line)
			}
		}
		if len(lines) > 1 {
			r.Warnf("duplicate-key", key, lines[len(lines)-1], "assigned %d times (lines %s), the last assignment wins", len(lines), joinInts(lines))
		}
	}
}

func checkServiceConflicts(c *config.Config, r *Report) {
	for _, conflict := range c.ServiceState().Conflicts() {
		last := conflict.Events[len(conflict.Events)-1]
		final := "disabled"
		if conflict.Final {
			final = "enabled"
		}
		r.Warnf("service-conflict", conflict.Service, last.Line,
			"both enabled and disabled, the directive at line %d wins (%s)", last.Line, final)
	}
}

func checkPluginURLs(c *config.Config, r *Report) {
	for _, plugin := range c.Plugins() {
		if scpLikeURL.MatchString(plugin.URL) {
			continue
		}
		u, err := url.Parse(plugin.URL)
		if err != nil {
			r.Errorf("plugin-url", plugin.Name, plugin.Line, "invalid URL %q: %v", plugin.URL, err)
			continue
		}
		if !util.Contains(pluginSchemes, u.Scheme) {
			r.Errorf("plugin-url", plugin.Name, plugin.Line, "URL %q must use one of %s", plugin.URL, strings.Join(pluginSchemes, ", "))
			continue
		}
		if u.Scheme == "file" {
			if (u.Host != "" && u.Host != "localhost") || !filepath.IsAbs(u.Path) {
				r.Errorf("plugin-url", plugin.Name, plugin.Line, "file URL %q must name an absolute path", plugin.URL)
			}
		} else if u.Host == "" {
			r.Errorf("plugin-url", plugin.Name, plugin.Line, "URL %q has no host", plugin.URL)
		}
	}
}

func checkIronic(c *config.Config, r *Report) {
	hasPlugin := false
	for _, plugin := range c.Plugins() {
		if plugin.Name == "ironic" {
			hasPlugin = true
		}
	}

	if v, ok := lastAssignment(c, "VIRT_DRIVER"); ok && v.Value == "ironic" && !hasPlugin {
		r.Errorf("ironic-driver", "VIRT_DRIVER", v.Line, "VIRT_DRIVER=ironic requires enable_plugin ironic")
	}
	if !hasPlugin {
		for _, key := range c.Keys() {
			if strings.HasPrefix(key, "IRONIC_") {
				a, _ := lastAssignment(c, key)
				r.Warnf("ironic-driver", key, a.Line, "has no effect without enable_plugin ironic")
				break
			}
		}
		return
	}

	if d, ok := lastAssignment(c, "IRONIC_DEPLOY_DRIVER"); ok && d.Value != "" {
		types := util.SplitList(c.GetString("IRONIC_ENABLED_HARDWARE_TYPES", defaultHardwareTypes))
		if !util.Contains(types, d.Value) {
			r.Errorf("ironic-driver", "IRONIC_DEPLOY_DRIVER", d.Line, "%q is not in IRONIC_ENABLED_HARDWARE_TYPES (%s)", d.Value, strings.Join(types, ","))
		}
	}
}

func checkNetwork(c *config.Config, r *Report) {
	gw, ok := lastAssignment(c, "NETWORK_GATEWAY")
	if !ok {
		return
	}
	network, err := c.GetCIDR("FIXED_RANGE")
	ip := net.ParseIP(gw.Value)
	if err != nil || ip == nil {
		return
	}
	if !network.Contains(ip) {
		r.Warnf("network", "NETWORK_GATEWAY", gw.Line, "%s is outside FIXED_RANGE %s", gw.Value, network)
	}
}

func checkPhases(c *config.Config, r *Report) {
	for _, sec := range c.Sections() {
		if !util.Contains(config.Phases, sec.Phase) {
			r.Warnf("meta-phase", "", sec.Line, "unknown phase %q in [[%s|%s]]", sec.Phase, sec.Phase, sec.File)
		}
		if sec.Phase == "local" && sec.File != "localrc" {
			r.Warnf("meta-phase", "", sec.Line, "the local phase only supports localrc, [[%s|%s]] is ignored", sec.Phase, sec.File)
		}
	}
}

func joinInts(values []int) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, ", ")
}
