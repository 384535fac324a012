package config

// DefaultPaths holds the configuration file locations DevStack's service
// libraries define. Config.Expand falls back to them so post-config
// section names such as $NOVA_CONF resolve.
var DefaultPaths = map[string]string{
	"NOVA_CONF":                  "/etc/nova/nova.conf",
	"NOVA_CPU_CONF":              "/etc/nova/nova-cpu.conf",
	"NEUTRON_CONF":               "/etc/neutron/neutron.conf",
	"NEUTRON_CORE_PLUGIN_CONF":   "/etc/neutron/plugins/ml2/ml2_conf.ini",
	"Q_PLUGIN_CONF_FILE":         "etc/neutron/plugins/ml2/ml2_conf.ini",
	"Q_DHCP_CONF_FILE":           "/etc/neutron/dhcp_agent.ini",
	"Q_L3_CONF_FILE":             "/etc/neutron/l3_agent.ini",
	"GLANCE_API_CONF":            "/etc/glance/glance-api.conf",
	"CINDER_CONF":                "/etc/cinder/cinder.conf",
	"KEYSTONE_CONF":              "/etc/keystone/keystone.conf",
	"PLACEMENT_CONF":             "/etc/placement/placement.conf",
	"IRONIC_CONF_FILE":           "/etc/ironic/ironic.conf",
	"IRONIC_INSPECTOR_CONF_FILE": "/etc/ironic-inspector/inspector.conf",
	"SWIFT_CONF_DIR":             "/etc/swift",
	"TEMPEST_CONFIG":             "/opt/stack/tempest/etc/tempest.conf",
}
