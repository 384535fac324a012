package services

import (
	"strings"

	"github.com/devstack-tools/localconf/util"
)

// DefaultEnabled is the ENABLED_SERVICES value DevStack starts from when
// local.conf does not set one.
var DefaultEnabled = []string{
	"key", "etcd3", "mysql", "rabbit", "tempest", "dstat",
	"n-api", "n-cpu", "n-cond", "n-sch", "n-novnc", "n-api-meta",
	"placement-api", "placement-client",
	"g-api",
	"c-sch", "c-api", "c-vol",
	"q-svc", "q-agt", "q-dhcp", "q-l3", "q-meta", "q-metering",
	"horizon",
}

// List is an ordered set of service names.
type List struct {
	names []string
}

// NewList creates a list holding names in order, duplicates dropped
func NewList(names ...string) *List {
	l := &List{names: make([]string, 0, len(names))}
	l.Enable(names...)
	return l
}

// ParseList parses a comma separated ENABLED_SERVICES value. An entry
// written as "-svc" removes svc from the result wherever it appears.
func ParseList(s string) *List {
	items := util.SplitList(s)
	negated := make([]string, 0)
	for _, item := range items {
		if strings.HasPrefix(item, "-") {
			negated = append(negated, item[1:])
		}
	}

	l := NewList()
	for _, item := range items {
		if strings.HasPrefix(item, "-") || util.Contains(negated, item) {
			continue
		}
		l.Enable(item)
	}
	return l
}

// Enable appends the services not already present
func (l *List) Enable(names ...string) {
	for _, name := range names {
		if name != "" && !l.Contains(name) {
			l.names = append(l.names, name)
		}
	}
}

// Disable removes the services from the list
func (l *List) Disable(names ...string) {
	l.names = util.Sub(l.names, names)
}

// Clear removes every service
func (l *List) Clear() {
	l.names = l.names[:0]
}

// Contains reports whether name is listed verbatim
func (l *List) Contains(name string) bool {
	return util.Contains(l.names, name)
}

// IsEnabled follows DevStack's is_service_enabled: a service is enabled if
// it is listed, or if it names a group with at least one member listed.
func (l *List) IsEnabled(name string) bool {
	return l.IsEnabledIn(name, DefaultGroups())
}

// IsEnabledIn is IsEnabled with an explicit group table.
func (l *List) IsEnabledIn(name string, groups *Groups) bool {
	if l.Contains(name) {
		return true
	}
	return len(groups.Members(name, l)) > 0
}

// Names returns a copy of the service names in order
func (l *List) Names() []string {
	result := make([]string, len(l.names))
	copy(result, l.names)
	return result
}

// Len returns the number of services
func (l *List) Len() int {
	return len(l.names)
}

// String returns the comma separated form used by ENABLED_SERVICES
func (l *List) String() string {
	return strings.Join(l.names, ",")
}
