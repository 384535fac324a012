package services

import (
	"bytes"
	"sort"
	"strings"
)

// Groups maps a service group such as "nova" to the name prefixes of its
// member services such as "n-".
type Groups struct {
	prefixes map[string][]string
}

// NewGroups creates an empty group table
func NewGroups() *Groups {
	return &Groups{prefixes: make(map[string][]string)}
}

// DefaultGroups returns the groups DevStack's is_service_enabled knows about
func DefaultGroups() *Groups {
	g := NewGroups()
	g.Add("nova", "n-")
	g.Add("glance", "g-")
	g.Add("cinder", "c-")
	g.Add("neutron", "q-")
	g.Add("neutron", "neutron-")
	g.Add("swift", "s-")
	g.Add("ironic", "ir-")
	g.Add("placement", "placement-")
	g.Add("keystone", "key")
	g.Add("horizon", "horizon")
	return g
}

// Clone copies the group table
func (g *Groups) Clone() *Groups {
	n := NewGroups()
	for k, v := range g.prefixes {
		n.prefixes[k] = append([]string(nil), v...)
	}
	return n
}

// Add registers a member prefix for group
func (g *Groups) Add(group string, prefix string) {
	for _, p := range g.prefixes[group] {
		if p == prefix {
			return
		}
	}
	g.prefixes[group] = append(g.prefixes[group], prefix)
}

// GetAllGroup returns the sorted group names
func (g *Groups) GetAllGroup() []string {
	result := make([]string, 0, len(g.prefixes))
	for group := range g.prefixes {
		result = append(result, group)
	}
	sort.Strings(result)
	return result
}

// InGroup checks if a service belongs to a group or not
func (g *Groups) InGroup(service string, group string) bool {
	for _, prefix := range g.prefixes[group] {
		if strings.HasPrefix(service, prefix) {
			return true
		}
	}
	return false
}

// GetGroup returns the first group the service belongs to, or defGroup
func (g *Groups) GetGroup(service string, defGroup string) string {
	for _, group := range g.GetAllGroup() {
		if g.InGroup(service, group) {
			return group
		}
	}
	return defGroup
}

// Members returns the services of l that belong to group
func (g *Groups) Members(group string, l *List) []string {
	result := make([]string, 0)
	if _, ok := g.prefixes[group]; !ok {
		return result
	}
	for _, name := range l.names {
		if g.InGroup(name, group) {
			result = append(result, name)
		}
	}
	return result
}

func (g *Groups) String() string {
	buf := bytes.NewBuffer(make([]byte, 0))
	for _, group := range g.GetAllGroup() {
		buf.WriteString(group)
		buf.WriteString(":")
		buf.WriteString(strings.Join(g.prefixes[group], ","))
		buf.WriteString(";")
	}
	return buf.String()
}
