package services

// Action is what a directive did to a service
type Action int

const (
	// Enabled by enable_service
	Enabled Action = iota
	// Disabled by disable_service
	Disabled
	// Reset by disable_all_services or an ENABLED_SERVICES assignment
	Reset
)

func (a Action) String() string {
	switch a {
	case Enabled:
		return "enable"
	case Disabled:
		return "disable"
	case Reset:
		return "reset"
	}
	return "unknown"
}

// Event records one service state change
type Event struct {
	Action  Action
	Service string
	Line    int
}

// Conflict is a service that was both enabled and disabled
type Conflict struct {
	Service string
	Events  []Event
	// Final is true if the service ended up enabled
	Final bool
}

// State is the service and plugin selection built by applying directives in order
type State struct {
	Enabled  *List
	Disabled *List
	Plugins  *Plugins
	events   []Event
}

// NewState creates a state whose enabled list starts as base
func NewState(base []string) *State {
	return &State{
		Enabled:  NewList(base...),
		Disabled: NewList(),
		Plugins:  NewPlugins(),
		events:   make([]Event, 0),
	}
}

// EnableService applies enable_service. A later enable overrides an earlier disable.
func (s *State) EnableService(line int, names ...string) {
	for _, name := range names {
		s.Disabled.Disable(name)
		s.Enabled.Enable(name)
		s.events = append(s.events, Event{Action: Enabled, Service: name, Line: line})
	}
}

// DisableService applies disable_service
func (s *State) DisableService(line int, names ...string) {
	for _, name := range names {
		s.Enabled.Disable(name)
		s.Disabled.Enable(name)
		s.events = append(s.events, Event{Action: Disabled, Service: name, Line: line})
	}
}

// DisableAll applies disable_all_services
func (s *State) DisableAll(line int) {
	s.Enabled.Clear()
	s.events = append(s.events, Event{Action: Reset, Line: line})
}

// SetEnabled replaces the enabled list, as an ENABLED_SERVICES assignment does
func (s *State) SetEnabled(line int, value string) {
	s.Enabled = ParseList(value)
	s.events = append(s.events, Event{Action: Reset, Line: line})
}

// SetDisabled replaces the disabled list, as a DISABLED_SERVICES assignment does
func (s *State) SetDisabled(value string) {
	s.Disabled = ParseList(value)
}

// EnablePlugin applies enable_plugin
func (s *State) EnablePlugin(plugin Plugin) {
	s.Plugins.Enable(plugin)
}

// Events returns the service events in processing order
func (s *State) Events() []Event {
	return append([]Event(nil), s.events...)
}

// Conflicts returns services with both enable and disable events, in the
// order they were first touched.
func (s *State) Conflicts() []Conflict {
	order := make([]string, 0)
	byService := make(map[string][]Event)
	for _, e := range s.events {
		if e.Service == "" {
			continue
		}
		if _, ok := byService[e.Service]; !ok {
			order = append(order, e.Service)
		}
		byService[e.Service] = append(byService[e.Service], e)
	}

	result := make([]Conflict, 0)
	for _, name := range order {
		events := byService[name]
		enabled, disabled := false, false
		for _, e := range events {
			switch e.Action {
			case Enabled:
				enabled = true
			case Disabled:
				disabled = true
			}
		}
		if enabled && disabled {
			result = append(result, Conflict{Service: name, Events: events, Final: s.Enabled.Contains(name)})
		}
	}
	return result
}
