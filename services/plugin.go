package services

// Plugin is a DevStack plugin enabled with enable_plugin
type Plugin struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Branch string `json:"branch,omitempty"`
	// Line is where the plugin was last enabled
	Line int `json:"line"`
}

// Plugins keeps enabled plugins in the order they were first enabled
type Plugins struct {
	list []*Plugin
}

// NewPlugins creates an empty plugin set
func NewPlugins() *Plugins {
	return &Plugins{list: make([]*Plugin, 0)}
}

// Enable adds a plugin. Enabling a name again replaces its URL and branch
// but keeps its position.
func (p *Plugins) Enable(plugin Plugin) {
	if existing, ok := p.get(plugin.Name); ok {
		*existing = plugin
		return
	}
	pl := plugin
	p.list = append(p.list, &pl)
}

func (p *Plugins) get(name string) (*Plugin, bool) {
	for _, pl := range p.list {
		if pl.Name == name {
			return pl, true
		}
	}
	return nil, false
}

// Get returns the plugin named name
func (p *Plugins) Get(name string) (Plugin, bool) {
	if pl, ok := p.get(name); ok {
		return *pl, true
	}
	return Plugin{}, false
}

// Has reports whether the plugin is enabled
func (p *Plugins) Has(name string) bool {
	_, ok := p.get(name)
	return ok
}

// All returns copies of the plugins in order
func (p *Plugins) All() []Plugin {
	result := make([]Plugin, 0, len(p.list))
	for _, pl := range p.list {
		result = append(result, *pl)
	}
	return result
}

// Names returns the plugin names in order
func (p *Plugins) Names() []string {
	result := make([]string, 0, len(p.list))
	for _, pl := range p.list {
		result = append(result, pl.Name)
	}
	return result
}

// Len returns the number of plugins
func (p *Plugins) Len() int {
	return len(p.list)
}
