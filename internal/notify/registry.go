package notify

// NamedSink pairs a sink with the name it was registered under.
type NamedSink struct {
	Name string
	Sink Sink
}

// Registry is an ordered, name-keyed SinkRegistry. It is not safe for
// concurrent Register calls; populate it before serving.
type Registry struct {
	sinks []NamedSink
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a sink under name, replacing any sink already registered
// with that name in place.
func (r *Registry) Register(name string, s Sink) {
	for i := range r.sinks {
		if r.sinks[i].Name == name {
			r.sinks[i].Sink = s
			return
		}
	}
	r.sinks = append(r.sinks, NamedSink{Name: name, Sink: s})
}

// Get returns the sink registered under name, or false if none is.
func (r *Registry) Get(name string) (Sink, bool) {
	for _, s := range r.sinks {
		if s.Name == name {
			return s.Sink, true
		}
	}
	return nil, false
}

// Sinks returns the registered sinks in registration order.
func (r *Registry) Sinks() []NamedSink {
	return r.sinks
}
