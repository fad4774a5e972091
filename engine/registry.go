package engine

import "fmt"

// Entry is a named pipeline registered with the studio. A pipeline exposes
// whichever capabilities its backend supports; a cloud backend may carry
// only Txt2Img.
type Entry struct {
	Name    string
	Txt2Img TextToImage
	Img2Img ImageToImage
}

// Registry holds the loaded pipelines in registration order. The first
// registered entry is the default. Registration happens once at startup;
// lookups afterwards are read-only, so no locking is needed.
type Registry struct {
	names   []string
	entries map[string]Entry
}

// NewRegistry returns an empty pipeline registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Add registers a pipeline under a unique name. Re-registering a name is a
// programming error.
func (r *Registry) Add(name string, txt2img TextToImage, img2img ImageToImage) error {
	if name == "" {
		return fmt.Errorf("engine: pipeline name cannot be empty")
	}
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("engine: pipeline %q already registered", name)
	}

	r.names = append(r.names, name)
	r.entries[name] = Entry{Name: name, Txt2Img: txt2img, Img2Img: img2img}
	return nil
}

// Get returns the pipeline registered under name. An empty name selects the
// default (first registered) pipeline.
func (r *Registry) Get(name string) (Entry, error) {
	if name == "" {
		if len(r.names) == 0 {
			return Entry{}, fmt.Errorf("%w: no pipelines registered", ErrUnknownPipeline)
		}
		name = r.names[0]
	}

	entry, ok := r.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownPipeline, name)
	}
	return entry, nil
}

// Names returns the registered pipeline names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
