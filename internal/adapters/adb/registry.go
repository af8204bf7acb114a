package adb

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/KhazixW2/MaaMCP/internal/ports"
)

// Registry is the in-process controller registry. Controller IDs are minted
// here at connect time and live until Remove or process exit.
type Registry struct {
	mu          sync.Mutex
	controllers map[string]ports.Controller
}

func NewRegistry() *Registry {
	return &Registry{controllers: make(map[string]ports.Controller)}
}

// Connect registers a controller for the given transport and returns its
// handle. Connecting the same kind+serial twice returns the existing handle
// so repeated connect calls stay idempotent.
func (r *Registry) Connect(kind ports.ControllerKind, serial, label string) ports.Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.controllers {
		if c.Kind == kind && c.Serial == serial {
			return c
		}
	}

	c := ports.Controller{
		ID:     fmt.Sprintf("%s-%s", kind, uuid.NewString()[:8]),
		Kind:   kind,
		Serial: serial,
		Label:  label,
	}
	r.controllers[c.ID] = c
	return c
}

func (r *Registry) Register(c ports.Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.controllers[c.ID] = c
}

func (r *Registry) Resolve(id string) (ports.Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[id]
	return c, ok
}

func (r *Registry) List() []ports.Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ports.Controller, 0, len(r.controllers))
	for _, c := range r.controllers {
		out = append(out, c)
	}
	return out
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.controllers, id)
}

var _ ports.ControllerRegistry = (*Registry)(nil)
