package robot

import (
	"fmt"
	"sort"
	"sync"

	"github.com/san-kum/robonav/internal/control"
	"github.com/san-kum/robonav/internal/dynamo"
)

// Variant describes a robot body: its limits and the sign convention its
// reachability check uses.
type Variant struct {
	Description string
	Limits      dynamo.Limits
	Polarity    control.Polarity
}

type Registry struct {
	mu       sync.RWMutex
	variants map[string]Variant
}

func NewRegistry() *Registry {
	r := &Registry{variants: make(map[string]Variant)}

	r.variants["standard"] = Variant{
		Description: "slow wide turns",
		Limits:      dynamo.Limits{MaxVelocity: 0.1, MaxAngularVelocity: 0.003},
		Polarity:    control.PolarityBlocked,
	}
	r.variants["nimble"] = Variant{
		Description: "fast tight turns",
		Limits:      dynamo.Limits{MaxVelocity: 0.5, MaxAngularVelocity: 0.1},
		Polarity:    control.PolarityClear,
	}

	return r
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// DefaultRegistry returns the process-wide registry holding the built-in
// variants.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() { defaultRegistry = NewRegistry() })
	return defaultRegistry
}

func (r *Registry) Register(name string, v Variant) error {
	if err := v.Limits.Validate(); err != nil {
		return fmt.Errorf("variant %s: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variants[name] = v
	return nil
}

func (r *Registry) Get(name string) (Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variants[name]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %s", dynamo.ErrUnknownVariant, name)
	}
	return v, nil
}

// New builds a fresh robot of the named variant.
func (r *Registry) New(name string, opts ...Option) (*Robot, error) {
	v, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return New(name, v.Limits, v.Polarity, opts...), nil
}

func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.variants))
	for name := range r.variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Next returns the variant after name in sorted order, wrapping around.
func (r *Registry) Next(name string) string {
	names := r.List()
	if len(names) == 0 {
		return name
	}
	for i, n := range names {
		if n == name {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}
