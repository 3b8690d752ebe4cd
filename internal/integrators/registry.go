package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/robonav/internal/dynamo"
)

var constructors = map[string]func(dynamo.Limits) dynamo.Integrator{
	"arc":   func(l dynamo.Limits) dynamo.Integrator { return NewUnicycle(l) },
	"euler": func(l dynamo.Limits) dynamo.Integrator { return NewEuler(l) },
}

// New returns the named integrator bound to l. An empty name selects "arc".
func New(name string, l dynamo.Limits) (dynamo.Integrator, error) {
	if name == "" {
		name = "arc"
	}
	fn, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown integrator %q", dynamo.ErrInvalidConfig, name)
	}
	return fn(l), nil
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
