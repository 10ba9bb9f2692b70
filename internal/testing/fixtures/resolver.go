package fixtures

import (
	"fmt"
	"sync"
	"testing"
)

// Scope controls how long a resolved fixture value is cached.
type Scope string

const (
	// ScopeTest caches the value for one resolver, i.e. one test.
	ScopeTest Scope = "test"
	// ScopeSession caches the value for the whole process. Session-scoped
	// fixtures must not touch a test database; each test's database dies
	// with the test.
	ScopeSession Scope = "session"
)

// Node declares one named fixture: what it depends on and how to build it.
type Node struct {
	Name      string
	Scope     Scope
	DependsOn []string
	Build     func(c *Context) (any, error)
}

// Context is passed to a node's Build function to reach its dependencies
// and the entity factory.
type Context struct {
	r *Resolver
}

// Factory returns the entity factory for the current test database.
func (c *Context) Factory() *Factory {
	return c.r.factory
}

// Get resolves a dependency by name. The dependency should be listed in
// the node's DependsOn so cycles are detected before any entity is built.
func (c *Context) Get(name string) (any, error) {
	return c.r.resolve(name)
}

// Dep resolves a dependency and asserts its type.
func Dep[T any](c *Context, name string) (T, error) {
	var zero T
	v, err := c.Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("fixtures: %q resolved to %T, not %T", name, v, zero)
	}
	return typed, nil
}

// Registry holds fixture node declarations plus the session-scoped cache.
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]Node

	sessionMu sync.Mutex
	session   map[string]any
}

// NewRegistry returns an empty fixture registry.
func NewRegistry() *Registry {
	return &Registry{
		nodes:   make(map[string]Node),
		session: make(map[string]any),
	}
}

// Register adds a fixture node. Registering the same name twice is an error.
func (reg *Registry) Register(n Node) error {
	if n.Name == "" {
		return fmt.Errorf("fixtures: node with empty name")
	}
	if n.Build == nil {
		return fmt.Errorf("fixtures: node %q has no build function", n.Name)
	}
	if n.Scope == "" {
		n.Scope = ScopeTest
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, exists := reg.nodes[n.Name]; exists {
		return fmt.Errorf("fixtures: node %q registered twice", n.Name)
	}
	reg.nodes[n.Name] = n
	return nil
}

// MustRegister is Register for package-level registry construction.
func (reg *Registry) MustRegister(n Node) {
	if err := reg.Register(n); err != nil {
		panic(err)
	}
}

func (reg *Registry) node(name string) (Node, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	n, ok := reg.nodes[name]
	return n, ok
}

// checkAcyclic walks the declared dependency graph from name and returns a
// CycleError with the full path if it ever revisits a node on the current
// walk. This runs before any Build function, so a cyclic request creates
// nothing.
func (reg *Registry) checkAcyclic(name string) error {
	var walk func(n string, path []string, onPath map[string]bool) error
	walk = func(n string, path []string, onPath map[string]bool) error {
		if onPath[n] {
			return &CycleError{Path: append(append([]string{}, path...), n)}
		}
		node, ok := reg.node(n)
		if !ok {
			return fmt.Errorf("fixtures: %w: %q", ErrUnknownFixture, n)
		}
		onPath[n] = true
		path = append(path, n)
		for _, dep := range node.DependsOn {
			if err := walk(dep, path, onPath); err != nil {
				return err
			}
		}
		onPath[n] = false
		return nil
	}
	return walk(name, nil, map[string]bool{})
}

// Resolver resolves fixture values for one test. Test-scoped values are
// cached on the resolver; session-scoped values on the registry.
type Resolver struct {
	reg     *Registry
	factory *Factory

	cache map[string]any
	stack []string
}

// NewResolver creates a resolver bound to a registry and an entity factory.
// Create one resolver per test; sharing a resolver shares its cache.
func NewResolver(reg *Registry, f *Factory) *Resolver {
	return &Resolver{
		reg:     reg,
		factory: f,
		cache:   make(map[string]any),
	}
}

// Resolve builds the named fixture and everything it depends on.
// The declared dependency graph is checked for cycles first, so a cyclic
// fixture fails with the full cycle path and no side effects.
func (r *Resolver) Resolve(name string) (any, error) {
	if err := r.reg.checkAcyclic(name); err != nil {
		return nil, err
	}
	return r.resolve(name)
}

// MustResolve is Resolve for use directly in tests.
func (r *Resolver) MustResolve(t *testing.T, name string) any {
	t.Helper()
	v, err := r.Resolve(name)
	if err != nil {
		t.Fatalf("fixtures: failed to resolve %q: %v", name, err)
	}
	return v
}

// Resolve builds the named fixture via the given resolver and asserts its
// type, failing the test on any error.
func Resolve[T any](t *testing.T, r *Resolver, name string) T {
	t.Helper()
	v := r.MustResolve(t, name)
	typed, ok := v.(T)
	if !ok {
		var zero T
		t.Fatalf("fixtures: %q resolved to %T, not %T", name, v, zero)
	}
	return typed
}

func (r *Resolver) resolve(name string) (any, error) {
	node, ok := r.reg.node(name)
	if !ok {
		return nil, fmt.Errorf("fixtures: %w: %q", ErrUnknownFixture, name)
	}

	if v, ok := r.cache[name]; ok {
		return v, nil
	}
	if node.Scope == ScopeSession {
		if v, ok := r.sessionCached(name); ok {
			return v, nil
		}
	}

	// Undeclared Get calls bypass the static check; the stack catches them.
	for _, on := range r.stack {
		if on == name {
			return nil, &CycleError{Path: append(append([]string{}, r.stack...), name)}
		}
	}

	r.stack = append(r.stack, name)
	v, err := node.Build(&Context{r: r})
	r.stack = r.stack[:len(r.stack)-1]
	if err != nil {
		return nil, fmt.Errorf("fixtures: building %q: %w", name, err)
	}

	if node.Scope == ScopeSession {
		v = r.storeSession(name, v)
	} else {
		r.cache[name] = v
	}
	return v, nil
}

func (r *Resolver) sessionCached(name string) (any, bool) {
	r.reg.sessionMu.Lock()
	defer r.reg.sessionMu.Unlock()
	v, ok := r.reg.session[name]
	return v, ok
}

func (r *Resolver) storeSession(name string, v any) any {
	r.reg.sessionMu.Lock()
	defer r.reg.sessionMu.Unlock()
	// A concurrent test may have built it first; keep the existing value so
	// every test in the session observes the same fixture.
	if existing, ok := r.reg.session[name]; ok {
		return existing
	}
	r.reg.session[name] = v
	return v
}
