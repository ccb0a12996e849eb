package grove

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Constructor builds the instance for a binding. in is bound to the container
// that owns the binding; dependencies pulled through it resolve against that
// container and its ancestors.
//
// Arguments the implementation needs besides its dependencies are captured by
// the closure:
//
//	grove.Provide(c, IClient, func(in *grove.Injector) (Client, error) {
//		return newClient(in, baseURL, timeout)
//	})
type Constructor[T any] func(in *Injector) (T, error)

// Disposable is implemented by instances that release resources when their
// owning container is disposed. Instances implementing
// interface{ Dispose() error } or [io.Closer] are disposed as well.
type Disposable interface {
	Dispose()
}

// Container is one scope in a tree of containers. It owns its bindings and the
// instances it constructs, and delegates lookups it cannot satisfy to its
// parent. Use [New] for a root container and [Container.NewChild] for nested
// scopes.
type Container struct {
	id     string
	name   string
	parent *Container

	logger  zerolog.Logger
	log     zerolog.Logger
	metrics *Metrics

	bindings  map[ServiceID]*binding
	order     []ServiceID
	instances map[ServiceID]any

	// owned holds constructed instances in construction order. Dispose walks
	// it in reverse so dependents go before their dependencies.
	owned []ownedInstance

	// building is the stack of identifiers under construction in this
	// container, used to report cycles.
	building []ServiceID

	// tree is shared by every container of one tree.
	tree *tree

	disposed bool
}

type binding struct {
	id      ServiceID
	factory func(*Injector) (any, error)

	// borrowed instances are not disposed with the container.
	borrowed     bool
	constructing bool
}

// tree tracks how many factories are running anywhere in a container tree.
// Failures are only recorded once depth is back to zero.
type tree struct {
	depth int
}

type ownedInstance struct {
	id       ServiceID
	instance any
}

// BindingInfo describes a binding registered on a container.
type BindingInfo struct {
	Service     string
	Initialized bool
	Borrowed    bool
}

// New creates an empty root container.
func New(opts ...Option) *Container {
	return newContainer(nil, opts)
}

func newContainer(parent *Container, opts []Option) *Container {
	c := &Container{
		id:        uuid.NewString(),
		parent:    parent,
		logger:    zerolog.Nop(),
		bindings:  make(map[ServiceID]*binding),
		instances: make(map[ServiceID]any),
		tree:      &tree{},
	}
	if parent != nil {
		c.logger = parent.logger
		c.metrics = parent.metrics
		c.tree = parent.tree
	}

	for _, opt := range opts {
		opt(c)
	}

	lc := c.logger.With().Str("scope", c.id)
	if c.name != "" {
		lc = lc.Str("scope_name", c.name)
	}
	if parent != nil {
		lc = lc.Str("parent", parent.id)
	}
	c.log = lc.Logger()

	c.metrics.scopeOpened()
	c.log.Debug().Msg("scope created")
	return c
}

// NewChild creates a container whose parent is c. The child sees every
// binding of c and its ancestors, including ones added after the child was
// created, unless it provides its own. c is not modified.
func (c *Container) NewChild(opts ...Option) (*Container, error) {
	if c.disposed {
		return nil, c.fail(newError(CodeUseAfterDispose, nil, c))
	}
	return newContainer(c, opts), nil
}

// NewChildOf creates a container whose parent is whatever parent yields. A nil
// resolver, or one that yields no container, produces a root container. This
// is how a host tree opens a scope boundary below the currently visible
// container.
func NewChildOf(parent Resolver[*Container], opts ...Option) (*Container, error) {
	if parent == nil {
		return New(opts...), nil
	}
	p, ok, err := parent()
	if err != nil {
		return nil, err
	}
	if !ok || p == nil {
		return New(opts...), nil
	}
	return p.NewChild(opts...)
}

// ID returns the unique identifier of the container.
func (c *Container) ID() string { return c.id }

// Name returns the name set with [WithName].
func (c *Container) Name() string { return c.name }

// Parent returns the parent container, or nil for a root.
func (c *Container) Parent() *Container { return c.parent }

// Disposed reports whether [Container.Dispose] has been called.
func (c *Container) Disposed() bool { return c.disposed }

// State returns the lifecycle state of the container.
func (c *Container) State() State {
	switch {
	case c.disposed:
		return Disposed
	case len(c.bindings) == 0:
		return Empty
	default:
		return Active
	}
}

// Has reports whether c itself binds id. Ancestors are not consulted.
func (c *Container) Has(id ServiceID) bool {
	_, ok := c.bindings[id]
	return ok
}

// Bindings lists the bindings registered on c, in registration order.
func (c *Container) Bindings() []BindingInfo {
	out := make([]BindingInfo, 0, len(c.order))
	for _, id := range c.order {
		_, initialized := c.instances[id]
		out = append(out, BindingInfo{
			Service:     id.Name(),
			Initialized: initialized,
			Borrowed:    c.bindings[id].borrowed,
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Registration
// ---------------------------------------------------------------------------

// Provide registers ctor as the implementation of id on c. The instance is
// built on first resolution and memoized for the lifetime of c.
//
// The first registration of an identifier on a container wins: later calls
// for the same id on the same container are no-ops and leave the original
// binding in place. Providing the same id on a child container shadows the
// parent's binding for lookups starting at the child.
//
// The returned [ScopeWrapper] lets a host tree restrict the binding's
// visibility to the subtree it wraps.
func Provide[T any](c *Container, id *Identifier[T], ctor Constructor[T]) (ScopeWrapper, error) {
	if id == nil {
		return nil, ErrNilIdentifier
	}
	if ctor == nil {
		return nil, fmt.Errorf("%w: %s", ErrNilConstructor, id.name)
	}
	err := c.register(&binding{
		id: id,
		factory: func(in *Injector) (any, error) {
			return ctor(in)
		},
	})
	if err != nil {
		return nil, err
	}
	return c.wrapper(id), nil
}

// ProvideFunc is [Provide] for implementations without dependencies.
func ProvideFunc[T any](c *Container, id *Identifier[T], fn func() T) (ScopeWrapper, error) {
	if fn == nil {
		return Provide[T](c, id, nil)
	}
	return Provide(c, id, func(*Injector) (T, error) {
		return fn(), nil
	})
}

// ProvideSelf binds [ContainerID] to c itself, so scopes opened below the
// wrapped subtree use c as their parent. c never disposes itself through this
// binding.
func ProvideSelf(c *Container) (ScopeWrapper, error) {
	err := c.register(&binding{
		id: ContainerID,
		factory: func(*Injector) (any, error) {
			return c, nil
		},
		borrowed: true,
	})
	if err != nil {
		return nil, err
	}
	return c.wrapper(ContainerID), nil
}

func (c *Container) register(b *binding) error {
	if c.disposed {
		return c.fail(newError(CodeUseAfterDispose, b.id, c))
	}
	if _, exists := c.bindings[b.id]; exists {
		c.log.Debug().Str("service", b.id.Name()).Msg("binding already registered, keeping first")
		return nil
	}
	c.bindings[b.id] = b
	c.order = append(c.order, b.id)
	return nil
}

// ---------------------------------------------------------------------------
// Dispose
// ---------------------------------------------------------------------------

// Dispose disposes every instance c constructed, in reverse construction
// order, and marks c as disposed. Instances borrowed from ancestors are left
// alone, and child containers are not disposed: each scope is disposed by
// whoever created it.
//
// Errors returned by instances are joined. Dispose is idempotent; calls after
// the first return nil.
func (c *Container) Dispose() error {
	if c.disposed {
		return nil
	}
	c.disposed = true

	var errs []error
	for i := len(c.owned) - 1; i >= 0; i-- {
		o := c.owned[i]
		if err := disposeInstance(o.instance); err != nil {
			c.log.Warn().Err(err).Str("service", o.id.Name()).Msg("instance dispose failed")
			errs = append(errs, fmt.Errorf("disposing %s: %w", o.id.Name(), err))
		}
		c.metrics.instanceDisposed(o.id)
	}

	c.log.Debug().Int("instances", len(c.owned)).Msg("scope disposed")
	c.metrics.scopeClosed()

	c.owned = nil
	c.instances = nil
	c.building = nil
	return errors.Join(errs...)
}

func disposeInstance(v any) error {
	switch d := v.(type) {
	case interface{ Dispose() error }:
		return d.Dispose()
	case Disposable:
		d.Dispose()
		return nil
	case io.Closer:
		return d.Close()
	}
	return nil
}

// fail records err on the metrics and returns it unchanged. Failures raised
// while a factory is running are left to the outermost caller, so one failed
// resolution counts once.
func (c *Container) fail(err error) error {
	if err != nil && c.tree.depth == 0 {
		c.metrics.resolutionFailed(err)
	}
	return err
}
