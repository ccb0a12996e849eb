package grove

import "fmt"

// Resolver is a lazy accessor bound to one container and one identifier.
// Calling it runs resolution; ok is false when nothing in the chain provides
// the identifier and it has no default.
type Resolver[T any] func() (value T, ok bool, err error)

// Must calls r and panics if resolution fails or yields nothing.
func (r Resolver[T]) Must() T {
	v, ok, err := r()
	if err != nil {
		panic(fmt.Sprintf("grove: %v", err))
	}
	if !ok {
		panic("grove: resolver yielded no value")
	}
	return v
}

// ---------------------------------------------------------------------------
// Generic helpers
// ---------------------------------------------------------------------------

// Get returns a lazy accessor for id bound to c. It fails with
// [ErrBindingChainExhausted] when no container in c's chain binds id and id
// has no default; any other failure is deferred until the accessor is called.
func Get[T any](c *Container, id *Identifier[T]) (Resolver[T], error) {
	if id == nil {
		return nil, ErrNilIdentifier
	}
	if c.disposed {
		return nil, c.fail(newError(CodeUseAfterDispose, id, c))
	}
	if !c.bound(id) && !id.HasDefault() {
		return nil, c.fail(newError(CodeBindingChainExhausted, id, c))
	}
	return func() (T, bool, error) {
		v, ok, err := lookupAs(c, id)
		return v, ok, c.fail(err)
	}, nil
}

// Resolve returns the instance for id visible from c. It fails with
// [ErrServiceUnresolved] when nothing in the chain provides id:
//
//	client, err := grove.Resolve(c, IHTTPClient)
func Resolve[T any](c *Container, id *Identifier[T]) (T, error) {
	v, ok, err := lookupAs(c, id)
	if err != nil {
		return v, c.fail(err)
	}
	if !ok {
		return v, c.fail(newError(CodeServiceUnresolved, id, c))
	}
	return v, nil
}

// ResolveOptional is like [Resolve] but yields the zero value of T instead of
// an error when nothing provides id. Construction failures are still
// reported.
func ResolveOptional[T any](c *Container, id *Identifier[T]) (T, error) {
	v, _, err := lookupAs(c, id)
	return v, c.fail(err)
}

// ---------------------------------------------------------------------------
// Internal
// ---------------------------------------------------------------------------

func lookupAs[T any](c *Container, id *Identifier[T]) (T, bool, error) {
	var zero T
	if id == nil {
		return zero, false, ErrNilIdentifier
	}

	v, ok, err := c.lookup(id)
	if err != nil || !ok || v == nil {
		return zero, false, err
	}

	out, ok := v.(T)
	if !ok {
		return zero, false, fmt.Errorf("%s: cannot convert %T to %T", id.name, v, zero)
	}
	return out, true, nil
}

// lookup resolves id through the chain and falls back to the identifier's
// default.
func (c *Container) lookup(id ServiceID) (any, bool, error) {
	v, ok, err := c.resolve(id)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return v, true, nil
	}
	v, ok = id.fallback()
	return v, ok, nil
}

// resolve returns the memoized instance, constructs it from a local binding,
// or delegates to the parent. An instance built for a parent's binding is
// owned by the parent.
func (c *Container) resolve(id ServiceID) (any, bool, error) {
	if c.disposed {
		return nil, false, newError(CodeUseAfterDispose, id, c)
	}

	if inst, ok := c.instances[id]; ok {
		return inst, true, nil
	}

	if b, ok := c.bindings[id]; ok {
		inst, err := c.construct(b)
		if err != nil {
			return nil, false, err
		}
		return inst, true, nil
	}

	if c.parent != nil {
		return c.parent.resolve(id)
	}
	return nil, false, nil
}

// bound reports whether any container in the chain binds id.
func (c *Container) bound(id ServiceID) bool {
	for s := c; s != nil; s = s.parent {
		if s.Has(id) {
			return true
		}
	}
	return false
}

// construct runs the binding's factory with an injector bound to c and
// memoizes the result. Requesting the same binding again while its factory is
// running fails with ErrCyclicResolution.
func (c *Container) construct(b *binding) (any, error) {
	if b.constructing {
		return nil, c.cycleError(b.id)
	}

	b.constructing = true
	c.building = append(c.building, b.id)
	c.tree.depth++
	defer func() {
		c.tree.depth--
		b.constructing = false
		if n := len(c.building); n > 0 {
			c.building = c.building[:n-1]
		}
	}()

	inst, err := b.factory(newInjector(c))
	if err == nil && inst == nil {
		err = errNilInstance
	}
	if err != nil {
		e := newError(CodeConstructorFailed, b.id, c)
		e.Cause = err
		return nil, e
	}

	if c.disposed {
		// The factory disposed its own scope; nothing may own inst now.
		if !b.borrowed {
			_ = disposeInstance(inst)
		}
		return nil, newError(CodeUseAfterDispose, b.id, c)
	}

	c.instances[b.id] = inst
	if !b.borrowed {
		c.owned = append(c.owned, ownedInstance{id: b.id, instance: inst})
	}
	c.metrics.instanceConstructed(b.id)
	c.log.Debug().Str("service", b.id.Name()).Msg("instance constructed")
	return inst, nil
}

func (c *Container) cycleError(id ServiceID) error {
	chain := make([]string, 0, len(c.building)+1)
	for _, s := range c.building {
		chain = append(chain, s.Name())
	}
	chain = append(chain, id.Name())

	e := newError(CodeCyclicResolution, id, c)
	e.Chain = chain
	return e
}
