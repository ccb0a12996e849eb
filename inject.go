package grove

// Injector is the construction context handed to a [Constructor]. It is bound
// to the container building the instance and carries a per-object cache, so
// every dependency of one object is resolved at most once.
//
// A nil *Injector stands for an object that was not constructed by any
// container.
type Injector struct {
	scope *Container
	cache map[ServiceID]any
}

func newInjector(c *Container) *Injector {
	return &Injector{scope: c, cache: make(map[ServiceID]any)}
}

// Scope returns the container that constructed the object, or nil.
func (in *Injector) Scope() *Container {
	if in == nil {
		return nil
	}
	return in.scope
}

// Lazy is a declared dependency of a constructed object. It resolves on the
// first call to [Lazy.Get] and returns the same value on every later call,
// even if the container's bindings change in between.
//
// The zero Lazy behaves like a required dependency of an object that was not
// constructed by a container.
type Lazy[T any] struct {
	in       *Injector
	id       *Identifier[T]
	optional bool
}

// Required declares a dependency that must resolve. Reading it fails with
// [ErrInjectorContextMissing] when in is nil and with [ErrServiceUnresolved]
// when nothing in the chain provides id.
func Required[T any](in *Injector, id *Identifier[T]) Lazy[T] {
	return Lazy[T]{in: in, id: id}
}

// Optional declares a dependency that may be absent. Reading it yields the
// zero value of T when in is nil or nothing provides id.
func Optional[T any](in *Injector, id *Identifier[T]) Lazy[T] {
	return Lazy[T]{in: in, id: id, optional: true}
}

// Get resolves the dependency on first call and returns the cached value
// afterwards. Optional dependencies only report errors that are not absence,
// such as a failing constructor.
func (l Lazy[T]) Get() (T, error) {
	var zero T
	if l.id == nil {
		if l.optional {
			return zero, nil
		}
		return zero, &ResolutionError{Code: CodeInjectorContextMissing}
	}

	c := l.in.Scope()
	if c == nil {
		if l.optional {
			return zero, nil
		}
		return zero, newError(CodeInjectorContextMissing, l.id, nil)
	}

	if v, ok := l.in.cache[l.id]; ok {
		out, _ := v.(T)
		return out, nil
	}

	v, ok, err := lookupAs(c, l.id)
	if err != nil {
		return zero, c.fail(err)
	}
	if !ok && !l.optional {
		return zero, c.fail(newError(CodeServiceUnresolved, l.id, c))
	}

	l.in.cache[l.id] = v
	return v, nil
}

// MustGet is like Get but panics on error.
func (l Lazy[T]) MustGet() T {
	v, err := l.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// Inject resolves a required dependency immediately. Use it inside a
// [Constructor] for dependencies the constructor needs right away.
func Inject[T any](in *Injector, id *Identifier[T]) (T, error) {
	return Required(in, id).Get()
}

// InjectOptional resolves an optional dependency immediately.
func InjectOptional[T any](in *Injector, id *Identifier[T]) (T, error) {
	return Optional(in, id).Get()
}
