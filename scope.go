package grove

import "sync"

// Subtree is the part of a host tree a binding can be made visible to. The
// host decides what a subtree is; the container only tells it which scope
// provides which identifier.
type Subtree interface {
	// Expose records that scope provides id for this subtree. When a subtree
	// is wrapped more than once for the same id, the first call (the
	// innermost wrapper) wins.
	Expose(id ServiceID, scope *Container)
}

// ScopeWrapper restricts the visibility of one binding to the subtree it
// wraps. It is returned by [Provide] and [ProvideSelf].
type ScopeWrapper func(Subtree) Subtree

func (c *Container) wrapper(id ServiceID) ScopeWrapper {
	return func(s Subtree) Subtree {
		s.Expose(id, c)
		return s
	}
}

// Pipe composes wrappers so that Pipe(a, b)(s) is a(b(s)): the last wrapper
// is applied first and is the innermost.
func Pipe(wrappers ...ScopeWrapper) ScopeWrapper {
	return func(s Subtree) Subtree {
		for i := len(wrappers) - 1; i >= 0; i-- {
			s = wrappers[i](s)
		}
		return s
	}
}

// ---------------------------------------------------------------------------
// Default root
// ---------------------------------------------------------------------------

var (
	defaultRootMu sync.Mutex
	defaultRoot   *Container
)

// ContainerID identifies the container service itself. Bind it with
// [ProvideSelf]; when no container in a chain does, lookups fall back to
// [DefaultRoot].
var ContainerID = NewIdentifierWithDefault[*Container]("Instantiation", DefaultRoot)

// DefaultRoot returns the process-wide root container, creating it on first
// use. It is the parent of last resort for scopes opened by a host tree that
// never provided a container of its own.
//
// Prefer building an explicit root with [New] in the composition root and
// passing it down; the default root exists so that code without any container
// hierarchy still resolves something.
func DefaultRoot() *Container {
	defaultRootMu.Lock()
	defer defaultRootMu.Unlock()
	if defaultRoot == nil {
		defaultRoot = New(WithName("default"))
	}
	return defaultRoot
}

// CloseDefaultRoot disposes the default root if it was ever created. Call it
// once from the composition root on shutdown; the default root is unusable
// afterwards.
func CloseDefaultRoot() error {
	defaultRootMu.Lock()
	c := defaultRoot
	defaultRootMu.Unlock()
	if c == nil {
		return nil
	}
	return c.Dispose()
}
