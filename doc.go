// Package grove provides hierarchical, scoped service containers for Go.
//
// A [Container] owns a set of bindings, each mapping an [Identifier] to a
// [Constructor]. Instances are built lazily on first demand, memoized for the
// lifetime of the container, and torn down by [Container.Dispose]. Containers
// form a tree: a lookup that misses locally is delegated to the parent, so a
// child scope sees every ancestor binding unless it shadows it with its own.
//
// # Quick Start
//
//	var ILogger = grove.NewIdentifier[Logger]("Logger")
//
//	root := grove.New()
//	grove.Provide(root, ILogger, func(in *grove.Injector) (Logger, error) {
//		return &stdoutLogger{}, nil
//	})
//
//	log, err := grove.Resolve(root, ILogger)
//
// # Scopes
//
// [Container.NewChild] creates a nested scope. Bindings provided on the child
// shadow the parent's only for lookups that start at the child or below:
//
//	child, _ := root.NewChild()
//	grove.Provide(child, ILogger, newPrefixedLogger)
//
//	grove.Resolve(child, ILogger) // prefixed logger, owned by child
//	grove.Resolve(root, ILogger)  // stdout logger, owned by root
//
// Disposing a child disposes exactly the instances it constructed. Instances
// borrowed from an ancestor stay alive.
//
// # Injected dependencies
//
// A [Constructor] receives an [*Injector] bound to the container that is
// building the instance. Dependencies are pulled through it, either eagerly
// with [Inject] / [InjectOptional] or lazily with [Required] / [Optional]
// fields that resolve on first read:
//
//	type greeter struct {
//		names grove.Lazy[NameSource]
//	}
//
//	func newGreeter(in *grove.Injector) (Greeter, error) {
//		return &greeter{names: grove.Required(in, INameSource)}, nil
//	}
//
// Containers are not safe for concurrent use. A tree of containers is meant
// to be driven from a single goroutine, the same way the host tree that owns
// the scope boundaries is.
package grove
