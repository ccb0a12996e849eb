package grove

// ServiceID is the untyped view of an [Identifier]. It is what containers key
// their bindings by and what errors report.
type ServiceID interface {
	// Name returns the human-readable name given at creation.
	Name() string

	fallback() (any, bool)
}

// Identifier is an opaque token standing for an abstract capability T.
//
// Identifiers compare by pointer identity: two identifiers created with the
// same name are distinct, the name is only used in diagnostics. Create one per
// capability, at package level, and share it:
//
//	var IHTTPClient = grove.NewIdentifier[HTTPClient]("HTTPClient")
type Identifier[T any] struct {
	name string
	def  func() T
}

// NewIdentifier allocates a new identifier for T.
func NewIdentifier[T any](name string) *Identifier[T] {
	return &Identifier[T]{name: name}
}

// NewIdentifierWithDefault allocates an identifier whose lookups fall back to
// fallback when no container in the chain binds it. The default value is not
// owned by any container and is never disposed.
func NewIdentifierWithDefault[T any](name string, fallback func() T) *Identifier[T] {
	return &Identifier[T]{name: name, def: fallback}
}

func (id *Identifier[T]) Name() string { return id.name }

func (id *Identifier[T]) String() string { return id.name }

// HasDefault reports whether the identifier carries a default value.
func (id *Identifier[T]) HasDefault() bool { return id.def != nil }

// Default returns the identifier's default value, if it has one.
func (id *Identifier[T]) Default() (T, bool) {
	if id.def == nil {
		var zero T
		return zero, false
	}
	return id.def(), true
}

func (id *Identifier[T]) fallback() (any, bool) {
	if id.def == nil {
		return nil, false
	}
	return id.def(), true
}
