package mount

import (
	"errors"

	"github.com/ARTM2000/grove"
)

var errNodeUnmounted = errors.New("mount: node unmounted")

// Use resolves id for n through the nearest container that exposed it to n or
// one of its ancestors. When none did, the identifier's default is used; when
// it has none, Use fails with [grove.ErrServiceUnresolved].
func Use[T any](n *Node, id *grove.Identifier[T]) (T, error) {
	v, ok, err := use(n, id)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, &grove.ResolutionError{
			Code:    grove.CodeServiceUnresolved,
			Service: id.Name(),
		}
	}
	return v, nil
}

// UseOptional is like [Use] but yields the zero value of T when nothing
// provides id.
func UseOptional[T any](n *Node, id *grove.Identifier[T]) (T, error) {
	v, _, err := use(n, id)
	return v, err
}

func use[T any](n *Node, id *grove.Identifier[T]) (T, bool, error) {
	var zero T
	if id == nil {
		return zero, false, grove.ErrNilIdentifier
	}
	if n.unmounted {
		return zero, false, errNodeUnmounted
	}

	c := n.provider(id)
	if c == nil {
		v, ok := id.Default()
		return v, ok, nil
	}

	get, err := grove.Get(c, id)
	if err != nil {
		return zero, false, err
	}
	return get()
}
