// Package mount is a minimal host tree for grove containers. It plays the
// part a UI framework plays for a component tree: nodes are mounted and
// unmounted, a node may open a scope boundary backed by its own container,
// and bindings are visible only to the subtrees their [grove.ScopeWrapper]
// was applied to.
//
//	root := mount.NewRoot("app")
//	app := grove.New()
//
//	page := root.Append("page")
//	wa, _ := grove.Provide(app, IA, newA)
//	wb, _ := grove.Provide(app, IB, newB)
//	grove.Pipe(wa, wb)(page)
//
//	b, err := mount.Use(page, IB)
//
//	root.Unmount()
package mount

import (
	"errors"

	"github.com/ARTM2000/grove"
)

// Node is one node of the host tree.
type Node struct {
	name     string
	parent   *Node
	children []*Node

	// exposed maps identifiers to the container that provides them for this
	// subtree.
	exposed map[grove.ServiceID]*grove.Container

	// scope is the container this node opened with Scope, if any. The node
	// owns it and disposes it on unmount.
	scope *grove.Container

	unmounted bool
}

// NewRoot creates the root of a host tree.
func NewRoot(name string) *Node {
	return &Node{name: name}
}

// Name returns the node name.
func (n *Node) Name() string { return n.name }

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the mounted children of n.
func (n *Node) Children() []*Node { return n.children }

// Mounted reports whether n has not been unmounted.
func (n *Node) Mounted() bool { return !n.unmounted }

// Path returns the names from the root down to n joined with "/".
func (n *Node) Path() string {
	if n.parent == nil {
		return n.name
	}
	return n.parent.Path() + "/" + n.name
}

// Append mounts a new child node below n. On an unmounted n the child is
// returned already unmounted and is not attached.
func (n *Node) Append(name string) *Node {
	child := &Node{name: name, parent: n}
	if n.unmounted {
		child.unmounted = true
		return child
	}
	n.children = append(n.children, child)
	return child
}

// Expose implements [grove.Subtree]. The first exposure of an identifier on
// a node wins, matching the innermost wrapper of a [grove.Pipe]. Exposing on
// an unmounted node does nothing.
func (n *Node) Expose(id grove.ServiceID, scope *grove.Container) {
	if n.unmounted {
		return
	}
	if n.exposed == nil {
		n.exposed = make(map[grove.ServiceID]*grove.Container)
	}
	if _, ok := n.exposed[id]; ok {
		return
	}
	n.exposed[id] = scope
}

// Scope returns the container owned by n, opening it on first call. Its parent
// is the container visible at n through [grove.ContainerID]: the nearest
// subtree wrapped with [grove.ProvideSelf], or [grove.DefaultRoot] when there
// is none. The container is disposed when n is unmounted.
func (n *Node) Scope(opts ...grove.Option) (*grove.Container, error) {
	if n.unmounted {
		return nil, errNodeUnmounted
	}
	if n.scope != nil {
		return n.scope, nil
	}

	parent := func() (*grove.Container, bool, error) {
		c, err := UseOptional(n, grove.ContainerID)
		return c, c != nil, err
	}
	opts = append([]grove.Option{grove.WithName(n.Path())}, opts...)
	c, err := grove.NewChildOf(parent, opts...)
	if err != nil {
		return nil, err
	}
	n.scope = c
	return c, nil
}

// Unmount tears down n and its subtree, children first. Every container opened
// by a node in the subtree is disposed exactly once; the errors are joined.
// Unmount is idempotent.
func (n *Node) Unmount() error {
	if n.unmounted {
		return nil
	}
	err := n.unmount()
	if n.parent != nil {
		n.parent.detach(n)
	}
	return err
}

// unmount tears down the subtree without detaching n from its parent.
func (n *Node) unmount() error {
	if n.unmounted {
		return nil
	}
	var errs []error
	for i := len(n.children) - 1; i >= 0; i-- {
		if err := n.children[i].unmount(); err != nil {
			errs = append(errs, err)
		}
	}
	n.children = nil
	if err := n.release(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (n *Node) release() error {
	n.unmounted = true
	n.exposed = nil
	if n.scope == nil {
		return nil
	}
	return n.scope.Dispose()
}

func (n *Node) detach(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// provider returns the container exposed for id at n or its nearest ancestor.
func (n *Node) provider(id grove.ServiceID) *grove.Container {
	for cur := n; cur != nil; cur = cur.parent {
		if c, ok := cur.exposed[id]; ok {
			return c
		}
	}
	return nil
}
