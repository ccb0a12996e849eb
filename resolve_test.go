package grove

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Get
// ---------------------------------------------------------------------------

func TestGet(t *testing.T) {
	t.Run("unbound identifier returns ErrBindingChainExhausted", func(t *testing.T) {
		c := New()
		_, err := Get(c, idA)
		require.ErrorIs(t, err, ErrBindingChainExhausted)
		assert.Contains(t, err.Error(), "IA")
	})

	t.Run("ancestor binding is enough", func(t *testing.T) {
		root := New()
		mustProvide(t, root, idA, newAImpl)
		child := mustChild(t, mustChild(t, root))

		get, err := Get(child, idA)
		require.NoError(t, err)

		a, ok, err := get()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "world", a.A())
	})

	t.Run("accessor is lazy", func(t *testing.T) {
		calls := 0
		c := New()
		mustProvide(t, c, ILogger, func(*Injector) (*testLogger, error) {
			calls++
			return &testLogger{}, nil
		})

		get, err := Get(c, ILogger)
		require.NoError(t, err)
		assert.Zero(t, calls)

		get.Must()
		get.Must()
		assert.Equal(t, 1, calls)
	})

	t.Run("construction failure is deferred to the accessor", func(t *testing.T) {
		boom := errors.New("boom")
		c := New()
		mustProvide(t, c, ILogger, func(*Injector) (*testLogger, error) { return nil, boom })

		get, err := Get(c, ILogger)
		require.NoError(t, err)

		_, ok, err := get()
		assert.False(t, ok)
		require.ErrorIs(t, err, ErrConstructorFailed)
		require.ErrorIs(t, err, boom)
	})

	t.Run("default value satisfies get", func(t *testing.T) {
		id := NewIdentifierWithDefault("Greeting", func() string { return "hi" })
		get, err := Get(New(), id)
		require.NoError(t, err)

		v, ok, err := get()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "hi", v)
	})

	t.Run("accessor fails after dispose", func(t *testing.T) {
		c := New()
		mustProvide(t, c, idA, newAImpl)
		get, err := Get(c, idA)
		require.NoError(t, err)
		mustDispose(t, c)

		_, _, err = get()
		require.ErrorIs(t, err, ErrUseAfterDispose)

		_, err = Get(c, idA)
		require.ErrorIs(t, err, ErrUseAfterDispose)
	})

	t.Run("must panics when absent", func(t *testing.T) {
		r := Resolver[int](func() (int, bool, error) { return 0, false, nil })
		assert.Panics(t, func() { r.Must() })
	})

	t.Run("nil identifier", func(t *testing.T) {
		_, err := Get[IA](New(), nil)
		require.ErrorIs(t, err, ErrNilIdentifier)
	})
}

// ---------------------------------------------------------------------------
// Resolve
// ---------------------------------------------------------------------------

func TestResolve(t *testing.T) {
	t.Run("singleton per scope", func(t *testing.T) {
		c := New()
		mustProvide(t, c, idA, newAImpl)

		a1, err := Resolve(c, idA)
		require.NoError(t, err)
		a2, err := Resolve(c, idA)
		require.NoError(t, err)
		assert.Same(t, a1, a2)
	})

	t.Run("shadowing", func(t *testing.T) {
		parent := New()
		mustProvide(t, parent, idA, newAImpl)
		child := mustChild(t, parent)
		mustProvide(t, child, idA, newAAlternative)
		sibling := mustChild(t, parent)

		fromChild, err := Resolve(child, idA)
		require.NoError(t, err)
		assert.IsType(t, &aAlternative{}, fromChild)

		fromParent, err := Resolve(parent, idA)
		require.NoError(t, err)
		assert.IsType(t, &aImpl{}, fromParent)

		fromSibling, err := Resolve(sibling, idA)
		require.NoError(t, err)
		assert.Same(t, fromParent, fromSibling)
	})

	t.Run("instance is owned by the binding container", func(t *testing.T) {
		root := New()
		mustProvide(t, root, idA, newAImpl)
		child := mustChild(t, root)

		a, err := Resolve(child, idA)
		require.NoError(t, err)

		assert.Empty(t, child.instances)
		assert.Same(t, a, root.instances[idA])
	})

	t.Run("late parent binding is visible", func(t *testing.T) {
		root := New()
		child := mustChild(t, root)
		mustProvide(t, root, idA, newAImpl)

		a, err := Resolve(child, idA)
		require.NoError(t, err)
		assert.Equal(t, "world", a.A())
	})

	t.Run("unbound returns ErrServiceUnresolved with name", func(t *testing.T) {
		_, err := Resolve(mustChild(t, New()), idC)
		require.ErrorIs(t, err, ErrServiceUnresolved)

		var re *ResolutionError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "IC", re.Service)
		assert.Equal(t, CodeServiceUnresolved, re.Code)
	})

	t.Run("optional yields zero without error", func(t *testing.T) {
		v, err := ResolveOptional(New(), idC)
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("optional still reports construction failure", func(t *testing.T) {
		c := New()
		mustProvide(t, c, idC, func(*Injector) (IC, error) { return nil, errors.New("boom") })

		_, err := ResolveOptional(c, idC)
		require.ErrorIs(t, err, ErrConstructorFailed)
	})

	t.Run("failed construction is retried on next resolve", func(t *testing.T) {
		calls := 0
		c := New()
		mustProvide(t, c, ILogger, func(*Injector) (*testLogger, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("not yet")
			}
			return &testLogger{}, nil
		})

		_, err := Resolve(c, ILogger)
		require.Error(t, err)
		_, err = Resolve(c, ILogger)
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("disposed parent fails lookup from child", func(t *testing.T) {
		root := New()
		mustProvide(t, root, idA, newAImpl)
		child := mustChild(t, root)
		mustDispose(t, root)

		_, err := Resolve(child, idA)
		require.ErrorIs(t, err, ErrUseAfterDispose)
	})
}

// ---------------------------------------------------------------------------
// Cycles
// ---------------------------------------------------------------------------

func TestResolve_Cycle(t *testing.T) {
	t.Run("detected with chain", func(t *testing.T) {
		c := New()
		mustProvide(t, c, idCycA, newCycA)
		mustProvide(t, c, idCycB, newCycB)

		_, err := Resolve(c, idCycA)
		require.ErrorIs(t, err, ErrCyclicResolution)
		assert.Contains(t, err.Error(), "CycA -> CycB -> CycA")
	})

	t.Run("self dependency", func(t *testing.T) {
		id := NewIdentifier[*testLogger]("Self")
		c := New()
		mustProvide(t, c, id, func(in *Injector) (*testLogger, error) {
			return Inject(in, id)
		})

		_, err := Resolve(c, id)
		require.ErrorIs(t, err, ErrCyclicResolution)
	})

	t.Run("nothing memoized after a cycle", func(t *testing.T) {
		c := New()
		mustProvide(t, c, idCycA, newCycA)
		mustProvide(t, c, idCycB, newCycB)
		Resolve(c, idCycA)

		assert.Empty(t, c.instances)
		assert.Empty(t, c.building)
	})

	t.Run("same identifier in parent and child is not a cycle", func(t *testing.T) {
		root := New()
		mustProvide(t, root, idA, newAImpl)
		child := mustChild(t, root)
		mustProvide(t, child, idA, func(in *Injector) (IA, error) {
			// Resolving the parent's IA while building the child's.
			return Resolve(root, idA)
		})

		a, err := Resolve(child, idA)
		require.NoError(t, err)
		assert.Equal(t, "world", a.A())
	})
}

// ---------------------------------------------------------------------------
// Self-provide & default root
// ---------------------------------------------------------------------------

func TestContainerID(t *testing.T) {
	t.Run("falls back to the default root", func(t *testing.T) {
		c, err := Resolve(New(), ContainerID)
		require.NoError(t, err)
		assert.Same(t, DefaultRoot(), c)
	})

	t.Run("default root is created once", func(t *testing.T) {
		assert.Same(t, DefaultRoot(), DefaultRoot())
	})

	t.Run("nearest self binding wins", func(t *testing.T) {
		root := New()
		_, err := ProvideSelf(root)
		require.NoError(t, err)
		child := mustChild(t, root)
		grandchild := mustChild(t, child)

		got, err := Resolve(grandchild, ContainerID)
		require.NoError(t, err)
		assert.Same(t, root, got)

		_, err = ProvideSelf(child)
		require.NoError(t, err)
		got, err = Resolve(grandchild, ContainerID)
		require.NoError(t, err)
		assert.Same(t, child, got)
	})
	t.Run("close without default root", func(t *testing.T) {
		saved := swapDefaultRoot(nil)
		t.Cleanup(func() { swapDefaultRoot(saved) })

		require.NoError(t, CloseDefaultRoot())
		assert.Nil(t, swapDefaultRoot(nil), "closing created a default root")
	})

	t.Run("close disposes the default root", func(t *testing.T) {
		saved := swapDefaultRoot(nil)
		t.Cleanup(func() { swapDefaultRoot(saved) })

		root := DefaultRoot()
		require.NoError(t, CloseDefaultRoot())
		assert.True(t, root.Disposed())
	})
}

// swapDefaultRoot replaces the default root and returns the previous one.
func swapDefaultRoot(c *Container) *Container {
	defaultRootMu.Lock()
	defer defaultRootMu.Unlock()
	prev := defaultRoot
	defaultRoot = c
	return prev
}

// ---------------------------------------------------------------------------
// Nil instances
// ---------------------------------------------------------------------------

func TestResolve_NilInstance(t *testing.T) {
	newNilA := func(*Injector) (IA, error) { return nil, nil }

	t.Run("required resolve fails", func(t *testing.T) {
		c := New()
		mustProvide(t, c, idA, newNilA)

		a, err := Resolve(c, idA)
		require.ErrorIs(t, err, ErrConstructorFailed)
		assert.Nil(t, a)
		assert.Contains(t, err.Error(), "IA")
		assert.Empty(t, c.instances)
	})

	t.Run("required field fails", func(t *testing.T) {
		c := New()
		mustProvide(t, c, idA, newNilA)
		mustProvide(t, c, idB, newBImpl)

		b, err := Resolve(c, idB)
		require.NoError(t, err)
		_, err = b.B()
		assert.ErrorIs(t, err, ErrConstructorFailed)
	})

	t.Run("optional resolve reports the failure", func(t *testing.T) {
		c := New()
		mustProvide(t, c, idA, newNilA)

		_, err := ResolveOptional(c, idA)
		assert.ErrorIs(t, err, ErrConstructorFailed)
	})

	t.Run("nil default is absent", func(t *testing.T) {
		id := NewIdentifierWithDefault[IA]("NilDefault", func() IA { return nil })

		_, err := Resolve(New(), id)
		assert.ErrorIs(t, err, ErrServiceUnresolved)

		v, err := ResolveOptional(New(), id)
		require.NoError(t, err)
		assert.Nil(t, v)
	})
}
