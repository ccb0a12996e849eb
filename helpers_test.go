package grove

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// Shared test types and constructors used across test files.

// mustProvide fails the test if registration fails.
func mustProvide[T any](t *testing.T, c *Container, id *Identifier[T], ctor Constructor[T]) ScopeWrapper {
	t.Helper()
	w, err := Provide(c, id, ctor)
	require.NoError(t, err, "Provide(%s)", id.Name())
	return w
}

// mustChild fails the test if the child container cannot be created.
func mustChild(t *testing.T, c *Container, opts ...Option) *Container {
	t.Helper()
	child, err := c.NewChild(opts...)
	require.NoError(t, err, "NewChild")
	return child
}

// mustDispose fails the test if disposal fails.
func mustDispose(t *testing.T, c *Container) {
	t.Helper()
	require.NoError(t, c.Dispose(), "Dispose")
}

// The IA / IB / IC services mirror a small app: B greets through A and
// optionally decorates the greeting through C.

type IA interface{ A() string }
type IB interface{ B() (string, error) }
type IC interface{ C() string }

var (
	idA = NewIdentifier[IA]("IA")
	idB = NewIdentifier[IB]("IB")
	idC = NewIdentifier[IC]("IC")

	ILogger = NewIdentifier[*testLogger]("Logger")
)

type aImpl struct{ disposed bool }

func (a *aImpl) A() string { return "world" }
func (a *aImpl) Dispose()  { a.disposed = true }

type aAlternative struct{ disposed bool }

func (a *aAlternative) A() string { return "you guys" }
func (a *aAlternative) Dispose()  { a.disposed = true }

type bImpl struct {
	a Lazy[IA]
	c Lazy[IC]
}

func (b *bImpl) B() (string, error) {
	c, err := b.c.Get()
	if err != nil {
		return "", err
	}
	a, err := b.a.Get()
	if err != nil {
		return "", err
	}
	prefix := ""
	if c != nil {
		prefix = "???"
	}
	return prefix + "hello " + a.A(), nil
}

type cImpl struct{}

func (cImpl) C() string { return "c" }

func newAImpl(*Injector) (IA, error)        { return &aImpl{}, nil }
func newAAlternative(*Injector) (IA, error) { return &aAlternative{}, nil }
func newCImpl(*Injector) (IC, error)        { return cImpl{}, nil }

func newBImpl(in *Injector) (IB, error) {
	return &bImpl{a: Required(in, idA), c: Optional(in, idC)}, nil
}

type testLogger struct{ Prefix string }

func newTestLogger(*Injector) (*testLogger, error) { return &testLogger{Prefix: "app"}, nil }

// testClosable implements io.Closer for disposal tests.
type testClosable struct {
	Name   string
	Closed bool
	Order  *[]string // shared slice to record close order
}

func (c *testClosable) Close() error {
	c.Closed = true
	if c.Order != nil {
		*c.Order = append(*c.Order, c.Name)
	}
	return nil
}

// testFailCloser implements io.Closer but returns an error.
type testFailCloser struct{}

func (f *testFailCloser) Close() error {
	return errors.New("close failed")
}

// testErrDisposer implements Dispose() error.
type testErrDisposer struct{ calls int }

func (d *testErrDisposer) Dispose() error {
	d.calls++
	return errors.New("dispose failed")
}

type cycA struct{}
type cycB struct{}

var (
	idCycA = NewIdentifier[*cycA]("CycA")
	idCycB = NewIdentifier[*cycB]("CycB")
)

func newCycA(in *Injector) (*cycA, error) {
	if _, err := Inject(in, idCycB); err != nil {
		return nil, err
	}
	return &cycA{}, nil
}

func newCycB(in *Injector) (*cycB, error) {
	if _, err := Inject(in, idCycA); err != nil {
		return nil, err
	}
	return &cycB{}, nil
}
