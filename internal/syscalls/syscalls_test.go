package syscalls_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weavelang/weave/internal/syscalls"
	"github.com/weavelang/weave/lang/store"
	"github.com/weavelang/weave/lang/syscall"
)

// fakeCaller is the minimal syscall.Caller a handler test needs: a heap to
// build values in, and a Force that is a no-op since every argument built
// directly in these tests is already in WHNF.
type fakeCaller struct {
	s *store.Store
}

func (f fakeCaller) Force(ctx context.Context, h store.Handle) (store.Handle, error) { return h, nil }
func (f fakeCaller) Heap() *store.Store                                              { return f.s }

func TestRegisterBindsAllBundledHandlers(t *testing.T) {
	reg := syscall.NewRegistry()
	syscalls.Register(reg)

	for _, name := range []string{"uuid_new", "clock_now", "env_lookup", "ws_ping"} {
		_, ok := reg.Lookup(name)
		require.True(t, ok, "expected %q to be registered", name)
	}
	_, ok := reg.Lookup("not_a_syscall")
	require.False(t, ok)
}

func TestUUIDNewReturnsDistinctStrings(t *testing.T) {
	s := store.New()
	c := fakeCaller{s}

	h1, err := syscalls.UUIDNew(context.Background(), c, nil)
	require.NoError(t, err)
	h2, err := syscalls.UUIDNew(context.Background(), c, nil)
	require.NoError(t, err)

	r1, err := s.Reader(h1)
	require.NoError(t, err)
	str1, err := r1.AsString()
	require.NoError(t, err)
	require.Len(t, str1, 36)

	r2, err := s.Reader(h2)
	require.NoError(t, err)
	str2, err := r2.AsString()
	require.NoError(t, err)
	require.NotEqual(t, str1, str2)
}

func TestClockNowReturnsFloatSeconds(t *testing.T) {
	s := store.New()
	c := fakeCaller{s}

	h, err := syscalls.ClockNow(context.Background(), c, nil)
	require.NoError(t, err)
	r, err := s.Reader(h)
	require.NoError(t, err)
	n, err := r.AsNumeric()
	require.NoError(t, err)
	require.True(t, n.IsFloat)
	require.Greater(t, n.F, 0.0)
}

func TestEnvLookupFound(t *testing.T) {
	t.Setenv("WEAVE_TEST_VAR", "hello")

	s := store.New()
	c := fakeCaller{s}
	nameH, err := s.Insert(store.MakeString("WEAVE_TEST_VAR"))
	require.NoError(t, err)

	h, err := syscalls.EnvLookup(context.Background(), c, []store.Handle{nameH})
	require.NoError(t, err)

	r, err := s.Reader(h)
	require.NoError(t, err)
	tagH, payloadH, err := r.VariantParts()
	require.NoError(t, err)
	tagR, err := s.Reader(tagH)
	require.NoError(t, err)
	tag, err := tagR.AsString()
	require.NoError(t, err)
	require.Equal(t, "Some", tag)

	payloadR, err := s.Reader(payloadH)
	require.NoError(t, err)
	payload, err := payloadR.AsString()
	require.NoError(t, err)
	require.Equal(t, "hello", payload)
}

func TestEnvLookupNotFound(t *testing.T) {
	s := store.New()
	c := fakeCaller{s}
	nameH, err := s.Insert(store.MakeString("WEAVE_DEFINITELY_UNSET_VAR"))
	require.NoError(t, err)

	h, err := syscalls.EnvLookup(context.Background(), c, []store.Handle{nameH})
	require.NoError(t, err)

	r, err := s.Reader(h)
	require.NoError(t, err)
	tagH, _, err := r.VariantParts()
	require.NoError(t, err)
	tagR, err := s.Reader(tagH)
	require.NoError(t, err)
	tag, err := tagR.AsString()
	require.NoError(t, err)
	require.Equal(t, "None", tag)
}
