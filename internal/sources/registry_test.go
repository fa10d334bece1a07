package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeAdapter struct {
	name    string
	records []Record
}

func (f *fakeAdapter) Name() string { return f.name }
func (f *fakeAdapter) Verify(ctx context.Context) (VerifyResult, error) {
	return VerifyResult{Available: true}, nil
}
func (f *fakeAdapter) Fetch(ctx context.Context, opts FetchOptions) ([]Record, error) {
	return f.records, nil
}

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry(&fakeAdapter{name: "b"}, &fakeAdapter{name: "a"})
	all := r.All()
	require.Len(t, all, 2)
	require.Equal(t, "b", all[0].Name())
	require.Equal(t, "a", all[1].Name())
}

func TestRegistryGetMissingReturnsFalse(t *testing.T) {
	r := NewRegistry(&fakeAdapter{name: "a"})
	_, ok := r.Get("missing")
	require.False(t, ok)
}
