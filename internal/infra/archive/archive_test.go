package archive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryArchiveKeepsLatest(t *testing.T) {
	a := NewMemoryArchive(2)
	ctx := context.Background()
	payload := []byte(`{"status":"ok"}`)

	require.NoError(t, a.Put(ctx, "k1", payload))
	require.NoError(t, a.Put(ctx, "k2", payload))
	require.NoError(t, a.Put(ctx, "k3", payload))

	require.Equal(t, []string{"k2", "k3"}, a.Keys())
	_, ok := a.Get("k1")
	require.False(t, ok)

	payload[0] = 'X'
	got, ok := a.Get("k3")
	require.True(t, ok)
	require.Equal(t, `{"status":"ok"}`, string(got))
}

func TestSanitizeEndpoint(t *testing.T) {
	require.Equal(t, "abc.r2.cloudflarestorage.com", sanitizeEndpoint("https://abc.r2.cloudflarestorage.com/bucket"))
	require.Equal(t, "localhost:9000", sanitizeEndpoint("http://localhost:9000"))
	require.Equal(t, "", sanitizeEndpoint("  "))
}
