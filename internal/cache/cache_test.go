package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptyAddrDisablesCache(t *testing.T) {
	c := New(Options{})
	assert.Nil(t, c)
	assert.False(t, c.Enabled())
}

func TestNilClientIsAlwaysEmpty(t *testing.T) {
	var c *Client
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Put(ctx, "k", []byte("v"), time.Minute))

	got, found, err := c.Lookup(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
	assert.NoError(t, c.Close())
}

func TestUnreachableRedisReportsErrors(t *testing.T) {
	c := New(Options{Addr: "127.0.0.1:1", KeyPrefix: "blog:"})
	t.Cleanup(func() { _ = c.Close() })
	assert.True(t, c.Enabled())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, c.Ping(ctx))
	assert.Error(t, c.Put(ctx, "k", []byte("v"), time.Minute))

	got, found, err := c.Lookup(ctx, "k")
	assert.Error(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}
