package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilDishCache(t *testing.T) {
	var c *DishCache
	ctx := context.Background()

	var dst map[string]any
	hit, err := c.Get(ctx, 1, &dst)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.Set(ctx, 1, map[string]any{"name": "soup"}))
	assert.NoError(t, c.Invalidate(ctx, 1, 2))
	assert.NoError(t, c.Close())
}

func TestNewDishCache_DisabledWithoutURL(t *testing.T) {
	c, err := NewDishCache("", "", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewDishCache_BadURL(t *testing.T) {
	_, err := NewDishCache("http://localhost:6379", "", time.Minute)
	assert.ErrorContains(t, err, "parse redis url")
}

func TestDishKey(t *testing.T) {
	assert.Equal(t, "cookbook:dish:42", dishKey(42))
}
