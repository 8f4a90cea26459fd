package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressKey(t *testing.T) {
	learner := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	course := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	assert.Equal(t,
		"progress:11111111-1111-1111-1111-111111111111:22222222-2222-2222-2222-222222222222",
		ProgressKey(learner, course))
	assert.Equal(t, ProgressKey(learner, course)+":version", LearnerVersionKey(learner, course))
	assert.Equal(t, "progress:course:22222222-2222-2222-2222-222222222222:version", CourseVersionKey(course))
}

func TestNopNeverHits(t *testing.T) {
	var c Cache = Nop{}
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestNewRedisUnreachable(t *testing.T) {
	_, err := NewRedis("127.0.0.1:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}

func newRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := NewRedis(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r, mr
}

func TestRedisGetSetDelete(t *testing.T) {
	r, mr := newRedis(t)
	ctx := context.Background()

	_, ok, err := r.Get(ctx, "progress:missing")
	require.NoError(t, err, "a missing key is a miss, not an error")
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, "progress:a", []byte(`{"total_count":3}`), 0))
	b, ok, err := r.Get(ctx, "progress:a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"total_count":3}`, string(b))
	assert.Zero(t, mr.TTL("progress:a"), "zero ttl never expires")

	require.NoError(t, r.Delete(ctx, "progress:a"))
	assert.False(t, mr.Exists("progress:a"))
	_, ok, err = r.Get(ctx, "progress:a")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, r.Delete(ctx, "progress:a"), "deleting twice is fine")
}

func TestRedisTTL(t *testing.T) {
	r, mr := newRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "progress:b", []byte("v"), time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("progress:b"))

	mr.FastForward(30 * time.Second)
	_, ok, err := r.Get(ctx, "progress:b")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(31 * time.Second)
	_, ok, err = r.Get(ctx, "progress:b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisServerGone(t *testing.T) {
	r, mr := newRedis(t)
	mr.Close()

	_, _, err := r.Get(context.Background(), "progress:c")
	assert.Error(t, err)
}
