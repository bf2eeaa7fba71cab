package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/contactkeeper/internal/models"
	"github.com/avelichko/contactkeeper/internal/testutil"
)

func TestRedisUserCache(t *testing.T) {
	rd := testutil.StartRedisContainer(t)
	t.Cleanup(rd.Terminate)

	cache := NewRedisUserCache(rd.Client, 0)

	user := models.User{
		ID:        uuid.New(),
		Username:  "poppy",
		Email:     "poppy@example.com",
		AvatarURL: "https://example.com/a.png",
		Role:      models.RoleUser,
		Confirmed: true,
	}

	t.Run("miss on empty cache", func(t *testing.T) {
		_, hit, err := cache.Get(t.Context(), "nobody@example.com")

		require.NoError(t, err)
		assert.False(t, hit)
	})

	t.Run("set then get returns the same snapshot", func(t *testing.T) {
		require.NoError(t, cache.Set(t.Context(), user))

		got, hit, err := cache.Get(t.Context(), user.Email)

		require.NoError(t, err)
		require.True(t, hit)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, user.Username, got.Username)
		assert.Equal(t, user.Confirmed, got.Confirmed)
	})

	t.Run("entries expire", func(t *testing.T) {
		require.NoError(t, cache.Set(t.Context(), user))

		ttl, err := rd.Client.TTL(t.Context(), "user:"+user.Email).Result()

		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0), "entry must carry a TTL")
		assert.LessOrEqual(t, ttl, 300*time.Second)
	})

	t.Run("delete drops the entry", func(t *testing.T) {
		require.NoError(t, cache.Set(t.Context(), user))
		require.NoError(t, cache.Delete(t.Context(), user.Email))

		_, hit, err := cache.Get(t.Context(), user.Email)

		require.NoError(t, err)
		assert.False(t, hit)
	})

	t.Run("corrupt entry is reported and removed", func(t *testing.T) {
		key := "user:broken@example.com"
		require.NoError(t, rd.Client.Set(t.Context(), key, "{not json", 0).Err())

		_, hit, err := cache.Get(t.Context(), "broken@example.com")

		require.ErrorIs(t, err, errCacheEntryCorrupt)
		assert.False(t, hit)

		exists, err := rd.Client.Exists(t.Context(), key).Result()
		require.NoError(t, err)
		assert.Zero(t, exists, "corrupt entry must be dropped")
	})
}
