package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheService_DisabledIsNoop(t *testing.T) {
	c := NewCacheService("")
	ctx := context.Background()

	assert.False(t, c.Enabled())
	assert.NoError(t, c.Ping(ctx))

	c.SetSessionUser(ctx, "hash", "user", time.Minute)
	assert.Equal(t, "", c.GetSessionUser(ctx, "hash"))

	var out map[string]string
	c.SetJSON(ctx, "k", map[string]string{"a": "b"}, time.Minute)
	assert.False(t, c.GetJSON(ctx, "profile", "k", &out))

	assert.Equal(t, int64(0), c.IncrWindow(ctx, "k", time.Minute))
	assert.Equal(t, int64(0), c.Counter(ctx, "k"))

	c.SetUploadProgress(ctx, "u", 40)
	_, ok := c.UploadProgress(ctx, "u")
	assert.False(t, ok)
	assert.NoError(t, c.Close())
}

func TestCacheService_InvalidURLDisables(t *testing.T) {
	c := NewCacheService("::not-a-url::")
	assert.False(t, c.Enabled())
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "session:abc", sessionKey("abc"))
	assert.Equal(t, "profile:u1", profileKey("u1"))
	assert.Equal(t, "signin:fail:a@b.io", signInFailKey("a@b.io"))
	assert.Equal(t, "upload:progress:x", uploadKey("x"))
}
