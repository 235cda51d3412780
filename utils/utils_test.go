package utils

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsStrongPassword(t *testing.T) {
	assert.True(t, IsStrongPassword("goal2024"))
	assert.True(t, IsStrongPassword("שער12345"))
	assert.False(t, IsStrongPassword("short1"))
	assert.False(t, IsStrongPassword("onlyletters"))
	assert.False(t, IsStrongPassword("12345678"))
	assert.True(t, IsStrongPassword(strings.Repeat("a", 71)+"1"))
	assert.False(t, IsStrongPassword(strings.Repeat("a", 72)+"1"), "over the bcrypt limit")
	// 36 hebrew letters are 72 bytes
	assert.False(t, IsStrongPassword(strings.Repeat("ש", 36)+"1"))
}

func TestNormalizeEmail(t *testing.T) {
	e, ok := NormalizeEmail("  Player@Example.COM ")
	assert.True(t, ok)
	assert.Equal(t, "player@example.com", e)

	_, ok = NormalizeEmail("not-an-email")
	assert.False(t, ok)
	_, ok = NormalizeEmail("")
	assert.False(t, ok)
}

func TestValidator_CustomRules(t *testing.T) {
	type form struct {
		Email    string `validate:"required,email"`
		Password string `validate:"password"`
		Role     string `validate:"signup_role"`
		Position string `validate:"omitempty,position"`
		Foot     string `validate:"omitempty,foot"`
		Lang     string `validate:"omitempty,lang"`
		Phone    string `validate:"omitempty,phone"`
	}
	v := NewValidator()

	ok := form{Email: "a@b.io", Password: "kick1234", Role: "player", Position: "forward", Foot: "left", Lang: "he", Phone: "+972 50-1234567"}
	require.NoError(t, v.Validate(ok))

	bad := form{Email: "a@b.io", Password: "weak", Role: "admin", Position: "striker", Foot: "none", Lang: "fr", Phone: "abc"}
	err := v.Validate(bad)
	require.Error(t, err)
	fields := FieldErrors(err)
	assert.Equal(t, "password", fields["password"])
	assert.Equal(t, "signup_role", fields["role"])
	assert.Equal(t, "position", fields["position"])
	assert.Equal(t, "foot", fields["foot"])
	assert.Equal(t, "lang", fields["lang"])
	assert.Equal(t, "phone", fields["phone"])
}

func TestFoldName(t *testing.T) {
	assert.Equal(t, "jose garcia", FoldName("  José   García "))
	assert.Equal(t, "dani", FoldName("DANI"))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(10, 0))
	assert.Equal(t, 50, Percent(50, 100))
	assert.Equal(t, 100, Percent(120, 100))
}

func TestProgressReader_ReportsAndSeeks(t *testing.T) {
	var calls []int64
	pr := NewProgressReader(bytes.NewReader([]byte("0123456789")), 10, func(written, total int64) {
		assert.Equal(t, int64(10), total)
		calls = append(calls, written)
	})

	buf := make([]byte, 4)
	_, err := pr.Read(buf)
	require.NoError(t, err)
	rest, err := io.ReadAll(pr)
	require.NoError(t, err)
	assert.Equal(t, "456789", string(rest))
	assert.Equal(t, int64(10), calls[len(calls)-1])

	pos, err := pr.Seek(0, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos)
}

func TestProgressReader_SeekUnsupported(t *testing.T) {
	pr := NewProgressReader(strings.NewReader("x"), 1, nil)
	_, err := pr.Seek(0, io.SeekStart)
	assert.NoError(t, err) // strings.Reader is seekable

	pr = NewProgressReader(io.MultiReader(strings.NewReader("x")), 1, nil)
	_, err = pr.Seek(0, io.SeekStart)
	assert.Error(t, err)
}

func TestLocalStore_PutDeleteSignedURL(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	ctx := context.Background()
	var last int64
	url, err := store.Put(ctx, "videos/u1/clip.mp4", strings.NewReader("video-bytes"), 11, "video/mp4", func(w, _ int64) { last = w })
	require.NoError(t, err)
	assert.Equal(t, "/uploads/videos/u1/clip.mp4", url)
	assert.Equal(t, int64(11), last)

	data, err := os.ReadFile(filepath.Join(root, "videos", "u1", "clip.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(data))

	signed, err := store.SignedURL(ctx, "videos/u1/clip.mp4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, url, signed)

	require.NoError(t, store.Delete(ctx, "videos/u1/clip.mp4"))
	require.NoError(t, store.Delete(ctx, "videos/u1/clip.mp4"))
	_, err = os.Stat(filepath.Join(root, "videos", "u1", "clip.mp4"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	_, err = store.Put(context.Background(), "../escape.txt", strings.NewReader("x"), 1, "text/plain", nil)
	assert.Error(t, err)
}
