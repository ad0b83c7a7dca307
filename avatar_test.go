package accounts_test

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accounts "github.com/lsolovey/go-accounts"
)

func writeTestImage(t *testing.T, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 255), G: uint8(y % 255), B: 100, A: 255})
		}
	}

	path := filepath.Join(t.TempDir(), "upload.bin")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	return path
}

func TestAvatarIngest(t *testing.T) {
	root := t.TempDir()
	store, err := accounts.NewFileAvatarStore(root)
	require.NoError(t, err)

	tempPath := writeTestImage(t, 800, 600)

	ref, err := store.Ingest("user-1", tempPath, "photo.png")
	require.NoError(t, err)
	assert.Equal(t, "avatars/user-1_photo.png", ref)

	stored, err := imaging.Open(filepath.Join(root, "avatars", "user-1_photo.png"))
	require.NoError(t, err)
	assert.Equal(t, 250, stored.Bounds().Dx())
	assert.Equal(t, 250, stored.Bounds().Dy())

	_, err = os.Stat(tempPath)
	assert.True(t, os.IsNotExist(err), "temporary upload should be removed")
}

func TestAvatarIngestRejectsNonImage(t *testing.T) {
	root := t.TempDir()
	store, err := accounts.NewFileAvatarStore(root)
	require.NoError(t, err)

	tempPath := filepath.Join(t.TempDir(), "upload.bin")
	require.NoError(t, os.WriteFile(tempPath, []byte("definitely not an image"), 0o644))

	ref, err := store.Ingest("user-1", tempPath, "payload.png")
	assert.Empty(t, ref)
	assert.Error(t, err)

	_, statErr := os.Stat(tempPath)
	assert.True(t, os.IsNotExist(statErr), "temporary upload should be removed on failure")

	entries, err := os.ReadDir(filepath.Join(root, "avatars"))
	require.NoError(t, err)
	assert.Empty(t, entries, "durable storage should not gain files on failure")
}

func TestAvatarIngestRejectsUnknownExtension(t *testing.T) {
	root := t.TempDir()
	store, err := accounts.NewFileAvatarStore(root)
	require.NoError(t, err)

	tempPath := writeTestImage(t, 100, 100)

	ref, err := store.Ingest("user-1", tempPath, "photo.xyz")
	assert.Empty(t, ref)
	assert.Error(t, err)
}

func TestAvatarIngestSanitizesFileName(t *testing.T) {
	root := t.TempDir()
	store, err := accounts.NewFileAvatarStore(root)
	require.NoError(t, err)

	tempPath := writeTestImage(t, 100, 100)

	ref, err := store.Ingest("user-1", tempPath, "../../etc/passwd.png")
	require.NoError(t, err)
	assert.Equal(t, "avatars/user-1_passwd.png", ref)

	_, err = os.Stat(filepath.Join(root, "avatars", "user-1_passwd.png"))
	assert.NoError(t, err)
}
