package accounts

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/goliatone/go-errors"
)

const (
	// avatarSize is the fixed square frame every avatar is normalized to.
	// Aspect ratio is intentionally not preserved.
	avatarSize = 250
	// avatarQuality bounds the output size of lossy re-encodes.
	avatarQuality = 60
	// avatarsDir is the subdirectory of the public root that avatars live in.
	avatarsDir = "avatars"
)

// FileAvatarStore processes uploads into the local public root. The rename
// into the avatars directory is the only write that touches durable storage;
// every failure path cleans up the temporary file instead.
type FileAvatarStore struct {
	root   string
	logger Logger
}

var _ AvatarProcessor = (*FileAvatarStore)(nil)

// NewFileAvatarStore returns a store rooted at the public directory. The
// avatars subdirectory is created if missing.
func NewFileAvatarStore(root string) (*FileAvatarStore, error) {
	if err := os.MkdirAll(filepath.Join(root, avatarsDir), 0o755); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create avatars directory")
	}

	return &FileAvatarStore{
		root:   root,
		logger: defLogger{},
	}, nil
}

func (s *FileAvatarStore) WithLogger(logger Logger) *FileAvatarStore {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Ingest decodes the upload at tempPath, normalizes it to 250x250, re-encodes
// it at the fixed quality, and moves it into durable storage as
// {userID}_{originalName}. It returns the storage-root-relative reference
// path. The temporary file never survives a successful call, and durable
// storage never gains a file on a failed one.
func (s *FileAvatarStore) Ingest(userID, tempPath, originalName string) (string, error) {
	defer os.Remove(tempPath)

	img, err := imaging.Open(tempPath)
	if err != nil {
		return "", errors.Wrap(err, ErrNotAnImage.Category, ErrNotAnImage.Message).
			WithTextCode(ErrNotAnImage.TextCode)
	}

	fileName := userID + "_" + sanitizeFileName(originalName)

	format, err := imaging.FormatFromFilename(fileName)
	if err != nil {
		return "", errors.Wrap(err, ErrNotAnImage.Category, ErrNotAnImage.Message).
			WithTextCode(ErrNotAnImage.TextCode)
	}

	resized := imaging.Resize(img, avatarSize, avatarSize, imaging.Lanczos)

	out, err := os.Create(tempPath)
	if err != nil {
		return "", errors.Wrap(err, ErrAvatarStorage.Category, ErrAvatarStorage.Message).
			WithTextCode(ErrAvatarStorage.TextCode)
	}

	if err := imaging.Encode(out, resized, format, imaging.JPEGQuality(avatarQuality)); err != nil {
		out.Close()
		return "", errors.Wrap(err, ErrNotAnImage.Category, ErrNotAnImage.Message).
			WithTextCode(ErrNotAnImage.TextCode)
	}

	if err := out.Close(); err != nil {
		return "", errors.Wrap(err, ErrAvatarStorage.Category, ErrAvatarStorage.Message).
			WithTextCode(ErrAvatarStorage.TextCode)
	}

	dest := filepath.Join(s.root, avatarsDir, fileName)
	if err := os.Rename(tempPath, dest); err != nil {
		s.logger.Error("avatar relocation failed", "dest", dest, "error", err)
		return "", errors.Wrap(err, ErrAvatarStorage.Category, ErrAvatarStorage.Message).
			WithTextCode(ErrAvatarStorage.TextCode)
	}

	return path.Join(avatarsDir, fileName), nil
}

// sanitizeFileName strips any path components a client smuggled into the
// original file name.
func sanitizeFileName(name string) string {
	name = filepath.Base(filepath.Clean(name))
	name = strings.ReplaceAll(name, string(filepath.Separator), "")
	if name == "." || name == "" {
		return "avatar.jpg"
	}
	return name
}
