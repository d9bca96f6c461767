package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gamma-omg/lexi-cards/internal/pkg/serr"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/model"
	"github.com/google/uuid"
)

var imageExt = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
}

// audioExt pins extensions for common recordings; other audio types use
// the detected extension.
var audioExt = map[string]string{
	"audio/mpeg":      ".mp3",
	"audio/wav":       ".wav",
	"audio/x-m4a":     ".m4a",
	"audio/mp4":       ".m4a",
	"video/webm":      ".webm",
	"application/ogg": ".ogg",
}

// Store keeps uploaded lesson and card media on the local filesystem.
// Saved files are addressed by paths relative to the root, e.g. "cards/audio/<uuid>.mp3".
type Store struct {
	root      string
	maxWidth  int
	maxHeight int
}

type Config struct {
	Root      string
	MaxWidth  int
	MaxHeight int
}

func NewStore(cfg Config) *Store {
	return &Store{
		root:      cfg.Root,
		maxWidth:  cfg.MaxWidth,
		maxHeight: cfg.MaxHeight,
	}
}

// Save validates the content for the given kind and writes it under the kind's directory.
// Images must decode as jpeg, png or gif within the size limits. Audio type is detected from content.
func (s *Store) Save(kind model.MediaKind, src io.Reader) (string, error) {
	var buff bytes.Buffer
	tee := io.TeeReader(src, &buff)

	var ext string
	var err error
	if kind == model.MediaAudio {
		ext, err = s.checkAudio(tee)
	} else {
		ext, err = s.checkImage(tee)
	}
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, filepath.FromSlash(kind.Dir()))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	name := uuid.NewString() + ext
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer f.Close()

	_, err = io.Copy(f, io.MultiReader(&buff, src))
	if err != nil {
		_ = os.Remove(f.Name())
		if tooLarge(err) {
			return "", serr.NewServiceError(err, http.StatusRequestEntityTooLarge, "file size exceeded")
		}
		return "", fmt.Errorf("save media file: %w", err)
	}

	return path.Join(kind.Dir(), name), nil
}

func (s *Store) checkImage(r io.Reader) (string, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		if tooLarge(err) {
			return "", serr.NewServiceError(err, http.StatusRequestEntityTooLarge, "image size exceeded")
		}
		return "", serr.BadRequest(err, "invalid image")
	}
	if cfg.Width > s.maxWidth || cfg.Height > s.maxHeight {
		return "", serr.NewServiceError(err, http.StatusRequestEntityTooLarge, "image dimensions exceeded")
	}

	ext, ok := imageExt[format]
	if !ok {
		return "", serr.BadRequest(nil, "unsupported image format %q", format)
	}

	return ext, nil
}

// checkAudio accepts anything detected as audio/*, plus webm and ogg containers,
// which is what browser and phone recorders produce.
func (s *Store) checkAudio(r io.Reader) (string, error) {
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		if tooLarge(err) {
			return "", serr.NewServiceError(err, http.StatusRequestEntityTooLarge, "file size exceeded")
		}
		return "", fmt.Errorf("read audio header: %w", err)
	}

	if !isAudio(mtype) {
		return "", serr.BadRequest(nil, "invalid audio").With("content_type", mtype.String())
	}

	for m := mtype; m != nil; m = m.Parent() {
		if ext, ok := audioExt[m.String()]; ok {
			return ext, nil
		}
	}
	if ext := mtype.Extension(); ext != "" {
		return ext, nil
	}
	return ".bin", nil
}

func isAudio(m *mimetype.MIME) bool {
	return strings.HasPrefix(m.String(), "audio/") || m.Is("video/webm") || m.Is("application/ogg")
}

// Remove deletes a previously saved file. Missing files and empty paths are ignored.
func (s *Store) Remove(rel string) error {
	if rel == "" {
		return nil
	}

	full, err := s.resolve(rel)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove media file: %w", err)
	}

	return nil
}

func (s *Store) resolve(rel string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	inside, err := filepath.Rel(s.root, full)
	if err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("media path %q escapes root", rel)
	}

	return full, nil
}

// Handler serves stored files read-only. Directory listings are not exposed.
func (s *Store) Handler() http.Handler {
	fs := http.FileServer(http.Dir(s.root))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}

func tooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}
