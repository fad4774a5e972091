// Package history implements the durable, append-only record of every
// generation event. Each entry is one JSON metadata document plus a full
// PNG and a thumbnail, all keyed by a UUID; a compact rolling index of
// summaries supports fast listing.
//
// The layout under the store root:
//
//	index.json        bounded newest-first array of summaries
//	entries/{id}.json full metadata, the source of truth per entry
//	full/{id}.png     lossless full-size image
//	thumbnails/{id}.png
//
// Individual file writes are atomic (temp-then-rename); there is no
// write-ahead log and no checksum. Save is best-effort per sub-step: a
// failed index update never rolls back already-written entry or image
// files, because those remain recoverable truth on their own.
package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"sdstudio/sdgen"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// MaxIndexEntries caps the rolling index; the oldest rows fall off.
	MaxIndexEntries = 500

	// DefaultListLimit is used when List is called with a non-positive limit.
	DefaultListLimit = 50

	indexFileName = "index.json"
	entriesDir    = "entries"
	fullDir       = "full"
	thumbsDir     = "thumbnails"
)

// Store is a filesystem-backed history store rooted at a single directory.
//
// Store is safe for use from concurrent request handlers: the index
// read-modify-write cycle is serialized with a mutex so two overlapping
// saves cannot drop each other's rows. Entry and image files live at
// distinct id-keyed paths and never conflict.
type Store struct {
	root       string
	indexPath  string
	maxEntries int
	log        *zap.Logger

	mu sync.Mutex // guards index read-modify-write
}

// NewStore creates (if needed) the history directory tree under root and
// returns a store. A nil logger disables logging.
func NewStore(root string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	for _, dir := range []string{root, filepath.Join(root, entriesDir), filepath.Join(root, fullDir), filepath.Join(root, thumbsDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	return &Store{
		root:       root,
		indexPath:  filepath.Join(root, indexFileName),
		maxEntries: MaxIndexEntries,
		log:        log,
	}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Save persists a generation event: full image, thumbnail, metadata
// document, and index row. It assigns the entry id and timestamp if the
// metadata does not already carry them, and returns the finalized metadata.
//
// Sub-steps are independently best-effort: failures are logged and the
// remaining steps still run. The returned error is non-nil only when a
// primary write (full image or entry document) failed; the caller may treat
// it as advisory, since history must never block the generation flow.
func (s *Store) Save(meta *sdgen.GenerationMetadata, img image.Image) (*sdgen.GenerationMetadata, error) {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.Timestamp == "" {
		meta.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	var firstErr error

	fullPath := filepath.Join(s.root, fullDir, meta.ID+".png")
	if err := s.writePNG(fullPath, img); err != nil {
		s.log.Error("failed to write full image",
			zap.String("id", meta.ID), zap.Error(err))
		firstErr = err
	}
	meta.FullImage = fullPath

	thumbPath := filepath.Join(s.root, thumbsDir, meta.ID+".png")
	if err := s.writePNG(thumbPath, thumbnailOf(img, ThumbnailMaxEdge)); err != nil {
		s.log.Error("failed to write thumbnail",
			zap.String("id", meta.ID), zap.Error(err))
	}
	meta.Thumbnail = thumbPath

	if err := s.writeEntry(meta); err != nil {
		s.log.Error("failed to write metadata document",
			zap.String("id", meta.ID), zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}

	s.updateIndex(meta.Summary())

	s.log.Info("saved history entry",
		zap.String("id", meta.ID), zap.String("mode", string(meta.Mode)))
	return meta, firstErr
}

// List returns up to limit summary rows, newest first. A non-positive limit
// selects DefaultListLimit. Only the index is consulted; entry documents are
// never touched.
func (s *Store) List(limit int) []sdgen.HistorySummary {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	s.mu.Lock()
	index := s.readIndex()
	s.mu.Unlock()

	if len(index) > limit {
		index = index[:limit]
	}
	return index
}

// Load reads the full metadata document for id. It reports false when the
// entry does not exist or cannot be parsed; corruption is logged, not fatal.
func (s *Store) Load(id string) (*sdgen.GenerationMetadata, bool) {
	if !validEntryID(id) {
		return nil, false
	}
	return s.loadEntry(id)
}

// Delete removes an entry and all of its artifacts: thumbnail, full image,
// metadata document, and index row. Unknown ids report false and leave the
// index untouched. File removals are individually best-effort; a crash
// between them can orphan files, which is an accepted gap (no GC pass).
func (s *Store) Delete(id string) bool {
	if !validEntryID(id) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.readIndex()
	kept := make([]sdgen.HistorySummary, 0, len(index))
	removed := false

	for _, row := range index {
		if row.ID != id {
			kept = append(kept, row)
			continue
		}
		removed = true

		if row.Thumbnail != "" {
			s.removeFile(row.Thumbnail)
		}

		// The full-image path is only recorded in the entry document.
		if entry, ok := s.loadEntry(id); ok && entry.FullImage != "" {
			s.removeFile(entry.FullImage)
		}

		s.removeFile(filepath.Join(s.root, entriesDir, id+".json"))
	}

	if !removed {
		return false
	}

	s.writeIndex(kept)
	s.log.Info("deleted history entry", zap.String("id", id))
	return true
}

// FullImagePath returns the path of the stored full image for id, and
// whether it exists on disk.
func (s *Store) FullImagePath(id string) (string, bool) {
	return s.artifactPath(fullDir, id)
}

// ThumbnailPath returns the path of the stored thumbnail for id, and
// whether it exists on disk.
func (s *Store) ThumbnailPath(id string) (string, bool) {
	return s.artifactPath(thumbsDir, id)
}

func (s *Store) artifactPath(dir, id string) (string, bool) {
	if !validEntryID(id) {
		return "", false
	}
	path := filepath.Join(s.root, dir, id+".png")
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// writePNG writes img losslessly via the atomic write path.
func (s *Store) writePNG(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return writeFileAtomic(path, buf.Bytes())
}

func (s *Store) writeEntry(meta *sdgen.GenerationMetadata) error {
	payload, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(s.root, entriesDir, meta.ID+".json"), payload)
}

func (s *Store) loadEntry(id string) (*sdgen.GenerationMetadata, bool) {
	path := filepath.Join(s.root, entriesDir, id+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("failed to read history entry",
				zap.String("id", id), zap.Error(err))
		}
		return nil, false
	}

	var meta sdgen.GenerationMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		s.log.Warn("corrupt history entry",
			zap.String("id", id), zap.Error(err))
		return nil, false
	}
	return &meta, true
}

// updateIndex prepends a summary row, dropping any existing row with the
// same id and truncating to the retention cap.
func (s *Store) updateIndex(summary sdgen.HistorySummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.readIndex()
	next := make([]sdgen.HistorySummary, 0, len(index)+1)
	next = append(next, summary)
	for _, row := range index {
		if row.ID != summary.ID {
			next = append(next, row)
		}
	}
	if len(next) > s.maxEntries {
		next = next[:s.maxEntries]
	}

	s.writeIndex(next)
}

// readIndex returns the current index rows. A missing index is an empty
// store; a corrupt one is logged and treated as empty, since the index is
// only a cache over the entry documents. Callers hold the mutex.
func (s *Store) readIndex() []sdgen.HistorySummary {
	data, err := os.ReadFile(s.indexPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("failed to read history index", zap.Error(err))
		}
		return nil
	}

	var index []sdgen.HistorySummary
	if err := json.Unmarshal(data, &index); err != nil {
		s.log.Warn("corrupt history index, treating as empty", zap.Error(err))
		return nil
	}
	return index
}

// writeIndex persists the index atomically. Failures are logged and
// swallowed: the entry documents remain the source of truth. Callers hold
// the mutex.
func (s *Store) writeIndex(index []sdgen.HistorySummary) {
	payload, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		s.log.Error("failed to encode history index", zap.Error(err))
		return
	}
	if err := writeFileAtomic(s.indexPath, payload); err != nil {
		s.log.Error("failed to write history index", zap.Error(err))
	}
}

func (s *Store) removeFile(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Debug("failed to remove history artifact",
			zap.String("path", path), zap.Error(err))
	}
}

// validEntryID rejects ids that could escape the store directories. Entry
// ids are UUIDs assigned by the store, but Load/Delete accept caller input.
func validEntryID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`)
}
