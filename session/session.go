// Package session owns one NBT document on disk: it loads it, hands out
// an editor over the tree, and writes it back atomically in the framing it
// arrived in.
package session

import (
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/wippyai/nbt-editor/edit"
	"github.com/wippyai/nbt-editor/errors"
	"github.com/wippyai/nbt-editor/nbt"
)

// Option configures a Session.
type Option func(*Session)

// WithEditOptions sets the options of the session's editor.
func WithEditOptions(opts edit.Options) Option {
	return func(s *Session) {
		s.editOptions = opts
	}
}

// WithCompression makes saves use c regardless of the framing the file
// was loaded with.
func WithCompression(c nbt.Compression) Option {
	return func(s *Session) {
		s.compression = c
		s.forced = true
	}
}

// WithBackup keeps the previous contents of a file as <name>.bak on save.
func WithBackup(enabled bool) Option {
	return func(s *Session) {
		s.backup = enabled
	}
}

// WithMaxDepth bounds container nesting on load and save.
func WithMaxDepth(n int) Option {
	return func(s *Session) {
		s.maxDepth = n
	}
}

// Session is one open document. Not safe for concurrent use.
type Session struct {
	root        *nbt.Root
	editor      *edit.Editor
	path        string
	editOptions edit.Options
	compression nbt.Compression
	maxDepth    int
	digest      [32]byte
	forced      bool
	backup      bool
}

func newSession(path string, opts []Option) *Session {
	s := &Session{
		path:        path,
		editOptions: edit.DefaultOptions(),
		maxDepth:    nbt.DefaultMaxDepth,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Load reads and decodes the file at path. A failed load returns no
// session.
func Load(path string, opts ...Option) (*Session, error) {
	s := newSession(path, opts)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IO(errors.PhaseLoad, "read", path, err)
	}
	root, detected, err := nbt.DecodeBytes(data, nbt.WithMaxDepth(s.maxDepth))
	if err != nil {
		Logger().Debug("load failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	if !s.forced {
		s.compression = detected
	}
	s.attach(root)
	Logger().Info("loaded",
		zap.String("path", path),
		zap.Stringer("compression", detected),
		zap.Int("size", len(data)),
		zap.Int("entries", root.Compound.Len()))
	return s, nil
}

// New wraps an in-memory tree in a session with no file behind it yet.
// Use SaveAs to give it one. The default framing is gzip, as for player
// and level files.
func New(root *nbt.Root, opts ...Option) *Session {
	s := newSession("", append([]Option{WithCompression(nbt.CompressionGzip)}, opts...))
	s.attach(root)
	return s
}

func (s *Session) attach(root *nbt.Root) {
	s.root = root
	s.editor = edit.New(root, s.editOptions)
	s.digest = s.currentDigest()
}

// Root returns the document tree.
func (s *Session) Root() *nbt.Root {
	return s.root
}

// Editor returns the editor bound to the document tree.
func (s *Session) Editor() *edit.Editor {
	return s.editor
}

// Get resolves p in the document.
func (s *Session) Get(p nbt.Path) (nbt.Tag, error) {
	return s.editor.Get(p)
}

// Path returns the file the session saves to.
func (s *Session) Path() string {
	return s.path
}

// Compression returns the framing the next save will use.
func (s *Session) Compression() nbt.Compression {
	return s.compression
}

// SetCompression changes the framing used by later saves.
func (s *Session) SetCompression(c nbt.Compression) error {
	if err := c.Valid(); err != nil {
		return err
	}
	s.compression = c
	s.forced = true
	return nil
}

// Dirty reports whether the tree differs from what was last loaded or
// saved.
func (s *Session) Dirty() bool {
	return s.currentDigest() != s.digest
}

// currentDigest hashes the raw encoding. An unencodable tree never
// matches a stored digest.
func (s *Session) currentDigest() [32]byte {
	data, err := nbt.EncodeBytes(s.root, nbt.WithMaxDepth(s.maxDepth))
	if err != nil {
		return [32]byte{0xff}
	}
	return blake3.Sum256(data)
}

// Save writes the document back to its path.
func (s *Session) Save() error {
	if s.path == "" {
		return errors.InvalidInput(errors.PhaseSave, "session has no file; use SaveAs")
	}
	return s.saveTo(s.path)
}

// SaveAs writes the document to path and makes path the session's file.
func (s *Session) SaveAs(path string) error {
	if path == "" {
		return errors.InvalidInput(errors.PhaseSave, "empty path")
	}
	if err := s.saveTo(path); err != nil {
		return err
	}
	s.path = path
	return nil
}

func (s *Session) saveTo(path string) error {
	raw, err := nbt.EncodeBytes(s.root, nbt.WithMaxDepth(s.maxDepth))
	if err != nil {
		return err
	}
	data, err := s.compression.Compress(raw)
	if err != nil {
		return err
	}
	if s.backup {
		if err := backupFile(path); err != nil {
			return err
		}
	}
	if err := writeFileAtomic(path, data); err != nil {
		Logger().Warn("save failed", zap.String("path", path), zap.Error(err))
		return err
	}
	s.digest = blake3.Sum256(raw)
	Logger().Info("saved",
		zap.String("path", path),
		zap.Stringer("compression", s.compression),
		zap.Int("size", len(data)))
	return nil
}

// backupFile copies an existing file at path to path+".bak". A missing
// file is not an error.
func backupFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.IO(errors.PhaseSave, "read for backup", path, err)
	}
	return writeFileAtomic(path+".bak", data)
}

// writeFileAtomic replaces path with data. The bytes go to a
// temporary file in the same directory which is synced and renamed over
// path; on failure the temporary file is removed and path is untouched.
func writeFileAtomic(path string, data []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmpFile, err := os.CreateTemp(dir, "."+base+"-*.tmp")
	if err != nil {
		return errors.IO(errors.PhaseSave, "create temp for", path, err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return errors.IO(errors.PhaseSave, "write", tmpPath, err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return errors.IO(errors.PhaseSave, "sync", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		return errors.IO(errors.PhaseSave, "close", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return errors.IO(errors.PhaseSave, "chmod", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.IO(errors.PhaseSave, "rename over", path, err)
	}

	success = true
	return nil
}
