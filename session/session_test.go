package session_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/wippyai/nbt-editor/edit"
	nbterrors "github.com/wippyai/nbt-editor/errors"
	"github.com/wippyai/nbt-editor/nbt"
	"github.com/wippyai/nbt-editor/session"
)

func sampleRoot() *nbt.Root {
	item := nbt.NewCompound().
		Set("Slot", nbt.Byte(0)).
		Set("id", nbt.NewString("minecraft:stone")).
		Set("Count", nbt.Byte(1))
	inv, _ := nbt.ListOf(item)
	return &nbt.Root{Compound: nbt.NewCompound().
		Set("XpLevel", nbt.Int(3)).
		Set("Inventory", inv)}
}

func writeSample(t *testing.T, dir, name string, c nbt.Compression) string {
	t.Helper()
	data, err := nbt.EncodeBytes(sampleRoot(), nbt.WithCompression(c))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestLoadEditSave(t *testing.T) {
	for _, c := range []nbt.Compression{nbt.CompressionGzip, nbt.CompressionNone, nbt.CompressionZlib} {
		t.Run(c.String(), func(t *testing.T) {
			dir := t.TempDir()
			path := writeSample(t, dir, "player.dat", c)

			s, err := session.Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if s.Compression() != c {
				t.Errorf("Compression = %v, want %v", s.Compression(), c)
			}
			if s.Dirty() {
				t.Error("fresh session is dirty")
			}

			if err := s.Editor().SetText(nbt.PathOf("XpLevel"), "30"); err != nil {
				t.Fatal(err)
			}
			if !s.Dirty() {
				t.Error("session not dirty after edit")
			}
			if err := s.Save(); err != nil {
				t.Fatalf("Save: %v", err)
			}
			if s.Dirty() {
				t.Error("session dirty after save")
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if got := nbt.SniffCompression(data); got != c {
				t.Errorf("saved framing = %v, want %v", got, c)
			}
			info, err := os.Stat(path)
			if err != nil {
				t.Fatal(err)
			}
			if info.Mode().Perm() != 0o600 {
				t.Errorf("mode = %v, want 0600 kept", info.Mode().Perm())
			}

			again, err := session.Load(path)
			if err != nil {
				t.Fatal(err)
			}
			if v, _ := again.Get(nbt.PathOf("XpLevel")); v != nbt.Int(30) {
				t.Errorf("XpLevel after reload = %v", v)
			}
			if got := dirEntries(t, dir); len(got) != 1 {
				t.Errorf("directory holds %v, want only player.dat", got)
			}
		})
	}
}

func TestSetCompression(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir, "level.dat", nbt.CompressionGzip)
	s, err := session.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetCompression(nbt.Compression(42)); err == nil {
		t.Error("SetCompression accepted an unknown framing")
	}
	if err := s.SetCompression(nbt.CompressionLZ4); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if nbt.SniffCompression(data) != nbt.CompressionLZ4 {
		t.Errorf("saved as %v", nbt.SniffCompression(data))
	}
}

func TestForcedCompressionOption(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir, "raw.nbt", nbt.CompressionNone)
	s, err := session.Load(path, session.WithCompression(nbt.CompressionZlib))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if nbt.SniffCompression(data) != nbt.CompressionZlib {
		t.Errorf("saved as %v", nbt.SniffCompression(data))
	}
}

func TestSaveAsRetargets(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir, "a.dat", nbt.CompressionGzip)
	s, err := session.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	other := filepath.Join(dir, "b.dat")
	if err := s.SaveAs(other); err != nil {
		t.Fatal(err)
	}
	if s.Path() != other {
		t.Errorf("Path = %q, want %q", s.Path(), other)
	}
	a, _ := os.ReadFile(path)
	b, _ := os.ReadFile(other)
	if !bytes.Equal(a, b) {
		t.Error("SaveAs of an unchanged tree produced different bytes")
	}
}

func TestNewSession(t *testing.T) {
	s := session.New(sampleRoot())
	if err := s.Save(); !errors.Is(err, nbterrors.ErrInvalidInput) {
		t.Errorf("Save without path: %v", err)
	}
	path := filepath.Join(t.TempDir(), "new.dat")
	if err := s.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if nbt.SniffCompression(data) != nbt.CompressionGzip {
		t.Errorf("new document saved as %v", nbt.SniffCompression(data))
	}
}

func TestBackup(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir, "player.dat", nbt.CompressionGzip)
	original, _ := os.ReadFile(path)

	s, err := session.Load(path, session.WithBackup(true))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Editor().DeleteChild(nbt.PathOf("Inventory", 0)); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	bak, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if !bytes.Equal(bak, original) {
		t.Error("backup does not hold the previous contents")
	}
}

func TestSaveFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "occupied")
	if err := os.Mkdir(target, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(target, "keep"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := session.New(sampleRoot())
	err := s.SaveAs(target)
	if !errors.Is(err, nbterrors.ErrIO) {
		t.Fatalf("SaveAs over a directory: %v", err)
	}
	if s.Path() != "" {
		t.Errorf("failed SaveAs retargeted the session to %q", s.Path())
	}
	if got := dirEntries(t, dir); len(got) != 1 || got[0] != "occupied" {
		t.Errorf("temp file left behind: %v", got)
	}

	missing := filepath.Join(dir, "no", "such", "dir", "x.dat")
	if err := s.SaveAs(missing); !errors.Is(err, nbterrors.ErrIO) {
		t.Errorf("SaveAs into missing dir: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	good, err := nbt.EncodeBytes(sampleRoot())
	if err != nil {
		t.Fatal(err)
	}
	files := map[string][]byte{
		"truncated": good[:len(good)/2],
		"badgzip":   {0x1f, 0x8b, 0x08, 0x00, 0x01},
		"badtype":   {0x0a, 0x00, 0x00, 0x0e, 0x00, 0x00},
		"empty":     {},
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name string
		want error
	}{
		{"missing", nbterrors.ErrIO},
		{"truncated", nbterrors.ErrTruncatedInput},
		{"badgzip", nbterrors.ErrDecompression},
		{"badtype", nbterrors.ErrUnknownTagType},
		{"empty", nbterrors.ErrTruncatedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := session.Load(filepath.Join(dir, tt.name))
			if s != nil {
				t.Error("failed load returned a session")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEditOptionsReachEditor(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir, "p.dat", nbt.CompressionGzip)
	s, err := session.Load(path, session.WithEditOptions(edit.Options{Duplicates: nbt.OverwriteDuplicates}))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Editor().Rename(nbt.PathOf("XpLevel"), "Inventory"); err != nil {
		t.Fatalf("overwrite rename: %v", err)
	}
	if v, _ := s.Get(nbt.PathOf("Inventory")); v != nbt.Int(3) {
		t.Errorf("Inventory = %v", v)
	}
}
