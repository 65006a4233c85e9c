package vfs

import (
	"path/filepath"
	"testing"
)

// TestFSImplementations runs the same checks against every FS.
func TestFSImplementations(t *testing.T) {
	t.Run("MemFS", func(t *testing.T) {
		testFS(t, NewMemFS(), "/project")
	})
	t.Run("OSFS", func(t *testing.T) {
		testFS(t, NewOSFS(), t.TempDir())
	})
}

func testFS(t *testing.T, fsys FS, root string) {
	path := filepath.Join(root, "sub", "song.tmap")
	content := []byte("[AudioPath]\nsong.wav\n")

	if Exists(fsys, path) {
		t.Fatal("Exists() = true before write")
	}
	if _, err := fsys.ReadFile(path); !IsNotExist(err) {
		t.Errorf("ReadFile(missing) error = %v, want not-exist", err)
	}

	if err := fsys.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err := fsys.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("ReadFile() = %q, want %q", got, content)
	}

	info, err := fsys.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Name() != "song.tmap" || info.Size() != int64(len(content)) {
		t.Errorf("Stat() = %s/%d", info.Name(), info.Size())
	}
	if !IsRegular(fsys, path) {
		t.Error("IsRegular() = false")
	}
}

func TestMemFSReadReturnsCopy(t *testing.T) {
	m := NewMemFS()
	_ = m.WriteFile("/a", []byte("abc"), 0o644)

	got, _ := m.ReadFile("/a")
	got[0] = 'x'

	again, _ := m.ReadFile("/a")
	if string(again) != "abc" {
		t.Errorf("stored content changed to %q", again)
	}
}

func TestMemFSCleansPaths(t *testing.T) {
	m := NewMemFS()
	_ = m.WriteFile("/dir/../song.wav", []byte("x"), 0o644)
	if !Exists(m, "/song.wav") {
		t.Error("Exists(/song.wav) = false")
	}
}

func TestStripBOM(t *testing.T) {
	in := append([]byte{0xEF, 0xBB, 0xBF}, "[AudioPath]"...)
	if got := string(StripBOM(in)); got != "[AudioPath]" {
		t.Errorf("StripBOM() = %q", got)
	}
	if got := string(StripBOM([]byte("plain"))); got != "plain" {
		t.Errorf("StripBOM(plain) = %q", got)
	}
}

func TestNormalizeLineEndings(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a\nb\n", "a\nb\n"},
		{"a\r\nb\r\n", "a\nb\n"},
		{"a\rb", "a\nb"},
		{"a\r\n\rb", "a\n\nb"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := string(NormalizeLineEndings([]byte(tt.in))); got != tt.want {
			t.Errorf("NormalizeLineEndings(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
