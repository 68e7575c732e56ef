package figcms

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupTestLibrary(t *testing.T) *MediaLibrary {
	t.Helper()
	return NewMediaLibrary(setupTestStore(t), filepath.Join(t.TempDir(), "uploads"))
}

func TestSaveUpload(t *testing.T) {
	m := setupTestLibrary(t)

	data := []byte("fake png bytes")
	rec, err := m.SaveUpload("photo.png", "image/png", int64(len(data)), bytes.NewReader(data), "alt text", "a caption", "admin")
	if err != nil {
		t.Fatalf("SaveUpload failed: %v", err)
	}
	if !strings.HasSuffix(rec.Filename, ".png") {
		t.Errorf("Filename = %q, want .png suffix", rec.Filename)
	}
	if rec.OriginalName != "photo.png" {
		t.Errorf("OriginalName = %q", rec.OriginalName)
	}
	if rec.URL != "/uploads/"+rec.Filename {
		t.Errorf("URL = %q", rec.URL)
	}
	if rec.Size != int64(len(data)) {
		t.Errorf("Size = %d, want %d", rec.Size, len(data))
	}
	if rec.Alt != "alt text" || rec.Caption != "a caption" {
		t.Errorf("metadata = %q / %q", rec.Alt, rec.Caption)
	}

	// File landed on disk with the stored bytes.
	got, err := os.ReadFile(filepath.Join(m.Dir, rec.Filename))
	if err != nil {
		t.Fatalf("uploaded file missing: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("stored bytes differ from upload")
	}
}

func TestSaveUploadRejectsBadType(t *testing.T) {
	m := setupTestLibrary(t)

	_, err := m.SaveUpload("notes.txt", "text/plain", 4, strings.NewReader("text"), "", "", "admin")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	// The rejected upload wrote nothing.
	if entries, _ := os.ReadDir(m.Dir); len(entries) != 0 {
		t.Error("rejected upload should leave no file")
	}
}

func TestSaveUploadRejectsOversize(t *testing.T) {
	m := setupTestLibrary(t)

	// 12MB declared size fails before any bytes are read.
	_, err := m.SaveUpload("big.jpg", "image/jpeg", 12<<20, strings.NewReader(""), "", "", "admin")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(ve.Error(), "10MB") {
		t.Errorf("error = %q", ve.Error())
	}
}

func TestSaveUploadUniqueFilenames(t *testing.T) {
	m := setupTestLibrary(t)

	data := []byte("x")
	names := make(map[string]bool)
	for i := 0; i < 3; i++ {
		rec, err := m.SaveUpload("same.png", "image/png", 1, bytes.NewReader(data), "", "", "admin")
		if err != nil {
			t.Fatalf("SaveUpload %d failed: %v", i, err)
		}
		if names[rec.Filename] {
			t.Fatalf("duplicate filename %q", rec.Filename)
		}
		names[rec.Filename] = true
	}
}

func TestListReconcilesUntrackedFiles(t *testing.T) {
	m := setupTestLibrary(t)

	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		t.Fatal(err)
	}
	// Files dropped into the directory outside the API.
	for _, name := range []string{"stray1.png", "stray2.jpg"} {
		if err := os.WriteFile(filepath.Join(m.Dir, name), []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// Non-image files are ignored.
	if err := os.WriteFile(filepath.Join(m.Dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	records, err := m.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("count = %d, want 2", len(records))
	}
	byName := map[string]Media{}
	for _, r := range records {
		byName[r.Filename] = r
	}
	if rec, ok := byName["stray1.png"]; !ok || rec.MimeType != "image/png" || rec.UploadedBy != "system" {
		t.Errorf("stray1 record = %+v", rec)
	}
	if rec := byName["stray2.jpg"]; rec.MimeType != "image/jpeg" {
		t.Errorf("stray2 mime = %q", rec.MimeType)
	}

	// Convergence: a second pass synthesizes nothing new.
	again, err := m.List()
	if err != nil {
		t.Fatalf("second List failed: %v", err)
	}
	if len(again) != 2 {
		t.Errorf("second pass count = %d, want 2", len(again))
	}
}

func TestListMissingDirectory(t *testing.T) {
	m := NewMediaLibrary(setupTestStore(t), filepath.Join(t.TempDir(), "does-not-exist"))
	records, err := m.List()
	if err != nil {
		t.Fatalf("List should tolerate a missing dir: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("count = %d, want 0", len(records))
	}
}

func TestDeleteMedia(t *testing.T) {
	m := setupTestLibrary(t)

	rec, err := m.SaveUpload("gone.png", "image/png", 1, strings.NewReader("x"), "", "", "admin")
	if err != nil {
		t.Fatalf("SaveUpload failed: %v", err)
	}

	if _, err := m.Delete(rec.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(m.Dir, rec.Filename)); !os.IsNotExist(err) {
		t.Error("file should be removed")
	}
	if _, err := m.Delete(rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete should report ErrNotFound, got %v", err)
	}
}

func TestDeleteMediaToleratesMissingFile(t *testing.T) {
	m := setupTestLibrary(t)

	rec, err := m.SaveUpload("vanished.png", "image/png", 1, strings.NewReader("x"), "", "", "admin")
	if err != nil {
		t.Fatalf("SaveUpload failed: %v", err)
	}
	if err := os.Remove(filepath.Join(m.Dir, rec.Filename)); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Delete(rec.ID); err != nil {
		t.Fatalf("Delete should succeed with the file already gone: %v", err)
	}
}

func TestUpdateMeta(t *testing.T) {
	m := setupTestLibrary(t)

	rec, err := m.SaveUpload("meta.png", "image/png", 1, strings.NewReader("x"), "old alt", "", "admin")
	if err != nil {
		t.Fatalf("SaveUpload failed: %v", err)
	}

	updated, err := m.UpdateMeta(rec.ID, "new alt", "new caption")
	if err != nil {
		t.Fatalf("UpdateMeta failed: %v", err)
	}
	if updated.Alt != "new alt" || updated.Caption != "new caption" {
		t.Errorf("updated = %+v", updated)
	}
	if updated.Filename != rec.Filename || updated.Size != rec.Size {
		t.Error("identity fields must not change")
	}

	if _, err := m.UpdateMeta("missing-id", "a", "c"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNormalizeMime(t *testing.T) {
	tests := []struct {
		mime, name, want string
	}{
		{"image/png", "x.png", "image/png"},
		{"image/jpg", "x.jpg", "image/jpeg"},
		{"IMAGE/JPEG", "x", "image/jpeg"},
		{"", "photo.JPG", "image/jpeg"},
		{"", "doc.pdf", ""},
		{"application/pdf", "x.png", ""},
	}
	for _, tt := range tests {
		if got := normalizeMime(tt.mime, tt.name); got != tt.want {
			t.Errorf("normalizeMime(%q, %q) = %q, want %q", tt.mime, tt.name, got, tt.want)
		}
	}
}
