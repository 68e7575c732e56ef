package figcms

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const (
	maxUploadSize = 10 << 20 // 10MB
	thumbsSubdir  = "thumbs"
	thumbMaxWidth = 320
	jpegQuality   = 80
)

// mimeByExt maps the accepted upload extensions to their MIME types.
// Only PNG and JPEG are stored; everything else is rejected at upload
// and ignored by reconciliation.
var mimeByExt = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// MediaLibrary manages uploaded files on disk together with their
// metadata records in the store. Files live flat in Dir; the records are
// the source of truth for listings, with reconciliation adopting files
// that appear in Dir without a record.
type MediaLibrary struct {
	Store *Store
	Dir   string
}

// NewMediaLibrary creates a MediaLibrary rooted at dir.
func NewMediaLibrary(store *Store, dir string) *MediaLibrary {
	return &MediaLibrary{Store: store, Dir: dir}
}

// SaveUpload validates and persists one uploaded file plus its record.
// The stored filename is the upload's unix-millisecond timestamp plus the
// original extension, with a counter suffix on collision. A JPEG
// thumbnail is generated best-effort; its failure never fails the upload.
func (m *MediaLibrary) SaveUpload(originalName, mimeType string, size int64, src io.Reader, alt, caption, uploadedBy string) (Media, error) {
	mimeType = normalizeMime(mimeType, originalName)
	if mimeType == "" {
		return Media{}, invalidInput("Invalid file type. Only JPEG and PNG images are allowed.")
	}
	if size > maxUploadSize {
		return Media{}, invalidInput("File size must be less than 10MB.")
	}

	data, err := io.ReadAll(io.LimitReader(src, maxUploadSize+1))
	if err != nil {
		return Media{}, err
	}
	if int64(len(data)) > maxUploadSize {
		return Media{}, invalidInput("File size must be less than 10MB.")
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := mimeByExt[ext]; !ok {
		// Extension and declared type can disagree; trust the type.
		if mimeType == "image/png" {
			ext = ".png"
		} else {
			ext = ".jpg"
		}
	}
	filename := strconv.FormatInt(time.Now().UnixMilli(), 10) + ext
	filename, err = m.ensureUniqueFilename(filename)
	if err != nil {
		return Media{}, err
	}

	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return Media{}, fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.Dir, filename), data, 0o644); err != nil {
		return Media{}, fmt.Errorf("write upload: %w", err)
	}

	now := time.Now().UTC()
	rec := Media{
		ID:           uuid.NewString(),
		Filename:     filename,
		OriginalName: originalName,
		MimeType:     mimeType,
		Size:         int64(len(data)),
		URL:          "/uploads/" + filename,
		Alt:          alt,
		Caption:      caption,
		UploadedBy:   uploadedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := m.Store.insertMedia(rec); err != nil {
		return Media{}, err
	}

	_ = m.writeThumbnail(filename, data)

	return rec, nil
}

// List returns all media newest-first after reconciling the uploads
// directory with the records: image files without a record get one
// synthesized from stat info. A second pass finds nothing new.
func (m *MediaLibrary) List() ([]Media, error) {
	records, err := m.Store.listMedia()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(m.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return records, nil
		}
		return nil, err
	}

	known := make(map[string]struct{}, len(records))
	for _, r := range records {
		known[r.Filename] = struct{}{}
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		mimeType, ok := mimeByExt[strings.ToLower(filepath.Ext(name))]
		if !ok {
			continue
		}
		if _, ok := known[name]; ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		mod := info.ModTime().UTC()
		rec := Media{
			ID:           uuid.NewString(),
			Filename:     name,
			OriginalName: name,
			MimeType:     mimeType,
			Size:         info.Size(),
			URL:          "/uploads/" + name,
			UploadedBy:   "system",
			CreatedAt:    mod,
			UpdatedAt:    mod,
		}
		if err := m.Store.insertMedia(rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// Delete removes the record and the file. A file already gone from disk
// is tolerated; a missing record is not.
func (m *MediaLibrary) Delete(id string) (Media, error) {
	rec, err := m.Store.getMedia(id)
	if err != nil {
		return Media{}, err
	}
	_ = os.Remove(filepath.Join(m.Dir, rec.Filename))
	_ = os.Remove(m.thumbPath(rec.Filename))
	if err := m.Store.deleteMedia(id); err != nil {
		return Media{}, err
	}
	return rec, nil
}

// UpdateMeta patches the alt text and caption of a record. File bytes and
// identity fields never change after upload.
func (m *MediaLibrary) UpdateMeta(id, alt, caption string) (Media, error) {
	now := time.Now().UTC()
	res, err := m.Store.db.Exec(`UPDATE media SET alt = ?, caption = ?, updated_at = ? WHERE id = ?`,
		alt, caption, fmtTime(now), id)
	if err != nil {
		return Media{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Media{}, err
	}
	if n == 0 {
		return Media{}, ErrNotFound
	}
	return m.Store.getMedia(id)
}

// ensureUniqueFilename appends a counter if filename already exists in the
// directory or database.
func (m *MediaLibrary) ensureUniqueFilename(filename string) (string, error) {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	candidate := filename
	counter := 1
	for {
		if _, err := os.Stat(filepath.Join(m.Dir, candidate)); err == nil {
			counter++
			candidate = fmt.Sprintf("%s-%d%s", base, counter, ext)
			continue
		}
		exists, err := m.Store.mediaFilenameExists(candidate)
		if err != nil {
			return "", err
		}
		if exists {
			counter++
			candidate = fmt.Sprintf("%s-%d%s", base, counter, ext)
			continue
		}
		return candidate, nil
	}
}

func (m *MediaLibrary) thumbPath(filename string) string {
	ext := filepath.Ext(filename)
	return filepath.Join(m.Dir, thumbsSubdir, strings.TrimSuffix(filename, ext)+".jpg")
}

// writeThumbnail renders a JPEG preview capped at thumbMaxWidth for the
// media library grid.
func (m *MediaLibrary) writeThumbnail(filename string, data []byte) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > thumbMaxWidth {
		newH := h * thumbMaxWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, thumbMaxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(m.Dir, thumbsSubdir), 0o755); err != nil {
		return err
	}
	return os.WriteFile(m.thumbPath(filename), buf.Bytes(), 0o644)
}

func normalizeMime(mimeType, originalName string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/png":
		return "image/png"
	case "image/jpeg", "image/jpg":
		return "image/jpeg"
	case "", "application/octet-stream":
		// Generic client fallback type: trust the extension.
		return mimeByExt[strings.ToLower(filepath.Ext(originalName))]
	default:
		return ""
	}
}

const mediaColumns = `id, filename, original_name, mime_type, size, url, alt, caption,
	uploaded_by, created_at, updated_at`

func (s *Store) insertMedia(rec Media) error {
	_, err := s.db.Exec(`INSERT INTO media (`+mediaColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Filename, rec.OriginalName, rec.MimeType, rec.Size, rec.URL,
		rec.Alt, rec.Caption, rec.UploadedBy, fmtTime(rec.CreatedAt), fmtTime(rec.UpdatedAt))
	return err
}

func (s *Store) listMedia() ([]Media, error) {
	rows, err := s.db.Query(`SELECT ` + mediaColumns + ` FROM media ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]Media, 0)
	for rows.Next() {
		rec, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) getMedia(id string) (Media, error) {
	row := s.db.QueryRow(`SELECT `+mediaColumns+` FROM media WHERE id = ?`, id)
	return scanMedia(row)
}

func (s *Store) deleteMedia(id string) error {
	res, err := s.db.Exec(`DELETE FROM media WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) mediaFilenameExists(filename string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM media WHERE filename = ?`, filename).Scan(&n)
	return n > 0, err
}

func scanMedia(row rowScanner) (Media, error) {
	var rec Media
	var createdAt, updatedAt string
	if err := row.Scan(&rec.ID, &rec.Filename, &rec.OriginalName, &rec.MimeType, &rec.Size,
		&rec.URL, &rec.Alt, &rec.Caption, &rec.UploadedBy, &createdAt, &updatedAt); err != nil {
		return Media{}, err
	}
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	return rec, nil
}
