package figcms

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Field limits enforced on post input.
const (
	maxTitleLen          = 200
	maxExcerptLen        = 500
	maxSEOTitleLen       = 60
	maxSEODescriptionLen = 160
)

// PostFilter narrows ListPosts. Empty Status matches everything; empty
// Visibility restricts to public posts, the safe default for listings.
// Either field accepts "all" explicitly.
type PostFilter struct {
	Status     string
	Visibility string
	Limit      int
}

const postColumns = `id, title, slug, content, excerpt, featured_image, status, visibility,
	tags, categories, author, seo_title, seo_description, published_at, reading_time,
	created_at, updated_at`

// CreatePost validates input, applies defaults, and persists a new post.
// A slug collision fails with no side effects.
func (s *Store) CreatePost(in PostInput) (BlogPost, error) {
	if err := validatePostInput(in); err != nil {
		return BlogPost{}, err
	}
	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	taken, err := s.slugTaken(slug, "")
	if err != nil {
		return BlogPost{}, err
	}
	if taken {
		return BlogPost{}, &ConflictError{Msg: "A post with this slug already exists"}
	}

	now := time.Now().UTC()
	p := applyPostInput(BlogPost{ID: uuid.NewString(), CreatedAt: now}, in, now)

	_, err = s.db.Exec(`INSERT INTO posts (`+postColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Slug, p.Content, p.Excerpt, p.FeaturedImage, p.Status, p.Visibility,
		joinList(p.Tags), joinList(p.Categories), p.Author, p.SEOTitle, p.SEODescription,
		fmtTimePtr(p.PublishedAt), p.ReadingTime, fmtTime(p.CreatedAt), fmtTime(p.UpdatedAt))
	if err != nil {
		return BlogPost{}, err
	}
	return p, nil
}

// UpdatePost overwrites the full mutable field set of an existing post.
// The slug uniqueness check excludes the post itself, and publishedAt
// survives transitions out of and back into published.
func (s *Store) UpdatePost(id string, in PostInput) (BlogPost, error) {
	existing, err := s.GetPostByID(id)
	if err != nil {
		return BlogPost{}, err
	}
	if err := validatePostInput(in); err != nil {
		return BlogPost{}, err
	}
	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	if slug != existing.Slug {
		taken, err := s.slugTaken(slug, id)
		if err != nil {
			return BlogPost{}, err
		}
		if taken {
			return BlogPost{}, &ConflictError{Msg: "A post with this slug already exists"}
		}
	}

	now := time.Now().UTC()
	p := applyPostInput(existing, in, now)

	_, err = s.db.Exec(`UPDATE posts SET title = ?, slug = ?, content = ?, excerpt = ?,
		featured_image = ?, status = ?, visibility = ?, tags = ?, categories = ?, author = ?,
		seo_title = ?, seo_description = ?, published_at = ?, reading_time = ?, updated_at = ?
		WHERE id = ?`,
		p.Title, p.Slug, p.Content, p.Excerpt, p.FeaturedImage, p.Status, p.Visibility,
		joinList(p.Tags), joinList(p.Categories), p.Author, p.SEOTitle, p.SEODescription,
		fmtTimePtr(p.PublishedAt), p.ReadingTime, fmtTime(p.UpdatedAt), id)
	if err != nil {
		return BlogPost{}, err
	}
	return p, nil
}

// DeletePost removes a post permanently.
func (s *Store) DeletePost(id string) error {
	res, err := s.db.Exec(`DELETE FROM posts WHERE id = ?`, id)
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

// ListPosts returns posts matching the filter, newest first.
func (s *Store) ListPosts(f PostFilter) ([]BlogPost, error) {
	q := `SELECT ` + postColumns + ` FROM posts`
	var conds []string
	var args []any
	if f.Status != "" && f.Status != "all" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	switch f.Visibility {
	case "":
		conds = append(conds, "visibility = ?")
		args = append(args, VisibilityPublic)
	case "all":
	default:
		conds = append(conds, "visibility = ?")
		args = append(args, f.Visibility)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]BlogPost, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// GetPostByID returns a post regardless of status or visibility.
func (s *Store) GetPostByID(id string) (BlogPost, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	return scanPost(row)
}

// GetPostBySlug returns a published post by slug. Private posts resolve
// here too: visibility hides a post from listings, not from direct links.
func (s *Store) GetPostBySlug(slug string) (BlogPost, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ? AND status = ?`,
		slug, StatusPublished)
	return scanPost(row)
}

func (s *Store) slugTaken(slug, excludeID string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE slug = ? AND id != ?`, slug, excludeID).Scan(&n)
	return n > 0, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (BlogPost, error) {
	var p BlogPost
	var tags, categories, createdAt, updatedAt string
	var publishedAt sql.NullString
	if err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.FeaturedImage,
		&p.Status, &p.Visibility, &tags, &categories, &p.Author, &p.SEOTitle, &p.SEODescription,
		&publishedAt, &p.ReadingTime, &createdAt, &updatedAt); err != nil {
		return BlogPost{}, err
	}
	p.Tags = parseList(tags)
	p.Categories = parseList(categories)
	p.PublishedAt = parseTimePtr(publishedAt)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}

func validatePostInput(in PostInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return missingField("title")
	}
	if strings.TrimSpace(in.Slug) == "" {
		return missingField("slug")
	}
	if in.Content == "" {
		return missingField("content")
	}
	if strings.TrimSpace(in.Excerpt) == "" {
		return missingField("excerpt")
	}
	if len(in.Title) > maxTitleLen {
		return invalidInput("title must be 200 characters or less")
	}
	if len(in.Excerpt) > maxExcerptLen {
		return invalidInput("excerpt must be 500 characters or less")
	}
	if len(in.SEOTitle) > maxSEOTitleLen {
		return invalidInput("seoTitle must be 60 characters or less")
	}
	if len(in.SEODescription) > maxSEODescriptionLen {
		return invalidInput("seoDescription must be 160 characters or less")
	}
	if in.Status != "" && in.Status != StatusDraft && in.Status != StatusPublished && in.Status != StatusArchived {
		return invalidInput("status must be one of draft, published, archived")
	}
	if in.Visibility != "" && in.Visibility != VisibilityPublic && in.Visibility != VisibilityPrivate {
		return invalidInput("visibility must be public or private")
	}
	return nil
}

// applyPostInput copies the mutable field set onto p, fills defaults, and
// recomputes the derived fields.
func applyPostInput(p BlogPost, in PostInput, now time.Time) BlogPost {
	p.Title = strings.TrimSpace(in.Title)
	p.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	p.Content = in.Content
	p.Excerpt = strings.TrimSpace(in.Excerpt)
	p.FeaturedImage = in.FeaturedImage
	p.Status = in.Status
	if p.Status == "" {
		p.Status = StatusDraft
	}
	p.Visibility = in.Visibility
	if p.Visibility == "" {
		p.Visibility = VisibilityPublic
	}
	p.Tags = FilterEmpty(in.Tags)
	p.Categories = FilterEmpty(in.Categories)
	p.Author = strings.TrimSpace(in.Author)
	if p.Author == "" {
		p.Author = DefaultAuthor
	}
	p.SEOTitle = in.SEOTitle
	p.SEODescription = in.SEODescription
	// publishedAt is stamped the first time a post enters published and is
	// never reset, so the original publication date survives archiving.
	if p.Status == StatusPublished && p.PublishedAt == nil {
		t := now
		p.PublishedAt = &t
	}
	p.ReadingTime = ReadingTime(p.Content)
	p.UpdatedAt = now
	return p
}
