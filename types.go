package figcms

import "time"

// Post lifecycle values. A post is readable on the public site only when
// it is published; visibility controls whether it appears in listings or
// is reachable by direct link only.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"

	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// DefaultAuthor is applied when a post is saved without an author.
const DefaultAuthor = "Fig.1 Team"

// Admin roles.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// BlogPost is the authoritative post document stored in SQLite.
// Content holds converted HTML, not the raw authoring syntax.
type BlogPost struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Content        string     `json:"content"`
	Excerpt        string     `json:"excerpt"`
	FeaturedImage  string     `json:"featuredImage,omitempty"`
	Status         string     `json:"status"`
	Visibility     string     `json:"visibility"`
	Tags           []string   `json:"tags"`
	Categories     []string   `json:"categories"`
	Author         string     `json:"author"`
	SEOTitle       string     `json:"seoTitle,omitempty"`
	SEODescription string     `json:"seoDescription,omitempty"`
	PublishedAt    *time.Time `json:"publishedAt,omitempty"`
	ReadingTime    int        `json:"readingTime"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// PostInput is the mutable field set accepted by create and update.
// An update overwrites all of these fields at once.
type PostInput struct {
	Title          string   `json:"title"`
	Slug           string   `json:"slug"`
	Content        string   `json:"content"`
	Excerpt        string   `json:"excerpt"`
	FeaturedImage  string   `json:"featuredImage"`
	Status         string   `json:"status"`
	Visibility     string   `json:"visibility"`
	Tags           []string `json:"tags"`
	Categories     []string `json:"categories"`
	Author         string   `json:"author"`
	SEOTitle       string   `json:"seoTitle"`
	SEODescription string   `json:"seoDescription"`
}

// Media is the metadata record for one uploaded file.
type Media struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	Alt          string    `json:"alt"`
	Caption      string    `json:"caption"`
	UploadedBy   string    `json:"uploadedBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AdminUser is an administrator account. The password hash and reset
// token never serialize.
type AdminUser struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"isActive"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	ResetToken   string     `json:"-"`
	ResetExpiry  *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
