package figcms

import (
	"sync"
	"time"
)

// PostCache is an in-memory cache of published posts with TTL. It backs
// the public read paths (slug lookup, feed, sitemap) so they avoid a
// query per request; every post mutation invalidates it.
type PostCache struct {
	mu      sync.RWMutex
	posts   []BlogPost
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.mu.Unlock()
}

func (c *PostCache) load() error {
	if c.valid() {
		return nil
	}
	// Private published posts are cached too: they resolve by direct slug
	// even though listings skip them.
	posts, err := c.store.ListPosts(PostFilter{Status: StatusPublished, Visibility: "all"})
	if err != nil {
		return err
	}
	c.posts = posts
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached posts after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded() ([]BlogPost, error) {
	c.mu.RLock()
	if c.valid() {
		posts := c.posts
		c.mu.RUnlock()
		return posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, err
	}
	return c.posts, nil
}

// Public returns the published posts that appear in public listings,
// newest first.
func (c *PostCache) Public() ([]BlogPost, error) {
	posts, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	filtered := make([]BlogPost, 0, len(posts))
	for _, p := range posts {
		if p.Visibility == VisibilityPublic {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// GetBySlug returns a published post by slug from the cache, regardless
// of visibility.
func (c *PostCache) GetBySlug(slug string) (BlogPost, error) {
	posts, err := c.ensureLoaded()
	if err != nil {
		return BlogPost{}, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return BlogPost{}, ErrNotFound
}
