package editor

import (
	"encoding/json"
	"sync"
	"time"
)

// KV is the storage slot drafts persist to. The admin UI backs it with
// browser storage; tests and server-side tooling use MemKV.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// MemKV is an in-memory KV safe for concurrent use.
type MemKV struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMemKV creates an empty MemKV.
func NewMemKV() *MemKV {
	return &MemKV{m: make(map[string]string)}
}

func (s *MemKV) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *MemKV) Set(key, value string) {
	s.mu.Lock()
	s.m[key] = value
	s.mu.Unlock()
}

func (s *MemKV) Delete(key string) {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
}

// Draft is the full form snapshot auto-saved during an authoring session.
// Content holds the raw authoring syntax, not converted HTML.
type Draft struct {
	Title              string    `json:"title"`
	Slug               string    `json:"slug"`
	Content            string    `json:"content"`
	Excerpt            string    `json:"excerpt"`
	FeaturedImage      string    `json:"featuredImage"`
	Status             string    `json:"status"`
	Visibility         string    `json:"visibility"`
	Tags               string    `json:"tags"`
	Categories         string    `json:"categories"`
	Author             string    `json:"author"`
	SEOTitle           string    `json:"seoTitle"`
	SEODescription     string    `json:"seoDescription"`
	SlugManuallyEdited bool      `json:"slugManuallyEdited"`
	SavedAt            time.Time `json:"timestamp"`
}

// DraftKey returns the storage key for a document: one fixed slot for a
// new post, a per-id slot when editing an existing one.
func DraftKey(postID string) string {
	if postID == "" {
		return "newPostDraft"
	}
	return "editPostDraft_" + postID
}

// DraftStore persists draft snapshots in a KV slot, one per document.
type DraftStore struct {
	kv KV
}

// NewDraftStore creates a DraftStore over the given KV.
func NewDraftStore(kv KV) *DraftStore {
	return &DraftStore{kv: kv}
}

// Save writes the draft for the given document, replacing any earlier one.
func (d *DraftStore) Save(postID string, draft Draft) error {
	b, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	d.kv.Set(DraftKey(postID), string(b))
	return nil
}

// Load returns the stored draft, if any. Loading never deletes the
// snapshot; declining a restore leaves it in place.
func (d *DraftStore) Load(postID string) (Draft, bool) {
	raw, ok := d.kv.Get(DraftKey(postID))
	if !ok {
		return Draft{}, false
	}
	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return Draft{}, false
	}
	return draft, true
}

// Clear removes the draft for the given document.
func (d *DraftStore) Clear(postID string) {
	d.kv.Delete(DraftKey(postID))
}
