package editor

import (
	"sync"
	"time"

	"github.com/figone/figcms"
	"github.com/figone/figcms/markup"
)

// autoSaveDelay is the quiet period after the last change before the
// draft is flushed to storage.
const autoSaveDelay = 2 * time.Second

// PostWriter is the slice of the post repository a session submits to.
// *figcms.Store satisfies it.
type PostWriter interface {
	CreatePost(in figcms.PostInput) (figcms.BlogPost, error)
	UpdatePost(id string, in figcms.PostInput) (figcms.BlogPost, error)
}

// Session is one authoring session over a single document. An empty
// postID means a new post; otherwise the session edits an existing one.
type Session struct {
	mu      sync.Mutex
	postID  string
	form    Draft
	history *History
	drafts  *DraftStore
	delay   time.Duration
	timer   *time.Timer
}

// NewSession starts a session with the given initial form state.
func NewSession(drafts *DraftStore, postID string, initial Draft) *Session {
	return &Session{
		postID:  postID,
		form:    initial,
		history: NewHistory(initial.Content),
		drafts:  drafts,
		delay:   autoSaveDelay,
	}
}

// HasDraft reports whether an auto-saved snapshot exists for the document.
func (s *Session) HasDraft() bool {
	_, ok := s.drafts.Load(s.postID)
	return ok
}

// RestoreDraft loads a previously auto-saved snapshot into the session,
// resetting history to the restored content. The snapshot stays stored
// until an explicit Clear or a successful Submit.
func (s *Session) RestoreDraft() bool {
	draft, ok := s.drafts.Load(s.postID)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = draft
	s.history = NewHistory(draft.Content)
	return true
}

// ClearDraft discards the stored snapshot without touching the session.
func (s *Session) ClearDraft() {
	s.drafts.Clear(s.postID)
}

// Form returns a snapshot of the current form state.
func (s *Session) Form() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// SetTitle updates the title. The slug follows the title until the
// author edits the slug field directly.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Title = title
	if !s.form.SlugManuallyEdited {
		s.form.Slug = markup.Slugify(title)
	}
	s.scheduleSave()
}

// SetSlug records a manual slug edit. Automatic derivation stays
// suppressed for the rest of the session, even if the title changes again.
func (s *Session) SetSlug(slug string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Slug = slug
	s.form.SlugManuallyEdited = true
	s.scheduleSave()
}

// SetContent commits a content change: the state enters history and the
// auto-save timer rearms.
func (s *Session) SetContent(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Content = content
	s.history.Push(content)
	s.scheduleSave()
}

// SetField updates one of the remaining form fields by applying fn to the
// form. History only tracks content, so no state is pushed.
func (s *Session) SetField(fn func(*Draft)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.form)
	s.scheduleSave()
}

// Undo steps the content buffer back one committed state.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.history.Undo()
	if !ok {
		return false
	}
	s.form.Content = text
	s.scheduleSave()
	return true
}

// Redo steps the content buffer forward one state.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.history.Redo()
	if !ok {
		return false
	}
	s.form.Content = text
	s.scheduleSave()
	return true
}

// Preview converts the current content buffer to HTML.
func (s *Session) Preview() string {
	s.mu.Lock()
	content := s.form.Content
	s.mu.Unlock()
	return markup.Convert(content)
}

// scheduleSave (re)arms the single pending auto-save timer; each change
// pushes the flush out by the full quiet period. Callers hold s.mu.
func (s *Session) scheduleSave() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.Flush)
}

// Flush writes the draft snapshot immediately.
func (s *Session) Flush() {
	s.mu.Lock()
	form := s.form
	s.mu.Unlock()
	form.SavedAt = time.Now()
	_ = s.drafts.Save(s.postID, form)
}

// Submit converts the content buffer and writes the document to the
// repository: create for a new document, full update otherwise. The
// draft is cleared only on success; a failed save keeps it for retry.
func (s *Session) Submit(repo PostWriter) (figcms.BlogPost, error) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	form := s.form
	s.mu.Unlock()

	in := figcms.PostInput{
		Title:          form.Title,
		Slug:           form.Slug,
		Content:        markup.Convert(form.Content),
		Excerpt:        form.Excerpt,
		FeaturedImage:  form.FeaturedImage,
		Status:         form.Status,
		Visibility:     form.Visibility,
		Tags:           figcms.SplitList(form.Tags),
		Categories:     figcms.SplitList(form.Categories),
		Author:         form.Author,
		SEOTitle:       form.SEOTitle,
		SEODescription: form.SEODescription,
	}

	var (
		post figcms.BlogPost
		err  error
	)
	if s.postID == "" {
		post, err = repo.CreatePost(in)
	} else {
		post, err = repo.UpdatePost(s.postID, in)
	}
	if err != nil {
		return figcms.BlogPost{}, err
	}
	s.drafts.Clear(s.postID)
	return post, nil
}
