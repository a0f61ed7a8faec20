// Package editor holds one quotation under edit and mediates every change to it.
//
// A Session starts in StateNew with a blank document. The first successful Save
// creates the quotation and moves the session to StateEditing; later saves update it.
// A Session is not safe for concurrent use.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/quotation-api/internal/domain"
	"go.uber.org/zap"
)

// State is the lifecycle state of a Session
type State int

const (
	// StateNew means the document has never been saved
	StateNew State = iota
	// StateEditing means the document is bound to a stored quotation
	StateEditing
)

func (s State) String() string {
	if s == StateEditing {
		return "editing"
	}
	return "new"
}

var (
	// ErrNotFound is returned when the backend has no quotation with the requested id
	ErrNotFound       = errors.New("quotation not found")
	ErrNotSaved       = errors.New("quotation has not been saved yet")
	ErrFixedTab       = errors.New("fixed tabs cannot be removed")
	ErrUnknownTab     = errors.New("unknown tab")
	ErrNotImageTab    = errors.New("tab does not hold an image")
	ErrUnknownSection = errors.New("unknown section")
	ErrIndexRange     = errors.New("item index out of range")
	ErrEmptyLabel     = errors.New("tab label must not be empty")
)

// UploadError reports a failed image upload; the tab keeps its previous image
type UploadError struct {
	TabID    string
	Filename string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %s to tab %s failed: %v", e.Filename, e.TabID, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Backend persists quotation documents.
// Get, Update and Delete return an error wrapping ErrNotFound for an unknown id.
type Backend interface {
	Create(ctx context.Context, doc *domain.Document) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, doc *domain.Document) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// FileStore accepts an upload and returns the path it can be fetched from
type FileStore interface {
	Upload(ctx context.Context, filename, contentType string, data io.Reader) (string, error)
}

// Session is the state machine around one document under edit
type Session struct {
	backend Backend
	files   FileStore
	logger  *zap.Logger
	now     func() time.Time

	state  State
	doc    *domain.Document
	active string
}

// NewSession returns a session holding a blank document
func NewSession(backend Backend, files FileStore, logger *zap.Logger) *Session {
	s := &Session{
		backend: backend,
		files:   files,
		logger:  logger,
		now:     time.Now,
	}
	s.Reset()
	return s
}

// Reset discards the current document and starts a new one
func (s *Session) Reset() {
	s.doc = domain.NewDocument(s.now())
	s.state = StateNew
	s.active = domain.TabCover
}

func (s *Session) State() State { return s.state }

// ID is the stored quotation id, or uuid.Nil in StateNew
func (s *Session) ID() uuid.UUID { return s.doc.ID }

// Document returns the document under edit. Change it through the Session methods only.
func (s *Session) Document() *domain.Document { return s.doc }

// ActiveTab is the id of the tab currently shown
func (s *Session) ActiveTab() string { return s.active }

func (s *Session) Totals() domain.Totals { return s.doc.Totals() }

// EditHeader applies fn to the header fields
func (s *Session) EditHeader(fn func(*domain.Header)) {
	fn(&s.doc.Header)
}

// EditTerms applies fn to the commercial terms
func (s *Session) EditTerms(fn func(*domain.Terms)) {
	fn(&s.doc.Terms)
}

// AddItem appends a blank row to section
func (s *Session) AddItem(section domain.SectionID) error {
	items, ok := s.doc.Section(section)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSection, section)
	}
	*items = append(*items, domain.Item{})
	return nil
}

// RemoveItem deletes row index from section. Removing the last row is a no-op.
func (s *Session) RemoveItem(section domain.SectionID, index int) error {
	items, ok := s.doc.Section(section)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSection, section)
	}
	if index < 0 || index >= len(*items) {
		return ErrIndexRange
	}
	if len(*items) <= 1 {
		return nil
	}
	*items = append((*items)[:index], (*items)[index+1:]...)
	return nil
}

// UpdateItem applies fn to row index of section
func (s *Session) UpdateItem(section domain.SectionID, index int, fn func(*domain.Item)) error {
	items, ok := s.doc.Section(section)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSection, section)
	}
	if index < 0 || index >= len(*items) {
		return ErrIndexRange
	}
	fn(&(*items)[index])
	return nil
}

// MoveItem moves row from to position to within section
func (s *Session) MoveItem(section domain.SectionID, from, to int) error {
	items, ok := s.doc.Section(section)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSection, section)
	}
	n := len(*items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return ErrIndexRange
	}
	it := (*items)[from]
	rest := append((*items)[:from:from], (*items)[from+1:]...)
	*items = append(rest[:to:to], append([]domain.Item{it}, rest[to:]...)...)
	return nil
}

// AddTab appends a tab of kind, makes it active and returns its id.
// Detail-sheet tabs start with one blank row.
func (s *Session) AddTab(kind domain.TabKind) string {
	if kind != domain.TabKindDetail {
		kind = domain.TabKindImage
	}
	id := s.newTabID(kind)

	label := "Image"
	var items []domain.Item
	if kind == domain.TabKindDetail {
		label = "Detail sheet"
		items = []domain.Item{{}}
	}
	// Fixed tabs are numbered 1 and 2
	label = fmt.Sprintf("%d. %s", len(s.doc.Tabs.Tabs)+3, label)

	s.doc.Tabs.Tabs = append(s.doc.Tabs.Tabs, domain.Tab{
		ID:    id,
		Kind:  kind,
		Label: label,
		Items: items,
		Print: true,
	})
	s.active = id
	return id
}

func (s *Session) newTabID(kind domain.TabKind) string {
	for {
		id := fmt.Sprintf("%s-%s", kind, uuid.NewString()[:8])
		if _, taken := s.doc.Tabs.Find(id); !taken {
			return id
		}
	}
}

// RemoveTab deletes an extra tab. Removing the active tab shows the cover.
func (s *Session) RemoveTab(id string) error {
	if isFixed(id) {
		return ErrFixedTab
	}
	tabs := s.doc.Tabs.Tabs
	for i := range tabs {
		if tabs[i].ID != id {
			continue
		}
		s.doc.Tabs.Tabs = append(tabs[:i:i], tabs[i+1:]...)
		if s.active == id {
			s.active = domain.TabCover
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownTab, id)
}

// SelectTab makes id the active tab
func (s *Session) SelectTab(id string) error {
	if !s.hasTab(id) {
		return fmt.Errorf("%w: %s", ErrUnknownTab, id)
	}
	s.active = id
	return nil
}

// RelabelTab renames any tab, including the fixed ones
func (s *Session) RelabelTab(id, label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return ErrEmptyLabel
	}
	switch id {
	case domain.TabCover:
		s.doc.Tabs.CoverLabel = label
	case domain.TabDetail:
		s.doc.Tabs.DetailLabel = label
	default:
		tab, ok := s.doc.Tabs.Find(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTab, id)
		}
		tab.Label = label
	}
	return nil
}

// SetPrint selects whether tab id is part of the printed document
func (s *Session) SetPrint(id string, print bool) error {
	switch id {
	case domain.TabCover:
		s.doc.Tabs.CoverPrint = print
	case domain.TabDetail:
		s.doc.Tabs.DetailPrint = print
	default:
		tab, ok := s.doc.Tabs.Find(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTab, id)
		}
		tab.Print = print
	}
	return nil
}

// UploadImage stores data through the file store and binds the returned path to image tab tabID
func (s *Session) UploadImage(ctx context.Context, tabID, filename, contentType string, data io.Reader) error {
	tab, ok := s.doc.Tabs.Find(tabID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTab, tabID)
	}
	if tab.Kind != domain.TabKindImage {
		return ErrNotImageTab
	}

	path, err := s.files.Upload(ctx, filename, contentType, data)
	if err != nil {
		s.logger.Warn("image upload failed", zap.String("tab_id", tabID), zap.String("filename", filename), zap.Error(err))
		return &UploadError{TabID: tabID, Filename: filename, Err: err}
	}

	tab.ImageURL = path
	return nil
}

// Save validates the document and creates or updates it.
// On failure the session state and document are unchanged.
func (s *Session) Save(ctx context.Context) (uuid.UUID, error) {
	if err := s.doc.Validate(); err != nil {
		return uuid.Nil, err
	}

	snapshot := s.doc.Clone()
	if s.state == StateNew {
		id, err := s.backend.Create(ctx, snapshot)
		if err != nil {
			s.logger.Error("failed to create quotation", zap.Error(err))
			return uuid.Nil, fmt.Errorf("failed to create quotation: %w", err)
		}
		s.doc.ID = id
		s.state = StateEditing
		s.logger.Info("quotation created", zap.String("quotation_id", id.String()))
		return id, nil
	}

	if err := s.backend.Update(ctx, s.doc.ID, snapshot); err != nil {
		s.logger.Error("failed to update quotation", zap.String("quotation_id", s.doc.ID.String()), zap.Error(err))
		if errors.Is(err, ErrNotFound) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to update quotation: %w", err)
	}
	s.logger.Info("quotation saved", zap.String("quotation_id", s.doc.ID.String()))
	return s.doc.ID, nil
}

// Load replaces the document under edit with stored quotation id.
// On failure the current document is kept.
func (s *Session) Load(ctx context.Context, id uuid.UUID) error {
	doc, err := s.backend.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load quotation: %w", err)
	}
	ensureRows(doc)
	s.doc = doc
	s.state = StateEditing
	s.active = domain.TabCover
	return nil
}

// Copy creates a new quotation from the content of sourceID and opens it
func (s *Session) Copy(ctx context.Context, sourceID uuid.UUID) (uuid.UUID, error) {
	source, err := s.backend.Get(ctx, sourceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to load source quotation: %w", err)
	}

	clone := source.Clone()
	id, err := s.backend.Create(ctx, clone)
	if err != nil {
		s.logger.Error("failed to copy quotation", zap.String("source_id", sourceID.String()), zap.Error(err))
		return uuid.Nil, fmt.Errorf("failed to copy quotation: %w", err)
	}

	clone.ID = id
	ensureRows(clone)
	s.doc = clone
	s.state = StateEditing
	s.active = domain.TabCover
	s.logger.Info("quotation copied", zap.String("source_id", sourceID.String()), zap.String("quotation_id", id.String()))
	return id, nil
}

// Delete removes the stored quotation and starts a new blank document
func (s *Session) Delete(ctx context.Context) error {
	if s.state == StateNew {
		return ErrNotSaved
	}
	if err := s.backend.Delete(ctx, s.doc.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete quotation: %w", err)
	}
	s.logger.Info("quotation deleted", zap.String("quotation_id", s.doc.ID.String()))
	s.Reset()
	return nil
}

func (s *Session) hasTab(id string) bool {
	if isFixed(id) {
		return true
	}
	_, ok := s.doc.Tabs.Find(id)
	return ok
}

func isFixed(id string) bool {
	return id == domain.TabCover || id == domain.TabDetail
}

// ensureRows gives every editable section at least one row
func ensureRows(doc *domain.Document) {
	for _, id := range doc.SectionIDs() {
		items, _ := doc.Section(id)
		if len(*items) == 0 {
			*items = []domain.Item{{}}
		}
	}
}
