// Package store persists sheets as documents keyed by sheet id.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.alis.build/alog"

	"github.com/vogtb/go-spreadsheet/packages/spreadsheet"
)

var (
	// ErrNotFound is returned when no document has the requested id.
	ErrNotFound = errors.New("sheet not found")
	// ErrInvalidID is returned for ids that cannot name a document.
	ErrInvalidID = errors.New("invalid sheet id")
)

// Store is a key-value store of sheet documents.
type Store interface {
	Get(ctx context.Context, id string) (*Document, error)
	Put(ctx context.Context, doc *Document) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Document, error)
}

func validateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// sortDocuments orders documents by name, then by id.
func sortDocuments(docs []*Document) {
	slices.SortFunc(docs, func(a, b *Document) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// Save writes s to st. a sheet without an id gets a fresh one, and the
// creation time of an existing document is kept.
func Save(ctx context.Context, st Store, s *spreadsheet.Sheet) (*Document, error) {
	if s.ID() == "" {
		s.SetID(NewID())
	}
	doc := FromSheet(s)
	now := time.Now().UTC()
	doc.CreatedAt, doc.UpdatedAt = now, now

	prev, err := st.Get(ctx, doc.ID)
	switch {
	case err == nil:
		doc.CreatedAt = prev.CreatedAt
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("save %s: %w", doc.ID, err)
	}

	if err := st.Put(ctx, doc); err != nil {
		return nil, fmt.Errorf("save %s: %w", doc.ID, err)
	}
	alog.Debugf(ctx, "saved sheet %s (%q, %d cells)", doc.ID, doc.Name, len(doc.Cells))
	return doc, nil
}

// Load reads the document with id and rebuilds its sheet.
func Load(ctx context.Context, st Store, id string) (*spreadsheet.Sheet, error) {
	doc, err := st.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s, err := doc.ToSheet()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	alog.Debugf(ctx, "loaded sheet %s (%q, %d cells)", id, s.Name(), s.Len())
	return s, nil
}

// Rename changes the stored name of the document with id.
func Rename(ctx context.Context, st Store, id, name string) (*Document, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("rename %s: name must not be empty", id)
	}
	doc, err := st.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Name = name
	doc.UpdatedAt = time.Now().UTC()
	if err := st.Put(ctx, doc); err != nil {
		return nil, fmt.Errorf("rename %s: %w", id, err)
	}
	return doc, nil
}

// Duplicate stores a copy of the document with id under a fresh id. an
// empty name becomes "<name> (Copy)".
func Duplicate(ctx context.Context, st Store, id, name string) (*Document, error) {
	doc, err := st.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		name = doc.Name + " (Copy)"
	}
	now := time.Now().UTC()
	dup := &Document{
		ID:        NewID(),
		Name:      name,
		Rows:      doc.Rows,
		Cols:      doc.Cols,
		Cells:     slices.Clone(doc.Cells),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := st.Put(ctx, dup); err != nil {
		return nil, fmt.Errorf("duplicate %s: %w", id, err)
	}
	alog.Infof(ctx, "duplicated sheet %s as %s (%q)", id, dup.ID, dup.Name)
	return dup, nil
}
