package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"sync"
	"time"

	"github.com/chichienterprises/safarbook/internal/domain"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
)

// EditorState tracks where an Editor is in its lifecycle.
type EditorState int

const (
	EditorIdle EditorState = iota
	EditorEditing
	EditorSubmitting
)

// EditorService creates editors and handles package deletion.
type EditorService struct {
	repo    domain.PackageRepository
	files   domain.FileRepository
	catalog *CatalogService
}

// NewEditorService creates a new editor service
func NewEditorService(repo domain.PackageRepository, files domain.FileRepository, catalog *CatalogService) *EditorService {
	return &EditorService{
		repo:    repo,
		files:   files,
		catalog: catalog,
	}
}

// NewEditor returns an idle editor.
func (s *EditorService) NewEditor() *Editor {
	return &Editor{svc: s}
}

// Delete removes a package by id and drops it from the loaded catalog
// immediately, without waiting for a refresh round-trip.
func (s *EditorService) Delete(ctx context.Context, variant domain.Variant, id string) error {
	if err := s.repo.Delete(ctx, variant, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return classifySaveErr(err)
	}
	s.catalog.RemoveLocal(ctx, variant, id)
	return nil
}

// Editor mediates a single draft through edit, validation and submit.
//
// States: Idle (no draft) -> Editing (draft, clean or dirty) ->
// Submitting -> Idle on success, back to Editing on failure. Switching the
// variant while editing discards the draft on purpose; it is not a save.
type Editor struct {
	svc *EditorService

	mu    sync.Mutex
	state EditorState
	draft *domain.Draft
	dirty bool
}

// State returns the editor's current lifecycle state.
func (e *Editor) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Draft returns the current draft, or nil when idle.
func (e *Editor) Draft() *domain.Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// Dirty reports whether any field has been touched since the draft was
// initialized.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// Begin starts a fresh, variant-appropriate empty draft.
func (e *Editor) Begin(variant domain.Variant) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = domain.InitDraft(variant)
	e.state = EditorEditing
	e.dirty = false
}

// Edit re-hydrates the draft from an existing package.
func (e *Editor) Edit(pkg *domain.Package) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = domain.DraftFromPackage(pkg)
	e.state = EditorEditing
	e.dirty = false
}

// SwitchVariant discards any in-progress draft and starts an empty one for
// the new variant. This is an intentional discard.
func (e *Editor) SwitchVariant(variant domain.Variant) {
	e.Begin(variant)
}

// SetField updates one addressed draft field.
func (e *Editor) SetField(fieldPath, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != EditorEditing {
		return fmt.Errorf("no draft in progress")
	}
	if err := e.draft.SetField(fieldPath, value); err != nil {
		return err
	}
	e.dirty = true
	return nil
}

// AttachImage queues a locally selected file for upload on submit.
func (e *Editor) AttachImage(img domain.PendingImage) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != EditorEditing {
		return fmt.Errorf("no draft in progress")
	}
	e.draft.Pending = append(e.draft.Pending, img)
	e.dirty = true
	return nil
}

// Validate runs the draft rules without submitting.
func (e *Editor) Validate() *domain.ValidationError {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return &domain.ValidationError{Field: "", Message: "no draft in progress"}
	}
	return e.draft.Validate()
}

// Submit validates the draft, uploads pending images, and creates or
// updates the package keyed on whether the draft already has a store ID.
// On any store error the draft is preserved untouched so the user can retry
// without re-entering data. A successful submit refreshes the catalog and
// returns the editor to idle.
func (e *Editor) Submit(ctx context.Context) (*domain.Package, error) {
	e.mu.Lock()
	if e.state != EditorEditing {
		e.mu.Unlock()
		return nil, fmt.Errorf("no draft in progress")
	}
	if verr := e.draft.Validate(); verr != nil {
		e.mu.Unlock()
		return nil, verr
	}
	draft := e.draft
	e.state = EditorSubmitting
	e.mu.Unlock()

	pkg, err := e.svc.submitDraft(ctx, draft)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		// Draft stays as-is for retry.
		e.state = EditorEditing
		return nil, err
	}

	e.state = EditorIdle
	e.draft = nil
	e.dirty = false
	return pkg, nil
}

// submitDraft builds the package, never mutating the draft, so a failed
// store write loses nothing.
func (s *EditorService) submitDraft(ctx context.Context, draft *domain.Draft) (*domain.Package, error) {
	makkahURLs, madinahURLs, err := s.uploadPending(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("%w: image upload: %v", domain.ErrSaveFailed, err)
	}

	// Mongo stores millisecond precision; stamping finer would make the
	// timestamp drift on the first round trip.
	pkg := draft.ToPackage(time.Now().UTC().Truncate(time.Millisecond))
	pkg.MakkahImages = append(pkg.MakkahImages, makkahURLs...)
	pkg.MadinahImages = append(pkg.MadinahImages, madinahURLs...)

	if pkg.ID == "" {
		id, err := s.repo.Create(ctx, pkg)
		if err != nil {
			return nil, classifySaveErr(err)
		}
		pkg.ID = id
	} else {
		if err := s.repo.Update(ctx, pkg); err != nil {
			return nil, classifySaveErr(err)
		}
	}

	// Converge the presentation layer. The write already succeeded, so a
	// failed refresh is only worth a warning.
	if _, err := s.catalog.Refresh(ctx, pkg.Variant); err != nil {
		log.Printf("Warning: catalog refresh after submit failed: %v", err)
	}

	return pkg, nil
}

// uploadPending uploads queued image files concurrently and returns their
// URLs in selection order.
func (s *EditorService) uploadPending(ctx context.Context, draft *domain.Draft) (makkah, madinah []string, err error) {
	if len(draft.Pending) == 0 {
		return nil, nil, nil
	}
	if s.files == nil {
		return nil, nil, fmt.Errorf("image storage not configured")
	}

	urls := make([]string, len(draft.Pending))
	g, gctx := errgroup.WithContext(ctx)
	for i, img := range draft.Pending {
		i, img := i, img
		g.Go(func() error {
			key := fmt.Sprintf("%s/%s%s", draft.Variant.Collection(), ulid.Make().String(), path.Ext(img.Filename))
			url, err := s.files.Upload(gctx, img.Data, key, img.ContentType)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	for i, img := range draft.Pending {
		if img.Madinah {
			madinah = append(madinah, urls[i])
		} else {
			makkah = append(makkah, urls[i])
		}
	}
	return makkah, madinah, nil
}

// classifySaveErr maps store write failures onto the write-side conditions,
// annotating permission-denied causes distinctly.
func classifySaveErr(err error) error {
	if errors.Is(err, domain.ErrPermissionDenied) {
		return fmt.Errorf("%w: %v", domain.ErrSaveDenied, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrSaveFailed, err)
}
