package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/chichienterprises/safarbook/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFileRepo records uploads and hands back deterministic URLs.
type fakeFileRepo struct {
	mu        sync.Mutex
	uploaded  []string
	uploadErr error
}

func (f *fakeFileRepo) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploaded = append(f.uploaded, key)
	return "https://files.test/" + key, nil
}

func newEditorFixture() (*fakePackageRepo, *fakeFileRepo, *EditorService) {
	repo := newFakeRepo()
	files := &fakeFileRepo{}
	catalog := NewCatalogService(repo, newFakeCache(), time.Minute, time.Second)
	return repo, files, NewEditorService(repo, files, catalog)
}

func TestEditorLifecycle(t *testing.T) {
	_, _, svc := newEditorFixture()
	ed := svc.NewEditor()

	assert.Equal(t, EditorIdle, ed.State())
	assert.Nil(t, ed.Draft())

	ed.Begin(domain.VariantUmrah)
	assert.Equal(t, EditorEditing, ed.State())
	assert.False(t, ed.Dirty())

	require.NoError(t, ed.SetField("name", "Shawal 14 Days"))
	assert.True(t, ed.Dirty())
	assert.Equal(t, "Shawal 14 Days", ed.Draft().Name)
}

func TestEditorSetFieldRequiresDraft(t *testing.T) {
	_, _, svc := newEditorFixture()
	ed := svc.NewEditor()

	assert.Error(t, ed.SetField("name", "x"))
	_, err := ed.Submit(context.Background())
	assert.Error(t, err)
}

func TestSwitchVariantDiscardsDraft(t *testing.T) {
	_, _, svc := newEditorFixture()
	ed := svc.NewEditor()

	ed.Begin(domain.VariantHajj)
	require.NoError(t, ed.SetField("name", "Premium Hajj"))
	require.True(t, ed.Dirty())

	ed.SwitchVariant(domain.VariantUmrah)
	assert.Equal(t, domain.VariantUmrah, ed.Draft().Variant)
	assert.Empty(t, ed.Draft().Name)
	assert.False(t, ed.Dirty())
}

func fillUmrahDraft(t *testing.T, ed *Editor) {
	t.Helper()
	for path, value := range map[string]string{
		"name":           "Shawal 14 Days",
		"price":          "222830",
		"duration":       "14",
		"distanceMakkah": "700 meters",
		"daysInMakkah":   "7",
		"daysInMadinah":  "7",
	} {
		require.NoError(t, ed.SetField(path, value))
	}
}

func TestSubmitCreateSplitsLists(t *testing.T) {
	repo, _, svc := newEditorFixture()
	ed := svc.NewEditor()

	ed.Begin(domain.VariantUmrah)
	fillUmrahDraft(t, ed)
	require.NoError(t, ed.SetField("inclusions", "Visa, Flights , Transport"))
	require.NoError(t, ed.SetField("departureDates", "10 Mar, 24 Mar"))

	pkg, err := ed.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "id-1", pkg.ID)
	assert.Equal(t, EditorIdle, ed.State())
	assert.Nil(t, ed.Draft())

	require.Len(t, repo.created, 1)
	stored := repo.created[0]
	assert.Equal(t, []string{"Visa", "Flights", "Transport"}, stored.Inclusions)
	assert.Equal(t, []string{"10 Mar", "24 Mar"}, stored.DepartureDates)
	assert.Equal(t, float64(222830), stored.Price)
	assert.Equal(t, 7, stored.DaysInMadinah)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestSubmitUpdatePreservesCreatedAt(t *testing.T) {
	repo, _, svc := newEditorFixture()
	ed := svc.NewEditor()

	created := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	existing := &domain.Package{
		ID:             "p1",
		Variant:        domain.VariantUmrah,
		Name:           "Shawal 14 Days",
		Price:          222830,
		Duration:       14,
		DistanceMakkah: "700 meters",
		DaysInMakkah:   7,
		DaysInMadinah:  7,
		CreatedAt:      created,
	}
	repo.pkgs[domain.VariantUmrah] = []*domain.Package{existing}

	ed.Edit(existing)
	require.NoError(t, ed.SetField("price", "250000"))

	pkg, err := ed.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p1", pkg.ID)

	require.Len(t, repo.updated, 1)
	assert.Equal(t, float64(250000), repo.updated[0].Price)
	assert.Equal(t, created, repo.updated[0].CreatedAt, "edits must not move the creation timestamp")
	assert.Empty(t, repo.created)
}

func TestSubmitValidationError(t *testing.T) {
	_, _, svc := newEditorFixture()
	ed := svc.NewEditor()

	ed.Begin(domain.VariantHajj)
	require.NoError(t, ed.SetField("name", "Premium Hajj"))
	require.NoError(t, ed.SetField("price", "850000"))
	require.NoError(t, ed.SetField("duration", "21"))
	require.NoError(t, ed.SetField("distanceMakkah", "500 meters"))
	require.NoError(t, ed.SetField("campType", "VIP"))

	_, err := ed.Submit(context.Background())
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "minaDays", verr.Field)

	// A rejected draft is still editable.
	assert.Equal(t, EditorEditing, ed.State())
	assert.Equal(t, "VIP", ed.Draft().CampType)
}

func TestSubmitStoreFailurePreservesDraft(t *testing.T) {
	tests := []struct {
		name      string
		createErr error
		want      error
	}{
		{"denied", fmt.Errorf("insert: %w", domain.ErrPermissionDenied), domain.ErrSaveDenied},
		{"failed", errors.New("connection reset"), domain.ErrSaveFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, svc := newEditorFixture()
			repo.createErr = tt.createErr
			ed := svc.NewEditor()

			ed.Begin(domain.VariantUmrah)
			fillUmrahDraft(t, ed)
			require.NoError(t, ed.SetField("inclusions", "Visa, Flights"))

			_, err := ed.Submit(context.Background())
			assert.ErrorIs(t, err, tt.want)

			// Every entered value survives for retry.
			assert.Equal(t, EditorEditing, ed.State())
			draft := ed.Draft()
			require.NotNil(t, draft)
			assert.Equal(t, "Shawal 14 Days", draft.Name)
			assert.Equal(t, "222830", draft.Price)
			assert.Equal(t, "Visa, Flights", draft.Inclusions)
		})
	}
}

func TestSubmitUploadsImages(t *testing.T) {
	repo, files, svc := newEditorFixture()
	ed := svc.NewEditor()

	ed.Begin(domain.VariantUmrah)
	fillUmrahDraft(t, ed)
	require.NoError(t, ed.AttachImage(domain.PendingImage{
		Filename: "lobby.jpg", ContentType: "image/jpeg", Data: []byte{1},
	}))
	require.NoError(t, ed.AttachImage(domain.PendingImage{
		Filename: "room.png", ContentType: "image/png", Data: []byte{2}, Madinah: true,
	}))

	pkg, err := ed.Submit(context.Background())
	require.NoError(t, err)

	require.Len(t, pkg.MakkahImages, 1)
	require.Len(t, pkg.MadinahImages, 1)
	assert.Contains(t, pkg.MakkahImages[0], "umrahPackages/")
	assert.Contains(t, pkg.MadinahImages[0], ".png")
	assert.Len(t, files.uploaded, 2)
	require.Len(t, repo.created, 1)
	assert.Equal(t, pkg.MakkahImages, repo.created[0].MakkahImages)
}

func TestSubmitUploadFailurePreservesPendingImages(t *testing.T) {
	repo, files, svc := newEditorFixture()
	files.uploadErr = errors.New("bucket unreachable")
	ed := svc.NewEditor()

	ed.Begin(domain.VariantUmrah)
	fillUmrahDraft(t, ed)
	require.NoError(t, ed.AttachImage(domain.PendingImage{
		Filename: "lobby.jpg", ContentType: "image/jpeg", Data: []byte{1},
	}))

	_, err := ed.Submit(context.Background())
	assert.ErrorIs(t, err, domain.ErrSaveFailed)

	assert.Equal(t, EditorEditing, ed.State())
	require.NotNil(t, ed.Draft())
	assert.Len(t, ed.Draft().Pending, 1)
	assert.Empty(t, repo.created)
}

func TestDeleteRemovesFromCatalog(t *testing.T) {
	repo, files, svc := newEditorFixture()
	_ = files
	seedRepo(repo, "One", "Two")

	_, err := svc.catalog.Load(context.Background(), domain.VariantUmrah)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), domain.VariantUmrah, "p1"))

	snap := svc.catalog.Snapshot(domain.VariantUmrah)
	require.Len(t, snap, 1)
	assert.Equal(t, "p2", snap[0].ID)

	err = svc.Delete(context.Background(), domain.VariantUmrah, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
