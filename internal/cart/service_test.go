package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/00anuyh/souvenir-backend/pkg/db/models"
)

type fakeCartRepo struct {
	lines   []models.CartLine
	listErr error
}

func (f *fakeCartRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeCartRepo) FindByOwnerAndKey(_ context.Context, ownerID, key string) (*models.CartLine, error) {
	for i := range f.lines {
		if f.lines[i].OwnerID == ownerID && f.lines[i].MergeKey == key {
			return &f.lines[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCartRepo) Create(_ context.Context, line *models.CartLine) error {
	f.lines = append(f.lines, *line)
	return nil
}

func (f *fakeCartRepo) UpdateQty(_ context.Context, ownerID, key string, qty int) (int64, error) {
	for i := range f.lines {
		if f.lines[i].OwnerID == ownerID && f.lines[i].MergeKey == key {
			f.lines[i].Qty = qty
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeCartRepo) ListByOwner(_ context.Context, ownerID string) ([]models.CartLine, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.CartLine
	for _, line := range f.lines {
		if line.OwnerID == ownerID {
			out = append(out, line)
		}
	}
	return out, nil
}

func (f *fakeCartRepo) DeleteByKeys(_ context.Context, ownerID string, keys []string) error {
	set := map[string]struct{}{}
	for _, k := range keys {
		set[k] = struct{}{}
	}
	var kept []models.CartLine
	for _, line := range f.lines {
		if _, drop := set[line.MergeKey]; drop && line.OwnerID == ownerID {
			continue
		}
		kept = append(kept, line)
	}
	f.lines = kept
	return nil
}

func (f *fakeCartRepo) DeleteAllByOwner(_ context.Context, ownerID string) error {
	var kept []models.CartLine
	for _, line := range f.lines {
		if line.OwnerID != ownerID {
			kept = append(kept, line)
		}
	}
	f.lines = kept
	return nil
}

func (f *fakeCartRepo) TagPurchased(_ context.Context, ownerID string, keys []string, orderID string, purchasedAt time.Time) error {
	set := map[string]struct{}{}
	for _, k := range keys {
		set[k] = struct{}{}
	}
	for i := range f.lines {
		if f.lines[i].OwnerID != ownerID {
			continue
		}
		if _, ok := set[f.lines[i].MergeKey]; !ok {
			continue
		}
		at := purchasedAt
		f.lines[i].PurchasedAt = &at
		f.lines[i].LastOrderID = &orderID
	}
	return nil
}

func (f *fakeCartRepo) SumQtyByOwner(_ context.Context, ownerID string) (int, error) {
	total := 0
	for _, line := range f.lines {
		if line.OwnerID == ownerID {
			total += line.Qty
		}
	}
	return total, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type recordingNotifier struct {
	cartEvents []string
}

func (r *recordingNotifier) CartChanged(_ context.Context, uid string) {
	r.cartEvents = append(r.cartEvents, uid)
}

func newTestService(t *testing.T, repo Repository) (Service, *recordingNotifier) {
	t.Helper()

	notify := &recordingNotifier{}
	svc, err := NewService(repo, fakeTxRunner{}, notify, nil)
	require.NoError(t, err)
	return svc, notify
}

func TestAddMergesIdenticalItems(t *testing.T) {
	repo := &fakeCartRepo{}
	svc, notify := newTestService(t, repo)
	ctx := context.Background()

	item := LineInput{ID: strPtr("mug-1"), Thumb: strPtr("/a.png"), Name: "Mug", PriceCents: 10000}

	lines, err := svc.Add(ctx, "hana", item, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	lines, err = svc.Add(ctx, "hana", item, 2)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Qty)
	assert.Equal(t, 10000, lines[0].PriceCents)
	assert.Len(t, notify.cartEvents, 2)
}

func TestAddKeepsDistinctThumbnailsOnSeparateLines(t *testing.T) {
	repo := &fakeCartRepo{}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.Add(ctx, "hana", LineInput{ID: strPtr("mug-1"), Thumb: strPtr("/a.png"), Name: "Mug"}, 1)
	require.NoError(t, err)
	lines, err := svc.Add(ctx, "hana", LineInput{ID: strPtr("mug-1"), Thumb: strPtr("/b.png"), Name: "Mug"}, 1)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestAddClampsQuantityToOne(t *testing.T) {
	repo := &fakeCartRepo{}
	svc, _ := newTestService(t, repo)

	lines, err := svc.Add(context.Background(), "hana", LineInput{ID: strPtr("mug-1"), Name: "Mug"}, -3)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Qty)
}

func TestSetQtyClampsToMinimumOne(t *testing.T) {
	repo := &fakeCartRepo{}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	lines, err := svc.Add(ctx, "hana", LineInput{ID: strPtr("mug-1"), Name: "Mug"}, 5)
	require.NoError(t, err)
	key := lines[0].MergeKey

	lines, err = svc.SetQty(ctx, "hana", key, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, lines[0].Qty)

	lines, err = svc.SetQty(ctx, "hana", key, -7)
	require.NoError(t, err)
	assert.Equal(t, 1, lines[0].Qty)
}

func TestSetQtyIgnoresMissingLine(t *testing.T) {
	repo := &fakeCartRepo{}
	svc, notify := newTestService(t, repo)

	lines, err := svc.SetQty(context.Background(), "hana", "nope::base::", 3)
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Empty(t, notify.cartEvents)
}

func TestGetDegradesToEmptyCartOnStorageFailure(t *testing.T) {
	repo := &fakeCartRepo{listErr: errors.New("storage down")}
	svc, _ := newTestService(t, repo)

	lines, err := svc.Get(context.Background(), "hana")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestRemoveManyAndCount(t *testing.T) {
	repo := &fakeCartRepo{}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	a, err := svc.Add(ctx, "hana", LineInput{ID: strPtr("mug-1"), Name: "Mug"}, 2)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "hana", LineInput{ID: strPtr("vase-2"), Name: "Vase"}, 3)
	require.NoError(t, err)

	total, err := svc.Count(ctx, "hana")
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	lines, err := svc.RemoveMany(ctx, "hana", []string{a[0].MergeKey})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Vase", lines[0].Name)
}

func TestTagPurchasedStampsOrderMetadata(t *testing.T) {
	repo := &fakeCartRepo{}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	lines, err := svc.Add(ctx, "hana", LineInput{ID: strPtr("mug-1"), Name: "Mug"}, 1)
	require.NoError(t, err)

	at := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	require.NoError(t, svc.TagPurchased(ctx, "hana", []string{lines[0].MergeKey}, "SOUV-1-000001", &at))

	lines, err = svc.Get(ctx, "hana")
	require.NoError(t, err)
	require.NotNil(t, lines[0].PurchasedAt)
	assert.Equal(t, at, *lines[0].PurchasedAt)
	require.NotNil(t, lines[0].LastOrderID)
	assert.Equal(t, "SOUV-1-000001", *lines[0].LastOrderID)
}
