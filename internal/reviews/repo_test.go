package reviews

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/00anuyh/souvenir-backend/pkg/db/models"
)

func setupReviewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS reviews (
  id TEXT PRIMARY KEY,
  product_key TEXT NOT NULL,
  author_id TEXT NOT NULL,
  author_name TEXT NOT NULL,
  rating INTEGER NOT NULL DEFAULT 0,
  excerpt TEXT NOT NULL,
  thumb TEXT,
  created_at DATETIME NOT NULL,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedReview(t *testing.T, repo Repository, productKey, id, authorID string, created time.Time) {
	t.Helper()

	review := &models.Review{
		ID:         id,
		ProductKey: productKey,
		AuthorID:   authorID,
		AuthorName: "shopper",
		Rating:     4,
		Excerpt:    "lovely ceramic",
		CreatedAt:  created,
	}
	require.NoError(t, repo.Create(context.Background(), review))
}

func TestReviewRepositoryListNewestFirst(t *testing.T) {
	repo, err := NewRepository(setupReviewTestDB(t))
	require.NoError(t, err)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	seedReview(t, repo, "mug", "r-old", "a1", base)
	seedReview(t, repo, "mug", "r-new", "a2", base.Add(time.Hour))
	seedReview(t, repo, "vase", "r-other", "a1", base)

	list, err := repo.ListByProduct(ctx, "mug")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r-new", list[0].ID)
	assert.Equal(t, "r-old", list[1].ID)
}

func TestReviewRepositoryUpdateContent(t *testing.T) {
	repo, err := NewRepository(setupReviewTestDB(t))
	require.NoError(t, err)
	ctx := context.Background()

	seedReview(t, repo, "mug", "r1", "a1", time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))

	err = repo.UpdateContent(ctx, "mug", "r1", map[string]any{
		"rating":  2,
		"excerpt": "chipped on arrival",
	})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, "mug", "r1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Rating)
	assert.Equal(t, "chipped on arrival", got.Excerpt)
	assert.Equal(t, "a1", got.AuthorID)
}

func TestReviewRepositoryTrimToLimit(t *testing.T) {
	repo, err := NewRepository(setupReviewTestDB(t))
	require.NoError(t, err)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedReview(t, repo, "mug", fmt.Sprintf("r%d", i), "a1", base.Add(time.Duration(i)*time.Minute))
	}

	dropped, err := repo.TrimToLimit(ctx, "mug", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), dropped)

	list, err := repo.ListByProduct(ctx, "mug")
	require.NoError(t, err)
	require.Len(t, list, 3)
	// newest three survive
	assert.Equal(t, "r4", list[0].ID)
	assert.Equal(t, "r2", list[2].ID)

	dropped, err = repo.TrimToLimit(ctx, "mug", 3)
	require.NoError(t, err)
	assert.Zero(t, dropped)
}

func TestReviewRepositoryDeleteScopedToProduct(t *testing.T) {
	repo, err := NewRepository(setupReviewTestDB(t))
	require.NoError(t, err)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	seedReview(t, repo, "mug", "r1", "a1", base)
	seedReview(t, repo, "vase", "r2", "a1", base)

	affected, err := repo.DeleteByID(ctx, "mug", "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.DeleteByID(ctx, "mug", "r2")
	require.NoError(t, err)
	assert.Zero(t, affected)

	require.NoError(t, repo.DeleteAllByProduct(ctx, "vase"))
	list, err := repo.ListByProduct(ctx, "vase")
	require.NoError(t, err)
	assert.Empty(t, list)
}
