package reviews

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/00anuyh/souvenir-backend/pkg/db/models"
	pkgerrors "github.com/00anuyh/souvenir-backend/pkg/errors"
)

type fakeReviewRepo struct {
	reviews []models.Review
	listErr error
}

func (f *fakeReviewRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeReviewRepo) Create(ctx context.Context, review *models.Review) error {
	f.reviews = append(f.reviews, *review)
	return nil
}

func (f *fakeReviewRepo) FindByID(ctx context.Context, productKey, id string) (*models.Review, error) {
	for i := range f.reviews {
		if f.reviews[i].ProductKey == productKey && f.reviews[i].ID == id {
			copied := f.reviews[i]
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeReviewRepo) ListByProduct(ctx context.Context, productKey string) ([]models.Review, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Review
	for _, r := range f.reviews {
		if r.ProductKey == productKey {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeReviewRepo) UpdateContent(ctx context.Context, productKey, id string, updates map[string]any) error {
	for i := range f.reviews {
		if f.reviews[i].ProductKey != productKey || f.reviews[i].ID != id {
			continue
		}
		if v, ok := updates["rating"].(int); ok {
			f.reviews[i].Rating = v
		}
		if v, ok := updates["excerpt"].(string); ok {
			f.reviews[i].Excerpt = v
		}
		if v, ok := updates["author_name"].(string); ok {
			f.reviews[i].AuthorName = v
		}
	}
	return nil
}

func (f *fakeReviewRepo) DeleteByID(ctx context.Context, productKey, id string) (int64, error) {
	kept := f.reviews[:0]
	var dropped int64
	for _, r := range f.reviews {
		if r.ProductKey == productKey && r.ID == id {
			dropped++
			continue
		}
		kept = append(kept, r)
	}
	f.reviews = kept
	return dropped, nil
}

func (f *fakeReviewRepo) DeleteAllByProduct(ctx context.Context, productKey string) error {
	kept := f.reviews[:0]
	for _, r := range f.reviews {
		if r.ProductKey != productKey {
			kept = append(kept, r)
		}
	}
	f.reviews = kept
	return nil
}

func (f *fakeReviewRepo) TrimToLimit(ctx context.Context, productKey string, limit int) (int64, error) {
	list, _ := f.ListByProduct(ctx, productKey)
	if len(list) <= limit {
		return 0, nil
	}
	var dropped int64
	for _, victim := range list[limit:] {
		n, _ := f.DeleteByID(ctx, productKey, victim.ID)
		dropped += n
	}
	return dropped, nil
}

type fakeReviewTx struct{}

func (fakeReviewTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newReviewService(t *testing.T, repo *fakeReviewRepo) *service {
	t.Helper()

	svc, err := NewService(repo, fakeReviewTx{}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	impl := svc.(*service)
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	ids := 0
	impl.newID = func() string {
		ids++
		return fmt.Sprintf("id-%d", ids)
	}
	ticks := 0
	impl.now = func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * time.Second)
	}
	return impl
}

func TestServiceAddCapsListAtLimit(t *testing.T) {
	repo := &fakeReviewRepo{}
	svc := newReviewService(t, repo)
	ctx := context.Background()

	var last []models.Review
	for i := 0; i < MaxReviewsPerProduct+3; i++ {
		var err error
		last, err = svc.Add(ctx, "mug", "author-1", ReviewInput{Rating: 5, Excerpt: "great"})
		if err != nil {
			t.Fatalf("add review %d: %v", i, err)
		}
	}

	if len(last) != MaxReviewsPerProduct {
		t.Fatalf("expected list capped at %d, got %d", MaxReviewsPerProduct, len(last))
	}
	// newest first, oldest three dropped
	if last[0].ID != fmt.Sprintf("id-%d", MaxReviewsPerProduct+3) {
		t.Fatalf("expected newest review first, got %s", last[0].ID)
	}
	if last[len(last)-1].ID != "id-4" {
		t.Fatalf("expected oldest surviving review id-4, got %s", last[len(last)-1].ID)
	}
}

func TestServiceAddClampsRatingAndDefaultsName(t *testing.T) {
	repo := &fakeReviewRepo{}
	svc := newReviewService(t, repo)

	list, err := svc.Add(context.Background(), "mug", "author-1", ReviewInput{Rating: 9, Excerpt: "wow"})
	if err != nil {
		t.Fatalf("add review: %v", err)
	}
	if list[0].Rating != 5 {
		t.Fatalf("expected rating clamped to 5, got %d", list[0].Rating)
	}
	if list[0].AuthorName != "guest" {
		t.Fatalf("expected default author name, got %q", list[0].AuthorName)
	}
}

func TestServiceUpdateRejectsOtherAuthors(t *testing.T) {
	repo := &fakeReviewRepo{}
	svc := newReviewService(t, repo)
	ctx := context.Background()

	list, err := svc.Add(ctx, "mug", "author-1", ReviewInput{Rating: 4, Excerpt: "nice"})
	if err != nil {
		t.Fatalf("add review: %v", err)
	}
	id := list[0].ID

	_, err = svc.Update(ctx, "mug", id, "someone-else", ReviewInput{Rating: 1, Excerpt: "ruined"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}

	got, err := repo.FindByID(ctx, "mug", id)
	if err != nil {
		t.Fatalf("find review: %v", err)
	}
	if got.Excerpt != "nice" {
		t.Fatalf("expected review untouched, got excerpt %q", got.Excerpt)
	}
}

func TestServiceUpdateKeepsIdentityFields(t *testing.T) {
	repo := &fakeReviewRepo{}
	svc := newReviewService(t, repo)
	ctx := context.Background()

	list, err := svc.Add(ctx, "mug", "author-1", ReviewInput{AuthorName: "Hana", Rating: 4, Excerpt: "nice"})
	if err != nil {
		t.Fatalf("add review: %v", err)
	}
	original := list[0]

	updated, err := svc.Update(ctx, "mug", original.ID, "author-1", ReviewInput{Rating: 2, Excerpt: "faded after a wash"})
	if err != nil {
		t.Fatalf("update review: %v", err)
	}
	got := updated[0]
	if got.ID != original.ID || got.AuthorID != "author-1" || !got.CreatedAt.Equal(original.CreatedAt) {
		t.Fatalf("identity fields changed: %+v", got)
	}
	if got.Rating != 2 || got.Excerpt != "faded after a wash" {
		t.Fatalf("content not updated: %+v", got)
	}
}

func TestServiceDeleteAuthorOnly(t *testing.T) {
	repo := &fakeReviewRepo{}
	svc := newReviewService(t, repo)
	ctx := context.Background()

	list, err := svc.Add(ctx, "mug", "author-1", ReviewInput{Rating: 4, Excerpt: "nice"})
	if err != nil {
		t.Fatalf("add review: %v", err)
	}
	id := list[0].ID

	_, err = svc.Delete(ctx, "mug", id, "intruder")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}

	after, err := svc.Delete(ctx, "mug", id, "author-1")
	if err != nil {
		t.Fatalf("delete review: %v", err)
	}
	if len(after) != 0 {
		t.Fatalf("expected empty list after delete, got %d", len(after))
	}
}

func TestServiceUpdateMissingReviewNotFound(t *testing.T) {
	svc := newReviewService(t, &fakeReviewRepo{})

	_, err := svc.Update(context.Background(), "mug", "ghost", "author-1", ReviewInput{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestServiceListDegradesToEmpty(t *testing.T) {
	repo := &fakeReviewRepo{listErr: errors.New("storage offline")}
	svc := newReviewService(t, repo)

	list, err := svc.List(context.Background(), "mug")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
}
