package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/00anuyh/souvenir-backend/pkg/db/models"
	pkgerrors "github.com/00anuyh/souvenir-backend/pkg/errors"
	"github.com/00anuyh/souvenir-backend/pkg/logger"
)

// MaxReviewsPerProduct caps how many reviews a product keeps. When a new
// review pushes the list over the cap the oldest entries are dropped.
const MaxReviewsPerProduct = 50

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ReviewInput carries the author-editable review fields.
type ReviewInput struct {
	AuthorName string  `json:"author_name"`
	Rating     int     `json:"rating"`
	Excerpt    string  `json:"excerpt"`
	Thumb      *string `json:"thumb,omitempty"`
}

// Service manages the per-product review lists.
type Service interface {
	List(ctx context.Context, productKey string) ([]models.Review, error)
	Add(ctx context.Context, productKey, authorID string, input ReviewInput) ([]models.Review, error)
	Update(ctx context.Context, productKey, reviewID, requesterID string, input ReviewInput) ([]models.Review, error)
	Delete(ctx context.Context, productKey, reviewID, requesterID string) ([]models.Review, error)
	Clear(ctx context.Context, productKey string) error
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger

	newID func() string
	now   func() time.Time
}

// NewService builds a review service.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:  repo,
		tx:    tx,
		logg:  logg,
		newID: NewReviewID,
		now:   time.Now,
	}, nil
}

// List returns a product's reviews newest-first. Read failures degrade to an
// empty list.
func (s *service) List(ctx context.Context, productKey string) ([]models.Review, error) {
	if strings.TrimSpace(productKey) == "" {
		return []models.Review{}, nil
	}
	reviews, err := s.repo.ListByProduct(ctx, productKey)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "review read failed, returning empty list")
		}
		return []models.Review{}, nil
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

// Add stores a new review and drops the oldest entries beyond the per-product
// cap. Returns the refreshed list.
func (s *service) Add(ctx context.Context, productKey, authorID string, input ReviewInput) ([]models.Review, error) {
	if strings.TrimSpace(productKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product key is required")
	}
	if strings.TrimSpace(authorID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "author id is required")
	}

	review := models.Review{
		ID:         s.newID(),
		ProductKey: productKey,
		AuthorID:   authorID,
		AuthorName: input.AuthorName,
		Rating:     clampRating(input.Rating),
		Excerpt:    input.Excerpt,
		Thumb:      input.Thumb,
		CreatedAt:  s.now().UTC(),
	}
	if review.AuthorName == "" {
		review.AuthorName = "guest"
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, &review); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
		}
		if _, err := repo.TrimToLimit(ctx, productKey, MaxReviewsPerProduct); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "trim review list")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.List(ctx, productKey)
}

// Update rewrites the author-editable fields of a review. The id, author and
// creation time never change, and only the original author may update.
func (s *service) Update(ctx context.Context, productKey, reviewID, requesterID string, input ReviewInput) ([]models.Review, error) {
	if strings.TrimSpace(productKey) == "" || strings.TrimSpace(reviewID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product key and review id are required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindByID(ctx, productKey, reviewID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load review")
		}
		if requesterID == "" || existing.AuthorID != requesterID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the author may edit a review")
		}

		updates := map[string]any{
			"rating":  clampRating(input.Rating),
			"excerpt": input.Excerpt,
			"thumb":   input.Thumb,
		}
		if input.AuthorName != "" {
			updates["author_name"] = input.AuthorName
		}
		if err := repo.UpdateContent(ctx, productKey, reviewID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update review")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.List(ctx, productKey)
}

// Delete removes a review. Only the original author may delete.
func (s *service) Delete(ctx context.Context, productKey, reviewID, requesterID string) ([]models.Review, error) {
	if strings.TrimSpace(productKey) == "" || strings.TrimSpace(reviewID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product key and review id are required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindByID(ctx, productKey, reviewID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load review")
		}
		if requesterID == "" || existing.AuthorID != requesterID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the author may delete a review")
		}
		if _, err := repo.DeleteByID(ctx, productKey, reviewID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete review")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.List(ctx, productKey)
}

// Clear drops all reviews for a product.
func (s *service) Clear(ctx context.Context, productKey string) error {
	if strings.TrimSpace(productKey) == "" {
		return nil
	}
	if err := s.repo.DeleteAllByProduct(ctx, productKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear reviews")
	}
	return nil
}

func clampRating(rating int) int {
	if rating < 0 {
		return 0
	}
	if rating > 5 {
		return 5
	}
	return rating
}
