package favorites

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/00anuyh/souvenir-backend/pkg/db"
	"github.com/00anuyh/souvenir-backend/pkg/db/models"
	pkgerrors "github.com/00anuyh/souvenir-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages a user's liked products.
type Service interface {
	Toggle(ctx context.Context, uid, slug string) (bool, error)
	IsFavorite(ctx context.Context, uid, slug string) (bool, error)
	List(ctx context.Context, uid string) ([]models.FavoriteItem, error)
	Slugs(ctx context.Context, uid string) ([]string, error)
	Clear(ctx context.Context, uid string) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a favorites service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("favorites repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Toggle flips the liked state of a product and reports the new state.
func (s *service) Toggle(ctx context.Context, uid, slug string) (bool, error) {
	uid = strings.TrimSpace(uid)
	slug = strings.TrimSpace(slug)
	if uid == "" || slug == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "uid and slug are required")
	}

	var liked bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		_, err := repo.FindByUIDAndSlug(ctx, uid, slug)
		switch {
		case err == nil:
			if _, err := repo.DeleteByUIDAndSlug(ctx, uid, slug); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove favorite")
			}
			liked = false
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			item := &models.FavoriteItem{UID: uid, Slug: slug}
			if err := repo.Create(ctx, item); err != nil {
				if db.IsUniqueViolation(err, "favorite_items_uid_slug_key") {
					// concurrent toggle already liked it
					liked = true
					return nil
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add favorite")
			}
			liked = true
			return nil
		default:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check favorite")
		}
	})
	if err != nil {
		return false, err
	}
	return liked, nil
}

func (s *service) IsFavorite(ctx context.Context, uid, slug string) (bool, error) {
	if strings.TrimSpace(uid) == "" || strings.TrimSpace(slug) == "" {
		return false, nil
	}
	_, err := s.repo.FindByUIDAndSlug(ctx, uid, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check favorite")
	}
	return true, nil
}

func (s *service) List(ctx context.Context, uid string) ([]models.FavoriteItem, error) {
	if strings.TrimSpace(uid) == "" {
		return []models.FavoriteItem{}, nil
	}
	items, err := s.repo.ListByUID(ctx, uid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list favorites")
	}
	if items == nil {
		items = []models.FavoriteItem{}
	}
	return items, nil
}

// Slugs is the compact list shape used by product grids.
func (s *service) Slugs(ctx context.Context, uid string) ([]string, error) {
	items, err := s.List(ctx, uid)
	if err != nil {
		return nil, err
	}
	slugs := make([]string, 0, len(items))
	for _, item := range items {
		slugs = append(slugs, item.Slug)
	}
	return slugs, nil
}

func (s *service) Clear(ctx context.Context, uid string) error {
	if strings.TrimSpace(uid) == "" {
		return nil
	}
	if err := s.repo.DeleteAllByUID(ctx, uid); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear favorites")
	}
	return nil
}
