package community

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/00anuyh/souvenir-backend/pkg/db/models"
	pkgerrors "github.com/00anuyh/souvenir-backend/pkg/errors"
	"github.com/00anuyh/souvenir-backend/pkg/pagination"
)

// PostInput carries the author-editable fields of a board post.
type PostInput struct {
	Title    string  `json:"title"`
	Body     string  `json:"body"`
	PhotoURL *string `json:"photo_url,omitempty"`
}

// Page is one cursor page of posts, newest-first.
type Page struct {
	Posts      []models.CommunityPost `json:"posts"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

// Service manages the community board.
type Service interface {
	Create(ctx context.Context, uid string, input PostInput) (*models.CommunityPost, error)
	Get(ctx context.Context, id uuid.UUID) (*models.CommunityPost, error)
	List(ctx context.Context, params pagination.Params) (*Page, error)
	ListMine(ctx context.Context, uid string) ([]models.CommunityPost, error)
	Update(ctx context.Context, id uuid.UUID, requesterUID string, input PostInput) (*models.CommunityPost, error)
	Like(ctx context.Context, id uuid.UUID) (*models.CommunityPost, error)
	Delete(ctx context.Context, id uuid.UUID, requesterUID string) error
}

type service struct {
	repo Repository
}

// NewService builds a community board service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("community repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, uid string, input PostInput) (*models.CommunityPost, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "author uid is required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}

	post := &models.CommunityPost{
		UID:      uid,
		Title:    title,
		Body:     input.Body,
		PhotoURL: input.PhotoURL,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create post")
	}
	return post, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.CommunityPost, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load post")
	}
	return post, nil
}

// List returns one page of the board. A next cursor is present only when more
// rows remain.
func (s *service) List(ctx context.Context, params pagination.Params) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	posts, err := s.repo.ListPage(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list posts")
	}

	page := &Page{Posts: posts}
	if len(posts) > limit {
		page.Posts = posts[:limit]
		last := page.Posts[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	if page.Posts == nil {
		page.Posts = []models.CommunityPost{}
	}
	return page, nil
}

func (s *service) ListMine(ctx context.Context, uid string) ([]models.CommunityPost, error) {
	if strings.TrimSpace(uid) == "" {
		return []models.CommunityPost{}, nil
	}
	posts, err := s.repo.ListByAuthor(ctx, uid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list posts")
	}
	if posts == nil {
		posts = []models.CommunityPost{}
	}
	return posts, nil
}

// Update rewrites a post's content. Only the author may update.
func (s *service) Update(ctx context.Context, id uuid.UUID, requesterUID string, input PostInput) (*models.CommunityPost, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if requesterUID == "" || existing.UID != requesterUID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the author may edit a post")
	}

	updates := map[string]any{
		"body":      input.Body,
		"photo_url": input.PhotoURL,
	}
	if title := strings.TrimSpace(input.Title); title != "" {
		updates["title"] = title
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update post")
	}
	return s.Get(ctx, id)
}

// Like bumps a post's like counter. Any signed-in shopper may like, the
// author included; repeat likes keep counting.
func (s *service) Like(ctx context.Context, id uuid.UUID) (*models.CommunityPost, error) {
	rows, err := s.repo.AddLike(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "like post")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
	}
	return s.Get(ctx, id)
}

// Delete removes a post. Only the author may delete.
func (s *service) Delete(ctx context.Context, id uuid.UUID, requesterUID string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if requesterUID == "" || existing.UID != requesterUID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the author may delete a post")
	}
	if _, err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete post")
	}
	return nil
}
