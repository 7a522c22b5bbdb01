package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/00anuyh/souvenir-backend/internal/users"
	"github.com/00anuyh/souvenir-backend/pkg/config"
	"github.com/00anuyh/souvenir-backend/pkg/db"
	pkgerrors "github.com/00anuyh/souvenir-backend/pkg/errors"
	"github.com/00anuyh/souvenir-backend/pkg/security"
)

type bonusGranter interface {
	GrantSignupBonusOnce(ctx context.Context, uid string) (bool, error)
}

// RegisterService handles the signup transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             *db.Client
	Rewards        bonusGranter
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	rewards     bonusGranter
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Rewards == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "rewards service required")
	}
	return &registerService{
		db:          params.DB,
		rewards:     params.Rewards,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if req.Password != req.ConfirmPassword {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "passwords do not match")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *users.UserDTO
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		if _, err := userRepo.FindByUsername(ctx, username); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Username:     username,
			Email:        req.Email,
			PasswordHash: passwordHash,
			DisplayName:  req.DisplayName,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "users_username_key") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "username already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		created = users.FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// per-user flag on the balance row keeps this idempotent across retries
	granted, err := s.rewards.GrantSignupBonusOnce(ctx, username)
	if err != nil {
		return nil, err
	}

	return &RegisterResponse{User: created, BonusGranted: granted}, nil
}
