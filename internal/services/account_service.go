package services

import (
	"context"
	"errors"
	"strings"

	"invoice-backend/internal/auth"
	"invoice-backend/internal/cache"
	"invoice-backend/internal/logger"
	"invoice-backend/internal/models"
	"invoice-backend/internal/validation"
)

type AccountStore interface {
	Create(ctx context.Context, a *models.Account) error
	Get(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdateProfile(ctx context.Context, id string, req *models.UpdateProfileRequest) (*models.Account, error)
	UpdateLogo(ctx context.Context, id, logo string) (*models.Account, error)
}

// LogoUploader stores a logo image and returns where it can be fetched
type LogoUploader interface {
	UploadLogo(ctx context.Context, accountID string, data []byte) (string, error)
}

type AccountService struct {
	Repo       AccountStore
	JWTManager *auth.JWTManager
	Cache      *cache.Cache
	Logos      LogoUploader
}

func NewAccountService(repo AccountStore, jwtManager *auth.JWTManager, c *cache.Cache, logos LogoUploader) *AccountService {
	return &AccountService{
		Repo:       repo,
		JWTManager: jwtManager,
		Cache:      c,
		Logos:      logos,
	}
}

// SignUp creates an account and opens a session for it
func (s *AccountService) SignUp(ctx context.Context, req *models.SignUpRequest) (*models.AuthResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	req.BusinessName = strings.TrimSpace(req.BusinessName)

	if errs := validation.ValidateSignUp(req); errs.HasErrors() {
		return nil, errs
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		Name:         req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		BusinessName: req.BusinessName,
	}
	if err := s.Repo.Create(ctx, account); err != nil {
		return nil, err
	}

	log := logger.WithAccountID(account.ID)
	log.Info().Msg("account created")

	return s.session(account)
}

// SignIn checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AccountService) SignIn(ctx context.Context, req *models.SignInRequest) (*models.AuthResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if errs := validation.ValidateSignIn(req); errs.HasErrors() {
		return nil, errs
	}

	account, err := s.Repo.GetByEmail(ctx, req.Email)
	if errors.Is(err, models.ErrAccountNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.VerifyPassword(account.PasswordHash, req.Password) {
		return nil, models.ErrInvalidCredentials
	}

	return s.session(account)
}

func (s *AccountService) session(account *models.Account) (*models.AuthResult, error) {
	token, expiresAt, err := s.JWTManager.GenerateToken(account)
	if err != nil {
		return nil, err
	}
	return &models.AuthResult{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

// Get returns the account, served from cache when possible
func (s *AccountService) Get(ctx context.Context, id string) (*models.Account, error) {
	key := cache.AccountKey(id)

	var cached models.Account
	if s.Cache.GetJSON(ctx, "account", key, &cached) {
		return &cached, nil
	}

	account, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Cache.SetJSON(ctx, key, account)
	return account, nil
}

// UpdateProfile applies the fields present in req
func (s *AccountService) UpdateProfile(ctx context.Context, id string, req *models.UpdateProfileRequest) (*models.Account, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &email
	}
	if req.BusinessName != nil {
		bn := strings.TrimSpace(*req.BusinessName)
		req.BusinessName = &bn
	}

	if errs := validation.ValidateProfile(req); errs.HasErrors() {
		return nil, errs
	}

	account, err := s.Repo.UpdateProfile(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.Cache.InvalidateAccount(ctx, id)
	return account, nil
}

// UploadLogo stores the image and points the account at it
func (s *AccountService) UploadLogo(ctx context.Context, id string, data []byte) (*models.Account, error) {
	if s.Logos == nil {
		return nil, models.ErrStorageDisabled
	}

	url, err := s.Logos.UploadLogo(ctx, id, data)
	if err != nil {
		return nil, err
	}

	account, err := s.Repo.UpdateLogo(ctx, id, url)
	if err != nil {
		return nil, err
	}
	s.Cache.InvalidateAccount(ctx, id)
	return account, nil
}
