package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ivdgroup/medlab-backend/internal/users"
	"github.com/ivdgroup/medlab-backend/pkg/auth"
	"github.com/ivdgroup/medlab-backend/pkg/config"
	"github.com/ivdgroup/medlab-backend/pkg/db"
	"github.com/ivdgroup/medlab-backend/pkg/db/models"
	"github.com/ivdgroup/medlab-backend/pkg/enums"
	pkgerrors "github.com/ivdgroup/medlab-backend/pkg/errors"
	"github.com/ivdgroup/medlab-backend/pkg/logger"
	"github.com/ivdgroup/medlab-backend/pkg/redis"
	"github.com/ivdgroup/medlab-backend/pkg/security"
)

// Mailer is the slice of outbound email the auth flows need. Sends are
// best-effort; failures are logged and never surface to the caller.
type Mailer interface {
	SendWelcome(ctx context.Context, to, name string) error
	SendMagicLink(ctx context.Context, to, name, link string) error
}

// RedeemStore marks magic-link token ids as used.
type RedeemStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
}

// Service implements signup, login, and magic-link sign-in.
type Service interface {
	Signup(ctx context.Context, input SignupInput) (*UserView, error)
	Login(ctx context.Context, input LoginInput) (*Session, error)
	RequestMagicLink(ctx context.Context, email string) error
	VerifyMagicLink(ctx context.Context, token string) (*Session, error)
}

type service struct {
	repo    *users.Repository
	redeems RedeemStore
	mailer  Mailer
	logg    *logger.Logger
	jwtCfg  config.JWTConfig
	pwCfg   config.PasswordConfig
	baseURL string
	timeout time.Duration
	now     func() time.Time
}

// NewService wires the auth flows.
func NewService(
	repo *users.Repository,
	redeems RedeemStore,
	mailer Mailer,
	logg *logger.Logger,
	cfg *config.Config,
) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user repository required")
	}
	if redeems == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "redeem store required")
	}
	if mailer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "mailer required")
	}
	if cfg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "config required")
	}
	return &service{
		repo:    repo,
		redeems: redeems,
		mailer:  mailer,
		logg:    logg,
		jwtCfg:  cfg.JWT,
		pwCfg:   cfg.Password,
		baseURL: strings.TrimRight(cfg.App.BaseURL, "/"),
		timeout: cfg.SMTP.SendTimeout,
		now:     time.Now,
	}, nil
}

// Signup creates the account and fires the welcome email without waiting
// for it.
func (s *service) Signup(ctx context.Context, input SignupInput) (*UserView, error) {
	email := users.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: &hash,
		Name:         strings.TrimSpace(input.Name),
		Role:         enums.UserRoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	s.sendAsync(ctx, "welcome email", func(sendCtx context.Context) error {
		return s.mailer.SendWelcome(sendCtx, user.Email, user.Name)
	})

	view := toUserView(user)
	return &view, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.PasswordHash == nil {
		return nil, invalidCredentials()
	}

	ok, err := security.VerifyPassword(input.Password, *user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, invalidCredentials()
	}

	return s.mintSession(user)
}

// RequestMagicLink always reports success so the endpoint cannot be used to
// probe which addresses have accounts.
func (s *service) RequestMagicLink(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	token, err := auth.MintMagicLinkToken(s.jwtCfg, s.now(), auth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint magic link token")
	}

	link := fmt.Sprintf("%s/api/auth/magic-link/verify?token=%s", s.baseURL, url.QueryEscape(token))
	s.sendAsync(ctx, "magic link email", func(sendCtx context.Context) error {
		return s.mailer.SendMagicLink(sendCtx, user.Email, user.Name, link)
	})
	return nil
}

// VerifyMagicLink redeems a sign-in link exactly once. The token id is
// written to the redeem store with the link TTL; a second redemption finds
// the key already present and is rejected.
func (s *service) VerifyMagicLink(ctx context.Context, token string) (*Session, error) {
	claims, err := auth.ParseToken(s.jwtCfg, token)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired sign-in link")
	}
	if claims.Purpose != auth.PurposeMagicLink {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired sign-in link")
	}

	first, err := s.redeems.SetNX(ctx, redis.MagicLinkKey(claims.ID), "redeemed", s.jwtCfg.MagicLinkTTL())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redeem sign-in link")
	}
	if !first {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign-in link already used")
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	return s.mintSession(user)
}

func (s *service) mintSession(user *models.User) (*Session, error) {
	token, err := auth.MintAccessToken(s.jwtCfg, s.now(), auth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &Session{Token: token, User: toUserView(user)}, nil
}

// sendAsync dispatches an email without blocking the request. The send gets
// its own timeout context because the request context ends when the
// response is written.
func (s *service) sendAsync(ctx context.Context, what string, send func(context.Context) error) {
	timeout := s.timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		if err := send(sendCtx); err != nil && s.logg != nil {
			s.logg.Error(sendCtx, "failed to send "+what, err)
		}
	}()
}

func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
}
