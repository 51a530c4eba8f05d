package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ivdgroup/medlab-backend/internal/users"
	pkgauth "github.com/ivdgroup/medlab-backend/pkg/auth"
	"github.com/ivdgroup/medlab-backend/pkg/config"
	"github.com/ivdgroup/medlab-backend/pkg/db/models"
	pkgerrors "github.com/ivdgroup/medlab-backend/pkg/errors"
)

type recordingMailer struct {
	mu         sync.Mutex
	welcomes   []string
	magicLinks []string
	sent       chan struct{}
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{sent: make(chan struct{}, 8)}
}

func (m *recordingMailer) SendWelcome(_ context.Context, to, _ string) error {
	m.mu.Lock()
	m.welcomes = append(m.welcomes, to)
	m.mu.Unlock()
	m.sent <- struct{}{}
	return nil
}

func (m *recordingMailer) SendMagicLink(_ context.Context, _, _, link string) error {
	m.mu.Lock()
	m.magicLinks = append(m.magicLinks, link)
	m.mu.Unlock()
	m.sent <- struct{}{}
	return nil
}

func (m *recordingMailer) waitForSend(t *testing.T) {
	t.Helper()
	select {
	case <-m.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for async email")
	}
}

type memoryRedeems struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (m *memoryRedeems) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys == nil {
		m.keys = map[string]bool{}
	}
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{BaseURL: "http://localhost:3000"},
		JWT: config.JWTConfig{
			Secret:              "test-secret",
			Issuer:              "medlab-test",
			ExpirationMinutes:   60,
			MagicLinkTTLMinutes: 15,
		},
		SMTP: config.SMTPConfig{SendTimeout: 2 * time.Second},
	}
}

func newTestService(t *testing.T) (Service, *users.Repository, *recordingMailer, *memoryRedeems) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	repo := users.NewRepository(conn)
	mailer := newRecordingMailer()
	redeems := &memoryRedeems{}

	svc, err := NewService(repo, redeems, mailer, nil, testConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, mailer, redeems
}

func TestSignupCreatesAccountAndSendsWelcome(t *testing.T) {
	svc, repo, mailer, _ := newTestService(t)
	ctx := context.Background()

	view, err := svc.Signup(ctx, SignupInput{
		Email:    "Buyer@Example.com",
		Password: "correct-horse",
		Name:     "Buyer One",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if view.Email != "buyer@example.com" || view.Role != "user" {
		t.Fatalf("unexpected view %+v", view)
	}

	stored, err := repo.FindByEmail(ctx, "buyer@example.com")
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if stored.PasswordHash == nil || !strings.HasPrefix(*stored.PasswordHash, "$argon2id$") {
		t.Fatal("expected argon2id hash stored")
	}

	mailer.waitForSend(t)
	if len(mailer.welcomes) != 1 || mailer.welcomes[0] != "buyer@example.com" {
		t.Fatalf("unexpected welcome sends %+v", mailer.welcomes)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _, mailer, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Email: "a@b.co", Password: "password-1", Name: "A"}); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	mailer.waitForSend(t)

	_, err := svc.Signup(ctx, SignupInput{Email: "A@B.CO", Password: "password-2", Name: "B"})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for duplicate email, got %v", err)
	}
}

func TestSignupRequiresEmailAndPassword(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	for _, input := range []SignupInput{
		{Email: "", Password: "password", Name: "X"},
		{Email: "x@y.co", Password: "", Name: "X"},
	} {
		_, err := svc.Signup(context.Background(), input)
		if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %+v, got %v", input, err)
		}
	}
}

func TestLogin(t *testing.T) {
	svc, _, mailer, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Email: "a@b.co", Password: "password-1", Name: "A"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	mailer.waitForSend(t)

	session, err := svc.Login(ctx, LoginInput{Email: "A@b.co", Password: "password-1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token == "" || session.User.Email != "a@b.co" {
		t.Fatalf("unexpected session %+v", session)
	}

	claims, err := pkgauth.ParseToken(testConfig().JWT, session.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Purpose != pkgauth.PurposeAccess || claims.Email != "a@b.co" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	for _, input := range []LoginInput{
		{Email: "a@b.co", Password: "wrong"},
		{Email: "missing@b.co", Password: "password-1"},
	} {
		_, err := svc.Login(ctx, input)
		if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized for %+v, got %v", input, err)
		}
	}
}

func TestMagicLinkFlow(t *testing.T) {
	svc, _, mailer, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Email: "a@b.co", Password: "password-1", Name: "A"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	mailer.waitForSend(t)

	if err := svc.RequestMagicLink(ctx, "a@b.co"); err != nil {
		t.Fatalf("request magic link: %v", err)
	}
	mailer.waitForSend(t)

	if len(mailer.magicLinks) != 1 {
		t.Fatalf("expected one magic link email, got %d", len(mailer.magicLinks))
	}
	link := mailer.magicLinks[0]
	marker := "token="
	at := strings.Index(link, marker)
	if at < 0 {
		t.Fatalf("link carries no token: %s", link)
	}
	token := link[at+len(marker):]

	session, err := svc.VerifyMagicLink(ctx, token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if session.User.Email != "a@b.co" {
		t.Fatalf("unexpected session %+v", session)
	}

	_, err = svc.VerifyMagicLink(ctx, token)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected second redemption rejected, got %v", err)
	}
}

func TestMagicLinkUnknownEmailStaysSilent(t *testing.T) {
	svc, _, mailer, _ := newTestService(t)

	if err := svc.RequestMagicLink(context.Background(), "nobody@b.co"); err != nil {
		t.Fatalf("expected silent success, got %v", err)
	}
	select {
	case <-mailer.sent:
		t.Fatal("expected no email for unknown address")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestVerifyRejectsAccessTokens(t *testing.T) {
	svc, repo, mailer, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Email: "a@b.co", Password: "password-1", Name: "A"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	mailer.waitForSend(t)

	user, err := repo.FindByEmail(ctx, "a@b.co")
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	access, err := pkgauth.MintAccessToken(testConfig().JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = svc.VerifyMagicLink(ctx, access)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected session tokens rejected as sign-in links, got %v", err)
	}
}
