package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/auth"
	"github.com/communityhub/communityhub/internal/shared"
	"github.com/communityhub/communityhub/internal/view"
	_ "github.com/communityhub/communityhub/testing"
)

type stubRepo struct {
	user         *auth.User
	units        []access.UnitRef
	invite       *auth.Invite
	acceptedHash string
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil {
		return nil, shared.ErrInvalidCredentials
	}
	return s.user, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) ListUnitAssignments(ctx context.Context, userID int64) ([]access.UnitRef, error) {
	return s.units, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	return nil
}

func (s *stubRepo) FindInviteByToken(ctx context.Context, token string) (*auth.Invite, error) {
	if s.invite == nil || s.invite.Token != token {
		return nil, shared.ErrNotFound
	}
	return s.invite, nil
}

func (s *stubRepo) AcceptInvite(ctx context.Context, inv *auth.Invite, passwordHash string) (int64, error) {
	s.acceptedHash = passwordHash
	s.invite = nil
	return 42, nil
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager, *shared.CSRFManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	handler := auth.NewHandler(nil, auth.NewService(repo), templates, sessionManager, csrfManager)
	return handler, sessionManager, csrfManager
}

func TestLoginPage(t *testing.T) {
	handler, sessionManager, _ := newAuthHandler(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	sess, err := sessionManager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)

	res := httptest.NewRecorder()
	handler.ShowLoginForTest(res, req)
	if err := sessionManager.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "<form") {
		t.Fatalf("expected login form in body")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	handler, sessionManager, _ := newAuthHandler(t, &stubRepo{user: &auth.User{
		ID: 1, Email: "warga@test.local", PasswordHash: string(hashed),
		Role: access.RoleResident, IsActive: true,
	}})

	// Prime session and CSRF token via GET.
	getReq := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	sess, err := sessionManager.Load(context.Background(), getReq)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	getCtx := shared.ContextWithSession(getReq.Context(), sess)
	getReq = getReq.WithContext(getCtx)
	getRes := httptest.NewRecorder()
	handler.ShowLoginForTest(getRes, getReq)
	if err := sessionManager.Commit(getCtx, getRes, getReq, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	token := sess.Get(shared.CSRFSessionKey)
	if token == "" {
		t.Fatalf("csrf token not set")
	}

	postData := url.Values{}
	postData.Set("email", "warga@test.local")
	postData.Set("password", "wrongpass")
	postData.Set("csrf_token", token)

	postReq := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(postData.Encode()))
	postReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// Attach session cookie manually.
	postReq.AddCookie(&http.Cookie{Name: sessionManager.CookieName(), Value: sess.ID})

	loadedSess, err := sessionManager.Load(context.Background(), postReq)
	if err != nil {
		t.Fatalf("load session for post: %v", err)
	}
	postCtx := shared.ContextWithSession(postReq.Context(), loadedSess)
	postReq = postReq.WithContext(postCtx)

	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, postReq)
	if err := sessionManager.Commit(postCtx, res, postReq, loadedSess); err != nil {
		t.Fatalf("commit session post: %v", err)
	}

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Email atau password tidak valid") {
		t.Fatalf("expected error message in response")
	}
}

func TestAcceptInviteActivatesAccount(t *testing.T) {
	repo := &stubRepo{invite: &auth.Invite{
		ID: 7, CommunityID: 3, Email: "baru@test.local", Name: "Warga Baru",
		Role: access.RoleResident, UnitID: 5, Token: "tok-123",
	}}
	service := auth.NewService(repo)

	if err := service.AcceptInvite(context.Background(), "tok-123", "rahasia123"); err != nil {
		t.Fatalf("accept invite: %v", err)
	}
	if repo.acceptedHash == "" {
		t.Fatal("expected password hash to be stored")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(repo.acceptedHash), []byte("rahasia123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	// The token is single use.
	if err := service.AcceptInvite(context.Background(), "tok-123", "rahasia123"); err == nil {
		t.Fatal("expected second acceptance to fail")
	}
}

func TestLoadActorIncludesUnitsForGatedRoles(t *testing.T) {
	repo := &stubRepo{
		user: &auth.User{ID: 9, Name: "Warga", Email: "warga@test.local",
			Role: access.RoleResident, CommunityID: 3, IsActive: true},
		units: []access.UnitRef{{ID: 5, Label: "B-202"}},
	}
	service := auth.NewService(repo)

	actor, err := service.LoadActor(context.Background(), 9)
	if err != nil {
		t.Fatalf("load actor: %v", err)
	}
	if actor.Role != access.RoleResident || len(actor.Units) != 1 {
		t.Fatalf("unexpected actor %+v", actor)
	}
	if actor.NeedsSetup() {
		t.Fatal("actor with unit must not be setup gated")
	}
}

func TestLoadActorIncludesUnitsForTenants(t *testing.T) {
	repo := &stubRepo{
		user: &auth.User{ID: 11, Name: "Penyewa", Email: "penyewa@test.local",
			Role: access.RoleTenant, CommunityID: 3, IsActive: true},
		units: []access.UnitRef{{ID: 8, Label: "A-303"}},
	}
	service := auth.NewService(repo)

	actor, err := service.LoadActor(context.Background(), 11)
	if err != nil {
		t.Fatalf("load actor: %v", err)
	}
	if len(actor.Units) != 1 || actor.Units[0].Label != "A-303" {
		t.Fatalf("tenant actor lost its unit assignment: %+v", actor.Units)
	}
	if actor.NeedsSetup() {
		t.Fatal("tenants are never setup gated")
	}
}

func TestLoadActorSkipsUnitLookupForStaffRoles(t *testing.T) {
	repo := &stubRepo{
		user: &auth.User{ID: 4, Name: "Satpam", Email: "satpam@test.local",
			Role: access.RoleSecurityGuard, CommunityID: 3, IsActive: true},
		units: []access.UnitRef{{ID: 1, Label: "A-101"}},
	}
	service := auth.NewService(repo)

	actor, err := service.LoadActor(context.Background(), 4)
	if err != nil {
		t.Fatalf("load actor: %v", err)
	}
	if len(actor.Units) != 0 {
		t.Fatalf("staff roles must not carry unit assignments, got %v", actor.Units)
	}
}
