package access_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/shared"
	_ "github.com/communityhub/communityhub/testing"
)

func guardRequest(t *testing.T, actor *access.Actor) (*http.Request, *shared.Session) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(context.Background(), req)
	require.NoError(t, err)

	ctx := shared.ContextWithSession(req.Context(), sess)
	if actor != nil {
		ctx = access.ContextWithActor(ctx, actor)
	}
	return req.WithContext(ctx), sess
}

func TestRequirePageRedirectsForbiddenToFallback(t *testing.T) {
	guard := access.Guard{}
	rendered := false
	handler := guard.RequirePage(access.PageBilling)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rendered = true
	}))

	req, _ := guardRequest(t, &access.Actor{
		UserID: 1, Role: access.RoleResident, CommunityID: 7,
		Units: []access.UnitRef{{ID: 1, Label: "A-101"}},
	})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.False(t, rendered, "forbidden page body must never render")
	require.Equal(t, http.StatusSeeOther, res.Code)
	require.Equal(t, "/dashboard", res.Header().Get("Location"))
}

func TestRequirePageRedirectsGatedActorToSetup(t *testing.T) {
	guard := access.Guard{}
	handler := guard.RequirePage(access.PageDashboard)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("gated actor reached page handler")
	}))

	req, _ := guardRequest(t, &access.Actor{UserID: 2, Role: access.RoleCommunityAdmin, CommunityID: 7})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusSeeOther, res.Code)
	require.Equal(t, "/setup", res.Header().Get("Location"))
}

func TestRequirePageRedirectsAnonymousToLogin(t *testing.T) {
	guard := access.Guard{}
	handler := guard.RequirePage(access.PageNotices)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("anonymous request reached page handler")
	}))

	req, _ := guardRequest(t, nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusSeeOther, res.Code)
	require.Equal(t, "/auth/login", res.Header().Get("Location"))
}

func TestRequirePageRecordsLastRenderedPage(t *testing.T) {
	guard := access.Guard{}
	handler := guard.RequirePage(access.PageVisitors)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req, sess := guardRequest(t, &access.Actor{UserID: 3, Role: access.RoleSecurityGuard})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, string(access.PageVisitors), sess.Get(access.LastPageSessionKey))
}

func TestRequirePageDoesNotRecordRedirectedRequests(t *testing.T) {
	guard := access.Guard{}
	handler := guard.RequirePage(access.PageDirectory)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req, sess := guardRequest(t, &access.Actor{UserID: 4, Role: access.RoleSecurityGuard})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusSeeOther, res.Code)
	require.Empty(t, sess.Get(access.LastPageSessionKey))
}
