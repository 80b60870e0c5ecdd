package access

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/communityhub/communityhub/internal/shared"
)

// LastPageSessionKey stores the most recently rendered page in the session.
// The value is a convenience default for the root handler only; it always
// passes back through Resolve and never bypasses the permission table.
const LastPageSessionKey = "communityhub_last_page"

type actorContextKey struct{}

// ContextWithActor stores the actor snapshot in context.
func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor snapshot from context.
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(actorContextKey{}).(*Actor)
	return actor
}

// Guard mounts page-level authorization in front of page handlers.
type Guard struct {
	Logger *slog.Logger
}

// RequirePage resolves the requested page against the current actor before
// the wrapped handler runs. A mismatch answers with a 303 to the resolved
// page, so the response never contains unauthorized markup. Query parameters
// belong to the destination handler and are left untouched.
func (g Guard) RequirePage(page Page) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			if actor == nil {
				http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
				return
			}
			resolved := Resolve(actor, page)
			if resolved != page {
				if g.Logger != nil {
					g.Logger.Info("page access redirected",
						slog.String("role", string(actor.Role)),
						slog.String("requested", string(page)),
						slog.String("resolved", string(resolved)))
				}
				http.Redirect(w, r, resolved.Path(), http.StatusSeeOther)
				return
			}
			if sess := shared.SessionFromContext(r.Context()); sess != nil {
				if sess.Get(LastPageSessionKey) != string(page) {
					sess.Set(LastPageSessionKey, string(page))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
