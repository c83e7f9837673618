package middleware

import (
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/iho/walletledger/internal/domain"
)

// ActorIDHeader names the acting user of a request.
const ActorIDHeader = "X-Actor-ID"

// Actor attaches the actor id from X-Actor-ID and the chi request id to the
// request context. Requests without the header act as domain.DefaultActorID.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if actor := strings.TrimSpace(r.Header.Get(ActorIDHeader)); actor != "" {
			ctx = domain.WithActor(ctx, actor)
		}

		if requestID := chimiddleware.GetReqID(ctx); requestID != "" {
			ctx = domain.WithRequestID(ctx, requestID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
