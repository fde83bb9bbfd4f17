package gateway

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller. Session issuance lives upstream;
// the gateway trusts the X-User-ID header placed by the edge proxy. Admin
// standing is resolved against community membership per request, never from
// a header.
type Identity struct {
	UserID uuid.UUID
}

// RequireIdentity rejects requests without a parseable X-User-ID header and
// stores the identity on the request context.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.Header.Get("X-User-ID"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "missing or invalid X-User-ID header")
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, Identity{UserID: userID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFrom(r *http.Request) Identity {
	id, _ := r.Context().Value(identityKey).(Identity)
	return id
}
