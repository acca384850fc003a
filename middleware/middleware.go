package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"

	"rollcall/errs"
	"rollcall/utils"
)

// JWT claims
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is who the bearer token says the caller is. Requests without
// a valid token get the readonly zero identity.
type Identity struct {
	Email string
	Role  string
}

func (id Identity) IsAdmin() bool { return id.Role == "admin" }

type contextKey string

const identityKey contextKey = "identity"

// Auth carries the signing secret; built once in main.
type Auth struct {
	Secret []byte
}

// Authenticate rejects requests without a valid bearer token.
func (a *Auth) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, err := a.parseBearer(r.Header.Get("Authorization"))
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, Identity{Email: claims.Email, Role: claims.Role})
		next(w, r.WithContext(ctx), ps)
	}
}

// OptionalAuth attaches an identity when a valid token is present and
// proceeds either way.
func (a *Auth) OptionalAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if claims, err := a.parseBearer(r.Header.Get("Authorization")); err == nil {
			ctx := context.WithValue(r.Context(), identityKey, Identity{Email: claims.Email, Role: claims.Role})
			r = r.WithContext(ctx)
		}
		next(w, r, ps)
	}
}

// RequireAdmin gates mutating routes: valid token and role admin, or the
// request fails closed.
func (a *Auth) RequireAdmin(next httprouter.Handle) httprouter.Handle {
	return a.Authenticate(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id := IdentityFrom(r.Context())
		if !id.IsAdmin() {
			err := &errs.AuthorizationError{Email: id.Email}
			utils.RespondWithError(w, errs.HTTPStatus(err), err.Error())
			return
		}
		next(w, r, ps)
	})
}

func (a *Auth) parseBearer(header string) (*Claims, error) {
	if len(header) < 8 || !strings.HasPrefix(header, "Bearer ") {
		return nil, fmt.Errorf("invalid token format")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(header[7:], claims, func(token *jwt.Token) (any, error) {
		return a.Secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}
	return claims, nil
}

// IdentityFrom returns the request identity, defaulting to readonly.
func IdentityFrom(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityKey).(Identity); ok {
		return id
	}
	return Identity{Role: "readonly"}
}
