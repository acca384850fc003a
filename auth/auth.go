package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"golang.org/x/crypto/bcrypt"

	"rollcall/middleware"
	"rollcall/utils"
)

const tokenTTL = 24 * time.Hour

// Handler issues tokens for the one configured admin identity. There is
// no user collection: anyone else is readonly and never logs in.
type Handler struct {
	Secret            []byte
	AdminEmail        string
	AdminPasswordHash string
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if input.Email == "" || input.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	if !strings.EqualFold(strings.TrimSpace(input.Email), h.AdminEmail) {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.AdminPasswordHash), []byte(input.Password)); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	claims := middleware.Claims{
		Email: h.AdminEmail,
		Role:  "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.Secret)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"token": signed,
		"email": h.AdminEmail,
		"role":  "admin",
	})
}

// Me reports the caller's identity as the middleware resolved it.
func Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id := middleware.IdentityFrom(r.Context())
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"email": id.Email,
		"role":  id.Role,
	})
}
