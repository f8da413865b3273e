package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/username/lotfolio/backend/src/config"
	"github.com/username/lotfolio/backend/src/database"
	"github.com/username/lotfolio/backend/src/logger"
	"github.com/username/lotfolio/backend/src/model"
	"github.com/username/lotfolio/backend/src/security"
	"github.com/username/lotfolio/backend/src/security/validation"
	"github.com/username/lotfolio/backend/src/utils"
)

type contextKey string

const userIDContextKey contextKey = "userID"

// GetUserIDFromContext extracts the authenticated user's ID placed in the
// request context by AuthMiddleware.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	return userID, ok
}

func sendJSONError(w http.ResponseWriter, message string, statusCode int) {
	utils.SendJSONError(w, message, statusCode)
}

type UserHandler struct {
	authService *security.AuthService
}

func NewUserHandler(authService *security.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresAt    time.Time   `json:"expires_at"`
	User         *model.User `json:"user"`
}

func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Username = validation.SanitizeText(strings.TrimSpace(req.Username))
	req.Email = strings.TrimSpace(req.Email)

	if err := validation.ValidateStringNotEmpty(req.Username, "username"); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringNotEmpty(req.Email, "email"); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Password) < 8 {
		sendJSONError(w, "Password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	if _, err := model.GetUserByUsername(database.DB, req.Username); err == nil {
		sendJSONError(w, "Username already taken", http.StatusConflict)
		return
	}
	if _, err := model.GetUserByEmail(database.DB, req.Email); err == nil {
		sendJSONError(w, "Email already registered", http.StatusConflict)
		return
	}

	user := &model.User{Username: req.Username, Email: req.Email}
	if err := user.HashPassword(req.Password); err != nil {
		logger.L.Error("Failed to hash password during registration", "error", err)
		sendJSONError(w, "Failed to register user", http.StatusInternalServerError)
		return
	}
	if err := user.CreateUser(database.DB); err != nil {
		logger.L.Error("Failed to create user", "username", req.Username, "error", err)
		sendJSONError(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	logger.L.Info("User registered", "userID", user.ID, "username", user.Username)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByUsername(database.DB, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sendJSONError(w, "Invalid username or password", http.StatusUnauthorized)
			return
		}
		logger.L.Error("Failed to look up user for login", "error", err)
		sendJSONError(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	if user.AuthProvider != "local" {
		sendJSONError(w, "This account uses an external sign-in provider", http.StatusUnauthorized)
		return
	}
	if err := user.CheckPassword(req.Password); err != nil {
		sendJSONError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	resp, err := h.createSessionForUser(user)
	if err != nil {
		logger.L.Error("Failed to create session", "userID", user.ID, "error", err)
		sendJSONError(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	logger.L.Info("User logged in", "userID", user.ID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// createSessionForUser issues an access/refresh token pair and persists the
// session. Shared by password login and the OAuth callback.
func (h *UserHandler) createSessionForUser(user *model.User) (*authResponse, error) {
	accessToken, err := h.authService.GenerateToken(strconv.FormatInt(user.ID, 10))
	if err != nil {
		return nil, err
	}
	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		UserID:           user.ID,
		Token:            accessToken,
		RefreshToken:     refreshToken,
		ExpiresAt:        time.Now().Add(config.Cfg.AccessTokenExpiry),
		RefreshExpiresAt: time.Now().Add(config.Cfg.RefreshTokenExpiry),
	}
	if err := session.CreateSession(database.DB); err != nil {
		return nil, err
	}

	return &authResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    session.ExpiresAt,
		User:         user,
	}, nil
}

func (h *UserHandler) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		sendJSONError(w, "Refresh token required", http.StatusBadRequest)
		return
	}

	session, err := model.GetSessionByRefreshToken(database.DB, req.RefreshToken)
	if err != nil {
		sendJSONError(w, "Invalid or expired refresh token", http.StatusUnauthorized)
		return
	}

	user, err := model.GetUserByID(database.DB, session.UserID)
	if err != nil {
		logger.L.Error("Session refers to missing user", "userID", session.UserID, "error", err)
		sendJSONError(w, "Invalid session", http.StatusUnauthorized)
		return
	}

	accessToken, err := h.authService.GenerateToken(strconv.FormatInt(user.ID, 10))
	if err != nil {
		logger.L.Error("Failed to generate access token on refresh", "userID", user.ID, "error", err)
		sendJSONError(w, "Failed to refresh token", http.StatusInternalServerError)
		return
	}
	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		logger.L.Error("Failed to generate refresh token on refresh", "userID", user.ID, "error", err)
		sendJSONError(w, "Failed to refresh token", http.StatusInternalServerError)
		return
	}

	session.Token = accessToken
	session.RefreshToken = refreshToken
	session.ExpiresAt = time.Now().Add(config.Cfg.AccessTokenExpiry)
	session.RefreshExpiresAt = time.Now().Add(config.Cfg.RefreshTokenExpiry)
	if err := session.UpdateSessionTokens(database.DB); err != nil {
		logger.L.Error("Failed to rotate session tokens", "userID", user.ID, "error", err)
		sendJSONError(w, "Failed to refresh token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&authResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    session.ExpiresAt,
		User:         user,
	})
}

func (h *UserHandler) LogoutUserHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := bearerToken(r)
	if tokenString == "" {
		sendJSONError(w, "Authorization header required", http.StatusUnauthorized)
		return
	}
	if err := model.DeleteSessionByToken(database.DB, tokenString); err != nil {
		logger.L.Error("Failed to delete session on logout", "error", err)
		sendJSONError(w, "Failed to log out", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// bearerToken extracts the token from the Authorization header, with or
// without the "Bearer " prefix.
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return authHeader
}
