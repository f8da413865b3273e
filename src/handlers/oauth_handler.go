package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/username/lotfolio/backend/src/config"
	"github.com/username/lotfolio/backend/src/database"
	"github.com/username/lotfolio/backend/src/logger"
	"github.com/username/lotfolio/backend/src/model"
)

var googleOauthConfig *oauth2.Config

func InitializeGoogleOAuthConfig() {
	googleOauthConfig = &oauth2.Config{
		RedirectURL:  config.Cfg.GoogleRedirectURL,
		ClientID:     config.Cfg.GoogleClientID,
		ClientSecret: config.Cfg.GoogleClientSecret,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}
}

func (h *UserHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	authURL := googleOauthConfig.AuthCodeURL(config.Cfg.OAuthStateString)
	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

func (h *UserHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("state") != config.Cfg.OAuthStateString {
		logger.L.Warn("Invalid OAuth state from Google callback")
		h.redirectWithError(w, r, "invalid_state")
		return
	}

	code := r.FormValue("code")
	token, err := googleOauthConfig.Exchange(context.Background(), code)
	if err != nil {
		logger.L.Error("Failed to exchange code for token", "error", err)
		h.redirectWithError(w, r, "token_exchange_failed")
		return
	}

	response, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + url.QueryEscape(token.AccessToken))
	if err != nil {
		logger.L.Error("Failed to get user info from Google", "error", err)
		h.redirectWithError(w, r, "userinfo_failed")
		return
	}
	defer response.Body.Close()

	contents, err := io.ReadAll(response.Body)
	if err != nil {
		logger.L.Error("Failed to read user info response body", "error", err)
		h.redirectWithError(w, r, "userinfo_read_failed")
		return
	}

	var googleUser struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Verified bool   `json:"verified_email"`
		ID       string `json:"id"`
	}
	if err := json.Unmarshal(contents, &googleUser); err != nil {
		logger.L.Error("Failed to unmarshal Google user info", "error", err)
		h.redirectWithError(w, r, "userinfo_parse_failed")
		return
	}

	if !googleUser.Verified {
		h.redirectWithError(w, r, "email_not_verified_by_google")
		return
	}

	user, err := model.GetUserByEmail(database.DB, googleUser.Email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.L.Error("Failed to look up user for OAuth login", "error", err)
			h.redirectWithError(w, r, "login_failed")
			return
		}
		// First sign-in with this Google account; provision a user.
		username := strings.TrimSpace(googleUser.Name)
		if username == "" {
			username = googleUser.Email
		}
		user = &model.User{
			Username:     username,
			Email:        googleUser.Email,
			Password:     "",
			AuthProvider: "google",
		}
		if err := user.CreateUser(database.DB); err != nil {
			logger.L.Error("Failed to create user from Google profile", "email", googleUser.Email, "error", err)
			h.redirectWithError(w, r, "registration_failed")
			return
		}
		logger.L.Info("User provisioned via Google OAuth", "userID", user.ID)
	}

	resp, err := h.createSessionForUser(user)
	if err != nil {
		logger.L.Error("Failed to create session after OAuth login", "userID", user.ID, "error", err)
		h.redirectWithError(w, r, "session_failed")
		return
	}

	redirectURL := config.Cfg.FrontendBaseURL + "/auth/callback" +
		"?access_token=" + url.QueryEscape(resp.AccessToken) +
		"&refresh_token=" + url.QueryEscape(resp.RefreshToken)
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}

func (h *UserHandler) redirectWithError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, config.Cfg.FrontendBaseURL+"/signin?error="+url.QueryEscape(code), http.StatusTemporaryRedirect)
}
