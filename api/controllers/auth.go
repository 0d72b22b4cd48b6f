package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/webyarden/webyarden-backend/api/middleware"
	"github.com/webyarden/webyarden-backend/api/responses"
	"github.com/webyarden/webyarden-backend/api/validators"
	"github.com/webyarden/webyarden-backend/internal/auth"
	pkgerrors "github.com/webyarden/webyarden-backend/pkg/errors"
	"github.com/webyarden/webyarden-backend/pkg/logger"
)

// AccessTokenHeader mirrors the freshly minted access token so the site can
// pick it up without parsing the body.
const AccessTokenHeader = "X-WY-Token"

var errMissingCredentials = pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")

// issueTokens decodes a request of type T, hands it to issue and answers with
// the token pair.
func issueTokens[T any](logg *logger.Logger, status int, issue func(context.Context, T) (*auth.TokenResponse, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body T
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := issue(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.Header().Set(AccessTokenHeader, result.AccessToken)
		responses.WriteSuccessStatus(w, status, result)
	}
}

func unavailable(logg *logger.Logger, what string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, what+" unavailable"))
	}
}

// AuthLogin exchanges email and password for a token pair.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "auth service")
	}
	return issueTokens(logg, http.StatusOK, svc.Login)
}

// AuthRegister creates an account and signs it in.
func AuthRegister(svc auth.RegisterService, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "register service")
	}
	return issueTokens(logg, http.StatusCreated, svc.Register)
}

// AuthRefresh rotates the refresh token. The possibly expired access token is
// read from the Authorization header.
func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.BearerToken(r)
		if token == "" {
			responses.WriteError(r.Context(), logg, w, errMissingCredentials)
			return
		}
		refresh := func(ctx context.Context, body auth.RefreshRequest) (*auth.TokenResponse, error) {
			return svc.Refresh(ctx, token, body)
		}
		issueTokens(logg, http.StatusOK, refresh).ServeHTTP(w, r)
	}
}

// AuthLogout revokes the refresh session tied to the presented access token.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.BearerToken(r)
		if token == "" {
			responses.WriteError(r.Context(), logg, w, errMissingCredentials)
			return
		}
		if err := svc.Logout(r.Context(), token); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// AuthMe returns the signed-in account.
func AuthMe(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity"))
			return
		}
		user, err := svc.Me(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}
