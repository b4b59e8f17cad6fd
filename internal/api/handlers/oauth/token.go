package oauth

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/Josh-Mantel/MCP-F1/internal/auth"
	"github.com/Josh-Mantel/MCP-F1/internal/metrics"
	"github.com/Josh-Mantel/MCP-F1/internal/services/oauth"
	"github.com/Josh-Mantel/MCP-F1/pkg/httpext"
)

// HandleToken serves the token endpoint for the authorization_code and
// refresh_token grants. Client credentials may come in the form body or as
// HTTP Basic auth.
func HandleToken(oauthService *oauth.Service, recorder metrics.Recorder, w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpext.JsonErrorWithDetails(w, http.StatusBadRequest, httpext.ErrorResponse{
			Error:            httpext.ErrCodeInvalidRequest,
			ErrorDescription: "request body must be form encoded",
		})
		return
	}

	req := auth.TokenRequest{
		GrantType:    r.PostForm.Get("grant_type"),
		Code:         r.PostForm.Get("code"),
		RedirectURI:  r.PostForm.Get("redirect_uri"),
		RefreshToken: r.PostForm.Get("refresh_token"),
		ClientID:     r.PostForm.Get("client_id"),
		ClientSecret: r.PostForm.Get("client_secret"),
	}

	basicAuth := false
	if id, secret, ok := r.BasicAuth(); ok {
		basicAuth = true
		req.ClientID = unescapeCredential(id)
		req.ClientSecret = unescapeCredential(secret)
	}

	grantLabel := req.GrantType
	if grantLabel == "" {
		grantLabel = "none"
	}

	resp, err := oauthService.Token(req)
	if err != nil {
		status, code := oauth.ErrorStatus(err)
		recorder.RecordTokenRejected(grantLabel, code)

		if basicAuth && errors.Is(err, oauth.ErrInvalidClient) {
			w.Header().Set("WWW-Authenticate", `Basic realm="token"`)
		}

		log.Warn().
			Str("grant_type", req.GrantType).
			Str("client_id", req.ClientID).
			Str("error", code).
			Msg("Token request rejected")
		httpext.JsonErrorWithDetails(w, status, httpext.ErrorResponse{
			Error:            code,
			ErrorDescription: oauth.ErrorDescription(err),
		})
		return
	}

	recorder.RecordTokenIssued(req.GrantType)
	log.Info().
		Str("grant_type", req.GrantType).
		Str("client_id", req.ClientID).
		Msg("Issued access token")

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	httpext.JsonResponse(w, http.StatusOK, resp)
}

// Basic credentials are form-encoded before base64 (RFC 6749 section 2.3.1)
func unescapeCredential(s string) string {
	if unescaped, err := url.QueryUnescape(s); err == nil {
		return unescaped
	}
	return s
}
