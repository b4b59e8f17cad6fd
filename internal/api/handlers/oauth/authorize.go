package oauth

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Josh-Mantel/MCP-F1/internal/auth"
	"github.com/Josh-Mantel/MCP-F1/internal/services/oauth"
	"github.com/Josh-Mantel/MCP-F1/pkg/httpext"
)

// HandleAuthorize issues an authorization code and redirects back to the
// client. Failures involving an untrusted client or redirect URI are answered
// in the response body; everything else goes back to the redirect URI.
func HandleAuthorize(oauthService *oauth.Service, w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := auth.AuthorizeRequest{
		ResponseType: query.Get("response_type"),
		ClientID:     query.Get("client_id"),
		RedirectURI:  query.Get("redirect_uri"),
		Scope:        query.Get("scope"),
		State:        query.Get("state"),
	}

	redirect, err := oauthService.Authorize(req)
	if err != nil {
		var redirectErr *oauth.RedirectError
		if errors.As(err, &redirectErr) {
			if target, urlErr := redirectErr.RedirectURL(); urlErr == nil {
				log.Info().
					Str("client_id", req.ClientID).
					Str("error", redirectErr.Err.Error()).
					Msg("Authorization request rejected")
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
		}

		status, code := oauth.ErrorStatus(err)
		httpext.JsonErrorWithDetails(w, status, httpext.ErrorResponse{
			Error:            code,
			ErrorDescription: oauth.ErrorDescription(err),
		})
		return
	}

	http.Redirect(w, r, redirect, http.StatusFound)
}
