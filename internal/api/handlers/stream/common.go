// Package stream serves the season record sequence over server-sent events
// and WebSocket.
package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Josh-Mantel/MCP-F1/internal/api/middleware"
	"github.com/Josh-Mantel/MCP-F1/internal/services/f1"
	"github.com/Josh-Mantel/MCP-F1/pkg/httpext"
)

const (
	minYear = 1950
	maxYear = 2030
)

func parseYear(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return 0, errors.New("year is required")
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("year must be an integer, got %q", raw)
	}
	if year < minYear || year > maxYear {
		return 0, fmt.Errorf("year must be between %d and %d", minYear, maxYear)
	}
	return year, nil
}

// writeStartError answers a stream that could not start. It reports false
// when the client has already gone and nothing was written.
func writeStartError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, f1.ErrDataUnavailable):
		httpext.JsonErrorWithDetails(w, http.StatusNotFound, httpext.ErrorResponse{
			Error:            httpext.ErrCodeDataUnavailable,
			ErrorDescription: err.Error(),
		})
	case errors.Is(err, f1.ErrUpstream), errors.Is(err, context.DeadlineExceeded):
		httpext.JsonErrorWithDetails(w, http.StatusBadGateway, httpext.ErrorResponse{
			Error:            httpext.ErrCodeUpstream,
			ErrorDescription: err.Error(),
		})
	default:
		httpext.JsonError(w, httpext.ErrCodeServerError, http.StatusInternalServerError)
	}
	return true
}

func clientID(r *http.Request) string {
	if validation := middleware.GetTokenValidation(r); validation != nil {
		return validation.ClientID
	}
	return ""
}
