package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Josh-Mantel/MCP-F1/internal/connections"
	"github.com/Josh-Mantel/MCP-F1/internal/metrics"
	"github.com/Josh-Mantel/MCP-F1/internal/services/f1"
	"github.com/Josh-Mantel/MCP-F1/pkg/httpext"
)

// HandleSeasonStream serves GET /f1/stream?year= as server-sent events. The
// status line is only committed once the season schedule is known, so a
// missing season is still a plain 404.
func HandleSeasonStream(f1Service *f1.Service, manager *connections.Manager, recorder metrics.Recorder, w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(r)
	if err != nil {
		httpext.JsonErrorWithDetails(w, http.StatusBadRequest, httpext.ErrorResponse{
			Error:            httpext.ErrCodeInvalidRequest,
			ErrorDescription: err.Error(),
		})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error().Msg("Response writer does not support flushing")
		httpext.JsonError(w, httpext.ErrCodeServerError, http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	records, err := f1Service.SeasonStream(ctx, year)
	if err != nil {
		log.Warn().Err(err).Int("year", year).Msg("Season stream could not start")
		writeStartError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	stream := manager.Open(connections.TransportSSE, year, clientID(r))
	recorder.RecordStreamStarted(connections.TransportSSE)
	defer func() {
		manager.Close(stream.ID)
		recorder.RecordStreamEnded(connections.TransportSSE, stream.Events())
		log.Info().
			Str("stream_id", stream.ID).
			Int("year", year).
			Int("events", stream.Events()).
			Msg("Season stream closed")
	}()

	log.Info().
		Str("stream_id", stream.ID).
		Str("client_id", stream.ClientID).
		Int("year", year).
		Msg("Season stream opened")

	for event, err := range records {
		if err != nil {
			log.Error().Err(err).Str("stream_id", stream.ID).Msg("Season stream failed")
			event = f1.ErrorEvent(year, err)
		}

		if writeErr := writeEvent(w, event); writeErr != nil {
			log.Debug().Err(writeErr).Str("stream_id", stream.ID).Msg("Client went away")
			return
		}
		flusher.Flush()
		stream.RecordEvent()
	}
}

// writeEvent frames one record as a server-sent event
func writeEvent(w io.Writer, event f1.StreamEvent) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Name, err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, data)
	return err
}
