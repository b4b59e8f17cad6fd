package stream

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Josh-Mantel/MCP-F1/internal/connections"
	"github.com/Josh-Mantel/MCP-F1/internal/metrics"
	"github.com/Josh-Mantel/MCP-F1/internal/services/f1"
	"github.com/Josh-Mantel/MCP-F1/pkg/httpext"
)

var (
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Bearer auth already guards the route; browsers cannot attach it cross-origin
			return true
		},
	}
)

// Message is one season record on the WebSocket
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// HandleSeasonWebSocket serves GET /f1/ws?year= with the same records as the
// event stream, one text message each, and closes normally afterwards.
func HandleSeasonWebSocket(f1Service *f1.Service, manager *connections.Manager, recorder metrics.Recorder, w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(r)
	if err != nil {
		httpext.JsonErrorWithDetails(w, http.StatusBadRequest, httpext.ErrorResponse{
			Error:            httpext.ErrCodeInvalidRequest,
			ErrorDescription: err.Error(),
		})
		return
	}

	// A hijacked connection's request context outlives the client, so the
	// read pump cancels this one when the peer goes away.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	records, err := f1Service.SeasonStream(ctx, year)
	if err != nil {
		log.Warn().Err(err).Int("year", year).Msg("Season stream could not start")
		writeStartError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	timeouts := manager.GetTimeouts()
	stream := manager.Open(connections.TransportWebSocket, year, clientID(r))
	recorder.RecordStreamStarted(connections.TransportWebSocket)
	defer func() {
		manager.Close(stream.ID)
		recorder.RecordStreamEnded(connections.TransportWebSocket, stream.Events())
		log.Info().
			Str("stream_id", stream.ID).
			Int("year", year).
			Int("events", stream.Events()).
			Msg("WebSocket season stream closed")
	}()

	conn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
	})

	go readPump(conn, cancel)
	go pingLoop(ctx, conn, timeouts)

	log.Info().
		Str("stream_id", stream.ID).
		Str("client_id", stream.ClientID).
		Int("year", year).
		Msg("WebSocket season stream opened")

	for event, err := range records {
		if err != nil {
			log.Error().Err(err).Str("stream_id", stream.ID).Msg("Season stream failed")
			event = f1.ErrorEvent(year, err)
		}

		conn.SetWriteDeadline(time.Now().Add(timeouts.WriteWait))
		if err := conn.WriteJSON(Message{Event: event.Name, Data: event.Data}); err != nil {
			log.Debug().Err(err).Str("stream_id", stream.ID).Msg("Client went away")
			return
		}
		stream.RecordEvent()
	}

	if ctx.Err() != nil {
		return
	}
	deadline := time.Now().Add(timeouts.WriteWait)
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stream completed"), deadline)
}

// readPump drains client frames so pongs and close frames are processed
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("Unexpected WebSocket closure")
			}
			return
		}
	}
}

func pingLoop(ctx context.Context, conn *websocket.Conn, timeouts connections.TimeoutConfig) {
	ticker := time.NewTicker(timeouts.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(timeouts.WriteWait)
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, deadline); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
