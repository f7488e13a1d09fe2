package api

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/npezzotti/roomrelay/internal/server"
	"github.com/npezzotti/roomrelay/internal/types"
)

func (s *RelayApp) writeJson(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("json encode")
	}
}

func (s *RelayApp) healthCheck(w http.ResponseWriter, r *http.Request) {
	s.writeJson(w, http.StatusOK, map[string]string{"status": "ok"})
}

func roomIdParam(r *http.Request) (int, bool) {
	roomId, err := strconv.Atoi(chi.URLParam(r, "roomId"))
	if err != nil || !types.ValidRoomId(roomId) {
		return 0, false
	}
	return roomId, true
}

func (s *RelayApp) getMessages(w http.ResponseWriter, r *http.Request) {
	roomId, ok := roomIdParam(r)
	if !ok {
		errResp := NewInvalidRoomError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, s.cs.History(roomId))
}

func (s *RelayApp) getTypists(w http.ResponseWriter, r *http.Request) {
	roomId, ok := roomIdParam(r)
	if !ok {
		errResp := NewInvalidRoomError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, s.cs.CurrentTypists(roomId))
}

func (s *RelayApp) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(s.allowedOrigins, "*") {
		return true
	}

	return slices.Contains(s.allowedOrigins, origin)
}

func (s *RelayApp) serveWs(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: s.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("error upgrading connection")
		return
	}

	client := server.NewClient(username, conn, s.cs)
	s.log.Info().
		Str("session_id", client.Session().Id()).
		Str("username", username).
		Msg("client connected")

	go client.Write()
	go client.Read()
}
