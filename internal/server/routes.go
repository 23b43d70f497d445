package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Vatsa10/Zomatooo/internal/hooks"
)

// chatRequest is the body of POST /chat.
type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

// chatResponse is the reply envelope shared by /chat and /ws.
type chatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"sessionId"`
	State     string `json:"state"`
	ToolUsed  string `json:"toolUsed,omitempty"`
	VoiceFile string `json:"voiceFile,omitempty"`
	Ended     bool   `json:"ended,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}

	resp := s.runTurn(r, req.SessionID, req.Message)
	writeJSON(w, http.StatusOK, resp)
}

// runTurn invokes the loop and renders the shared response envelope.
func (s *Server) runTurn(r *http.Request, sessionID, message string) chatResponse {
	ctx := r.Context()

	if s.hooks != nil {
		s.hooks.Emit(ctx, hooks.EventTurnReceived, map[string]any{
			"sessionId": sessionID,
			"message":   message,
		})
	}

	result := s.loop.Turn(ctx, sessionID, message)

	resp := chatResponse{
		Reply:     result.Reply,
		SessionID: result.SessionID,
		State:     string(result.State),
		ToolUsed:  result.ToolUsed,
		Ended:     result.Ended,
	}

	if s.speech != nil && result.Reply != "" {
		file, err := s.speech.Synthesize(ctx, result.Reply)
		if err != nil {
			s.log.Warn().Err(err).Msg("voice rendering failed")
		} else {
			resp.VoiceFile = file
		}
	}

	if s.hooks != nil {
		s.hooks.Emit(ctx, hooks.EventReplySending, map[string]any{
			"sessionId": result.SessionID,
			"reply":     result.Reply,
		})
		if result.Ended {
			s.hooks.Emit(ctx, hooks.EventSessionEnd, map[string]any{"sessionId": result.SessionID})
		}
	}

	return resp
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	uptime := ""
	if !s.startedAt.IsZero() {
		uptime = time.Since(s.startedAt).Round(time.Second).String()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": uptime,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.oauth.LoginURL(), http.StatusTemporaryRedirect)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing code or state"})
		return
	}
	if err := s.oauth.HandleCallback(r.Context(), code, state); err != nil {
		s.log.Warn().Err(err).Msg("oauth callback failed")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Authorization successful! You can close this tab."})
}

// wsMessage is an inbound WebSocket chat frame.
type wsMessage struct {
	Message string `json:"message"`
}

// handleWebSocket runs a chat session over one WebSocket connection.
// Each connection gets its own session unless the client supplies one
// via the sessionId query parameter.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(64 * 1024)

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	s.log.Debug().Str("session_id", sessionID).Msg("websocket session opened")

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug().Err(err).Str("session_id", sessionID).Msg("websocket closed unexpectedly")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		// Accept either a JSON frame or a bare utterance.
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Message == "" {
			msg.Message = string(data)
		}
		if strings.TrimSpace(msg.Message) == "" {
			continue
		}

		resp := s.runTurn(r, sessionID, msg.Message)
		if err := conn.WriteJSON(resp); err != nil {
			s.log.Warn().Err(err).Str("session_id", sessionID).Msg("websocket write failed")
			return
		}
		if resp.Ended {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
			return
		}
	}
}
