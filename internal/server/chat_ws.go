package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format, mirroring the
// request/response chat endpoint.
type wsRequest struct {
	Text         string   `json:"text"`
	ContextFiles []string `json:"context_files,omitempty"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type     string   `json:"type"` // "response" or "error"
	Response string   `json:"response,omitempty"`
	Sources  []string `json:"sources,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// handleChatWS answers chat questions over a persistent WebSocket
// connection, one question per frame.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendWSError(conn, "invalid message format")
			continue
		}
		if strings.TrimSpace(req.Text) == "" {
			s.sendWSError(conn, "text is required")
			continue
		}

		answer, err := s.rag.Answer(r.Context(), req.Text, req.ContextFiles)
		if err != nil {
			s.sendWSError(conn, "failed to generate answer: "+err.Error())
			continue
		}

		s.sendWS(conn, wsResponse{
			Type:     "response",
			Response: answer.Response,
			Sources:  answer.Sources,
		})
	}
}

func (s *Server) sendWS(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}

func (s *Server) sendWSError(conn *websocket.Conn, message string) {
	s.sendWS(conn, wsResponse{Type: "error", Error: message})
}
