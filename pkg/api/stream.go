package api

import (
	"net/http"

	"github.com/cardgrid/scramble/pkg/boardfile"
	"github.com/cardgrid/scramble/pkg/log"
	"github.com/google/uuid"
	"nhooyr.io/websocket"
)

// handleStream upgrades to a WebSocket and pushes the rendered board
// state to the client: once on connect, then again after every
// qualifying change, until the client disconnects.
func (s *APIServer) handleStream(w http.ResponseWriter, r *http.Request) {
	player, err := playerID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // board state is public to all players
	})
	if err != nil {
		log.Error("Failed to upgrade to WebSocket: %v", err)
		return
	}
	defer conn.CloseNow()

	clientID := uuid.NewString()
	log.Debug("Stream client %s connected for player %s", clientID, player)

	ctx := r.Context()
	since := s.board.Version()
	for {
		state := boardfile.Render(s.board.Look(player))
		if err := conn.Write(ctx, websocket.MessageText, []byte(state)); err != nil {
			log.Debug("Stream client %s write failed: %v", clientID, err)
			return
		}

		version, err := s.board.AwaitChange(ctx, since)
		if err != nil {
			// Client disconnected or server shutting down.
			log.Debug("Stream client %s done: %v", clientID, err)
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
		since = version
	}
}
