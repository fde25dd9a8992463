// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cowking/engine"
	"cowking/internal/game"
	"cowking/internal/models"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const writeTimeout = 5 * time.Second

// Server accepts WebSocket connections and bridges them to a single match.
// One Server owns one CowGame; a lobby layer would multiplex several.
type Server struct {
	Game *game.CowGame
	log  *logrus.Entry
}

// New wires a Server around a fresh match with the given rules. The match
// starts automatically once every human seat is filled.
func New(rules engine.Rules) *Server {
	g := game.NewCowGame(rules)
	s := &Server{
		Game: g,
		log:  logrus.WithField("match", g.ID.String()),
	}
	g.BroadcastFn = s.broadcast
	g.BroadcastToPlayerFn = s.broadcastToPlayer
	return s
}

// Handler returns the HTTP routes for this match.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// handleWS upgrades the connection, seats the player, and runs their read
// loop until the socket closes.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		http.Error(w, "username query parameter required", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // origin checks belong to the proxy in front
	})
	if err != nil {
		s.log.Warnf("websocket accept failed: %v", err)
		return
	}

	playerID := uuid.New()
	if idParam := r.URL.Query().Get("playerId"); idParam != "" {
		if parsed, perr := uuid.Parse(idParam); perr == nil {
			playerID = parsed // reconnect path keeps the original identity
		}
	}
	player := &models.Player{
		ID:        playerID,
		User:      &models.User{ID: playerID, Username: username},
		Conn:      conn,
		Connected: true,
	}

	g := s.Game
	g.Mu.Lock()
	if g.Started {
		g.HandleReconnect(playerID, conn)
	} else {
		g.AddPlayer(player)
		if uint8(len(g.Players)) == g.Rules.HumanCount {
			g.Mu.Unlock()
			if err := g.Start(); err != nil {
				s.log.Errorf("starting match: %v", err)
			}
			g.Mu.Lock()
		}
	}
	g.Mu.Unlock()

	s.log.Infof("player %s (%s) connected", playerID, username)
	s.readLoop(r.Context(), conn, playerID)
}

// readLoop decodes intents off the socket and feeds them to the match.
func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, playerID uuid.UUID) {
	defer func() {
		conn.Close(websocket.StatusNormalClosure, "")
		s.Game.Mu.Lock()
		s.Game.HandleDisconnect(playerID)
		s.Game.Mu.Unlock()
		s.log.Infof("player %s disconnected", playerID)
	}()

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if msgType != websocket.MessageText {
			continue
		}
		var action models.GameAction
		if err := json.Unmarshal(data, &action); err != nil {
			s.log.Debugf("player %s sent malformed action: %v", playerID, err)
			continue
		}
		s.Game.Mu.Lock()
		s.Game.HandlePlayerAction(playerID, action)
		s.Game.Mu.Unlock()
	}
}

// broadcast sends an event to every connected human socket.
func (s *Server) broadcast(ev game.GameEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.log.Errorf("marshal event %s: %v", ev.Type, err)
		return
	}
	for _, p := range s.Game.Players {
		if p.Connected && p.Conn != nil {
			s.write(p.Conn, data)
		}
	}
}

// broadcastToPlayer sends an event to a single player's socket.
func (s *Server) broadcastToPlayer(playerID uuid.UUID, ev game.GameEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.log.Errorf("marshal event %s: %v", ev.Type, err)
		return
	}
	for _, p := range s.Game.Players {
		if p.ID == playerID && p.Connected && p.Conn != nil {
			s.write(p.Conn, data)
			return
		}
	}
}

func (s *Server) write(conn *websocket.Conn, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		s.log.Debugf("write failed: %v", err)
	}
}
