// internal/game/game.go
package game

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"cowking/engine"
	"cowking/internal/bot"
	"cowking/internal/cache"
	"cowking/internal/database"
	"cowking/internal/models"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// OnMatchEndFunc defines the signature for a callback function executed when
// a match ends. It receives the lobby ID, the winner's ID (can be Nil on a
// tie), and the final scores.
type OnMatchEndFunc func(lobbyID uuid.UUID, winner uuid.UUID, scores map[uuid.UUID]int)

// GameEventType represents the type of a match-related event broadcast via
// WebSockets.
type GameEventType string

// Constants defining the various GameEvent types used for WebSocket
// communication.
const (
	EventPlayerReady      GameEventType = "player_ready"       // Public: a seat locked in a card (card id hidden).
	EventPrivateSelectAck GameEventType = "private_select_ack" // Private: selection accepted, echoes the card.
	EventBatchReveal      GameEventType = "batch_reveal"       // Public: the sorted batch for this turn.
	EventCardPlaced       GameEventType = "card_placed"        // Public: outcome of resolution steps.
	EventRowChoicePrompt  GameEventType = "row_choice_prompt"  // Public: a seat must pick a row to take.
	EventRoundEnd         GameEventType = "round_end"          // Public: round scored, vote window open.
	EventMatchEnd         GameEventType = "match_end"          // Public: match over, includes results.
	EventPrivateSyncState GameEventType = "private_sync_state" // Private: full state sync for a player.
	EventPrivateError     GameEventType = "private_error"      // Private: an intent was rejected.
)

// EventSeat identifies a seat within a GameEvent payload.
type EventSeat struct {
	Seat     uint8     `json:"seat"`
	PlayerID uuid.UUID `json:"playerId"`
}

// GameEvent is the standard structure for broadcasting match state changes
// and actions.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	Seat    *EventSeat             `json:"seat,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	State   *ObfMatchState         `json:"state,omitempty"` // Full obfuscated state for sync events.
}

// CowGame represents the state and logic for a single match of Cow King. It
// wraps the authoritative engine state with seat mapping, timers, bot
// driving, and event broadcasting.
type CowGame struct {
	ID      uuid.UUID // Unique identifier for this match instance.
	LobbyID uuid.UUID // ID of the lobby that created this match.

	Rules engine.Rules // Engine configuration for the match.

	Players []*models.Player // Humans first, then fill bots (added at Start).

	// Engine integration — authoritative match state.
	Match        engine.MatchState
	PlayerToSeat map[uuid.UUID]uint8
	SeatToPlayer [engine.MaxPlayers]uuid.UUID
	brains       [engine.MaxPlayers]bot.Brain

	BotLevel bot.BotLevel // Strategy used for fill bots.

	// Timing.
	TurnDuration time.Duration // Selection / row-choice deadline; 0 disables.
	RevealDelay  time.Duration // Presentation pause between reveal and resolution.
	turnTimer    *time.Timer
	revealTimer  *time.Timer

	actionIndex int // Sequential index for logging actions via historian.

	lastFiredPlacement engine.LastPlacement // dedupes card_placed broadcasts

	Started  bool
	GameOver bool

	lastSeen map[uuid.UUID]time.Time
	Mu       sync.Mutex // Mutex protecting concurrent access to match state.

	// Communication callbacks.
	BroadcastFn         func(ev GameEvent)
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent)
	OnMatchEnd          OnMatchEndFunc
}

// NewCowGame creates a new match instance with default settings. The engine
// is initialized during Start.
func NewCowGame(rules engine.Rules) *CowGame {
	id, _ := uuid.NewRandom()
	g := &CowGame{
		ID:           id,
		Rules:        rules,
		PlayerToSeat: make(map[uuid.UUID]uint8),
		lastSeen:     make(map[uuid.UUID]time.Time),
		TurnDuration: 30 * time.Second,
		RevealDelay:  1500 * time.Millisecond,
		BotLevel:     bot.BotLevelGreedy,
	}
	if rules.TurnTimerSec > 0 {
		g.TurnDuration = time.Duration(rules.TurnTimerSec) * time.Second
	}
	return g
}

// AddPlayer adds a human player to the match if not started, or marks them
// as reconnected. Assumes lock is held by caller.
func (g *CowGame) AddPlayer(p *models.Player) {
	for i, pl := range g.Players {
		if pl.ID == p.ID {
			g.Players[i].Conn = p.Conn
			g.Players[i].Connected = true
			g.Players[i].User = p.User
			g.lastSeen[p.ID] = time.Now()
			log.Printf("Match %s: Player %s (%s) reconnected.", g.ID, p.ID, p.User.Username)
			g.logAction(p.ID, "player_add", map[string]interface{}{"reconnect": true, "username": p.User.Username})
			return
		}
	}
	if g.Started {
		log.Printf("Match %s: Player %s cannot be added because the match has started.", g.ID, p.ID)
		if p.Conn != nil {
			p.Conn.Close(websocket.StatusPolicyViolation, "Match already in progress.")
		}
		return
	}
	if uint8(len(g.Players)) >= g.Rules.HumanCount {
		log.Printf("Match %s: Player %s rejected, all %d human seats taken.", g.ID, p.ID, g.Rules.HumanCount)
		if p.Conn != nil {
			p.Conn.Close(websocket.StatusPolicyViolation, "Match is full.")
		}
		return
	}
	g.Players = append(g.Players, p)
	g.lastSeen[p.ID] = time.Now()
	log.Printf("Match %s: Player %s (%s) added.", g.ID, p.ID, p.User.Username)
	g.logAction(p.ID, "player_add", map[string]interface{}{"reconnect": false, "username": p.User.Username})
}

// Start seats the joined humans, fills the remaining seats with bots,
// initializes the engine, deals the first round, and opens play.
func (g *CowGame) Start() error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Started || g.GameOver {
		return fmt.Errorf("match %s already started", g.ID)
	}
	if uint8(len(g.Players)) != g.Rules.HumanCount {
		return fmt.Errorf("match %s needs %d human players, has %d", g.ID, g.Rules.HumanCount, len(g.Players))
	}

	// Humans take the low seats, matching the engine's seat layout.
	for i, p := range g.Players {
		seat := uint8(i)
		p.Seat = seat
		g.PlayerToSeat[p.ID] = seat
		g.SeatToPlayer[seat] = p.ID
	}

	// Fill the remaining seats with bots.
	for seat := g.Rules.HumanCount; seat < g.Rules.NumPlayers; seat++ {
		botID, _ := uuid.NewRandom()
		botPlayer := &models.Player{
			ID:        botID,
			User:      &models.User{ID: botID, Username: fmt.Sprintf("Bot-%d", seat)},
			Seat:      seat,
			IsBot:     true,
			Connected: true,
		}
		g.Players = append(g.Players, botPlayer)
		g.PlayerToSeat[botID] = seat
		g.SeatToPlayer[seat] = botID

		brain, err := bot.NewBrain(g.BotLevel, int64(seat)+time.Now().UnixNano())
		if err != nil {
			return fmt.Errorf("match %s: creating bot for seat %d: %w", g.ID, seat, err)
		}
		g.brains[seat] = brain
	}

	seed := uint64(time.Now().UnixNano())
	m, err := engine.NewMatch(seed, g.Rules)
	if err != nil {
		return fmt.Errorf("match %s: engine init: %w", g.ID, err)
	}
	g.Match = m
	if err := g.Match.Start(); err != nil {
		return fmt.Errorf("match %s: engine start: %w", g.ID, err)
	}
	g.Started = true
	log.Printf("Match %s: Started with %d humans, %d bots.", g.ID, g.Rules.HumanCount, g.Rules.NumPlayers-g.Rules.HumanCount)
	g.logAction(uuid.Nil, "match_start", map[string]interface{}{"players": g.Rules.NumPlayers, "humans": g.Rules.HumanCount})

	g.persistInitialMatchState()
	g.advance()
	return nil
}

// HandlePlayerAction routes incoming player intents (select, confirm, choose
// row, vote). Validates the player and seat before applying the intent to
// the engine. Assumes lock is held by the caller.
func (g *CowGame) HandlePlayerAction(playerID uuid.UUID, action models.GameAction) {
	if g.GameOver {
		log.Printf("Match %s: Action %s from %s ignored (match over).", g.ID, action.ActionType, playerID)
		return
	}
	if !g.Started {
		log.Printf("Match %s: Action %s from %s ignored (match not started).", g.ID, action.ActionType, playerID)
		return
	}
	player := g.getPlayerByID(playerID)
	if player == nil || !player.Connected {
		log.Printf("Match %s: Action %s from non-existent/disconnected player %s ignored.", g.ID, action.ActionType, playerID)
		return
	}
	seat, ok := g.PlayerToSeat[playerID]
	if !ok {
		log.Printf("Match %s: Action %s from %s ignored (no seat).", g.ID, action.ActionType, playerID)
		return
	}
	g.lastSeen[playerID] = time.Now()

	var err error
	switch action.ActionType {
	case "action_select_card":
		card, perr := payloadCard(action.Payload)
		if perr != nil {
			err = perr
			break
		}
		if err = g.Match.SelectCard(seat, card); err == nil {
			g.logAction(playerID, "action_select_card", nil) // card id withheld from history until reveal
			g.fireEventToPlayer(playerID, GameEvent{
				Type:    EventPrivateSelectAck,
				Payload: map[string]interface{}{"card": int(card)},
			})
		}
	case "action_confirm_ready":
		if err = g.Match.ConfirmReady(seat); err == nil {
			g.logAction(playerID, "action_confirm_ready", nil)
			g.fireEvent(GameEvent{
				Type: EventPlayerReady,
				Seat: &EventSeat{Seat: seat, PlayerID: playerID},
			})
		}
	case "action_choose_row":
		row, perr := payloadRow(action.Payload)
		if perr != nil {
			err = perr
			break
		}
		if err = g.Match.ChooseRow(seat, row); err == nil {
			g.logAction(playerID, "action_choose_row", map[string]interface{}{"row": int(row)})
		}
	case "action_vote":
		cont, cok := action.Payload["continue"].(bool)
		if !cok {
			err = fmt.Errorf("vote payload missing 'continue' flag")
			break
		}
		if err = g.Match.Vote(seat, cont); err == nil {
			g.logAction(playerID, "action_vote", map[string]interface{}{"continue": cont})
		}
	default:
		err = fmt.Errorf("unknown action type %q", action.ActionType)
	}

	if err != nil {
		log.Printf("Match %s: Action %s from %s rejected: %v", g.ID, action.ActionType, playerID, err)
		g.fireEventToPlayer(playerID, GameEvent{
			Type:    EventPrivateError,
			Payload: map[string]interface{}{"message": err.Error()},
		})
		return
	}
	g.advance()
}

// advance reacts to the engine phase after any successful intent, driving
// bots and timers until the match is waiting on a human or a timer. Assumes
// lock is held by caller.
func (g *CowGame) advance() {
	for {
		switch g.Match.Phase {
		case engine.PhaseChoice:
			g.firePlacementEvent()
			g.driveBotSelections()
			if g.Match.Phase != engine.PhaseChoice {
				continue // last bot selection triggered the reveal
			}
			g.broadcastSyncStateToAll()
			g.scheduleTurnTimer()
			return

		case engine.PhaseReveal:
			g.fireBatchReveal()
			g.scheduleRevealTimer()
			return

		case engine.PhaseChoosingRow:
			g.firePlacementEvent()
			activeSeat := uint8(g.Match.ActiveSeat)
			g.fireEvent(GameEvent{
				Type: EventRowChoicePrompt,
				Seat: &EventSeat{Seat: activeSeat, PlayerID: g.SeatToPlayer[activeSeat]},
			})
			if brain := g.brains[activeSeat]; brain != nil {
				row := brain.ChooseRow(g.Match.ActiveRows())
				if err := g.Match.ChooseRow(activeSeat, row); err != nil {
					log.Printf("Match %s: bot row choice failed: %v", g.ID, err)
					return
				}
				g.logAction(g.SeatToPlayer[activeSeat], "action_choose_row", map[string]interface{}{"row": int(row), "bot": true})
				continue
			}
			g.scheduleTurnTimer()
			return

		case engine.PhaseVoting:
			g.firePlacementEvent()
			g.fireRoundEnd()
			g.broadcastSyncStateToAll()
			g.scheduleTurnTimer()
			return

		case engine.PhaseGameEnd:
			g.EndMatch()
			return

		default:
			// Dealing/resolving are transient inside engine calls.
			return
		}
	}
}

// driveBotSelections has every bot without a pending selection pick a card.
// Assumes lock is held by caller.
func (g *CowGame) driveBotSelections() {
	for seat := uint8(0); seat < g.Rules.NumPlayers; seat++ {
		brain := g.brains[seat]
		if brain == nil || g.Match.Players[seat].Selected != engine.NoCard {
			continue
		}
		card := brain.ChooseCard(g.Match.HandOf(seat), g.Match.ActiveRows(), g.Rules.MaxRowLen)
		if err := g.Match.SelectCard(seat, card); err != nil {
			log.Printf("Match %s: bot selection failed for seat %d: %v", g.ID, seat, err)
			continue
		}
		if g.Match.Phase != engine.PhaseChoice {
			return // reveal fired, remaining seats already selected
		}
	}
}

// fireBatchReveal broadcasts the sorted batch. Assumes lock is held.
func (g *CowGame) fireBatchReveal() {
	batch := make([]map[string]interface{}, g.Match.BatchLen)
	for i := uint8(0); i < g.Match.BatchLen; i++ {
		tc := g.Match.Batch[i]
		batch[i] = map[string]interface{}{
			"seat": int(tc.Seat),
			"card": int(tc.Card),
		}
	}
	g.fireEvent(GameEvent{
		Type:    EventBatchReveal,
		Payload: map[string]interface{}{"batch": batch, "round": int(g.Match.Round)},
	})
	g.logAction(uuid.Nil, string(EventBatchReveal), map[string]interface{}{"batch": batch})
}

// firePlacementEvent broadcasts the most recent placement outcome, once.
// Card ids are unique within a round, so comparing against the last fired
// placement dedupes repeat calls. Assumes lock is held.
func (g *CowGame) firePlacementEvent() {
	lp := g.Match.LastPlacement
	if lp.Kind == engine.PlacementNone || lp == g.lastFiredPlacement {
		return
	}
	g.lastFiredPlacement = lp
	payload := map[string]interface{}{
		"kind": placementKindString(lp.Kind),
		"card": int(lp.Card),
		"row":  int(lp.Row),
	}
	if lp.TakenLen > 0 {
		taken := make([]int, lp.TakenLen)
		for i := uint8(0); i < lp.TakenLen; i++ {
			taken[i] = int(lp.Taken[i])
		}
		payload["taken"] = taken
		payload["heads"] = int(lp.HeadsTaken)
	}
	g.fireEvent(GameEvent{
		Type:    EventCardPlaced,
		Seat:    &EventSeat{Seat: lp.Seat, PlayerID: g.SeatToPlayer[lp.Seat]},
		Payload: payload,
	})
}

// fireRoundEnd broadcasts the round scores. Assumes lock is held.
func (g *CowGame) fireRoundEnd() {
	scores := make(map[string]interface{}, g.Rules.NumPlayers)
	for seat := uint8(0); seat < g.Rules.NumPlayers; seat++ {
		p := &g.Match.Players[seat]
		var last engine.RoundResult
		if len(p.History) > 0 {
			last = p.History[len(p.History)-1]
		}
		scores[g.SeatToPlayer[seat].String()] = map[string]interface{}{
			"roundScore": int(last.Score),
			"heads":      int(last.Heads),
			"totalScore": int(p.TotalScore),
		}
	}
	g.fireEvent(GameEvent{
		Type:    EventRoundEnd,
		Payload: map[string]interface{}{"round": int(g.Match.Round), "scores": scores},
	})
	g.logAction(uuid.Nil, string(EventRoundEnd), map[string]interface{}{"round": int(g.Match.Round)})
}

// scheduleRevealTimer pauses between the reveal and resolution so clients
// can present the batch. Assumes lock is held.
func (g *CowGame) scheduleRevealTimer() {
	if g.revealTimer != nil {
		g.revealTimer.Stop()
	}
	if g.RevealDelay <= 0 {
		g.resolveAfterReveal()
		return
	}
	g.revealTimer = time.AfterFunc(g.RevealDelay, func() {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		g.resolveAfterReveal()
	})
}

// resolveAfterReveal steps the engine through the batch and reacts to where
// it lands. Assumes lock is held.
func (g *CowGame) resolveAfterReveal() {
	if g.GameOver || g.Match.Phase != engine.PhaseReveal {
		return
	}
	if err := g.Match.BeginResolving(); err != nil {
		log.Printf("Match %s: BeginResolving failed: %v", g.ID, err)
		return
	}
	g.advance()
}

// scheduleTurnTimer (re)arms the forced-default timer for the current wait
// point. Assumes lock is held.
func (g *CowGame) scheduleTurnTimer() {
	if g.turnTimer != nil {
		g.turnTimer.Stop()
		g.turnTimer = nil
	}
	if g.TurnDuration <= 0 || g.GameOver {
		return
	}
	// Voting has no forced default; disconnect handling covers stalled votes.
	if g.Match.Phase == engine.PhaseVoting {
		return
	}
	g.turnTimer = time.AfterFunc(g.TurnDuration, func() {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		g.handleTimeout()
	})
}

// handleTimeout forces engine defaults for whatever the match is waiting on.
// Assumes lock is held.
func (g *CowGame) handleTimeout() {
	if g.GameOver {
		return
	}
	if err := g.Match.ForceTimeout(); err != nil {
		log.Printf("Match %s: ForceTimeout: %v", g.ID, err)
		return
	}
	log.Printf("Match %s: Timed out during %s, defaults applied.", g.ID, g.Match.Phase)
	g.logAction(uuid.Nil, "match_timeout", nil)
	g.broadcastSyncStateToAll()
	g.advance()
}

// HandleDisconnect marks a player as disconnected. The match continues; the
// turn timer supplies their moves. Assumes lock is held by caller.
func (g *CowGame) HandleDisconnect(playerID uuid.UUID) {
	log.Printf("Match %s: Handling disconnect for player %s.", g.ID, playerID)
	g.logAction(playerID, "player_disconnect", nil)

	for i := range g.Players {
		if g.Players[i].ID == playerID {
			if !g.Players[i].Connected {
				return // already handled
			}
			g.Players[i].Connected = false
			g.Players[i].Conn = nil
			break
		}
	}

	// A match with no connected humans left has nobody to play for.
	if g.Started && !g.GameOver && g.countConnectedHumans() == 0 {
		log.Printf("Match %s: No connected humans remain. Ending match.", g.ID)
		g.EndMatch()
		return
	}
	g.broadcastSyncStateToAll()
}

// HandleReconnect marks a player as connected and sends them the current
// state. Assumes lock is held by caller.
func (g *CowGame) HandleReconnect(playerID uuid.UUID, conn *websocket.Conn) {
	log.Printf("Match %s: Handling reconnect for player %s.", g.ID, playerID)

	for i := range g.Players {
		if g.Players[i].ID == playerID {
			g.Players[i].Connected = true
			g.Players[i].Conn = conn
			g.lastSeen[playerID] = time.Now()
			g.logAction(playerID, "player_reconnect", nil)
			g.sendSyncState(playerID)
			g.broadcastSyncStateToAll()
			return
		}
	}

	log.Printf("Match %s: Reconnecting player %s not found.", g.ID, playerID)
	if conn != nil {
		conn.Close(websocket.StatusPolicyViolation, "Match not found or you were removed.")
	}
}

// EndMatch finalizes the match, stops timers, broadcasts results, persists
// the final snapshot, and triggers the OnMatchEnd callback. Assumes lock is
// held by caller.
func (g *CowGame) EndMatch() {
	if g.GameOver {
		return
	}
	g.GameOver = true
	if g.turnTimer != nil {
		g.turnTimer.Stop()
		g.turnTimer = nil
	}
	if g.revealTimer != nil {
		g.revealTimer.Stop()
		g.revealTimer = nil
	}

	scores := make(map[uuid.UUID]int, g.Rules.NumPlayers)
	winner := uuid.Nil
	best := 0
	tied := false
	for seat := uint8(0); seat < g.Rules.NumPlayers; seat++ {
		id := g.SeatToPlayer[seat]
		score := int(g.Match.Players[seat].TotalScore)
		scores[id] = score
		if seat == 0 || score > best {
			winner = id
			best = score
			tied = false
		} else if score == best {
			tied = true
		}
	}
	if tied {
		winner = uuid.Nil
	}

	resultsPayload := map[string]interface{}{
		"scores": map[string]int{},
		"winner": winner.String(),
		"rounds": int(g.Match.Round),
	}
	for id, score := range scores {
		resultsPayload["scores"].(map[string]int)[id.String()] = score
	}
	g.logAction(uuid.Nil, string(EventMatchEnd), resultsPayload)
	g.persistFinalMatchState(scores, winner)

	g.fireEvent(GameEvent{
		Type:    EventMatchEnd,
		Payload: resultsPayload,
	})

	if g.OnMatchEnd != nil {
		g.OnMatchEnd(g.LobbyID, winner, scores)
	}
	log.Printf("Match %s: Ended after %d round(s). Winner: %s. Scores: %v", g.ID, g.Match.Round, winner, scores)
}

// persistInitialMatchState saves the first deal to the database for replay
// and audit. Assumes lock is held by caller.
func (g *CowGame) persistInitialMatchState() {
	type initialState struct {
		Rows    [][]int          `json:"rows"`
		Players map[string][]int `json:"players"`
		Rules   map[string]int   `json:"rules"`
	}

	snap := initialState{
		Rows:    rowsAsInts(g.Match.ActiveRows()),
		Players: make(map[string][]int),
		Rules: map[string]int{
			"numPlayers": int(g.Rules.NumPlayers),
			"handSize":   int(g.Rules.HandSize),
			"rowCount":   int(g.Rules.RowCount),
			"maxRowLen":  int(g.Rules.MaxRowLen),
			"deckSize":   int(g.Rules.DeckSize),
		},
	}
	for seat := uint8(0); seat < g.Rules.NumPlayers; seat++ {
		hand := g.Match.HandOf(seat)
		cards := make([]int, len(hand))
		for i, c := range hand {
			cards[i] = int(c)
		}
		snap.Players[g.SeatToPlayer[seat].String()] = cards
	}

	if database.DB != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.UpsertInitialMatchState(ctx, g.ID, snap); err != nil {
				log.Printf("Error: Match %s: persisting initial state: %v", g.ID, err)
			}
		}()
	}
	g.logAction(uuid.Nil, "match_initial_state_saved", nil)
}

// persistFinalMatchState saves final scores and the winner to the database.
// Assumes lock is held by caller.
func (g *CowGame) persistFinalMatchState(scores map[uuid.UUID]int, winner uuid.UUID) {
	type finalPlayerState struct {
		Score   int   `json:"score"`
		History []int `json:"roundScores"`
	}

	players := make(map[string]finalPlayerState, g.Rules.NumPlayers)
	for seat := uint8(0); seat < g.Rules.NumPlayers; seat++ {
		id := g.SeatToPlayer[seat]
		p := &g.Match.Players[seat]
		history := make([]int, len(p.History))
		for i, rr := range p.History {
			history[i] = int(rr.Score)
		}
		players[id.String()] = finalPlayerState{Score: scores[id], History: history}
	}
	snapshot := map[string]interface{}{
		"players": players,
		"winner":  winner.String(),
		"rounds":  int(g.Match.Round),
	}

	if database.DB != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.StoreFinalMatchState(ctx, g.ID, snapshot); err != nil {
				log.Printf("Error: Match %s: persisting final state: %v", g.ID, err)
			}
		}()
	}
}

// fireEvent broadcasts an event to all connected players via the
// BroadcastFn callback. Assumes lock is held by caller.
func (g *CowGame) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	} else {
		log.Printf("Warning: Match %s: BroadcastFn is nil, cannot broadcast event type %s.", g.ID, ev.Type)
	}
}

// fireEventToPlayer sends an event to a specific player via the
// BroadcastToPlayerFn callback. Bots and disconnected players are skipped.
// Assumes lock is held by caller.
func (g *CowGame) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if g.BroadcastToPlayerFn == nil {
		log.Printf("Warning: Match %s: BroadcastToPlayerFn is nil, cannot send private event type %s.", g.ID, ev.Type)
		return
	}
	target := g.getPlayerByID(playerID)
	if target != nil && target.Connected && !target.IsBot {
		g.BroadcastToPlayerFn(playerID, ev)
	}
}

// sendSyncState sends the current obfuscated match state to a single
// player. Assumes lock is held by caller.
func (g *CowGame) sendSyncState(playerID uuid.UUID) {
	state := g.GetObfuscatedMatchState(playerID)
	g.fireEventToPlayer(playerID, GameEvent{
		Type:  EventPrivateSyncState,
		State: &state,
	})
}

// broadcastSyncStateToAll sends a per-viewer obfuscated state to every
// connected human. Assumes lock is held by caller.
func (g *CowGame) broadcastSyncStateToAll() {
	for _, p := range g.Players {
		if p.Connected && !p.IsBot {
			g.sendSyncState(p.ID)
		}
	}
}

// countConnectedHumans returns the number of connected human players.
// Assumes lock is held by caller.
func (g *CowGame) countConnectedHumans() int {
	count := 0
	for _, p := range g.Players {
		if p.Connected && !p.IsBot {
			count++
		}
	}
	return count
}

// getPlayerByID finds a player struct by ID within the match's Players
// slice. Assumes lock is held by caller.
func (g *CowGame) getPlayerByID(playerID uuid.UUID) *models.Player {
	for _, p := range g.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// logAction sends match action details to the historian service via Redis
// queue. Increments the internal action index for ordering. Assumes lock is
// held by caller.
func (g *CowGame) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.MatchActionRecord{
		MatchID:       g.ID,
		ActionIndex:   g.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}

	go func(rec cache.MatchActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cache.Rdb == nil {
			return
		}
		if err := cache.PublishMatchAction(ctx, rec); err != nil {
			log.Printf("Error: Match %s: Failed publishing action %d ('%s') to Redis: %v", g.ID, rec.ActionIndex, rec.ActionType, err)
		}
	}(record)
}

// payloadCard extracts the card id from an intent payload.
func payloadCard(payload map[string]interface{}) (engine.Card, error) {
	v, ok := payload["card"].(float64)
	if !ok || v < 1 || v > float64(engine.MaxDeckSize) {
		return engine.NoCard, fmt.Errorf("payload missing a valid 'card' id")
	}
	return engine.Card(v), nil
}

// payloadRow extracts the row index from an intent payload.
func payloadRow(payload map[string]interface{}) (uint8, error) {
	v, ok := payload["row"].(float64)
	if !ok || v < 0 || v >= float64(engine.MaxRows) {
		return 0, fmt.Errorf("payload missing a valid 'row' index")
	}
	return uint8(v), nil
}

// placementKindString maps engine placement kinds to wire strings.
func placementKindString(k engine.PlacementKind) string {
	switch k {
	case engine.PlacementAppend:
		return "append"
	case engine.PlacementOverflow:
		return "overflow"
	case engine.PlacementTooLow:
		return "too_low"
	}
	return "none"
}

// rowsAsInts flattens rows into plain int slices for JSON payloads.
func rowsAsInts(rows []engine.Row) [][]int {
	out := make([][]int, len(rows))
	for i := range rows {
		out[i] = make([]int, rows[i].Len)
		for j := uint8(0); j < rows[i].Len; j++ {
			out[i][j] = int(rows[i].Cards[j])
		}
	}
	return out
}
