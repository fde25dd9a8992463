// internal/game/sync_state.go
package game

import (
	"cowking/engine"

	"github.com/google/uuid"
)

// ObfBatchCard is one revealed batch entry. The batch only appears in
// snapshots from the reveal phase onward; before that, selections are
// private.
type ObfBatchCard struct {
	Seat uint8 `json:"seat"`
	Card int   `json:"card"`
}

// ObfPlayerState represents one seat's state, obfuscated for a specific
// observer.
type ObfPlayerState struct {
	PlayerID   uuid.UUID `json:"playerId"`
	Username   string    `json:"username"`
	Seat       uint8     `json:"seat"`
	IsBot      bool      `json:"isBot"`
	Connected  bool      `json:"connected"`
	HandSize   int       `json:"handSize"`
	Heads      int       `json:"heads"` // penalty heads collected this round
	TotalScore int       `json:"totalScore"`
	Ready      bool      `json:"ready"`
	HasVoted   bool      `json:"hasVoted"`
	// Hand and SelectedCard are populated only for the requesting player.
	Hand         []int `json:"hand,omitempty"`
	SelectedCard int   `json:"selectedCard,omitempty"`
}

// ObfMatchState represents the overall match state, obfuscated for a
// specific observer. Rows, scores, and phase are public; hands and pending
// selections are revealed only to their owner.
type ObfMatchState struct {
	MatchID    uuid.UUID        `json:"matchId"`
	Phase      string           `json:"phase"`
	Round      int              `json:"round"`
	Rows       [][]int          `json:"rows"`
	DeckSize   int              `json:"deckSize"`
	Batch      []ObfBatchCard   `json:"batch,omitempty"`
	ActiveSeat int              `json:"activeSeat"` // seat owing a row choice; -1 when none
	Players    []ObfPlayerState `json:"players"`
	GameOver   bool             `json:"gameOver"`
}

// GetObfuscatedMatchState generates a snapshot of the match state tailored
// to the perspective of the requesting user. Reads from engine state as the
// authoritative source. Assumes the match lock is HELD by the caller.
func (g *CowGame) GetObfuscatedMatchState(forUser uuid.UUID) ObfMatchState {
	m := &g.Match
	obf := ObfMatchState{
		MatchID:    g.ID,
		Phase:      m.Phase.String(),
		Round:      int(m.Round),
		Rows:       rowsAsInts(m.ActiveRows()),
		DeckSize:   int(m.DeckLen),
		ActiveSeat: int(m.ActiveSeat),
		GameOver:   g.GameOver || m.IsGameOver(),
	}

	// The batch is public once revealed. Only the unresolved tail remains in
	// engine state during resolution; clients replay placements from events.
	if m.Phase == engine.PhaseReveal || m.Phase == engine.PhaseResolving || m.Phase == engine.PhaseChoosingRow {
		obf.Batch = make([]ObfBatchCard, 0, m.BatchLen-m.ResolveIdx)
		for i := m.ResolveIdx; i < m.BatchLen; i++ {
			obf.Batch = append(obf.Batch, ObfBatchCard{Seat: m.Batch[i].Seat, Card: int(m.Batch[i].Card)})
		}
	}

	obf.Players = make([]ObfPlayerState, 0, g.Rules.NumPlayers)
	for seat := uint8(0); seat < g.Rules.NumPlayers; seat++ {
		ep := &m.Players[seat]
		pl := g.getPlayerByID(g.SeatToPlayer[seat])

		ps := ObfPlayerState{
			PlayerID:   g.SeatToPlayer[seat],
			Seat:       seat,
			IsBot:      ep.IsBot,
			HandSize:   int(ep.HandLen),
			Heads:      ep.Heads(),
			TotalScore: int(ep.TotalScore),
			Ready:      ep.Ready,
			HasVoted:   ep.Vote != engine.VoteNone,
		}
		if pl != nil {
			ps.Username = pl.User.Username
			ps.Connected = pl.Connected
		}

		if g.SeatToPlayer[seat] == forUser {
			hand := m.HandOf(seat)
			ps.Hand = make([]int, len(hand))
			for i, c := range hand {
				ps.Hand[i] = int(c)
			}
			ps.SelectedCard = int(ep.Selected)
		}
		obf.Players = append(obf.Players, ps)
	}

	return obf
}
