// Package engine implements the Cow King round-resolution rules.
//
// The engine is the single authoritative state machine for a match: it
// ingests player intents (card selections, row choices, votes), resolves
// each simultaneous batch of cards in strict ascending order against the
// four shared rows, and scores collected penalty cards at round end.
// It is a flat value type driven entirely by explicit method calls — no
// goroutines, no timers, no I/O — so the surrounding service can serialize
// intents however it likes and broadcast plain snapshots of the state.
package engine

import "fmt"

const (
	MaxPlayers  = 10
	MaxRows     = 6
	MaxRowCards = 6
	MaxHandSize = 12
	MaxDeckSize = 104
)

// Phase enumerates the lifecycle stages of a round.
type Phase uint8

const (
	PhaseLobby       Phase = iota // waiting for Start
	PhaseDealing                  // transient: deck shuffle, deal, row seed
	PhaseChoice                   // waiting for every seat's card selection
	PhaseReveal                   // batch sorted and public; presentation owns the delay
	PhaseResolving                // stepping through the batch
	PhaseChoosingRow              // suspended on a too-low row choice
	PhaseVoting                   // round scored; humans vote on continuing
	PhaseGameEnd                  // terminal
)

// String returns the lowercase phase name used in errors and snapshots.
func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseDealing:
		return "dealing"
	case PhaseChoice:
		return "choice"
	case PhaseReveal:
		return "reveal"
	case PhaseResolving:
		return "resolving"
	case PhaseChoosingRow:
		return "choosing_row"
	case PhaseVoting:
		return "voting"
	case PhaseGameEnd:
		return "game_end"
	}
	return "unknown"
}

// Vote values for PlayerState.Vote.
const (
	VoteNone     int8 = -1
	VoteStop     int8 = 0
	VoteContinue int8 = 1
)

// RoundResult records one completed round for one player. Never mutated.
type RoundResult struct {
	Score int16
	Heads uint8
}

// PlayerState holds one seat's cards and running score.
type PlayerState struct {
	Hand         [MaxHandSize]Card
	HandLen      uint8
	Collected    [MaxDeckSize]Card // penalty cards taken this round
	CollectedLen uint8
	Selected     Card // pending choice for the current batch; NoCard = none
	Ready        bool // selection confirmed; bots are ready upon selecting
	IsBot        bool
	Vote         int8
	TotalScore   int16
	History      []RoundResult // one entry per completed round
}

// Heads returns the penalty total of the cards collected this round.
func (p *PlayerState) Heads() int {
	total := 0
	for i := uint8(0); i < p.CollectedLen; i++ {
		total += int(p.Collected[i].Penalty())
	}
	return total
}

// hasCard reports whether the card is currently in the hand.
func (p *PlayerState) hasCard(c Card) bool {
	for i := uint8(0); i < p.HandLen; i++ {
		if p.Hand[i] == c {
			return true
		}
	}
	return false
}

// removeCard deletes the card from the hand, preserving ascending order.
func (p *PlayerState) removeCard(c Card) {
	for i := uint8(0); i < p.HandLen; i++ {
		if p.Hand[i] == c {
			for j := i; j+1 < p.HandLen; j++ {
				p.Hand[j] = p.Hand[j+1]
			}
			p.HandLen--
			p.Hand[p.HandLen] = NoCard
			return
		}
	}
}

// TurnCard pairs a revealed card with the seat that played it.
type TurnCard struct {
	Seat uint8
	Card Card
}

// Flags bitfield.
const (
	FlagStarted     uint16 = 1 << 0
	FlagGameOver    uint16 = 1 << 1
	FlagRoundScored uint16 = 1 << 2
)

// MatchState holds the complete, self-contained state of one match.
// Aside from the per-player score history it is a flat value type; Clone
// produces a fully independent copy for external consumers.
type MatchState struct {
	Players [MaxPlayers]PlayerState
	Rows    [MaxRows]Row
	Deck    [MaxDeckSize]Card
	DeckLen uint8

	Batch      [MaxPlayers]TurnCard // ascending by card id once revealed
	BatchLen   uint8
	ResolveIdx uint8 // next batch index to resolve
	ActiveSeat int8  // seat owing a row choice; -1 when none

	Phase         Phase
	Round         uint8 // 1-based, incremented at each deal
	Flags         uint16
	RNG           uint64
	LastPlacement LastPlacement
	Rules         Rules
}

// NewMatch validates the rules and returns a fresh match in the lobby phase.
// Seats 0..HumanCount-1 are humans; the rest are bot-filled.
func NewMatch(seed uint64, rules Rules) (MatchState, error) {
	var m MatchState
	if err := rules.Validate(); err != nil {
		return m, err
	}
	m.Rules = rules
	m.RNG = seed
	if m.RNG == 0 {
		m.RNG = 1 // xorshift can't start at 0
	}
	m.Phase = PhaseLobby
	m.ActiveSeat = -1
	for s := uint8(0); s < rules.NumPlayers; s++ {
		m.Players[s].IsBot = s >= rules.HumanCount
		m.Players[s].Vote = VoteNone
	}
	return m, nil
}

// ---------------------------------------------------------------------------
// xorshift64 RNG — inline, no interface
// ---------------------------------------------------------------------------

func (m *MatchState) nextRand() uint64 {
	x := m.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	m.RNG = x
	return x
}

// randN returns a random number in [0, n).
func (m *MatchState) randN(n uint64) uint64 {
	return m.nextRand() % n
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

// IsStarted reports whether Start has been called.
func (m *MatchState) IsStarted() bool { return m.Flags&FlagStarted != 0 }

// IsGameOver reports whether the match has reached its terminal phase.
func (m *MatchState) IsGameOver() bool { return m.Flags&FlagGameOver != 0 }

// Start moves the match out of the lobby and deals the first round.
func (m *MatchState) Start() error {
	if m.Phase != PhaseLobby {
		return fmt.Errorf("cannot start match during %s", m.Phase)
	}
	m.Flags |= FlagStarted
	m.startRound()
	return nil
}

// startRound builds and shuffles a fresh deck, deals hands, seeds the rows,
// and opens the first card-choice window of the round.
func (m *MatchState) startRound() {
	m.Phase = PhaseDealing
	m.Round++
	m.Flags &^= FlagRoundScored

	n := m.Rules.NumPlayers
	for s := uint8(0); s < n; s++ {
		p := &m.Players[s]
		p.Hand = [MaxHandSize]Card{}
		p.HandLen = 0
		p.CollectedLen = 0
		p.Selected = NoCard
		p.Ready = false
		p.Vote = VoteNone
	}
	m.BatchLen = 0
	m.ResolveIdx = 0
	m.ActiveSeat = -1
	m.LastPlacement = LastPlacement{}

	// Fresh deck: one card per id, Fisher-Yates shuffled.
	for i := uint8(0); i < m.Rules.DeckSize; i++ {
		m.Deck[i] = Card(i + 1)
	}
	m.DeckLen = m.Rules.DeckSize
	for i := int(m.DeckLen) - 1; i > 0; i-- {
		j := int(m.randN(uint64(i + 1)))
		m.Deck[i], m.Deck[j] = m.Deck[j], m.Deck[i]
	}

	// Deal round-robin off the top of the deck.
	for c := uint8(0); c < m.Rules.HandSize; c++ {
		for s := uint8(0); s < n; s++ {
			m.DeckLen--
			m.Players[s].Hand[c] = m.Deck[m.DeckLen]
			m.Players[s].HandLen++
		}
	}
	for s := uint8(0); s < n; s++ {
		sortHand(&m.Players[s])
	}

	// Seed each row with a singleton card.
	for r := uint8(0); r < m.Rules.RowCount; r++ {
		m.DeckLen--
		m.Rows[r] = Row{}
		m.Rows[r].Cards[0] = m.Deck[m.DeckLen]
		m.Rows[r].Len = 1
	}
	for r := m.Rules.RowCount; r < MaxRows; r++ {
		m.Rows[r] = Row{}
	}

	m.Phase = PhaseChoice
}

// sortHand keeps the hand ascending by id (insertion sort, no allocation).
func sortHand(p *PlayerState) {
	for i := uint8(1); i < p.HandLen; i++ {
		c := p.Hand[i]
		j := i
		for j > 0 && p.Hand[j-1] > c {
			p.Hand[j] = p.Hand[j-1]
			j--
		}
		p.Hand[j] = c
	}
}

// endMatch flips the terminal flag and phase.
func (m *MatchState) endMatch() {
	m.Flags |= FlagGameOver
	m.Phase = PhaseGameEnd
}

// checkSeat validates a seat index against the configured player count.
func (m *MatchState) checkSeat(seat uint8) error {
	if seat >= m.Rules.NumPlayers {
		return fmt.Errorf("seat %d out of range (match has %d players)", seat, m.Rules.NumPlayers)
	}
	return nil
}

// humanCount returns the number of human seats.
func (m *MatchState) humanCount() uint8 { return m.Rules.HumanCount }

// Clone returns a deep copy of the match state. The copy shares nothing
// with the original, including score histories.
func (m *MatchState) Clone() MatchState {
	c := *m
	for s := range c.Players {
		if m.Players[s].History != nil {
			c.Players[s].History = append([]RoundResult(nil), m.Players[s].History...)
		}
	}
	return c
}

// ActiveRows returns a copy of the rows currently in play.
func (m *MatchState) ActiveRows() []Row {
	rows := make([]Row, m.Rules.RowCount)
	copy(rows, m.Rows[:m.Rules.RowCount])
	return rows
}

// HandOf returns a copy of a seat's current hand.
func (m *MatchState) HandOf(seat uint8) []Card {
	p := &m.Players[seat]
	hand := make([]Card, p.HandLen)
	copy(hand, p.Hand[:p.HandLen])
	return hand
}
