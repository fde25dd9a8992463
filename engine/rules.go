package engine

import "fmt"

// Rules holds the configurable match parameters.
type Rules struct {
	NumPlayers   uint8  // total seats, humans first (2–10)
	HumanCount   uint8  // seats 0..HumanCount-1 are human
	HandSize     uint8  // cards dealt per player per round
	RowCount     uint8  // rows on the board
	MaxRowLen    uint8  // cards a row holds before the next append overflows
	DeckSize     uint8  // highest card id in play
	TurnTimerSec uint16 // 0 = unlimited; enforced by the service, not the engine
}

// DefaultRules returns the standard Cow King setup: four players on a
// 104-card deck, ten-card hands, four rows of at most five cards.
func DefaultRules() Rules {
	return Rules{
		NumPlayers:   4,
		HumanCount:   1,
		HandSize:     10,
		RowCount:     4,
		MaxRowLen:    5,
		DeckSize:     104,
		TurnTimerSec: 0,
	}
}

// Validate rejects fatal configuration errors before any match state exists.
func (r *Rules) Validate() error {
	if r.NumPlayers < 2 || r.NumPlayers > MaxPlayers {
		return fmt.Errorf("NumPlayers must be 2..%d, got %d", MaxPlayers, r.NumPlayers)
	}
	if r.HumanCount > r.NumPlayers {
		return fmt.Errorf("HumanCount %d exceeds NumPlayers %d", r.HumanCount, r.NumPlayers)
	}
	if r.HandSize == 0 || r.HandSize > MaxHandSize {
		return fmt.Errorf("HandSize must be 1..%d, got %d", MaxHandSize, r.HandSize)
	}
	if r.RowCount == 0 || r.RowCount > MaxRows {
		return fmt.Errorf("RowCount must be 1..%d, got %d", MaxRows, r.RowCount)
	}
	if r.MaxRowLen < 2 || r.MaxRowLen > MaxRowCards {
		return fmt.Errorf("MaxRowLen must be 2..%d, got %d", MaxRowCards, r.MaxRowLen)
	}
	if r.DeckSize == 0 || r.DeckSize > MaxDeckSize {
		return fmt.Errorf("DeckSize must be 1..%d, got %d", MaxDeckSize, r.DeckSize)
	}
	// Every round consumes RowCount seed cards plus a full hand per player.
	needed := uint16(r.RowCount) + uint16(r.HandSize)*uint16(r.NumPlayers)
	if needed > uint16(r.DeckSize) {
		return fmt.Errorf("deck too small: need %d cards (rows + hands), have %d", needed, r.DeckSize)
	}
	return nil
}
