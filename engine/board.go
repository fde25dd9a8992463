package engine

import "fmt"

// Row is an ordered run of cards on the board. Cards are strictly ascending
// by id; length stays within [1, Rules.MaxRowLen] between resolution steps.
type Row struct {
	Cards [MaxRowCards]Card
	Len   uint8
}

// Last returns the row's highest (rightmost) card, or NoCard when empty.
func (r *Row) Last() Card {
	if r.Len == 0 {
		return NoCard
	}
	return r.Cards[r.Len-1]
}

// Heads returns the penalty total of the row's cards.
func (r *Row) Heads() uint8 {
	var total uint8
	for i := uint8(0); i < r.Len; i++ {
		total += r.Cards[i].Penalty()
	}
	return total
}

// findTargetRow returns the index of the row whose last card is the largest
// id strictly below the played card, or -1 when the card is lower than every
// row's last card (the too-low condition). Ties cannot occur: ids are unique.
func (m *MatchState) findTargetRow(c Card) int8 {
	best := int8(-1)
	var bestLast Card
	for i := uint8(0); i < m.Rules.RowCount; i++ {
		last := m.Rows[i].Last()
		if last < c && last > bestLast {
			best = int8(i)
			bestLast = last
		}
	}
	return best
}

// appendToRow appends the card to the row. Ordering against the row's last
// card is the placement resolver's responsibility; this is the cheap
// mutation primitive and does not re-validate.
func (m *MatchState) appendToRow(row uint8, c Card) {
	r := &m.Rows[row]
	r.Cards[r.Len] = c
	r.Len++
}

// resetRow replaces the row with a singleton holding the played card and
// moves the previous contents into the taker's collected pile. Returns the
// penalty total of the captured cards.
func (m *MatchState) resetRow(row uint8, replacement Card, taker uint8) uint8 {
	r := &m.Rows[row]
	p := &m.Players[taker]
	var heads uint8
	for i := uint8(0); i < r.Len; i++ {
		p.Collected[p.CollectedLen] = r.Cards[i]
		p.CollectedLen++
		heads += r.Cards[i].Penalty()
	}
	*r = Row{}
	r.Cards[0] = replacement
	r.Len = 1
	return heads
}

// CheckInvariants asserts the board and card-conservation invariants. It is
// a defensive hook for tests: violations are programming errors, not
// reachable states.
func (m *MatchState) CheckInvariants() error {
	if m.Phase == PhaseLobby || m.Phase == PhaseGameEnd {
		return nil
	}

	// Rows: non-empty, bounded, strictly ascending.
	for i := uint8(0); i < m.Rules.RowCount; i++ {
		r := &m.Rows[i]
		if r.Len == 0 || r.Len > m.Rules.MaxRowLen {
			return fmt.Errorf("row %d has length %d, want 1..%d", i, r.Len, m.Rules.MaxRowLen)
		}
		for j := uint8(1); j < r.Len; j++ {
			if r.Cards[j] <= r.Cards[j-1] {
				return fmt.Errorf("row %d not strictly ascending at position %d: %v after %v",
					i, j, r.Cards[j], r.Cards[j-1])
			}
		}
	}

	// No card id may appear twice across hands, rows, deck, collected
	// piles, and the unresolved tail of the batch.
	seen := make(map[Card]string, m.Rules.DeckSize)
	note := func(c Card, where string) error {
		if c == NoCard {
			return fmt.Errorf("NoCard found in %s", where)
		}
		if prev, dup := seen[c]; dup {
			return fmt.Errorf("card %v in both %s and %s", c, prev, where)
		}
		seen[c] = where
		return nil
	}
	for s := uint8(0); s < m.Rules.NumPlayers; s++ {
		p := &m.Players[s]
		for i := uint8(0); i < p.HandLen; i++ {
			if err := note(p.Hand[i], fmt.Sprintf("hand %d", s)); err != nil {
				return err
			}
		}
		for i := uint8(0); i < p.CollectedLen; i++ {
			if err := note(p.Collected[i], fmt.Sprintf("collected %d", s)); err != nil {
				return err
			}
		}
	}
	for i := uint8(0); i < m.Rules.RowCount; i++ {
		for j := uint8(0); j < m.Rows[i].Len; j++ {
			if err := note(m.Rows[i].Cards[j], fmt.Sprintf("row %d", i)); err != nil {
				return err
			}
		}
	}
	for i := uint8(0); i < m.DeckLen; i++ {
		if err := note(m.Deck[i], "deck"); err != nil {
			return err
		}
	}
	for i := m.ResolveIdx; i < m.BatchLen; i++ {
		if err := note(m.Batch[i].Card, "batch"); err != nil {
			return err
		}
	}
	return nil
}
