package engine

// PlacementKind classifies the outcome of one resolution step.
type PlacementKind uint8

const (
	PlacementNone     PlacementKind = iota
	PlacementAppend                 // card joined its target row
	PlacementOverflow               // card was the 6th: target row captured automatically
	PlacementTooLow                 // card below every row: player chose a row to capture
)

// LastPlacement is a fully observable summary of the most recent resolution
// step, for the service layer to turn into events.
type LastPlacement struct {
	Kind       PlacementKind
	Seat       uint8
	Card       Card
	Row        uint8
	HeadsTaken uint8
	Taken      [MaxRowCards]Card // captured cards, when Kind is overflow/too-low
	TakenLen   uint8
}

// beginReveal forms the turn batch from every seat's selection, sorts it
// ascending by card id, and exposes it. Selections leave hands here so the
// batch tail plus hands always account for every card.
func (m *MatchState) beginReveal() {
	n := m.Rules.NumPlayers
	m.BatchLen = 0
	for s := uint8(0); s < n; s++ {
		p := &m.Players[s]
		p.removeCard(p.Selected)
		m.Batch[m.BatchLen] = TurnCard{Seat: s, Card: p.Selected}
		m.BatchLen++
	}

	// Insertion sort ascending by card id. Ids are globally unique, so the
	// order is total; this is the sole resolution order for the batch.
	for i := uint8(1); i < m.BatchLen; i++ {
		tc := m.Batch[i]
		j := i
		for j > 0 && m.Batch[j-1].Card > tc.Card {
			m.Batch[j] = m.Batch[j-1]
			j--
		}
		m.Batch[j] = tc
	}

	m.ResolveIdx = 0
	m.Phase = PhaseReveal
}

// resolveLoop applies batch steps in order until a too-low card suspends the
// sequencer or the batch completes. Each step either appends to the target
// row, or captures it on overflow.
func (m *MatchState) resolveLoop() {
	for m.ResolveIdx < m.BatchLen {
		tc := m.Batch[m.ResolveIdx]
		target := m.findTargetRow(tc.Card)
		if target < 0 {
			// Too low: suspend until the owner picks a row to capture.
			m.ActiveSeat = int8(tc.Seat)
			m.Phase = PhaseChoosingRow
			return
		}
		row := uint8(target)
		if m.Rows[row].Len >= m.Rules.MaxRowLen {
			m.captureRow(row, tc.Card, tc.Seat, PlacementOverflow)
		} else {
			m.appendToRow(row, tc.Card)
			m.LastPlacement = LastPlacement{
				Kind: PlacementAppend,
				Seat: tc.Seat,
				Card: tc.Card,
				Row:  row,
			}
		}
		m.ResolveIdx++
	}
	m.finishBatch()
}

// captureRow records the capture in LastPlacement and performs it.
func (m *MatchState) captureRow(row uint8, c Card, taker uint8, kind PlacementKind) {
	lp := LastPlacement{Kind: kind, Seat: taker, Card: c, Row: row}
	r := &m.Rows[row]
	lp.TakenLen = r.Len
	copy(lp.Taken[:], r.Cards[:r.Len])
	lp.HeadsTaken = m.resetRow(row, c, taker)
	m.LastPlacement = lp
}

// finishBatch clears the per-batch selection state and either opens the next
// choice window or, when hands are empty, scores the round and moves to the
// vote.
func (m *MatchState) finishBatch() {
	n := m.Rules.NumPlayers
	for s := uint8(0); s < n; s++ {
		m.Players[s].Selected = NoCard
		m.Players[s].Ready = false
	}
	m.BatchLen = 0
	m.ResolveIdx = 0

	// Hands shrink in lockstep, so checking seat 0 covers everyone.
	if m.Players[0].HandLen == 0 {
		m.scoreRound()
		if m.humanCount() == 0 {
			// No voters: a bot-only match ends after one round.
			m.endMatch()
			return
		}
		m.Phase = PhaseVoting
		return
	}
	m.Phase = PhaseChoice
}
