package engine

import "fmt"

// SelectCard records a seat's card choice for the current batch. Selections
// may be changed until the seat confirms readiness. Bots are implicitly
// ready upon selecting.
func (m *MatchState) SelectCard(seat uint8, c Card) error {
	if err := m.checkSeat(seat); err != nil {
		return err
	}
	if m.Phase != PhaseChoice {
		return fmt.Errorf("cannot select a card during %s", m.Phase)
	}
	p := &m.Players[seat]
	if p.Ready {
		return fmt.Errorf("seat %d has already confirmed their selection", seat)
	}
	if !p.hasCard(c) {
		return fmt.Errorf("%v is not in seat %d's hand", c, seat)
	}
	p.Selected = c
	if p.IsBot {
		p.Ready = true
	}
	m.maybeBeginReveal()
	return nil
}

// ConfirmReady locks in a seat's selection. The reveal fires once every seat
// has selected and confirmed.
func (m *MatchState) ConfirmReady(seat uint8) error {
	if err := m.checkSeat(seat); err != nil {
		return err
	}
	if m.Phase != PhaseChoice {
		return fmt.Errorf("cannot confirm readiness during %s", m.Phase)
	}
	p := &m.Players[seat]
	if p.Selected == NoCard {
		return fmt.Errorf("seat %d has no selected card to confirm", seat)
	}
	p.Ready = true
	m.maybeBeginReveal()
	return nil
}

// maybeBeginReveal fires the choice→reveal transition exactly when every
// seat is selected and ready. Re-running the check is harmless: once the
// phase leaves PhaseChoice the guard in the callers blocks re-entry.
func (m *MatchState) maybeBeginReveal() {
	for s := uint8(0); s < m.Rules.NumPlayers; s++ {
		p := &m.Players[s]
		if p.Selected == NoCard || !p.Ready {
			return
		}
	}
	m.beginReveal()
}

// BeginResolving starts stepping through the revealed batch. The service
// calls this after its presentation delay; the engine has no timing of its
// own.
func (m *MatchState) BeginResolving() error {
	if m.Phase != PhaseReveal {
		return fmt.Errorf("cannot begin resolving during %s", m.Phase)
	}
	m.Phase = PhaseResolving
	m.resolveLoop()
	return nil
}

// ChooseRow resumes a suspended too-low step: the active seat captures the
// chosen row and the sequencer proceeds to the next card.
func (m *MatchState) ChooseRow(seat uint8, row uint8) error {
	if err := m.checkSeat(seat); err != nil {
		return err
	}
	if m.Phase != PhaseChoosingRow {
		return fmt.Errorf("cannot choose a row during %s", m.Phase)
	}
	if int8(seat) != m.ActiveSeat {
		return fmt.Errorf("seat %d is not the active decision-maker (seat %d is)", seat, m.ActiveSeat)
	}
	if row >= m.Rules.RowCount {
		return fmt.Errorf("row %d out of range (board has %d rows)", row, m.Rules.RowCount)
	}

	tc := m.Batch[m.ResolveIdx]
	m.captureRow(row, tc.Card, tc.Seat, PlacementTooLow)
	m.ActiveSeat = -1
	m.ResolveIdx++
	m.Phase = PhaseResolving
	m.resolveLoop()
	return nil
}

// Vote records a human seat's continue/stop vote after a round. Any stop
// ends the match immediately; a unanimous continue deals the next round.
// Bots never vote.
func (m *MatchState) Vote(seat uint8, cont bool) error {
	if err := m.checkSeat(seat); err != nil {
		return err
	}
	if m.Phase != PhaseVoting {
		return fmt.Errorf("cannot vote during %s", m.Phase)
	}
	p := &m.Players[seat]
	if p.IsBot {
		return fmt.Errorf("seat %d is a bot and does not vote", seat)
	}
	if p.Vote != VoteNone {
		return fmt.Errorf("seat %d has already voted", seat)
	}

	if !cont {
		p.Vote = VoteStop
		m.endMatch()
		return nil
	}
	p.Vote = VoteContinue

	for s := uint8(0); s < m.humanCount(); s++ {
		if m.Players[s].Vote != VoteContinue {
			return nil // still waiting on someone
		}
	}
	m.startRound()
	return nil
}

// ForceTimeout resolves whichever suspension point the match is waiting on
// with a default: unselected seats get a random card from their hand, and an
// outstanding row choice picks a random row. The surrounding service owns
// the timer; this is only the forced-default entry point.
func (m *MatchState) ForceTimeout() error {
	switch m.Phase {
	case PhaseChoice:
		n := m.Rules.NumPlayers
		for s := uint8(0); s < n; s++ {
			p := &m.Players[s]
			if p.Selected == NoCard {
				p.Selected = p.Hand[m.randN(uint64(p.HandLen))]
			}
			p.Ready = true
		}
		m.maybeBeginReveal()
		return nil
	case PhaseChoosingRow:
		row := uint8(m.randN(uint64(m.Rules.RowCount)))
		return m.ChooseRow(uint8(m.ActiveSeat), row)
	default:
		return fmt.Errorf("nothing to force during %s", m.Phase)
	}
}
