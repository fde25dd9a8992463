package engine

import "testing"

// choiceFixture returns a match parked in PhaseChoice with hand-built rows
// and hands, bypassing the random deal. All seats are bots unless humans > 0
// so selections are implicitly ready.
func choiceFixture(t *testing.T, humans uint8, hands [][]Card, rowEnds []Card) MatchState {
	t.Helper()
	r := DefaultRules()
	r.NumPlayers = uint8(len(hands))
	r.HumanCount = humans
	m, err := NewMatch(1, r)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	m.Flags |= FlagStarted
	m.Round = 1
	m.Phase = PhaseChoice
	for s, hand := range hands {
		p := &m.Players[s]
		for i, c := range hand {
			p.Hand[i] = c
		}
		p.HandLen = uint8(len(hand))
	}
	for i, end := range rowEnds {
		m.Rows[i] = Row{Len: 1}
		m.Rows[i].Cards[0] = end
	}
	return m
}

// TestBatchSortedAscending verifies the reveal orders the batch strictly
// ascending by card id regardless of selection order.
func TestBatchSortedAscending(t *testing.T) {
	m := choiceFixture(t, 0, [][]Card{{70, 80}, {30, 40}, {50, 60}, {95, 96}}, []Card{10, 25, 60, 90})

	// Select in seat order: 70, 30, 50, 95.
	for s := uint8(0); s < 4; s++ {
		if err := m.SelectCard(s, m.Players[s].Hand[0]); err != nil {
			t.Fatalf("SelectCard(%d): %v", s, err)
		}
	}
	if m.Phase != PhaseReveal {
		t.Fatalf("phase = %s, want reveal", m.Phase)
	}
	wantCards := []Card{30, 50, 70, 95}
	wantSeats := []uint8{1, 2, 0, 3}
	for i := range wantCards {
		if m.Batch[i].Card != wantCards[i] || m.Batch[i].Seat != wantSeats[i] {
			t.Errorf("Batch[%d] = seat %d %v, want seat %d %v",
				i, m.Batch[i].Seat, m.Batch[i].Card, wantSeats[i], wantCards[i])
		}
	}

	// Selections left the hands at reveal time.
	for s := uint8(0); s < 4; s++ {
		if m.Players[s].HandLen != 1 {
			t.Errorf("seat %d HandLen = %d, want 1", s, m.Players[s].HandLen)
		}
	}
}

// TestResolveAppendsInOrder verifies a plain batch resolves every card onto
// its closest-below row.
func TestResolveAppendsInOrder(t *testing.T) {
	m := choiceFixture(t, 0, [][]Card{{30, 31}, {65, 66}, {91, 92}, {26, 27}}, []Card{10, 25, 60, 90})
	for s := uint8(0); s < 4; s++ {
		if err := m.SelectCard(s, m.Players[s].Hand[0]); err != nil {
			t.Fatalf("SelectCard(%d): %v", s, err)
		}
	}
	if err := m.BeginResolving(); err != nil {
		t.Fatalf("BeginResolving: %v", err)
	}
	if m.Phase != PhaseChoice {
		t.Fatalf("phase after batch = %s, want choice", m.Phase)
	}

	// 26 then 30 extend the row that ended in 25; 65 follows 60; 91 follows 90.
	if got := m.Rows[1].Len; got != 3 {
		t.Errorf("row 1 Len = %d, want 3 ([25 26 30])", got)
	}
	if m.Rows[1].Cards[1] != 26 || m.Rows[1].Cards[2] != 30 {
		t.Errorf("row 1 = %v, want [25 26 30 ...]", m.Rows[1].Cards)
	}
	if m.Rows[2].Last() != 65 {
		t.Errorf("row 2 Last() = %v, want 65", m.Rows[2].Last())
	}
	if m.Rows[3].Last() != 91 {
		t.Errorf("row 3 Last() = %v, want 91", m.Rows[3].Last())
	}
}

// TestResolveSuspendsOnTooLow verifies a too-low card suspends the
// sequencer at PhaseChoosingRow with the owning seat active, and that
// ChooseRow captures the picked row and resumes.
func TestResolveSuspendsOnTooLow(t *testing.T) {
	m := choiceFixture(t, 0, [][]Card{{30, 31}, {5, 66}, {91, 92}, {26, 27}}, []Card{10, 25, 60, 90})
	for s := uint8(0); s < 4; s++ {
		if err := m.SelectCard(s, m.Players[s].Hand[0]); err != nil {
			t.Fatalf("SelectCard(%d): %v", s, err)
		}
	}
	if err := m.BeginResolving(); err != nil {
		t.Fatalf("BeginResolving: %v", err)
	}

	// 5 is the lowest card in the batch and lower than every row.
	if m.Phase != PhaseChoosingRow {
		t.Fatalf("phase = %s, want choosing_row", m.Phase)
	}
	if m.ActiveSeat != 1 {
		t.Fatalf("ActiveSeat = %d, want 1", m.ActiveSeat)
	}
	if m.LastPlacement.Kind == PlacementTooLow {
		t.Error("LastPlacement already records the too-low step before the row choice")
	}

	if err := m.ChooseRow(1, 0); err != nil {
		t.Fatalf("ChooseRow: %v", err)
	}
	if m.Phase != PhaseChoice {
		t.Fatalf("phase after resume = %s, want choice", m.Phase)
	}
	if m.Rows[0].Len != 1 || m.Rows[0].Cards[0] != 5 {
		t.Errorf("row 0 = %v (len %d), want singleton [5]", m.Rows[0].Cards, m.Rows[0].Len)
	}
	p := &m.Players[1]
	if p.CollectedLen != 1 || p.Collected[0] != 10 {
		t.Errorf("seat 1 collected = %v (len %d), want [10]", p.Collected[:p.CollectedLen], p.CollectedLen)
	}
	if err := m.CheckInvariants(); err != nil {
		t.Errorf("invariants after resume: %v", err)
	}
}

// TestResolveOverflowCapturesAutomatically verifies the 6th-card rule: a
// full target row is captured without a player choice.
func TestResolveOverflowCapturesAutomatically(t *testing.T) {
	m := choiceFixture(t, 0, [][]Card{{66, 67}, {95, 96}}, []Card{60, 90})
	m.Rows[0] = Row{Cards: [MaxRowCards]Card{51, 52, 53, 54, 60}, Len: 5}

	for s := uint8(0); s < 2; s++ {
		if err := m.SelectCard(s, m.Players[s].Hand[0]); err != nil {
			t.Fatalf("SelectCard(%d): %v", s, err)
		}
	}
	if err := m.BeginResolving(); err != nil {
		t.Fatalf("BeginResolving: %v", err)
	}
	if m.Phase != PhaseChoice {
		t.Fatalf("phase = %s, want choice (no suspension on overflow)", m.Phase)
	}

	// 66 overflowed the full row: seat 0 takes all five cards, row restarts at [66].
	if m.Rows[0].Len != 1 || m.Rows[0].Cards[0] != 66 {
		t.Errorf("row 0 = %v (len %d), want singleton [66]", m.Rows[0].Cards, m.Rows[0].Len)
	}
	if got := m.Players[0].CollectedLen; got != 5 {
		t.Errorf("seat 0 CollectedLen = %d, want 5", got)
	}
	if m.LastPlacement.Kind != PlacementAppend {
		// Last step in the batch was 95 appending to the 90 row.
		t.Errorf("LastPlacement.Kind = %d, want append for final step", m.LastPlacement.Kind)
	}
}

// TestBeginResolvingOnlyFromReveal verifies the resolve transition is
// phase-gated and cannot double-fire.
func TestBeginResolvingOnlyFromReveal(t *testing.T) {
	m := choiceFixture(t, 0, [][]Card{{30, 31}, {65, 66}}, []Card{10, 90})
	if err := m.BeginResolving(); err == nil {
		t.Error("BeginResolving during choice succeeded, want error")
	}
	for s := uint8(0); s < 2; s++ {
		if err := m.SelectCard(s, m.Players[s].Hand[0]); err != nil {
			t.Fatalf("SelectCard(%d): %v", s, err)
		}
	}
	if err := m.BeginResolving(); err != nil {
		t.Fatalf("BeginResolving: %v", err)
	}
	if err := m.BeginResolving(); err == nil {
		t.Error("second BeginResolving succeeded, want error (batch already applied)")
	}
}

// TestChooseRowValidation verifies row choices are rejected from the wrong
// seat, with an out-of-range row, or outside the suspension.
func TestChooseRowValidation(t *testing.T) {
	m := choiceFixture(t, 0, [][]Card{{5, 31}, {65, 66}}, []Card{10, 90})
	if err := m.ChooseRow(0, 0); err == nil {
		t.Error("ChooseRow during choice succeeded, want error")
	}
	for s := uint8(0); s < 2; s++ {
		if err := m.SelectCard(s, m.Players[s].Hand[0]); err != nil {
			t.Fatalf("SelectCard(%d): %v", s, err)
		}
	}
	if err := m.BeginResolving(); err != nil {
		t.Fatalf("BeginResolving: %v", err)
	}
	if m.Phase != PhaseChoosingRow || m.ActiveSeat != 0 {
		t.Fatalf("phase = %s active = %d, want choosing_row seat 0", m.Phase, m.ActiveSeat)
	}

	if err := m.ChooseRow(1, 0); err == nil {
		t.Error("ChooseRow from non-active seat succeeded, want error")
	}
	if err := m.ChooseRow(0, 5); err == nil {
		t.Error("ChooseRow with out-of-range row succeeded, want error")
	}
	if err := m.ChooseRow(0, 1); err != nil {
		t.Fatalf("ChooseRow: %v", err)
	}
	// The suspension is spent: replaying the same choice must be rejected.
	if err := m.ChooseRow(0, 1); err == nil {
		t.Error("replayed ChooseRow succeeded, want error")
	}
}

// TestSelectCardValidation verifies selection protocol violations are
// rejected without state changes.
func TestSelectCardValidation(t *testing.T) {
	m := choiceFixture(t, 2, [][]Card{{30, 31}, {65, 66}}, []Card{10, 90})

	if err := m.SelectCard(0, 99); err == nil {
		t.Error("selecting a card not in hand succeeded, want error")
	}
	if err := m.SelectCard(7, 30); err == nil {
		t.Error("selecting for an out-of-range seat succeeded, want error")
	}

	// Changing the selection before confirming is allowed.
	if err := m.SelectCard(0, 30); err != nil {
		t.Fatalf("SelectCard: %v", err)
	}
	if err := m.SelectCard(0, 31); err != nil {
		t.Fatalf("re-select before ready: %v", err)
	}
	if err := m.ConfirmReady(0); err != nil {
		t.Fatalf("ConfirmReady: %v", err)
	}
	if err := m.SelectCard(0, 30); err == nil {
		t.Error("re-select after ready succeeded, want error")
	}

	// Confirming with no selection is rejected.
	if err := m.ConfirmReady(1); err == nil {
		t.Error("ConfirmReady with no selection succeeded, want error")
	}
}

// TestForceTimeoutChoice verifies the forced default fills missing
// selections and fires the reveal.
func TestForceTimeoutChoice(t *testing.T) {
	m := choiceFixture(t, 2, [][]Card{{30, 31}, {65, 66}}, []Card{10, 90})
	if err := m.SelectCard(0, 30); err != nil {
		t.Fatalf("SelectCard: %v", err)
	}
	// Seat 1 never selects; seat 0 never confirms.
	if err := m.ForceTimeout(); err != nil {
		t.Fatalf("ForceTimeout: %v", err)
	}
	if m.Phase != PhaseReveal {
		t.Errorf("phase = %s, want reveal", m.Phase)
	}
	if m.BatchLen != 2 {
		t.Errorf("BatchLen = %d, want 2", m.BatchLen)
	}
}

// TestForceTimeoutChoosingRow verifies the forced default resolves a
// pending row choice.
func TestForceTimeoutChoosingRow(t *testing.T) {
	m := choiceFixture(t, 0, [][]Card{{5, 31}, {65, 66}}, []Card{10, 90})
	for s := uint8(0); s < 2; s++ {
		if err := m.SelectCard(s, m.Players[s].Hand[0]); err != nil {
			t.Fatalf("SelectCard(%d): %v", s, err)
		}
	}
	if err := m.BeginResolving(); err != nil {
		t.Fatalf("BeginResolving: %v", err)
	}
	if m.Phase != PhaseChoosingRow {
		t.Fatalf("phase = %s, want choosing_row", m.Phase)
	}
	if err := m.ForceTimeout(); err != nil {
		t.Fatalf("ForceTimeout: %v", err)
	}
	if m.Phase == PhaseChoosingRow {
		t.Error("still suspended after ForceTimeout")
	}
	if m.Players[0].CollectedLen == 0 {
		t.Error("forced row choice captured nothing")
	}
}

// TestForceTimeoutWrongPhase verifies the forced default is rejected when
// nothing is pending.
func TestForceTimeoutWrongPhase(t *testing.T) {
	r := DefaultRules()
	m, err := NewMatch(3, r)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	if err := m.ForceTimeout(); err == nil {
		t.Error("ForceTimeout in lobby succeeded, want error")
	}
}
