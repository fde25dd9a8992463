package engine

// RoundScore computes a seat's score for the round in progress from the
// collected piles: totalHeads - ownHeads*playerCount. Higher is better. The
// per-round sum across seats is totalHeads*(1-playerCount) — not zero except
// in the degenerate single-player case.
func (m *MatchState) RoundScore(seat uint8) int {
	n := int(m.Rules.NumPlayers)
	total := 0
	for s := uint8(0); s < m.Rules.NumPlayers; s++ {
		total += m.Players[s].Heads()
	}
	return total - m.Players[seat].Heads()*n
}

// scoreRound appends one RoundResult per seat and folds it into the running
// totals. Guarded by FlagRoundScored so a round can never be double-counted.
func (m *MatchState) scoreRound() {
	if m.Flags&FlagRoundScored != 0 {
		return
	}
	for s := uint8(0); s < m.Rules.NumPlayers; s++ {
		p := &m.Players[s]
		score := m.RoundScore(s)
		p.History = append(p.History, RoundResult{
			Score: int16(score),
			Heads: uint8(p.Heads()),
		})
		p.TotalScore += int16(score)
	}
	m.Flags |= FlagRoundScored
}
