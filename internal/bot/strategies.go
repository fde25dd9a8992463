// internal/bot/strategies.go
package bot

import (
	"math/rand"

	"cowking/engine"
)

// RandomBot plays a uniformly random card and takes a uniformly random row.
// Useful as a baseline and for soak tests.
type RandomBot struct {
	rng *rand.Rand
}

// NewRandomBot seeds a RandomBot with its own RNG so concurrent bots don't
// contend on a shared source.
func NewRandomBot(seed int64) *RandomBot {
	return &RandomBot{rng: rand.New(rand.NewSource(seed))}
}

func (b *RandomBot) ChooseCard(hand []engine.Card, rows []engine.Row, maxRowLen uint8) engine.Card {
	return hand[b.rng.Intn(len(hand))]
}

func (b *RandomBot) ChooseRow(rows []engine.Row) uint8 {
	return uint8(b.rng.Intn(len(rows)))
}

// GreedyBot avoids taking rows when it can. It prefers cards that land on a
// row with space left, breaking ties toward the smaller gap above the row's
// last card; when every card is risky it sheds its highest card. For row
// choices it takes the cheapest row by penalty heads.
type GreedyBot struct{}

// NewGreedyBot returns the stateless greedy strategy.
func NewGreedyBot() *GreedyBot {
	return &GreedyBot{}
}

func (b *GreedyBot) ChooseCard(hand []engine.Card, rows []engine.Row, maxRowLen uint8) engine.Card {
	bestCard := engine.NoCard
	bestGap := 0
	for _, c := range hand {
		row := targetRow(c, rows)
		if row < 0 {
			continue // too low, would force a row take
		}
		if rows[row].Len >= maxRowLen {
			continue // next card captures this row
		}
		gap := int(c) - int(rows[row].Last())
		if bestCard == engine.NoCard || gap < bestGap {
			bestCard = c
			bestGap = gap
		}
	}
	if bestCard != engine.NoCard {
		return bestCard
	}

	// Every card takes a row; dump the highest to keep low cards for later.
	high := hand[0]
	for _, c := range hand[1:] {
		if c > high {
			high = c
		}
	}
	return high
}

func (b *GreedyBot) ChooseRow(rows []engine.Row) uint8 {
	best := uint8(0)
	bestHeads := rows[0].Heads()
	for i := 1; i < len(rows); i++ {
		if h := rows[i].Heads(); h < bestHeads {
			best = uint8(i)
			bestHeads = h
		}
	}
	return best
}

// targetRow mirrors the board placement rule: the row whose last card is the
// largest id strictly below c, or -1 when the card is below every row.
func targetRow(c engine.Card, rows []engine.Row) int {
	best := -1
	var bestLast engine.Card
	for i := range rows {
		last := rows[i].Last()
		if last < c && last > bestLast {
			best = i
			bestLast = last
		}
	}
	return best
}
