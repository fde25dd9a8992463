// internal/bot/brain.go
package bot

import "cowking/engine"

// BotLevel selects a bot strategy.
type BotLevel int

const (
	BotLevelRandom BotLevel = iota
	BotLevelGreedy
)

// Brain is the interface that all bot strategies must implement. Both
// methods receive copies of the public board plus the bot's own hand; they
// must not retain or mutate their arguments.
type Brain interface {
	// ChooseCard picks the card to play from a non-empty hand. maxRowLen is
	// the row length at which the next append captures the row.
	ChooseCard(hand []engine.Card, rows []engine.Row, maxRowLen uint8) engine.Card
	// ChooseRow picks the row to take when the played card was too low.
	ChooseRow(rows []engine.Row) uint8
}
