// internal/bot/factory.go
package bot

import "fmt"

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel, seed int64) (Brain, error) {
	switch level {
	case BotLevelRandom:
		return NewRandomBot(seed), nil
	case BotLevelGreedy:
		return NewGreedyBot(), nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
