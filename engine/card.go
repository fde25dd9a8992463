package engine

import "fmt"

// Card identifies one deck card by its printed number.
// Valid ids run 1..Rules.DeckSize; NoCard (0) marks an empty slot.
type Card uint8

// NoCard represents the absence of a card.
const NoCard Card = 0

// Penalty returns the bull-head count printed on the card.
//   - 55 → 7
//   - multiples of 11 → 5
//   - multiples of 10 → 3
//   - other multiples of 5 → 2
//   - everything else → 1
func (c Card) Penalty() uint8 {
	switch {
	case c == NoCard:
		return 0
	case c == 55:
		return 7
	case c%11 == 0:
		return 5
	case c%10 == 0:
		return 3
	case c%5 == 0:
		return 2
	default:
		return 1
	}
}

// String renders the card for logs and test failures.
func (c Card) String() string {
	if c == NoCard {
		return "card(-)"
	}
	return fmt.Sprintf("card(%d,%dh)", uint8(c), c.Penalty())
}
