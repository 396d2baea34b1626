package chain

import (
	"fmt"
	"strconv"
)

// DeckSize is two standard 52-card decks.
const DeckSize = 104

// Jack is the rank of the wild and anti-wild cards.
const Jack = 11

// Suits in card index order.
var Suits = [4]byte{'H', 'S', 'D', 'C'}

// Card is a decoded card index. Both decks decode to identical cards.
type Card struct {
	Number int
	Suit   byte
}

// CardAt decodes card index i.
func CardAt(i int) Card {
	i %= 52
	if i < 0 {
		i += 52
	}
	return Card{Number: i%13 + 1, Suit: Suits[i/13]}
}

// ParseCard parses the board form of a card, e.g. "12H".
func ParseCard(s string) (Card, error) {
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n < 1 || n > 13 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	suit := s[len(s)-1]
	for _, su := range Suits {
		if su == suit {
			return Card{Number: n, Suit: suit}, nil
		}
	}
	return Card{}, fmt.Errorf("invalid card %q", s)
}

func (c Card) String() string {
	return strconv.Itoa(c.Number) + string(c.Suit)
}

// Indices returns the card's index in each deck.
func (c Card) Indices() [2]int {
	s := 0
	for i, su := range Suits {
		if su == c.Suit {
			s = i
		}
	}
	i := s*13 + c.Number - 1
	return [2]int{i, i + 52}
}

// IsJack reports whether c is wild or anti-wild.
func (c Card) IsJack() bool { return c.Number == Jack }

// IsWild reports whether c is a two-eyed jack (diamonds, clubs).
func (c Card) IsWild() bool { return c.IsJack() && (c.Suit == 'D' || c.Suit == 'C') }

// IsAntiWild reports whether c is a one-eyed jack (hearts, spades).
func (c Card) IsAntiWild() bool { return c.IsJack() && (c.Suit == 'H' || c.Suit == 'S') }
