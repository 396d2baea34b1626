// Package letters provides the letter card table shared by the word games.
//
// Cards are referenced everywhere by index into a Deck built from the
// quantity table: each letter is repeated quantity × decks times, in table
// order. Game documents store only those indices.
package letters

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

//go:embed standard.hcl
var standardTable []byte

// Tier is a market deck in the Deck-Mine game, assigned by card value.
type Tier int

const (
	Common Tier = iota
	Medium
	Rare
)

// Tiers lists every tier in market row order.
var Tiers = [...]Tier{Common, Medium, Rare}

func (t Tier) String() string {
	switch t {
	case Common:
		return "common"
	case Medium:
		return "medium"
	case Rare:
		return "rare"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// TierFor buckets a card value: below 4 common, below 8 medium, else rare.
func TierFor(value int) Tier {
	switch {
	case value < 4:
		return Common
	case value < 8:
		return Medium
	default:
		return Rare
	}
}

// Letter is one row of the quantity table.
type Letter struct {
	Letter   string `hcl:"letter,label"`
	Value    int    `hcl:"value"`
	Quantity int    `hcl:"quantity"`
}

type table struct {
	Letters []Letter `hcl:"letter,block"`
}

// Card is a single letter card.
type Card struct {
	Letter string
	Value  int
	Tier   Tier
}

// Deck is the full card table for a game.
type Deck struct {
	cards   []Card
	letters []Letter
	decks   int
}

// Standard loads the built-in table replicated decks times.
func Standard(decks int) (*Deck, error) {
	return Parse(standardTable, "standard.hcl", decks)
}

// MustStandard is Standard for known-good deck counts.
func MustStandard(decks int) *Deck {
	d, err := Standard(decks)
	if err != nil {
		panic(err)
	}
	return d
}

// Parse builds a deck from an HCL quantity table.
func Parse(src []byte, filename string, decks int) (*Deck, error) {
	if decks < 1 {
		return nil, fmt.Errorf("deck count must be at least 1, got %d", decks)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse letter table: %s", diags.Error())
	}

	var t table
	diags = gohcl.DecodeBody(file.Body, nil, &t)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode letter table: %s", diags.Error())
	}

	d := &Deck{letters: t.Letters, decks: decks}
	seen := make(map[string]bool, len(t.Letters))
	for _, l := range t.Letters {
		if l.Letter == "" || l.Letter != strings.ToUpper(l.Letter) {
			return nil, fmt.Errorf("letter %q must be non-empty upper case", l.Letter)
		}
		if seen[l.Letter] {
			return nil, fmt.Errorf("letter %q listed twice", l.Letter)
		}
		seen[l.Letter] = true
		if l.Value <= 0 || l.Quantity <= 0 {
			return nil, fmt.Errorf("letter %s: value and quantity must be positive", l.Letter)
		}
		for range l.Quantity * decks {
			d.cards = append(d.cards, Card{Letter: l.Letter, Value: l.Value, Tier: TierFor(l.Value)})
		}
	}
	if len(d.cards) == 0 {
		return nil, fmt.Errorf("letter table is empty")
	}
	return d, nil
}

// Len is the number of cards.
func (d *Deck) Len() int { return len(d.cards) }

// Decks is the replication factor the deck was built with.
func (d *Deck) Decks() int { return d.decks }

// Letters returns the quantity table rows, quantities per single deck.
func (d *Deck) Letters() []Letter {
	return append([]Letter(nil), d.letters...)
}

// Card returns the card at index i.
func (d *Deck) Card(i int) (Card, bool) {
	if i < 0 || i >= len(d.cards) {
		return Card{}, false
	}
	return d.cards[i], true
}

// Indices returns every card index in order.
func (d *Deck) Indices() []int {
	out := make([]int, len(d.cards))
	for i := range out {
		out[i] = i
	}
	return out
}

// ByTier returns the indices of the cards in tier t, in order.
func (d *Deck) ByTier(t Tier) []int {
	var out []int
	for i, c := range d.cards {
		if c.Tier == t {
			out = append(out, i)
		}
	}
	return out
}

// Valid reports whether every index refers to a card.
func (d *Deck) Valid(cards []int) bool {
	for _, c := range cards {
		if c < 0 || c >= len(d.cards) {
			return false
		}
	}
	return true
}

// Spell concatenates the letters of cards in order.
func (d *Deck) Spell(cards []int) string {
	var b strings.Builder
	for _, c := range cards {
		if card, ok := d.Card(c); ok {
			b.WriteString(card.Letter)
		}
	}
	return b.String()
}

// Points sums the values of cards.
func (d *Deck) Points(cards []int) int {
	total := 0
	for _, c := range cards {
		if card, ok := d.Card(c); ok {
			total += card.Value
		}
	}
	return total
}

// Frequencies counts occurrences of each letter among cards.
func (d *Deck) Frequencies(cards []int) map[string]int {
	out := make(map[string]int)
	for _, c := range cards {
		if card, ok := d.Card(c); ok {
			out[card.Letter]++
		}
	}
	return out
}

// Proportions is each letter's share of the full deck.
func (d *Deck) Proportions() map[string]float64 {
	out := make(map[string]float64, len(d.letters))
	total := float64(len(d.cards))
	for _, l := range d.letters {
		out[l.Letter] = float64(l.Quantity*d.decks) / total
	}
	return out
}
