package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/alextwoods/woodsgames/internal/letters"
)

// DeckCmd prints the letter card table.
type DeckCmd struct {
	Decks int `default:"1" help:"Number of decks to replicate"`
}

func (c *DeckCmd) Run(g *Globals) error {
	deck, err := letters.Standard(c.Decks)
	if err != nil {
		return err
	}
	setupColor()
	fmt.Println(renderDeck(deck))
	return nil
}

var tierColors = map[letters.Tier]lipgloss.Color{
	letters.Common: lipgloss.Color("#96CEB4"),
	letters.Medium: lipgloss.Color("#FFEAA7"),
	letters.Rare:   lipgloss.Color("#FF6B6B"),
}

func renderDeck(deck *letters.Deck) string {
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	col := lipgloss.NewStyle().Width(10)

	lines := []string{header.Render(
		col.Render("LETTER") + col.Render("VALUE") + col.Render("QUANTITY") + col.Render("TIER"),
	)}
	for _, l := range deck.Letters() {
		tier := letters.TierFor(l.Value)
		lines = append(lines,
			col.Render(l.Letter)+
				col.Render(fmt.Sprint(l.Value))+
				col.Render(fmt.Sprint(l.Quantity*deck.Decks()))+
				col.Foreground(tierColors[tier]).Render(tier.String()))
	}

	summary := fmt.Sprintf("%d cards", deck.Len())
	for _, t := range letters.Tiers {
		summary += fmt.Sprintf(", %d %s", len(deck.ByTier(t)), t)
	}
	lines = append(lines, "", summary)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
