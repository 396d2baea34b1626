package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/alextwoods/woodsgames/internal/chain"
)

// BoardCmd prints a board layout.
type BoardCmd struct {
	Layout string `default:"spiral" enum:"spiral,horizontal" help:"Board layout (spiral, horizontal)"`
}

func (c *BoardCmd) Run(g *Globals) error {
	board, err := chain.BuildLayout(c.Layout)
	if err != nil {
		return err
	}
	setupColor()
	fmt.Println(newBoardStyles().render(board))
	return nil
}

// setupColor picks the colour profile from the environment so NO_COLOR and
// CLICOLOR_FORCE are honoured.
func setupColor() {
	lipgloss.SetColorProfile(termenv.EnvColorProfile())
}

type boardStyles struct {
	Cell     lipgloss.Style
	Free     lipgloss.Style
	RedSuit  lipgloss.Style
	Sequence lipgloss.Style
	Frame    lipgloss.Style
}

func newBoardStyles() boardStyles {
	cell := lipgloss.NewStyle().Width(5).Align(lipgloss.Center)
	return boardStyles{
		Cell: cell,
		Free: cell.
			Bold(true).
			Foreground(lipgloss.Color("#1A1A1A")).
			Background(lipgloss.Color("#FFD700")),
		RedSuit: cell.Foreground(lipgloss.Color("#FF6B6B")),
		Sequence: lipgloss.NewStyle().
			Bold(true).
			Underline(true),
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")),
	}
}

// teamStyle colours a cell with the team's token colour.
func (s boardStyles) teamStyle(t chain.Team) lipgloss.Style {
	hex := "#" + strings.TrimPrefix(chain.TeamColor(t), "0x")
	return s.Cell.
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color(hex))
}

func (s boardStyles) render(b *chain.Board) string {
	inSeq := make(map[int]bool)
	for _, seqs := range b.Sequences {
		for _, seq := range seqs {
			for _, i := range seq {
				inSeq[i] = true
			}
		}
	}

	rows := make([]string, chain.Size)
	for r := range chain.Size {
		cells := make([]string, chain.Size)
		for c := range chain.Size {
			i := chain.Index(r, c)
			label := b.Cells[i]
			var style lipgloss.Style
			switch {
			case b.Tokens[i] != chain.NoTeam:
				style = s.teamStyle(b.Tokens[i])
			case label == chain.FreeSpace:
				style = s.Free
			case strings.HasSuffix(label, "H") || strings.HasSuffix(label, "D"):
				style = s.RedSuit
			default:
				style = s.Cell
			}
			if inSeq[i] {
				style = style.Inherit(s.Sequence)
			}
			cells[c] = style.Render(label)
		}
		rows[r] = lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	}
	return s.Frame.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
