package chain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

const (
	// Size is the board edge length.
	Size = 10
	// Cells is the number of board cells.
	Cells = Size * Size
	// FreeSpace marks the four corners.
	FreeSpace = "F"
)

// Board layouts.
const (
	LayoutHorizontal = "horizontal"
	LayoutSpiral     = "spiral"
)

// Team names a team; the zero value means no team.
type Team string

// NoTeam is an empty cell.
const NoTeam Team = ""

// MarshalJSON encodes an empty team as null.
func (t Team) MarshalJSON() ([]byte, error) {
	if t == NoTeam {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

// UnmarshalJSON accepts null as NoTeam.
func (t *Team) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = NoTeam
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = Team(s)
	return nil
}

// Board is the 10x10 card grid with team tokens and recorded sequences.
type Board struct {
	Cells     []string         `json:"board"`
	Tokens    []Team           `json:"tokens"`
	Sequences map[Team][][]int `json:"sequences"`
}

// NewBoard wraps a 100-cell layout with no tokens.
func NewBoard(cells []string) (*Board, error) {
	if len(cells) != Cells {
		return nil, fmt.Errorf("only %dx%d boards are supported, got %d cells", Size, Size, len(cells))
	}
	return &Board{
		Cells:     slices.Clone(cells),
		Tokens:    make([]Team, Cells),
		Sequences: make(map[Team][][]int),
	}, nil
}

// BuildLayout builds an empty board with the named layout.
func BuildLayout(name string) (*Board, error) {
	var order []int
	switch name {
	case LayoutHorizontal:
		order = horizontalOrder()
	case LayoutSpiral:
		order = spiralOrder()
	default:
		return nil, fmt.Errorf("unknown board layout %q", name)
	}
	return NewBoard(fill(order))
}

func isCorner(i int) bool {
	r, c := i/Size, i%Size
	return (r == 0 || r == Size-1) && (c == 0 || c == Size-1)
}

// fill walks cells in order, placing the next non-jack card on each
// non-corner cell. 96 playable cells take both decks less the jacks.
func fill(order []int) []string {
	cells := make([]string, Cells)
	next := 0
	for _, i := range order {
		if isCorner(i) {
			cells[i] = FreeSpace
			continue
		}
		card := CardAt(next)
		next++
		if card.IsJack() {
			card = CardAt(next)
			next++
		}
		cells[i] = card.String()
	}
	return cells
}

func horizontalOrder() []int {
	order := make([]int, Cells)
	for i := range order {
		order[i] = i
	}
	return order
}

// spiralOrder walks the outer ring inward: along the top row, down the
// right column, then the bottom row and left column each in ascending order.
func spiralOrder() []int {
	order := make([]int, 0, Cells)
	top, bottom, left, right := 0, Size-1, 0, Size-1
	dir := 0
	for top <= bottom && left <= right {
		switch dir {
		case 0:
			for c := left; c <= right; c++ {
				order = append(order, top*Size+c)
			}
			top++
		case 1:
			for r := top; r <= bottom; r++ {
				order = append(order, r*Size+right)
			}
			right--
		case 2:
			for c := left; c <= right; c++ {
				order = append(order, bottom*Size+c)
			}
			bottom--
		case 3:
			for r := top; r <= bottom; r++ {
				order = append(order, r*Size+left)
			}
			left++
		}
		dir = (dir + 1) % 4
	}
	return order
}

// Index converts a row and column to a cell index.
func Index(row, col int) int { return row*Size + col }

// RowCol converts a cell index to a row and column.
func RowCol(i int) (row, col int) { return i / Size, i % Size }

// InBounds reports whether row and col are on the board.
func InBounds(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
}

// At returns the printed cell at row, col.
func (b *Board) At(row, col int) string { return b.Cells[Index(row, col)] }

// TokenAt returns the team holding row, col.
func (b *Board) TokenAt(row, col int) Team { return b.Tokens[Index(row, col)] }

// Locations returns the cells printed with card c. Jacks have none.
func (b *Board) Locations(c Card) []int {
	want := c.String()
	var out []int
	for i, cell := range b.Cells {
		if cell == want {
			out = append(out, i)
		}
	}
	return out
}

// IsDead reports whether c is an ordinary card whose cells are all taken.
func (b *Board) IsDead(c Card) bool {
	if c.IsJack() {
		return false
	}
	for _, i := range b.Locations(c) {
		if b.Tokens[i] == NoTeam {
			return false
		}
	}
	return true
}

// EmptyCells counts cells with no token, corners included.
func (b *Board) EmptyCells() int {
	n := 0
	for _, t := range b.Tokens {
		if t == NoTeam {
			n++
		}
	}
	return n
}

// PartOfSequence reports whether the token at row, col belongs to one of
// its team's recorded sequences.
func (b *Board) PartOfSequence(row, col int) bool {
	team := b.TokenAt(row, col)
	if team == NoTeam {
		return false
	}
	i := Index(row, col)
	for _, seq := range b.Sequences[team] {
		if slices.Contains(seq, i) {
			return true
		}
	}
	return false
}

// CheckPlay returns why playing c at row, col for team is illegal, or "".
func (b *Board) CheckPlay(c Card, row, col int, team Team) string {
	if !InBounds(row, col) {
		return fmt.Sprintf("cell %d,%d is off the board", row, col)
	}
	cell := b.At(row, col)
	token := b.TokenAt(row, col)
	switch {
	case c.IsWild():
		if cell == FreeSpace {
			return "cannot play on a free space"
		}
		if token != NoTeam {
			return fmt.Sprintf("cell %d,%d is occupied", row, col)
		}
	case c.IsAntiWild():
		if cell == FreeSpace {
			return "cannot play on a free space"
		}
		if token == NoTeam || token == team {
			return fmt.Sprintf("cell %d,%d has no opposing token", row, col)
		}
		if b.PartOfSequence(row, col) {
			return fmt.Sprintf("cell %d,%d is part of a sequence", row, col)
		}
	default:
		if cell != c.String() {
			return fmt.Sprintf("card %s does not match cell %d,%d (%s)", c, row, col, cell)
		}
		if token != NoTeam {
			return fmt.Sprintf("cell %d,%d is occupied", row, col)
		}
	}
	return ""
}

// ValidPlay reports whether c may be played at row, col for team.
func (b *Board) ValidPlay(c Card, row, col int, team Team) bool {
	return b.CheckPlay(c, row, col, team) == ""
}

// Apply places or removes a token. The play must already be valid. It
// returns the removed team for anti-wild plays.
func (b *Board) Apply(c Card, row, col int, team Team) (removed Team) {
	i := Index(row, col)
	if c.IsAntiWild() {
		removed = b.Tokens[i]
		b.Tokens[i] = NoTeam
		return removed
	}
	b.Tokens[i] = team
	return NoTeam
}

// Validate checks the board's shape.
func (b *Board) Validate() error {
	if len(b.Cells) != Cells || len(b.Tokens) != Cells {
		return fmt.Errorf("board must have %d cells and tokens, got %d and %d", Cells, len(b.Cells), len(b.Tokens))
	}
	for team, seqs := range b.Sequences {
		for _, seq := range seqs {
			for _, i := range seq {
				if i < 0 || i >= Cells {
					return fmt.Errorf("team %s sequence cell %d is off the board", team, i)
				}
			}
		}
	}
	return nil
}

// Clone returns a deep copy.
func (b *Board) Clone() *Board {
	c := &Board{
		Cells:     slices.Clone(b.Cells),
		Tokens:    slices.Clone(b.Tokens),
		Sequences: make(map[Team][][]int, len(b.Sequences)),
	}
	for team, seqs := range b.Sequences {
		cs := make([][]int, len(seqs))
		for i, s := range seqs {
			cs[i] = slices.Clone(s)
		}
		c.Sequences[team] = cs
	}
	return c
}

// String renders the board as tab-separated rows. Tokens show as _R_, or
// XRX when part of a sequence.
func (b *Board) String() string {
	inSeq := make(map[int]bool)
	for _, seqs := range b.Sequences {
		for _, s := range seqs {
			for _, i := range s {
				inSeq[i] = true
			}
		}
	}

	var sb strings.Builder
	for r := range Size {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for c := range Size {
			if c > 0 {
				sb.WriteByte('\t')
			}
			i := Index(r, c)
			t := b.Tokens[i]
			switch {
			case t == NoTeam:
				sb.WriteString(b.Cells[i])
			case inSeq[i]:
				sb.WriteString("X" + strings.ToUpper(string(t[0])) + "X")
			default:
				sb.WriteString("_" + strings.ToUpper(string(t[0])) + "_")
			}
		}
	}
	return sb.String()
}
