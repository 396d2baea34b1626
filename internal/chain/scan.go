package chain

import (
	"math"
	"slices"
)

// Axis is a line through a cell along which sequences form.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
	Diagonal     // down and to the right
	AntiDiagonal // up and to the right
)

// Axes lists every axis in scan order.
var Axes = [...]Axis{Horizontal, Vertical, Diagonal, AntiDiagonal}

// Delta is the forward step along the axis.
func (a Axis) Delta() (dRow, dCol int) {
	switch a {
	case Horizontal:
		return 0, 1
	case Vertical:
		return 1, 0
	case Diagonal:
		return 1, 1
	default:
		return -1, 1
	}
}

func (a Axis) String() string {
	switch a {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case Diagonal:
		return "diagonal"
	case AntiDiagonal:
		return "anti-diagonal"
	default:
		return "unknown"
	}
}

const (
	// ScoreExponent shapes how sharply scores rise as a line fills.
	ScoreExponent = 1.8
	scoreEpsilon  = 0.0001
)

// Window is a line of cells through a placement. Tokens[i] is the team seen
// at Cells[i] from the scanning team's point of view: free spaces and the
// placement cell read as the scanning team.
type Window struct {
	Tokens []Team
	Cells  []int
}

// Len is the number of cells in the window.
func (w Window) Len() int { return len(w.Cells) }

// ray walks up to steps cells from row, col (inclusive) in direction dRow,
// dCol, stopping before an opposing token or the board edge.
func (b *Board) ray(row, col int, team Team, dRow, dCol, steps int) Window {
	var w Window
	for n := 0; n < steps && InBounds(row, col); n++ {
		i := Index(row, col)
		t := b.Tokens[i]
		if n > 0 && t != NoTeam && t != team {
			break
		}
		if n == 0 || b.Cells[i] == FreeSpace {
			t = team
		}
		w.Tokens = append(w.Tokens, t)
		w.Cells = append(w.Cells, i)
		row += dRow
		col += dCol
	}
	return w
}

// Scan returns the window through row, col along axis as if team held the
// cell. Each side extends at most seqLen cells including the center, so the
// window spans up to 2*seqLen-1 cells. The board is not modified.
func (b *Board) Scan(row, col int, team Team, axis Axis, seqLen int) Window {
	dr, dc := axis.Delta()
	back := b.ray(row, col, team, -dr, -dc, seqLen)
	fwd := b.ray(row, col, team, dr, dc, seqLen)

	n := len(back.Cells) - 1 + len(fwd.Cells)
	w := Window{Tokens: make([]Team, 0, n), Cells: make([]int, 0, n)}
	for i := len(back.Cells) - 1; i > 0; i-- {
		w.Tokens = append(w.Tokens, back.Tokens[i])
		w.Cells = append(w.Cells, back.Cells[i])
	}
	w.Tokens = append(w.Tokens, fwd.Tokens...)
	w.Cells = append(w.Cells, fwd.Cells...)
	return w
}

// DetectSequence finds the longest run of team cells in w that may become a
// new sequence, given the team's existing sequences. Cells of an existing
// sequence that shares more than one cell with the window are locked: a run
// may take one locked cell at either end but never passes through one. The
// result is the run's board cells, or nil if it is shorter than seqLen.
func DetectSequence(w Window, existing [][]int, team Team, seqLen int) []int {
	locked := make([]bool, w.Len())
	for _, seq := range existing {
		var shared []int
		for p, cell := range w.Cells {
			if slices.Contains(seq, cell) {
				shared = append(shared, p)
			}
		}
		if len(shared) > 1 {
			for _, p := range shared {
				locked[p] = true
			}
		}
	}

	var run, best []int
	for p, t := range w.Tokens {
		switch {
		case locked[p]:
			if len(run) > 0 {
				run = append(run, p)
				if len(run) > len(best) {
					best = run
				}
				run = nil
			}
		case t == team:
			if p > 0 && locked[p-1] && len(run) == 0 {
				run = append(run, p-1)
			}
			run = append(run, p)
		default:
			if len(run) > len(best) {
				best = run
			}
			run = nil
		}
	}
	if len(run) > len(best) {
		best = run
	}

	if len(best) < seqLen {
		return nil
	}
	cells := make([]int, len(best))
	for i, p := range best {
		cells[i] = w.Cells[p]
	}
	return cells
}

// overlap counts cells present in both a and b.
func overlap(a, b []int) int {
	n := 0
	for _, x := range a {
		if slices.Contains(b, x) {
			n++
		}
	}
	return n
}

// NewSequencesAt finds the sequences completed by team holding row, col.
// Candidates sharing more than one cell with an existing team sequence are
// returned separately in rejected. Nothing is recorded on the board.
func (b *Board) NewSequencesAt(row, col int, team Team, seqLen int) (found, rejected [][]int) {
	existing := b.Sequences[team]
	for _, axis := range Axes {
		w := b.Scan(row, col, team, axis, seqLen)
		candidate := DetectSequence(w, existing, team, seqLen)
		if candidate == nil {
			continue
		}
		ok := true
		for _, seq := range existing {
			if overlap(seq, candidate) > 1 {
				ok = false
				break
			}
		}
		if ok {
			found = append(found, candidate)
		} else {
			rejected = append(rejected, candidate)
		}
	}
	return found, rejected
}

// RecordSequences appends seqs to team's recorded sequences.
func (b *Board) RecordSequences(team Team, seqs [][]int) {
	if len(seqs) == 0 {
		return
	}
	if b.Sequences == nil {
		b.Sequences = make(map[Team][][]int)
	}
	b.Sequences[team] = append(b.Sequences[team], seqs...)
}

// ScoreWindow rates how close a window is to completing a sequence. Windows
// shorter than seqLen can never complete and score 0; a full window scores
// near seqLen/ε^1.8.
func ScoreWindow(w Window, seqLen int) float64 {
	if w.Len() < seqLen {
		return 0
	}
	owned := 0
	for _, t := range w.Tokens {
		if t != NoTeam {
			owned++
		}
	}
	toSeq := math.Max(float64(seqLen-owned), scoreEpsilon)
	return float64(seqLen) / math.Pow(toSeq, ScoreExponent)
}

// ScoreMove sums ScoreWindow over all axes for team holding row, col.
func (b *Board) ScoreMove(row, col int, team Team, seqLen int) float64 {
	score := 0.0
	for _, axis := range Axes {
		score += ScoreWindow(b.Scan(row, col, team, axis, seqLen), seqLen)
	}
	return score
}
