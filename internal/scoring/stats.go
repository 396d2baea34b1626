package scoring

import "sort"

// ScoredWord is a word and the points it earned.
type ScoredWord struct {
	Word   string
	Points int
}

// Entry is one player's result for one round.
type Entry struct {
	Player   string
	Round    int
	Words    []ScoredWord
	Leftover int // number of leftover cards
}

// WordRecord locates a word in the game's history.
type WordRecord struct {
	Player string `json:"player"`
	Word   string `json:"word"`
	Value  int    `json:"value"`
	Round  int    `json:"round"`
}

// Count is a per-player tally.
type Count struct {
	Player string `json:"player"`
	Count  int    `json:"count"`
}

// Stats summarizes every round played so far.
type Stats struct {
	BestWords       []WordRecord `json:"best_words"`
	LongestWords    []WordRecord `json:"longest_words"`
	NWords          []Count      `json:"n_words"`
	LeftoverLetters []Count      `json:"leftover_letters"`
}

// ComputeStats builds stats from entries. Best words are ordered by points
// and longest words by length, both descending; word counts descend and
// leftover counts ascend. Ties keep entry order.
func ComputeStats(entries []Entry) Stats {
	var (
		best, longest []WordRecord
		players       []string
		nWords        = make(map[string]int)
		leftovers     = make(map[string]int)
	)
	for _, e := range entries {
		if _, ok := nWords[e.Player]; !ok {
			players = append(players, e.Player)
		}
		nWords[e.Player] += len(e.Words)
		leftovers[e.Player] += e.Leftover
		for _, w := range e.Words {
			best = append(best, WordRecord{Player: e.Player, Word: w.Word, Value: w.Points, Round: e.Round})
			longest = append(longest, WordRecord{Player: e.Player, Word: w.Word, Value: len(w.Word), Round: e.Round})
		}
	}

	byValueDesc := func(rs []WordRecord) {
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].Value > rs[j].Value })
	}
	byValueDesc(best)
	byValueDesc(longest)

	s := Stats{
		BestWords:       nonNil(best),
		LongestWords:    nonNil(longest),
		NWords:          make([]Count, 0, len(players)),
		LeftoverLetters: make([]Count, 0, len(players)),
	}
	for _, p := range players {
		s.NWords = append(s.NWords, Count{Player: p, Count: nWords[p]})
		s.LeftoverLetters = append(s.LeftoverLetters, Count{Player: p, Count: leftovers[p]})
	}
	sort.SliceStable(s.NWords, func(i, j int) bool { return s.NWords[i].Count > s.NWords[j].Count })
	sort.SliceStable(s.LeftoverLetters, func(i, j int) bool { return s.LeftoverLetters[i].Count < s.LeftoverLetters[j].Count })
	return s
}

func nonNil(rs []WordRecord) []WordRecord {
	if rs == nil {
		return []WordRecord{}
	}
	return rs
}
