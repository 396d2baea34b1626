// Package scoring computes the cross-player word bonuses and running
// statistics shared by the letter games.
package scoring

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/alextwoods/woodsgames/internal/words"
)

const (
	// Bonus is the fixed award for each bonus category and each bonus-list word.
	Bonus = 10
	// WordsmithLength is the minimum word length for the wordsmith bonus.
	WordsmithLength = 7
)

// Rules selects which bonuses are in play. An empty BonusList disables
// word-list bonuses.
type Rules struct {
	LongestWord bool
	MostWords   bool
	Wordsmith   bool
	BonusList   string
}

// PlayerWords is the set of words one player scored.
type PlayerWords struct {
	Player string
	Words  []string
}

// Award is what one player earned from bonuses.
type Award struct {
	LongestWord     int      `json:"longest_word_bonus,omitempty"`
	MostWords       int      `json:"most_words_bonus,omitempty"`
	Wordsmith       int      `json:"word_smith_bonus,omitempty"`
	BonusWordsScore int      `json:"bonus_words_score,omitempty"`
	BonusWords      []string `json:"bonus_words,omitempty"`
}

// Total sums every bonus in the award.
func (a Award) Total() int {
	return a.LongestWord + a.MostWords + a.Wordsmith + a.BonusWordsScore
}

// LongestWordLength is the length of the longest word in ws, or 0.
func LongestWordLength(ws []string) int {
	longest := 0
	for _, w := range ws {
		if len(w) > longest {
			longest = len(w)
		}
	}
	return longest
}

// Awards computes bonuses for every player. Longest-word and most-words go
// only to a strict leader and need at least two players. Word-list lookup
// failures are logged and the word is skipped.
func Awards(ctx context.Context, players []PlayerWords, rules Rules, lists words.WordLists, logger *log.Logger) map[string]Award {
	awards := make(map[string]Award, len(players))
	for _, p := range players {
		awards[p.Player] = Award{}
	}

	if rules.LongestWord && len(players) >= 2 {
		if leader, ok := strictLeader(players, func(p PlayerWords) int { return LongestWordLength(p.Words) }); ok {
			a := awards[leader]
			a.LongestWord = Bonus
			awards[leader] = a
		}
	}

	if rules.Wordsmith {
		for _, p := range players {
			if LongestWordLength(p.Words) >= WordsmithLength {
				a := awards[p.Player]
				a.Wordsmith = Bonus
				awards[p.Player] = a
			}
		}
	}

	if rules.MostWords && len(players) >= 2 {
		if leader, ok := strictLeader(players, func(p PlayerWords) int { return len(p.Words) }); ok {
			a := awards[leader]
			a.MostWords = Bonus
			awards[leader] = a
		}
	}

	if rules.BonusList != "" && lists != nil {
		for _, p := range players {
			var matched []string
			for _, w := range p.Words {
				ok, err := lists.Contains(ctx, rules.BonusList, words.Normalize(w))
				if err != nil {
					logger.Warn("Bonus word lookup failed", "list", rules.BonusList, "word", w, "error", err)
					continue
				}
				if ok {
					matched = append(matched, w)
				}
			}
			if len(matched) > 0 {
				a := awards[p.Player]
				a.BonusWords = matched
				a.BonusWordsScore = Bonus * len(matched)
				awards[p.Player] = a
				logger.Debug("Bonus words", "player", p.Player, "words", matched)
			}
		}
	}

	return awards
}

func strictLeader(players []PlayerWords, metric func(PlayerWords) int) (string, bool) {
	best, second := -1, -1
	leader := ""
	for _, p := range players {
		m := metric(p)
		switch {
		case m > best:
			second = best
			best = m
			leader = p.Player
		case m > second:
			second = m
		}
	}
	return leader, best > second
}
