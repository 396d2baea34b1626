// Package ziddler implements the Meld letter game. Each round players draw
// and discard until someone lays their hand down as words; everyone else
// then gets one last turn to lay down before the round is scored.
package ziddler

import (
	"fmt"

	"github.com/alextwoods/woodsgames/internal/document"
	"github.com/alextwoods/woodsgames/internal/gameerr"
	"github.com/alextwoods/woodsgames/internal/scoring"
)

// SchemaVersion is the current game document version.
const SchemaVersion = 1

// LastRound is the final round number; rounds count from 0.
const LastRound = 7

// HandSize is the number of cards dealt in round.
func HandSize(round int) int { return round + 3 }

// State is a game or turn state tag.
type State string

const (
	WaitingForPlayers   State = "WAITING_FOR_PLAYERS"
	Playing             State = "PLAYING"
	WaitingForNextRound State = "WAITING_FOR_NEXT_ROUND"
	GameOver            State = "GAME_OVER"

	WaitingToDraw    State = "WAITING_TO_DRAW"
	WaitingToDiscard State = "WAITING_TO_DISCARD"
	RoundComplete    State = "ROUND_COMPLETE"
)

// Source is the pile a draw is taken from.
type Source string

const (
	FromDeck    Source = "DECK"
	FromDiscard Source = "DISCARD"
)

// Settings are the per-game options.
type Settings struct {
	EnableBonusWords bool   `json:"enable_bonus_words"`
	BonusWords       string `json:"bonus_words"`
	LongestWordBonus bool   `json:"longest_word_bonus"`
	MostWordsBonus   bool   `json:"most_words_bonus"`
	WordSmithBonus   bool   `json:"word_smith_bonus"`
}

// DefaultSettings returns the standard rules.
func DefaultSettings() Settings {
	return Settings{
		EnableBonusWords: true,
		BonusWords:       "animals",
		LongestWordBonus: true,
		WordSmithBonus:   true,
	}
}

func (s Settings) rules() scoring.Rules {
	r := scoring.Rules{
		LongestWord: s.LongestWordBonus,
		MostWords:   s.MostWordsBonus,
		Wordsmith:   s.WordSmithBonus,
	}
	if s.EnableBonusWords {
		r.BonusList = s.BonusWords
	}
	return r
}

// LogType tags a log entry.
type LogType string

const (
	LogDraw          LogType = "DRAW"
	LogDiscard       LogType = "DISCARD"
	LogLayDown       LogType = "LAY_DOWN"
	LogInfo          LogType = "INFO"
	LogRoundComplete LogType = "ROUND_COMPLETE"
	LogGameOver      LogType = "GAME_OVER"
)

// LogEntry records one event at the table.
type LogEntry struct {
	Type    LogType `json:"type"`
	Player  string  `json:"player,omitempty"`
	Message string  `json:"message"`
	Turn    int     `json:"turn"`
	Time    int64   `json:"time"`
}

// Word is a scored word group.
type Word struct {
	Word   string `json:"word"`
	Points int    `json:"points"`
}

// Meld is a player's laid down hand: word groups and leftover cards. Bonus
// fields are filled in when the round ends.
type Meld struct {
	Cards    [][]int `json:"cards"`
	Words    []Word  `json:"words"`
	Leftover []int   `json:"leftover"`
	Score    int     `json:"score"`
	scoring.Award
}

// WordStrings lists the meld's words in order.
func (m *Meld) WordStrings() []string {
	out := make([]string, len(m.Words))
	for i, w := range m.Words {
		out[i] = w.Word
	}
	return out
}

// CardEV compares how often a letter was played with its share of the deck.
type CardEV struct {
	P      float64 `json:"p"`
	EV     float64 `json:"ev"`
	Actual int     `json:"actual"`
}

// TableState is the current round.
type TableState struct {
	Dealer       string            `json:"dealer"`
	Deck         []int             `json:"deck"`
	Hands        map[string][]int  `json:"hands"`
	Discard      []int             `json:"discard"`
	LaidDown     map[string]*Meld  `json:"laid_down"`
	LayingDown   *Meld             `json:"laying_down"`
	Definitions  map[string]string `json:"definitions,omitempty"`
	ActivePlayer string            `json:"active_player"`
	TurnState    State             `json:"turn_state"`
	Turn         int               `json:"turn"`
	Log          []LogEntry        `json:"log"`
}

// Game is the persisted Meld document.
type Game struct {
	SchemaVersion  int                `json:"schema_version"`
	Players        []string           `json:"players"`
	State          State              `json:"state"`
	Round          int                `json:"round"`
	Score          map[string]int     `json:"score"`
	Settings       Settings           `json:"settings"`
	NDecks         int                `json:"n_decks"`
	RoundSummaries []map[string]*Meld `json:"round_summaries"`
	Stats          *scoring.Stats     `json:"stats,omitempty"`
	CardCounts     map[string]int     `json:"card_counts"`
	CardEV         map[string]CardEV  `json:"card_ev"`
	TableState     *TableState        `json:"table_state"`
}

var migrations = document.Migrations{
	// Legacy documents keep an empty table before the deal, carry the full
	// card table under "deck", and may lack the round bookkeeping. Stats
	// were stored as tuples and are recomputed at the next round end.
	0: func(doc map[string]any) error {
		if ts := document.Map(doc, "table_state"); ts != nil && len(ts) == 0 {
			doc["table_state"] = nil
		}
		delete(doc, "deck")
		delete(doc, "stats")
		for _, key := range []string{"score", "card_counts", "card_ev"} {
			if doc[key] == nil {
				doc[key] = map[string]any{}
			}
		}
		if doc["round_summaries"] == nil {
			doc["round_summaries"] = []any{}
		}
		if doc["round"] == nil {
			doc["round"] = 0
		}
		if doc["n_decks"] == nil {
			doc["n_decks"] = 1
		}
		return nil
	},
}

// Decode loads a game document, migrating older versions.
func Decode(data []byte) (*Game, error) {
	var g Game
	if err := document.Decode(data, SchemaVersion, migrations, &g); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Validate checks the fields every operation relies on.
func (g *Game) Validate() error {
	if g.Players == nil {
		return gameerr.Invalid("game has no players list")
	}
	switch g.State {
	case WaitingForPlayers:
	case Playing, WaitingForNextRound, GameOver:
		ts := g.TableState
		if ts == nil || ts.Hands == nil || ts.LaidDown == nil {
			return gameerr.Invalid("game in state %s has no table", g.State)
		}
		if g.Score == nil {
			return gameerr.Invalid("game in state %s has no scores", g.State)
		}
		for _, p := range g.Players {
			if _, ok := ts.Hands[p]; !ok {
				return gameerr.Invalid("player %s has no hand", p)
			}
		}
	default:
		return gameerr.Invalid("unknown game state %q", g.State)
	}
	return nil
}

func (g *Game) hasPlayer(player string) bool {
	for _, p := range g.Players {
		if p == player {
			return true
		}
	}
	return false
}

// ActivePlayer is the player to move, or "" before the deal.
func (g *Game) ActivePlayer() string {
	if g.TableState == nil {
		return ""
	}
	return g.TableState.ActivePlayer
}

// Hand returns player's hand.
func (g *Game) Hand(player string) []int {
	if g.TableState == nil {
		return nil
	}
	return g.TableState.Hands[player]
}

// Cards returns every card index in the deck, hands, discard and melds.
func (g *Game) Cards() []int {
	ts := g.TableState
	if ts == nil {
		return nil
	}
	out := append([]int(nil), ts.Deck...)
	for _, p := range g.Players {
		out = append(out, ts.Hands[p]...)
	}
	out = append(out, ts.Discard...)
	for _, p := range g.Players {
		m := ts.LaidDown[p]
		if m == nil {
			continue
		}
		for _, group := range m.Cards {
			out = append(out, group...)
		}
		out = append(out, m.Leftover...)
	}
	return out
}

func (g *Game) String() string {
	return fmt.Sprintf("ziddler game (%s, round %d, %d players)", g.State, g.Round, len(g.Players))
}
