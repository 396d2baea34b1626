// Package wordmine implements the Deck-Mine letter game: each player builds
// words from a personal deck plus one card from a shared market, spending
// one action per turn and buying stronger letters with banked points.
package wordmine

import (
	"fmt"

	"github.com/alextwoods/woodsgames/internal/document"
	"github.com/alextwoods/woodsgames/internal/gameerr"
	"github.com/alextwoods/woodsgames/internal/scoring"
)

// SchemaVersion is the current game document version.
const SchemaVersion = 1

// Market dimensions. Row r of the market is refilled from tier r's deck.
const (
	MarketRows = 3
	MarketCols = 4
)

// Empty marks a market slot whose deck has run out.
const Empty = -1

// Personal deck make-up per tier, and the opening hand size.
const (
	StartCommon = 5
	StartMedium = 3
	StartRare   = 2
	StartHand   = 3
)

// State is a game or turn state tag.
type State string

const (
	WaitingForPlayers State = "WAITING_FOR_PLAYERS"
	Playing           State = "PLAYING"
	WaitingToPlay     State = "WAITING_TO_PLAY"
	GameOver          State = "GAME_OVER"
)

// Settings are the per-game options.
type Settings struct {
	MaxTurns         int    `json:"max_turns"`
	EnableBonusWords bool   `json:"enable_bonus_words"`
	BonusWords       string `json:"bonus_words"`
	LongestWordBonus bool   `json:"longest_word_bonus"`
	MostWordsBonus   bool   `json:"most_words_bonus"`
	WordSmithBonus   bool   `json:"word_smith_bonus"`
}

// DefaultSettings returns the standard rules.
func DefaultSettings() Settings {
	return Settings{
		MaxTurns:         10,
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
	LogDraw        LogType = "ACTION_DRAW"
	LogShuffle     LogType = "ACTION_SHUFFLE"
	LogBuildWord   LogType = "ACTION_BUILD_WORD"
	LogBuy         LogType = "ACTION_BUY"
	LogDrawShuffle LogType = "DRAW_SHUFFLE"
	LogInfo        LogType = "INFO"
	LogGameOver    LogType = "GAME_OVER"
)

// BoardCard names a market card by index and slot.
type BoardCard struct {
	CardI int `json:"card_i"`
	Row   int `json:"row"`
	Col   int `json:"col"`
}

// LogEntry records one event at the table.
type LogEntry struct {
	Type      LogType    `json:"type"`
	Player    string     `json:"player,omitempty"`
	Message   string     `json:"message"`
	Word      string     `json:"word,omitempty"`
	WordCards []int      `json:"word_cards,omitempty"`
	Score     int        `json:"score,omitempty"`
	BoardCard *BoardCard `json:"board_card,omitempty"`
	Turn      int        `json:"turn"`
	Time      int64      `json:"time"`
}

// PlayedWord is a word a player built.
type PlayedWord struct {
	Word      string    `json:"word"`
	Cards     []int     `json:"cards"`
	Score     int       `json:"score"`
	BoardCard BoardCard `json:"board_card"`
}

// PlayerState is one player's cards and bank.
type PlayerState struct {
	Deck    []int          `json:"deck"`
	Hand    []int          `json:"hand"`
	Discard []int          `json:"discard"`
	Played  []PlayedWord   `json:"played"`
	Score   int            `json:"score"`
	Actions int            `json:"actions"`
	Bonuses *scoring.Award `json:"bonuses,omitempty"`
}

// TableState is the dealt game.
type TableState struct {
	Dealer       string                  `json:"dealer"`
	Decks        [][]int                 `json:"decks"`
	LaidOut      [][]int                 `json:"laid_out"`
	PlayersState map[string]*PlayerState `json:"players_state"`
	ActivePlayer string                  `json:"active_player"`
	TurnState    State                   `json:"turn_state"`
	Turn         int                     `json:"turn"`
	Log          []LogEntry              `json:"log"`
	Winners      []string                `json:"winners,omitempty"`
}

// Game is the persisted Deck-Mine document.
type Game struct {
	SchemaVersion int         `json:"schema_version"`
	Players       []string    `json:"players"`
	State         State       `json:"state"`
	Settings      Settings    `json:"settings"`
	NDecks        int         `json:"n_decks"`
	TableState    *TableState `json:"table_state"`
}

var migrations = document.Migrations{
	// Legacy documents keep an empty table before the deal, carry the full
	// card table under "deck" and a never-updated "score" map.
	0: func(doc map[string]any) error {
		if ts := document.Map(doc, "table_state"); ts != nil && len(ts) == 0 {
			doc["table_state"] = nil
		}
		delete(doc, "deck")
		delete(doc, "score")
		if _, ok := doc["n_decks"]; !ok {
			doc["n_decks"] = 2
		}
		if s := document.Map(doc, "settings"); s != nil {
			if _, ok := s["max_turns"]; !ok {
				s["max_turns"] = DefaultSettings().MaxTurns
			}
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
	case Playing, GameOver:
		ts := g.TableState
		if ts == nil || ts.PlayersState == nil {
			return gameerr.Invalid("game in state %s has no table", g.State)
		}
		if len(ts.Decks) != MarketRows || len(ts.LaidOut) != MarketRows {
			return gameerr.Invalid("market must have %d rows", MarketRows)
		}
		for _, row := range ts.LaidOut {
			if len(row) != MarketCols {
				return gameerr.Invalid("market rows must have %d slots", MarketCols)
			}
		}
		for _, p := range g.Players {
			if ts.PlayersState[p] == nil {
				return gameerr.Invalid("player %s has no state", p)
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

// Player returns player's state, or nil before the deal.
func (g *Game) Player(player string) *PlayerState {
	if g.TableState == nil {
		return nil
	}
	return g.TableState.PlayersState[player]
}

// Cards returns every card index in the tier decks, the market and each
// player's deck, hand and discard.
func (g *Game) Cards() []int {
	ts := g.TableState
	if ts == nil {
		return nil
	}
	var out []int
	for _, d := range ts.Decks {
		out = append(out, d...)
	}
	for _, row := range ts.LaidOut {
		for _, c := range row {
			if c != Empty {
				out = append(out, c)
			}
		}
	}
	for _, p := range g.Players {
		ps := ts.PlayersState[p]
		out = append(out, ps.Deck...)
		out = append(out, ps.Hand...)
		out = append(out, ps.Discard...)
	}
	return out
}

func (g *Game) String() string {
	return fmt.Sprintf("wordmine game (%s, %d players)", g.State, len(g.Players))
}
