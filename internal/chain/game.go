package chain

import (
	"fmt"

	"github.com/alextwoods/woodsgames/internal/document"
	"github.com/alextwoods/woodsgames/internal/gameerr"
)

// SchemaVersion is the current game document version.
const SchemaVersion = 1

// State is a game or table state tag.
type State string

const (
	WaitingForPlayers State = "WAITING_FOR_PLAYERS"
	WaitingToPlay     State = "WAITING_TO_PLAY"
	GameOver          State = "GAME_OVER"
)

// Teams.
const (
	Green Team = "green"
	Blue  Team = "blue"
	Red   Team = "red"
)

// Draw is the winner recorded when the board fills without a winner.
const Draw Team = "NONE"

// TeamOrder is the order teams take turns in.
var TeamOrder = [...]Team{Blue, Green, Red}

var teamColors = map[Team]string{
	Green: "0x00ff00",
	Blue:  "0x0000ff",
	Red:   "0xff0000",
}

// TeamColor returns the display colour of a team.
func TeamColor(t Team) string { return teamColors[t] }

// TeamInfo is a team's roster.
type TeamInfo struct {
	Color   string   `json:"color"`
	Players []string `json:"players"`
}

// Settings are the per-game options.
type Settings struct {
	SequencesToWin  int      `json:"sequences_to_win"`
	SequenceLength  int      `json:"sequence_length"`
	Board           string   `json:"board"`
	CustomHandCards *int     `json:"custom_hand_cards"`
	CPUWaitTime     *float64 `json:"cpu_wait_time"`
}

// DefaultSettings returns the standard rules.
func DefaultSettings() Settings {
	return Settings{
		SequencesToWin: 2,
		SequenceLength: 5,
		Board:          LayoutSpiral,
	}
}

// LogType tags a log entry.
type LogType string

const (
	LogPlay        LogType = "PLAY_CARD"
	LogDeadCard    LogType = "DEAD_CARD"
	LogDrawShuffle LogType = "DRAW_SHUFFLE"
	LogInfo        LogType = "INFO"
)

// LogEntry records one event at the table.
type LogEntry struct {
	Type         LogType `json:"type"`
	Player       string  `json:"player,omitempty"`
	CardI        int     `json:"cardI"`
	Row          int     `json:"row"`
	Col          int     `json:"col"`
	Team         Team    `json:"team,omitempty"`
	Removed      Team    `json:"removed,omitempty"`
	NewSequences [][]int `json:"new_sequences,omitempty"`
	Message      string  `json:"message,omitempty"`
	Turn         int     `json:"turn"`
	Time         int64   `json:"time"`
}

// TableState is the dealt game.
type TableState struct {
	NHandCards   int              `json:"n_hand_cards"`
	Deck         []int            `json:"deck"`
	Hands        map[string][]int `json:"hands"`
	Discard      []int            `json:"discard"`
	Board        *Board           `json:"board"`
	PlayerOrder  []string         `json:"player_order"`
	ActivePlayer string           `json:"active_player"`
	State        State            `json:"state"`
	Turn         int              `json:"turn"`
	Log          []LogEntry       `json:"log"`
	Winner       Team             `json:"winner,omitempty"`
}

// Game is the persisted Sequence-Board document.
type Game struct {
	SchemaVersion int                `json:"schema_version"`
	Players       []string           `json:"players"`
	Teams         map[Team]*TeamInfo `json:"teams"`
	PlayerTeam    map[string]Team    `json:"player_team"`
	CPUPlayers    []string           `json:"cpu_players"`
	State         State              `json:"state"`
	Turn          int                `json:"turn"`
	Settings      Settings           `json:"settings"`
	TableState    *TableState        `json:"table_state"`
}

var migrations = document.Migrations{
	// Legacy documents store an empty object for an undealt table and may
	// carry a null cpu_players.
	0: func(doc map[string]any) error {
		if ts := document.Map(doc, "table_state"); ts != nil && len(ts) == 0 {
			doc["table_state"] = nil
		}
		if doc["cpu_players"] == nil {
			doc["cpu_players"] = []any{}
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
	if g.Players == nil || g.Teams == nil || g.PlayerTeam == nil {
		return gameerr.Invalid("game is missing players or teams")
	}
	switch g.State {
	case WaitingForPlayers:
	case WaitingToPlay, GameOver:
		ts := g.TableState
		if ts == nil || ts.Board == nil || ts.Hands == nil {
			return gameerr.Invalid("game in state %s has no table", g.State)
		}
		if err := ts.Board.Validate(); err != nil {
			return gameerr.Invalid("%v", err)
		}
		if len(ts.PlayerOrder) == 0 {
			return gameerr.Invalid("game in state %s has no player order", g.State)
		}
	default:
		return gameerr.Invalid("unknown game state %q", g.State)
	}
	return nil
}

// IsCPU reports whether player is CPU controlled.
func (g *Game) IsCPU(player string) bool {
	for _, p := range g.CPUPlayers {
		if p == player {
			return true
		}
	}
	return false
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

// Winner is the winning team, Draw, or NoTeam while play continues.
func (g *Game) Winner() Team {
	if g.TableState == nil {
		return NoTeam
	}
	return g.TableState.Winner
}

// Cards returns every card index held in the deck, hands and discard.
func (g *Game) Cards() []int {
	ts := g.TableState
	if ts == nil {
		return nil
	}
	out := append([]int(nil), ts.Deck...)
	for _, p := range ts.PlayerOrder {
		out = append(out, ts.Hands[p]...)
	}
	return append(out, ts.Discard...)
}

func (g *Game) String() string {
	return fmt.Sprintf("chain game (%s, %d players)", g.State, len(g.Players))
}
