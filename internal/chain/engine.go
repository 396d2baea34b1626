package chain

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/alextwoods/woodsgames/internal/gameerr"
	"github.com/alextwoods/woodsgames/internal/randutil"
)

// HandCards is the hand size for 2 through 12 players.
var HandCards = []int{7, 6, 6, 6, 5, 5, 4, 4, 3, 3, 3}

// DefaultCPUNames is the CPU name pool used when none is configured.
var DefaultCPUNames = []string{"bender", "data", "chip", "hal", "marvin", "cloud", "bin", "nibble"}

// ErrNoLegalMove is returned when a CPU player holds no playable card.
var ErrNoLegalMove = errors.New("no legal move")

// Engine applies actions to Sequence-Board games. It holds no game state;
// every operation works on the Game passed to it.
type Engine struct {
	rng      *rand.Rand
	clock    quartz.Clock
	logger   *log.Logger
	cpuNames []string
	defaults Settings
}

// NewEngine creates an engine drawing all randomness from rng.
func NewEngine(rng *rand.Rand, opts ...Option) *Engine {
	if rng == nil {
		panic("chain: rng is required")
	}
	e := &Engine{
		rng:      rng,
		clock:    quartz.NewReal(),
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		cpuNames: DefaultCPUNames,
		defaults: DefaultSettings(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithPrefix("chain")
	return e
}

func copySettings(s Settings) Settings {
	if s.CustomHandCards != nil {
		v := *s.CustomHandCards
		s.CustomHandCards = &v
	}
	if s.CPUWaitTime != nil {
		v := *s.CPUWaitTime
		s.CPUWaitTime = &v
	}
	return s
}

// Fresh returns a new game waiting for players.
func (e *Engine) Fresh() *Game {
	teams := make(map[Team]*TeamInfo, len(TeamOrder))
	for _, t := range TeamOrder {
		teams[t] = &TeamInfo{Color: teamColors[t], Players: []string{}}
	}
	return &Game{
		SchemaVersion: SchemaVersion,
		Players:       []string{},
		Teams:         teams,
		PlayerTeam:    make(map[string]Team),
		CPUPlayers:    []string{},
		State:         WaitingForPlayers,
		Settings:      copySettings(e.defaults),
	}
}

// AddPlayer seats player on the smaller of blue and green.
func (e *Engine) AddPlayer(g *Game, player string) error {
	if err := e.checkJoin(g, player); err != nil {
		return err
	}
	e.addPlayer(g, player)
	return nil
}

func (e *Engine) checkJoin(g *Game, player string) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if g.State != WaitingForPlayers {
		return gameerr.Reject("add_player", "cannot add a player to a game in state %s", g.State)
	}
	if player == "" {
		return gameerr.Reject("add_player", "player name is required")
	}
	if g.hasPlayer(player) {
		return gameerr.Reject("add_player", "%s is already in the game", player)
	}
	return nil
}

func (e *Engine) addPlayer(g *Game, player string) {
	g.Players = append(g.Players, player)
	team := Green
	if len(g.Teams[Blue].Players) < len(g.Teams[Green].Players) {
		team = Blue
	}
	e.assignTeam(g, player, team)
	e.logger.Debug("Player joined", "player", player, "team", team)
}

// AddCPUPlayer seats a CPU player with an unused name and returns the name.
func (e *Engine) AddCPUPlayer(g *Game) (string, error) {
	if err := g.Validate(); err != nil {
		return "", err
	}
	if g.State != WaitingForPlayers {
		return "", gameerr.Reject("add_cpu_player", "cannot add a player to a game in state %s", g.State)
	}
	var available []string
	for _, name := range e.cpuNames {
		if !g.hasPlayer(name) && !slices.Contains(available, name) {
			available = append(available, name)
		}
	}
	name, ok := randutil.Sample(e.rng, available)
	if !ok {
		return "", gameerr.Reject("add_cpu_player", "no CPU names are available")
	}
	e.addPlayer(g, name)
	g.CPUPlayers = append(g.CPUPlayers, name)
	return name, nil
}

// SetPlayerTeam moves player to team.
func (e *Engine) SetPlayerTeam(g *Game, player string, team Team) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if g.State != WaitingForPlayers {
		return gameerr.Reject("set_player_team", "cannot change teams in state %s", g.State)
	}
	if !g.hasPlayer(player) {
		return gameerr.Reject("set_player_team", "%s is not in the game", player)
	}
	if _, ok := g.Teams[team]; !ok {
		return gameerr.Reject("set_player_team", "unknown team %q", team)
	}
	e.assignTeam(g, player, team)
	return nil
}

func (e *Engine) assignTeam(g *Game, player string, team Team) {
	if prev, ok := g.PlayerTeam[player]; ok {
		if info := g.Teams[prev]; info != nil {
			info.Players = slices.DeleteFunc(info.Players, func(p string) bool { return p == player })
		}
	}
	g.PlayerTeam[player] = team
	g.Teams[team].Players = append(g.Teams[team].Players, player)
}

// SettingsUpdate carries the settings to change. Nil fields are left alone;
// a CustomHandCards of 0 clears the override.
type SettingsUpdate struct {
	SequencesToWin  *int     `json:"sequences_to_win"`
	SequenceLength  *int     `json:"sequence_length"`
	Board           *string  `json:"board"`
	CustomHandCards *int     `json:"custom_hand_cards"`
	CPUWaitTime     *float64 `json:"cpu_wait_time"`
}

// UpdateSettings merges u into the game's settings.
func (e *Engine) UpdateSettings(g *Game, u SettingsUpdate) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if g.State != WaitingForPlayers {
		return gameerr.Reject("update_settings", "cannot update settings in state %s", g.State)
	}
	if u.SequencesToWin != nil && *u.SequencesToWin < 1 {
		return gameerr.Reject("update_settings", "sequences_to_win must be at least 1")
	}
	if u.SequenceLength != nil && (*u.SequenceLength < 3 || *u.SequenceLength > Size) {
		return gameerr.Reject("update_settings", "sequence_length must be between 3 and %d", Size)
	}
	if u.Board != nil && *u.Board != LayoutHorizontal && *u.Board != LayoutSpiral {
		return gameerr.Reject("update_settings", "unknown board layout %q", *u.Board)
	}
	if u.CustomHandCards != nil && (*u.CustomHandCards < 0 || *u.CustomHandCards > DeckSize) {
		return gameerr.Reject("update_settings", "custom_hand_cards must be between 0 and %d", DeckSize)
	}
	if u.CPUWaitTime != nil && *u.CPUWaitTime < 0 {
		return gameerr.Reject("update_settings", "cpu_wait_time must not be negative")
	}

	s := &g.Settings
	if u.SequencesToWin != nil {
		s.SequencesToWin = *u.SequencesToWin
	}
	if u.SequenceLength != nil {
		s.SequenceLength = *u.SequenceLength
	}
	if u.Board != nil {
		s.Board = *u.Board
	}
	if u.CustomHandCards != nil {
		if *u.CustomHandCards == 0 {
			s.CustomHandCards = nil
		} else {
			v := *u.CustomHandCards
			s.CustomHandCards = &v
		}
	}
	if u.CPUWaitTime != nil {
		v := *u.CPUWaitTime
		s.CPUWaitTime = &v
	}
	e.logger.Debug("Updated settings", "settings", fmt.Sprintf("%+v", *s))
	return nil
}

// handSize is the number of cards dealt to each of n players.
func (s Settings) handSize(n int) int {
	if s.CustomHandCards != nil && *s.CustomHandCards > 0 {
		return *s.CustomHandCards
	}
	i := min(max(n-2, 0), len(HandCards)-1)
	return HandCards[i]
}

// Start deals the first game.
func (e *Engine) Start(g *Game) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if g.State != WaitingForPlayers {
		return gameerr.Reject("start", "cannot start a game in state %s", g.State)
	}
	if err := e.deal(g, "start"); err != nil {
		return err
	}
	e.logger.Info("Game started", "players", len(g.Players), "board", g.Settings.Board)
	e.runCPU(g)
	return nil
}

// Rematch deals a new game with the same players, teams and settings.
func (e *Engine) Rematch(g *Game) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if g.State != GameOver || g.TableState == nil || g.TableState.State != GameOver {
		return gameerr.Reject("rematch", "cannot rematch a game in state %s", g.State)
	}
	if err := e.deal(g, "rematch"); err != nil {
		return err
	}
	e.logger.Info("Rematch started", "players", len(g.Players))
	e.runCPU(g)
	return nil
}

// NewGame returns a finished game to the lobby, keeping players and teams.
func (e *Engine) NewGame(g *Game) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if g.State != GameOver {
		return gameerr.Reject("new_game", "cannot start a new game in state %s", g.State)
	}
	g.State = WaitingForPlayers
	g.TableState = nil
	g.Turn = 0
	return nil
}

// playerOrder interleaves the teams round-robin: blue, green, red, blue...
func playerOrder(g *Game) []string {
	var order []string
	for i := 0; ; i++ {
		added := false
		for _, t := range TeamOrder {
			if info := g.Teams[t]; info != nil && i < len(info.Players) {
				order = append(order, info.Players[i])
				added = true
			}
		}
		if !added {
			return order
		}
	}
}

func (e *Engine) deal(g *Game, op string) error {
	if len(g.Players) == 0 {
		return gameerr.Reject(op, "at least one player is required")
	}
	n := g.Settings.handSize(len(g.Players))
	if n*len(g.Players) > DeckSize {
		return gameerr.Reject(op, "%d players with %d cards each exceeds the deck", len(g.Players), n)
	}
	board, err := BuildLayout(g.Settings.Board)
	if err != nil {
		return gameerr.Reject(op, "%v", err)
	}
	order := playerOrder(g)

	deck := randutil.Range(e.rng, DeckSize)
	hands := make(map[string][]int, len(g.Players))
	for _, p := range g.Players {
		var hand []int
		hand, deck = randutil.Pop(deck, n)
		hands[p] = hand
	}
	active, _ := randutil.Sample(e.rng, order)

	g.State = WaitingToPlay
	g.Turn = 0
	g.TableState = &TableState{
		NHandCards:   n,
		Deck:         deck,
		Hands:        hands,
		Discard:      []int{},
		Board:        board,
		PlayerOrder:  order,
		ActivePlayer: active,
		State:        WaitingToPlay,
		Turn:         0,
		Log:          []LogEntry{},
	}
	return nil
}

// PlayCard plays cardI from player's hand at row, col.
func (e *Engine) PlayCard(g *Game, player string, cardI, row, col int) error {
	if err := g.Validate(); err != nil {
		return err
	}
	ts := g.TableState
	if g.State != WaitingToPlay || ts.State != WaitingToPlay {
		return gameerr.Reject("play_card", "game is not in play (state %s)", g.State)
	}
	if ts.ActivePlayer != player {
		return gameerr.Reject("play_card", "%s is not the active player, waiting on %s", player, ts.ActivePlayer)
	}
	handI := slices.Index(ts.Hands[player], cardI)
	if handI < 0 {
		return gameerr.Reject("play_card", "card %d is not in %s's hand", cardI, player)
	}
	team := g.PlayerTeam[player]
	card := CardAt(cardI)
	if reason := ts.Board.CheckPlay(card, row, col, team); reason != "" {
		return gameerr.Reject("play_card", "invalid play of %s: %s", card, reason)
	}

	removed := ts.Board.Apply(card, row, col, team)
	var newSeqs [][]int
	if !card.IsAntiWild() {
		var rejected [][]int
		newSeqs, rejected = ts.Board.NewSequencesAt(row, col, team, g.Settings.SequenceLength)
		if len(rejected) > 0 {
			e.logger.Warn("Filtered overlapping sequence", "team", team, "candidates", rejected, "existing", ts.Board.Sequences[team])
		}
		ts.Board.RecordSequences(team, newSeqs)
	}

	ts.Hands[player] = slices.Delete(ts.Hands[player], handI, handI+1)
	ts.Discard = append(ts.Discard, cardI)
	e.drawReplacement(g, player)

	ts.Log = append(ts.Log, LogEntry{
		Type:         LogPlay,
		Player:       player,
		CardI:        cardI,
		Row:          row,
		Col:          col,
		Team:         team,
		Removed:      removed,
		NewSequences: newSeqs,
		Turn:         ts.Turn,
		Time:         e.clock.Now().Unix(),
	})
	e.logger.Debug("Played card", "player", player, "card", card, "row", row, "col", col, "team", team)
	if len(newSeqs) > 0 {
		e.logger.Info("New sequence", "team", team, "sequences", newSeqs)
	}

	e.nextTurn(g, player)
	return nil
}

// ExchangeDeadCard discards a card with no open cell and draws another. It
// does not use up the player's turn.
func (e *Engine) ExchangeDeadCard(g *Game, player string, cardI int) error {
	if err := g.Validate(); err != nil {
		return err
	}
	ts := g.TableState
	if g.State != WaitingToPlay || ts.State != WaitingToPlay {
		return gameerr.Reject("exchange_dead_card", "game is not in play (state %s)", g.State)
	}
	if ts.ActivePlayer != player {
		return gameerr.Reject("exchange_dead_card", "%s is not the active player, waiting on %s", player, ts.ActivePlayer)
	}
	handI := slices.Index(ts.Hands[player], cardI)
	if handI < 0 {
		return gameerr.Reject("exchange_dead_card", "card %d is not in %s's hand", cardI, player)
	}
	card := CardAt(cardI)
	if !ts.Board.IsDead(card) {
		return gameerr.Reject("exchange_dead_card", "%s still has an open cell", card)
	}

	ts.Hands[player] = slices.Delete(ts.Hands[player], handI, handI+1)
	ts.Discard = append(ts.Discard, cardI)
	e.drawReplacement(g, player)

	entry := e.infoEntry(ts, player, LogDeadCard, fmt.Sprintf("Exchanged dead card %s", card))
	entry.CardI = cardI
	ts.Log = append(ts.Log, entry)
	e.logger.Debug("Exchanged dead card", "player", player, "card", card)
	return nil
}

// drawReplacement gives player the top deck card, reshuffling the discard
// pile into the deck when it runs out.
func (e *Engine) drawReplacement(g *Game, player string) {
	ts := g.TableState
	if len(ts.Deck) == 0 {
		if len(ts.Discard) == 0 {
			ts.Log = append(ts.Log, e.infoEntry(ts, player, LogInfo, "Not enough cards to draw"))
			e.logger.Warn("Deck and discard are empty", "player", player)
			return
		}
		ts.Deck = randutil.Shuffled(e.rng, ts.Discard)
		ts.Discard = []int{}
		ts.Log = append(ts.Log, e.infoEntry(ts, player, LogDrawShuffle, "Shuffled the discard pile into the deck"))
	}
	var drawn []int
	drawn, ts.Deck = randutil.Pop(ts.Deck, 1)
	ts.Hands[player] = append(ts.Hands[player], drawn...)
}

func (e *Engine) infoEntry(ts *TableState, player string, typ LogType, msg string) LogEntry {
	return LogEntry{
		Type:    typ,
		Player:  player,
		CardI:   -1,
		Row:     -1,
		Col:     -1,
		Message: msg,
		Turn:    ts.Turn,
		Time:    e.clock.Now().Unix(),
	}
}

// nextTurn ends the game on a win or full board, otherwise passes play on.
func (e *Engine) nextTurn(g *Game, player string) {
	ts := g.TableState
	for _, t := range TeamOrder {
		if len(ts.Board.Sequences[t]) >= g.Settings.SequencesToWin {
			e.endGame(g, t)
			return
		}
	}
	if ts.Board.EmptyCells() <= 4 {
		e.endGame(g, Draw)
		return
	}

	i := slices.Index(ts.PlayerOrder, player)
	ts.ActivePlayer = ts.PlayerOrder[(i+1)%len(ts.PlayerOrder)]
	ts.Turn++
	g.Turn = ts.Turn
}

func (e *Engine) endGame(g *Game, winner Team) {
	g.State = GameOver
	g.TableState.State = GameOver
	g.TableState.Winner = winner
	e.logger.Info("Game over", "winner", winner, "turn", g.TableState.Turn)
}
