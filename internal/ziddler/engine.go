package ziddler

import (
	"context"
	"fmt"
	"io"
	"maps"
	"math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/alextwoods/woodsgames/internal/gameerr"
	"github.com/alextwoods/woodsgames/internal/letters"
	"github.com/alextwoods/woodsgames/internal/randutil"
	"github.com/alextwoods/woodsgames/internal/scoring"
	"github.com/alextwoods/woodsgames/internal/words"
)

// Engine applies actions to Meld games. It holds no game state.
type Engine struct {
	rng      *rand.Rand
	clock    quartz.Clock
	logger   *log.Logger
	deck     *letters.Deck
	lists    words.WordLists
	dict     words.Dictionary
	defaults Settings
}

// NewEngine creates an engine drawing all randomness from rng.
func NewEngine(rng *rand.Rand, opts ...Option) *Engine {
	if rng == nil {
		panic("ziddler: rng is required")
	}
	e := &Engine{
		rng:      rng,
		clock:    quartz.NewReal(),
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		defaults: DefaultSettings(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.deck == nil {
		e.deck = letters.MustStandard(1)
	}
	e.logger = e.logger.WithPrefix("ziddler")
	return e
}

// Deck is the letter table games are played with.
func (e *Engine) Deck() *letters.Deck { return e.deck }

// Fresh returns a new game waiting for players.
func (e *Engine) Fresh() *Game {
	return &Game{
		SchemaVersion:  SchemaVersion,
		Players:        []string{},
		State:          WaitingForPlayers,
		Score:          map[string]int{},
		Settings:       e.defaults,
		NDecks:         e.deck.Decks(),
		RoundSummaries: []map[string]*Meld{},
		CardCounts:     map[string]int{},
		CardEV:         map[string]CardEV{},
	}
}

func (e *Engine) validate(g *Game) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if g.State != WaitingForPlayers && g.NDecks != e.deck.Decks() {
		return gameerr.Invalid("game uses %d decks, engine has %d", g.NDecks, e.deck.Decks())
	}
	return nil
}

// AddPlayer seats player.
func (e *Engine) AddPlayer(g *Game, player string) error {
	if err := e.validate(g); err != nil {
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
	g.Players = append(g.Players, player)
	e.logger.Debug("Player joined", "player", player)
	return nil
}

// SettingsUpdate carries the settings to change. Nil fields are left alone.
type SettingsUpdate struct {
	EnableBonusWords *bool   `json:"enable_bonus_words"`
	BonusWords       *string `json:"bonus_words"`
	LongestWordBonus *bool   `json:"longest_word_bonus"`
	MostWordsBonus   *bool   `json:"most_words_bonus"`
	WordSmithBonus   *bool   `json:"word_smith_bonus"`
}

// UpdateSettings merges u into the game's settings.
func (e *Engine) UpdateSettings(g *Game, u SettingsUpdate) error {
	if err := e.validate(g); err != nil {
		return err
	}
	if g.State != WaitingForPlayers {
		return gameerr.Reject("update_settings", "cannot update settings in state %s", g.State)
	}
	s := &g.Settings
	if u.EnableBonusWords != nil {
		s.EnableBonusWords = *u.EnableBonusWords
	}
	if u.BonusWords != nil {
		s.BonusWords = words.Normalize(*u.BonusWords)
	}
	if u.LongestWordBonus != nil {
		s.LongestWordBonus = *u.LongestWordBonus
	}
	if u.MostWordsBonus != nil {
		s.MostWordsBonus = *u.MostWordsBonus
	}
	if u.WordSmithBonus != nil {
		s.WordSmithBonus = *u.WordSmithBonus
	}
	e.logger.Debug("Updated settings", "settings", fmt.Sprintf("%+v", *s))
	return nil
}

// Start deals round 0.
func (e *Engine) Start(g *Game) error {
	if err := e.validate(g); err != nil {
		return err
	}
	if g.State != WaitingForPlayers {
		return gameerr.Reject("start", "cannot start a game in state %s", g.State)
	}
	if err := e.checkPlayers(g, "start"); err != nil {
		return err
	}
	e.reset(g)
	e.logger.Info("Game started", "players", len(g.Players))
	return nil
}

// NewGame starts over with the same players once a game is over.
func (e *Engine) NewGame(g *Game) error {
	if err := e.validate(g); err != nil {
		return err
	}
	if g.State != GameOver {
		return gameerr.Reject("new_game", "cannot start a new game in state %s", g.State)
	}
	if err := e.checkPlayers(g, "new_game"); err != nil {
		return err
	}
	e.reset(g)
	e.logger.Info("New game started", "players", len(g.Players))
	return nil
}

// NewRound deals the next round after one completes.
func (e *Engine) NewRound(g *Game) error {
	if err := e.validate(g); err != nil {
		return err
	}
	if g.State != WaitingForNextRound {
		return gameerr.Reject("new_round", "cannot start a round in state %s", g.State)
	}
	g.Round++
	g.State = Playing
	e.startRound(g, g.TableState.Dealer)
	e.logger.Info("Round started", "round", g.Round, "dealer", g.TableState.Dealer)
	return nil
}

// checkPlayers rejects player counts the deck cannot deal the last round to.
func (e *Engine) checkPlayers(g *Game, op string) error {
	n := len(g.Players)
	if n == 0 {
		return gameerr.Reject(op, "at least one player is required")
	}
	if n*HandSize(LastRound)+2 > e.deck.Len() {
		return gameerr.Reject(op, "too many players (%d) for a %d card deck", n, e.deck.Len())
	}
	return nil
}

func (e *Engine) reset(g *Game) {
	g.State = Playing
	g.Round = 0
	g.NDecks = e.deck.Decks()
	g.Score = make(map[string]int, len(g.Players))
	for _, p := range g.Players {
		g.Score[p] = 0
	}
	g.RoundSummaries = []map[string]*Meld{}
	g.Stats = nil
	g.CardCounts = map[string]int{}
	g.CardEV = map[string]CardEV{}
	// the deal rotates before round 0, so the second player deals it
	e.startRound(g, g.Players[0])
}

// startRound rotates the dealer on from prevDealer and deals.
func (e *Engine) startRound(g *Game, prevDealer string) {
	dealer := nextPlayer(g.Players, prevDealer)
	deck := randutil.Range(e.rng, e.deck.Len())
	hands := make(map[string][]int, len(g.Players))
	for _, p := range g.Players {
		hands[p], deck = randutil.Pop(deck, HandSize(g.Round))
	}
	var discard []int
	discard, deck = randutil.Pop(deck, 2)

	g.TableState = &TableState{
		Dealer:       dealer,
		Deck:         deck,
		Hands:        hands,
		Discard:      discard,
		LaidDown:     map[string]*Meld{},
		ActivePlayer: nextPlayer(g.Players, dealer),
		TurnState:    WaitingToDraw,
		Turn:         1,
		Log:          []LogEntry{},
	}
}

func nextPlayer(players []string, player string) string {
	i := slices.Index(players, player)
	return players[(i+1)%len(players)]
}

func (e *Engine) entry(ts *TableState, player string, typ LogType, msg string) LogEntry {
	return LogEntry{
		Type:    typ,
		Player:  player,
		Message: msg,
		Turn:    ts.Turn,
		Time:    e.clock.Now().Unix(),
	}
}

func (e *Engine) checkTurn(g *Game, op, player string, want State) error {
	if err := e.validate(g); err != nil {
		return err
	}
	ts := g.TableState
	if g.State != Playing {
		return gameerr.Reject(op, "game is not in play (state %s)", g.State)
	}
	if ts.ActivePlayer != player {
		return gameerr.Reject(op, "%s is not the active player, waiting on %s", player, ts.ActivePlayer)
	}
	if ts.TurnState != want {
		return gameerr.Reject(op, "cannot %s in turn state %s", op, ts.TurnState)
	}
	return nil
}

// Draw takes the top card of the deck or discard pile. An empty pile is
// logged and the hand is left as it was.
func (e *Engine) Draw(g *Game, player string, src Source) error {
	if err := e.checkTurn(g, "draw", player, WaitingToDraw); err != nil {
		return err
	}
	ts := g.TableState
	var pile *[]int
	switch src {
	case FromDeck:
		pile = &ts.Deck
	case FromDiscard:
		pile = &ts.Discard
	default:
		return gameerr.Reject("draw", "unknown draw source %q", src)
	}

	var drawn []int
	drawn, *pile = randutil.Pop(*pile, 1)
	if len(drawn) == 0 {
		ts.Log = append(ts.Log, e.entry(ts, player, LogInfo, fmt.Sprintf("No cards left to draw from the %s", src)))
		e.logger.Warn("Drew from an empty pile", "player", player, "source", src)
	} else {
		ts.Hands[player] = append(ts.Hands[player], drawn...)
		ts.Log = append(ts.Log, e.entry(ts, player, LogDraw, fmt.Sprintf("Drew from the %s", src)))
	}
	ts.TurnState = WaitingToDiscard
	e.logger.Debug("Drew", "player", player, "source", src)
	return nil
}

// Discard ends the turn by discarding card. Once anyone has laid down the
// remaining players must lay down instead.
func (e *Engine) Discard(ctx context.Context, g *Game, player string, card int) error {
	if err := e.checkTurn(g, "discard", player, WaitingToDiscard); err != nil {
		return err
	}
	ts := g.TableState
	if len(ts.LaidDown) > 0 {
		return gameerr.Reject("discard", "last turn, %s must lay down", player)
	}
	handI := slices.Index(ts.Hands[player], card)
	if handI < 0 {
		return gameerr.Reject("discard", "card %d is not in %s's hand", card, player)
	}

	ts.Hands[player] = slices.Delete(ts.Hands[player], handI, handI+1)
	ts.Discard = append(ts.Discard, card)
	if len(g.Players) == 1 {
		var turned []int
		turned, ts.Deck = randutil.Pop(ts.Deck, 1)
		ts.Discard = append(ts.Discard, turned...)
	}
	ts.Log = append(ts.Log, e.entry(ts, player, LogDiscard, "Discarded"))
	e.logger.Debug("Discarded", "player", player, "card", card)
	e.nextTurn(ctx, g, player)
	return nil
}

// LayDownRequest is a hand split into word groups, leftover cards and the
// final discard.
type LayDownRequest struct {
	Words    [][]int `json:"words"`
	Leftover []int   `json:"leftover"`
	Discard  int     `json:"discard"`
}

func (r LayDownRequest) groups() [][]int {
	var out [][]int
	for _, w := range r.Words {
		if len(w) > 0 {
			out = append(out, slices.Clone(w))
		}
	}
	return out
}

// LayDown scores the player's hand and ends their part in the round. Every
// card of the hand must appear exactly once across words, leftover and the
// discard.
func (e *Engine) LayDown(ctx context.Context, g *Game, player string, req LayDownRequest) error {
	if err := e.checkTurn(g, "lay_down", player, WaitingToDiscard); err != nil {
		return err
	}
	ts := g.TableState
	groups := req.groups()
	used, err := usedCards("lay_down", ts.Hands[player], groups, req.Leftover)
	if err != nil {
		return err
	}
	if used[req.Discard] || !slices.Contains(ts.Hands[player], req.Discard) {
		return gameerr.Reject("lay_down", "discard %d must be a separate card from the hand", req.Discard)
	}
	if len(used)+1 != len(ts.Hands[player]) {
		return gameerr.Reject("lay_down", "every card in the hand must be laid down")
	}

	meld := e.meld(groups, req.Leftover)
	ts.LaidDown[player] = meld
	ts.Hands[player] = []int{}
	ts.Discard = append(ts.Discard, req.Discard)
	ts.Log = append(ts.Log, e.entry(ts, player, LogLayDown, fmt.Sprintf("Laid down %d words for %d points", len(meld.Words), meld.Score)))
	e.logger.Debug("Laid down", "player", player, "words", meld.WordStrings(), "score", meld.Score)
	e.nextTurn(ctx, g, player)
	return nil
}

// LayingDown records a preview of a lay down without committing to it. A
// preview with no words clears it.
func (e *Engine) LayingDown(g *Game, player string, req LayDownRequest) error {
	if err := e.checkTurn(g, "laying_down", player, WaitingToDiscard); err != nil {
		return err
	}
	ts := g.TableState
	groups := req.groups()
	if len(groups) == 0 {
		ts.LayingDown = nil
		return nil
	}
	if _, err := usedCards("laying_down", ts.Hands[player], groups, req.Leftover); err != nil {
		return err
	}
	ts.LayingDown = e.meld(groups, req.Leftover)
	return nil
}

// usedCards checks that groups and leftover only name cards from hand, each
// at most once.
func usedCards(op string, hand []int, groups [][]int, leftover []int) (map[int]bool, error) {
	used := make(map[int]bool)
	use := func(c int) error {
		if !slices.Contains(hand, c) {
			return gameerr.Reject(op, "card %d is not in the hand", c)
		}
		if used[c] {
			return gameerr.Reject(op, "card %d used twice", c)
		}
		used[c] = true
		return nil
	}
	for _, g := range groups {
		for _, c := range g {
			if err := use(c); err != nil {
				return nil, err
			}
		}
	}
	for _, c := range leftover {
		if err := use(c); err != nil {
			return nil, err
		}
	}
	return used, nil
}

// meld scores word groups against leftover cards, floored at zero.
func (e *Engine) meld(groups [][]int, leftover []int) *Meld {
	m := &Meld{
		Cards:    groups,
		Words:    make([]Word, 0, len(groups)),
		Leftover: append([]int{}, leftover...),
	}
	if m.Cards == nil {
		m.Cards = [][]int{}
	}
	total := 0
	for _, g := range groups {
		w := Word{Word: e.deck.Spell(g), Points: e.deck.Points(g)}
		m.Words = append(m.Words, w)
		total += w.Points
	}
	m.Score = max(total-e.deck.Points(leftover), 0)
	return m
}

// nextTurn passes play on, ending the round when the next player has
// already laid down.
func (e *Engine) nextTurn(ctx context.Context, g *Game, player string) {
	ts := g.TableState
	np := nextPlayer(g.Players, player)
	ts.LayingDown = nil
	if _, done := ts.LaidDown[np]; done {
		e.endRound(ctx, g)
		return
	}
	if player == ts.Dealer {
		ts.Turn++
	}
	ts.ActivePlayer = np
	ts.TurnState = WaitingToDraw
}

func (e *Engine) endRound(ctx context.Context, g *Game) {
	ts := g.TableState
	ts.TurnState = RoundComplete
	g.State = WaitingForNextRound
	if g.Round >= LastRound {
		g.State = GameOver
	}

	played := make([]scoring.PlayerWords, 0, len(g.Players))
	for _, p := range g.Players {
		if m := ts.LaidDown[p]; m != nil {
			played = append(played, scoring.PlayerWords{Player: p, Words: m.WordStrings()})
		}
	}
	for p, award := range scoring.Awards(ctx, played, g.Settings.rules(), e.lists, e.logger) {
		m := ts.LaidDown[p]
		m.Award = award
		m.Score += award.Total()
	}

	g.RoundSummaries = append(g.RoundSummaries, maps.Clone(ts.LaidDown))
	e.countCards(g)
	g.Stats = computeStats(g)
	e.define(ctx, g)

	for _, p := range g.Players {
		if m := ts.LaidDown[p]; m != nil {
			g.Score[p] += m.Score
		}
	}

	if g.State == GameOver {
		ts.Log = append(ts.Log, e.entry(ts, "", LogGameOver, "Game over"))
		e.logger.Info("Game over", "scores", g.Score)
	} else {
		ts.Log = append(ts.Log, e.entry(ts, "", LogRoundComplete, fmt.Sprintf("Round %d complete", g.Round)))
		e.logger.Info("Round complete", "round", g.Round, "scores", g.Score)
	}
}

// countCards tallies the letters played this round and compares the running
// totals with what the deck make-up predicts.
func (e *Engine) countCards(g *Game) {
	ts := g.TableState
	played := slices.Clone(ts.Discard)
	for _, p := range g.Players {
		m := ts.LaidDown[p]
		if m == nil {
			continue
		}
		for _, group := range m.Cards {
			played = append(played, group...)
		}
		played = append(played, m.Leftover...)
	}
	for letter, n := range e.deck.Frequencies(played) {
		g.CardCounts[letter] += n
	}

	total := 0
	for _, n := range g.CardCounts {
		total += n
	}
	g.CardEV = make(map[string]CardEV)
	for letter, p := range e.deck.Proportions() {
		g.CardEV[letter] = CardEV{P: p, EV: p * float64(total), Actual: g.CardCounts[letter]}
	}
}

func computeStats(g *Game) *scoring.Stats {
	var entries []scoring.Entry
	for round, summary := range g.RoundSummaries {
		for _, p := range g.Players {
			m := summary[p]
			if m == nil {
				continue
			}
			ws := make([]scoring.ScoredWord, len(m.Words))
			for i, w := range m.Words {
				ws[i] = scoring.ScoredWord{Word: w.Word, Points: w.Points}
			}
			entries = append(entries, scoring.Entry{Player: p, Round: round, Words: ws, Leftover: len(m.Leftover)})
		}
	}
	s := scoring.ComputeStats(entries)
	return &s
}

// define looks up every laid down word. Lookup failures are logged and the
// word is left undefined.
func (e *Engine) define(ctx context.Context, g *Game) {
	ts := g.TableState
	ts.Definitions = nil
	if e.dict == nil {
		return
	}
	for _, p := range g.Players {
		m := ts.LaidDown[p]
		if m == nil {
			continue
		}
		for _, w := range m.Words {
			def, ok, err := e.dict.Define(ctx, w.Word)
			if err != nil {
				e.logger.Warn("Definition lookup failed", "word", w.Word, "error", err)
				continue
			}
			if !ok {
				continue
			}
			if ts.Definitions == nil {
				ts.Definitions = make(map[string]string)
			}
			ts.Definitions[w.Word] = def
		}
	}
}
