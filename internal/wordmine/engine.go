package wordmine

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/alextwoods/woodsgames/internal/gameerr"
	"github.com/alextwoods/woodsgames/internal/letters"
	"github.com/alextwoods/woodsgames/internal/randutil"
	"github.com/alextwoods/woodsgames/internal/scoring"
	"github.com/alextwoods/woodsgames/internal/words"
)

// Decks is how many copies of the letter table a game uses.
const Decks = 2

// Engine applies actions to Deck-Mine games. It holds no game state.
type Engine struct {
	rng      *rand.Rand
	clock    quartz.Clock
	logger   *log.Logger
	deck     *letters.Deck
	lists    words.WordLists
	defaults Settings
}

// NewEngine creates an engine drawing all randomness from rng.
func NewEngine(rng *rand.Rand, opts ...Option) *Engine {
	if rng == nil {
		panic("wordmine: rng is required")
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
		e.deck = letters.MustStandard(Decks)
	}
	e.logger = e.logger.WithPrefix("wordmine")
	return e
}

// Deck is the letter table games are played with.
func (e *Engine) Deck() *letters.Deck { return e.deck }

// Fresh returns a new game waiting for players.
func (e *Engine) Fresh() *Game {
	return &Game{
		SchemaVersion: SchemaVersion,
		Players:       []string{},
		State:         WaitingForPlayers,
		Settings:      e.defaults,
		NDecks:        e.deck.Decks(),
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
	MaxTurns         *int    `json:"max_turns"`
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
	if u.MaxTurns != nil && *u.MaxTurns < 1 {
		return gameerr.Reject("update_settings", "max_turns must be at least 1")
	}

	s := &g.Settings
	if u.MaxTurns != nil {
		s.MaxTurns = *u.MaxTurns
	}
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

// Start deals the first game.
func (e *Engine) Start(g *Game) error {
	if err := e.validate(g); err != nil {
		return err
	}
	if g.State != WaitingForPlayers {
		return gameerr.Reject("start", "cannot start a game in state %s", g.State)
	}
	if err := e.deal(g, "start"); err != nil {
		return err
	}
	e.logger.Info("Game started", "players", len(g.Players), "dealer", g.TableState.Dealer)
	return nil
}

// NewGame deals a fresh game for the same players once the last one is over.
func (e *Engine) NewGame(g *Game) error {
	if err := e.validate(g); err != nil {
		return err
	}
	if g.State != GameOver {
		return gameerr.Reject("new_game", "cannot start a new game in state %s", g.State)
	}
	if err := e.deal(g, "new_game"); err != nil {
		return err
	}
	e.logger.Info("New game started", "players", len(g.Players), "dealer", g.TableState.Dealer)
	return nil
}

func (e *Engine) deal(g *Game, op string) error {
	n := len(g.Players)
	if n == 0 {
		return gameerr.Reject(op, "at least one player is required")
	}
	need := [MarketRows]int{StartCommon, StartMedium, StartRare}
	tiers := make([][]int, MarketRows)
	for i, t := range letters.Tiers {
		tiers[i] = randutil.Shuffled(e.rng, e.deck.ByTier(t))
		if len(tiers[i]) < MarketCols+need[i]*n {
			return gameerr.Reject(op, "not enough %s cards for %d players", t, n)
		}
	}

	laidOut := make([][]int, MarketRows)
	for r := range laidOut {
		laidOut[r], tiers[r] = randutil.Pop(tiers[r], MarketCols)
	}

	states := make(map[string]*PlayerState, n)
	for _, p := range g.Players {
		var deck []int
		for r := range tiers {
			var taken []int
			taken, tiers[r] = randutil.Pop(tiers[r], need[r])
			deck = append(deck, taken...)
		}
		deck = randutil.Shuffled(e.rng, deck)
		ps := &PlayerState{Discard: []int{}, Played: []PlayedWord{}, Actions: 1}
		ps.Hand, ps.Deck = randutil.Pop(deck, StartHand)
		states[p] = ps
	}

	dealer, _ := randutil.Sample(e.rng, g.Players)
	g.State = Playing
	g.NDecks = e.deck.Decks()
	g.TableState = &TableState{
		Dealer:       dealer,
		Decks:        tiers,
		LaidOut:      laidOut,
		PlayersState: states,
		ActivePlayer: nextPlayer(g.Players, dealer),
		TurnState:    WaitingToPlay,
		Turn:         1,
		Log:          []LogEntry{},
	}
	e.startTurn(g)
	return nil
}

func nextPlayer(players []string, player string) string {
	i := slices.Index(players, player)
	return players[(i+1)%len(players)]
}

func (e *Engine) startTurn(g *Game) {
	player := g.TableState.ActivePlayer
	e.draw(g, player, 1)
	g.TableState.PlayersState[player].Actions = 1
}

// draw moves n cards from player's deck to their hand, reshuffling their
// discard when the deck runs out.
func (e *Engine) draw(g *Game, player string, n int) {
	ts := g.TableState
	ps := ts.PlayersState[player]
	for range n {
		if len(ps.Deck) == 0 {
			if len(ps.Discard) == 0 {
				ts.Log = append(ts.Log, e.entry(ts, player, LogInfo, "Not enough cards to draw from."))
				e.logger.Warn("Deck and discard are empty", "player", player)
				return
			}
			ps.Deck = randutil.Shuffled(e.rng, ps.Discard)
			ps.Discard = []int{}
			ts.Log = append(ts.Log, e.entry(ts, player, LogDrawShuffle, "Shuffling the discard into the deck"))
		}
		var drawn []int
		drawn, ps.Deck = randutil.Pop(ps.Deck, 1)
		ps.Hand = append(ps.Hand, drawn...)
	}
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

// checkAction validates that player may spend an action.
func (e *Engine) checkAction(g *Game, op, player string) error {
	if err := e.validate(g); err != nil {
		return err
	}
	ts := g.TableState
	if g.State != Playing || ts.TurnState != WaitingToPlay {
		return gameerr.Reject(op, "game is not in play (state %s)", g.State)
	}
	if ts.ActivePlayer != player {
		return gameerr.Reject(op, "%s is not the active player, waiting on %s", player, ts.ActivePlayer)
	}
	if ts.PlayersState[player].Actions <= 0 {
		return gameerr.Reject(op, "no remaining actions")
	}
	return nil
}

// checkMarket validates that bc names the card currently in its slot.
func (e *Engine) checkMarket(g *Game, op string, bc BoardCard) error {
	if bc.Row < 0 || bc.Row >= MarketRows || bc.Col < 0 || bc.Col >= MarketCols {
		return gameerr.Reject(op, "no market slot at (%d, %d)", bc.Row, bc.Col)
	}
	slot := g.TableState.LaidOut[bc.Row][bc.Col]
	if slot == Empty || slot != bc.CardI {
		return gameerr.Reject(op, "board card %d does not match the market", bc.CardI)
	}
	return nil
}

// DrawAction draws two cards from the player's deck.
func (e *Engine) DrawAction(ctx context.Context, g *Game, player string) error {
	if err := e.checkAction(g, "draw_action", player); err != nil {
		return err
	}
	ts := g.TableState
	e.draw(g, player, 2)
	ts.PlayersState[player].Actions--
	ts.Log = append(ts.Log, e.entry(ts, player, LogDraw, "Drew 2 cards from their deck"))
	e.logger.Debug("Drew cards", "player", player)
	e.endTurnIfDone(ctx, g, player)
	return nil
}

// ShuffleAction shuffles the player's discard back into their deck.
func (e *Engine) ShuffleAction(ctx context.Context, g *Game, player string) error {
	if err := e.checkAction(g, "shuffle_action", player); err != nil {
		return err
	}
	ts := g.TableState
	ps := ts.PlayersState[player]
	ps.Deck = randutil.Shuffled(e.rng, append(slices.Clone(ps.Deck), ps.Discard...))
	ps.Discard = []int{}
	ps.Actions--
	ts.Log = append(ts.Log, e.entry(ts, player, LogShuffle, "Shuffled discard into their deck."))
	e.logger.Debug("Shuffled discard", "player", player)
	e.endTurnIfDone(ctx, g, player)
	return nil
}

// BuyAction spends banked points on a market card, which goes to the hand.
func (e *Engine) BuyAction(ctx context.Context, g *Game, player string, bc BoardCard) error {
	if err := e.checkAction(g, "buy_action", player); err != nil {
		return err
	}
	if err := e.checkMarket(g, "buy_action", bc); err != nil {
		return err
	}
	ts := g.TableState
	ps := ts.PlayersState[player]
	card, _ := e.deck.Card(bc.CardI)
	if card.Value > ps.Score {
		return gameerr.Reject("buy_action", "%s costs %d, %s has %d", card.Letter, card.Value, player, ps.Score)
	}

	ps.Score -= card.Value
	ps.Hand = append(ps.Hand, bc.CardI)
	e.refill(g, player, bc)
	ps.Actions--

	entry := e.entry(ts, player, LogBuy, fmt.Sprintf("Bought %s for %d points", card.Letter, card.Value))
	entry.BoardCard = &bc
	ts.Log = append(ts.Log, entry)
	e.logger.Debug("Bought card", "player", player, "letter", card.Letter, "cost", card.Value)
	e.endTurnIfDone(ctx, g, player)
	return nil
}

// PlayAction builds a word from hand cards plus one market card. word lists
// the cards in spelling order and must include bc.CardI exactly once.
func (e *Engine) PlayAction(ctx context.Context, g *Game, player string, word []int, bc BoardCard) error {
	if err := e.checkAction(g, "play_action", player); err != nil {
		return err
	}
	if err := e.checkMarket(g, "play_action", bc); err != nil {
		return err
	}
	ts := g.TableState
	ps := ts.PlayersState[player]
	if err := checkWord(ps.Hand, word, bc.CardI); err != nil {
		return err
	}

	ps.Hand = slices.DeleteFunc(ps.Hand, func(c int) bool { return slices.Contains(word, c) })
	ps.Discard = append(ps.Discard, word...)
	e.refill(g, player, bc)
	ps.Actions--

	spelled := e.deck.Spell(word)
	points := e.deck.Points(word)
	ps.Score += points
	ps.Played = append(ps.Played, PlayedWord{Word: spelled, Cards: slices.Clone(word), Score: points, BoardCard: bc})

	boardCard, _ := e.deck.Card(bc.CardI)
	entry := e.entry(ts, player, LogBuildWord,
		fmt.Sprintf("Played %s for %d points - used %s from the board", spelled, points, boardCard.Letter))
	entry.Word = spelled
	entry.WordCards = slices.Clone(word)
	entry.Score = points
	entry.BoardCard = &bc
	ts.Log = append(ts.Log, entry)
	e.logger.Debug("Built word", "player", player, "word", spelled, "points", points)
	e.endTurnIfDone(ctx, g, player)
	return nil
}

func checkWord(hand, word []int, boardCard int) error {
	fromHand := 0
	seen := make(map[int]bool, len(word))
	for _, c := range word {
		if seen[c] {
			return gameerr.Reject("play_action", "card %d used twice", c)
		}
		seen[c] = true
		switch {
		case c == boardCard:
		case slices.Contains(hand, c):
			fromHand++
		default:
			return gameerr.Reject("play_action", "card %d is not in hand", c)
		}
	}
	if !seen[boardCard] {
		return gameerr.Reject("play_action", "word must use the board card")
	}
	if fromHand == 0 {
		return gameerr.Reject("play_action", "word must use at least one card from hand")
	}
	return nil
}

// refill replaces a used market slot from that row's deck.
func (e *Engine) refill(g *Game, player string, bc BoardCard) {
	ts := g.TableState
	var next []int
	next, ts.Decks[bc.Row] = randutil.Pop(ts.Decks[bc.Row], 1)
	if len(next) == 0 {
		ts.LaidOut[bc.Row][bc.Col] = Empty
		ts.Log = append(ts.Log, e.entry(ts, player, LogInfo,
			fmt.Sprintf("No %s cards left for the market", letters.Tiers[bc.Row])))
		return
	}
	ts.LaidOut[bc.Row][bc.Col] = next[0]
}

func (e *Engine) endTurnIfDone(ctx context.Context, g *Game, player string) {
	if g.TableState.PlayersState[player].Actions <= 0 {
		e.nextTurn(ctx, g, player)
	}
}

// nextTurn passes play on; the turn counter advances after the dealer plays
// and the game ends once max_turns rotations are done.
func (e *Engine) nextTurn(ctx context.Context, g *Game, player string) {
	ts := g.TableState
	if player == ts.Dealer {
		if ts.Turn >= g.Settings.MaxTurns {
			e.endGame(ctx, g)
			return
		}
		ts.Turn++
	}
	ts.ActivePlayer = nextPlayer(g.Players, player)
	ts.TurnState = WaitingToPlay
	e.startTurn(g)
}

func (e *Engine) endGame(ctx context.Context, g *Game) {
	ts := g.TableState
	played := make([]scoring.PlayerWords, 0, len(g.Players))
	for _, p := range g.Players {
		pw := scoring.PlayerWords{Player: p}
		for _, w := range ts.PlayersState[p].Played {
			pw.Words = append(pw.Words, w.Word)
		}
		played = append(played, pw)
	}
	awards := scoring.Awards(ctx, played, g.Settings.rules(), e.lists, e.logger)

	best := -1
	var winners []string
	for _, p := range g.Players {
		ps := ts.PlayersState[p]
		award := awards[p]
		ps.Bonuses = &award
		ps.Score += award.Total()
		switch {
		case ps.Score > best:
			best = ps.Score
			winners = []string{p}
		case ps.Score == best:
			winners = append(winners, p)
		}
	}

	g.State = GameOver
	ts.TurnState = GameOver
	ts.Winners = winners
	ts.Log = append(ts.Log, e.entry(ts, "", LogGameOver,
		fmt.Sprintf("%s won with %d points", strings.Join(winners, " and "), best)))
	e.logger.Info("Game over", "winners", winners, "score", best, "turn", ts.Turn)
}
