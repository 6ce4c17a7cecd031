package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"
)

const (
	// MinPlayers and MaxPlayers bound the roster size; hand size is
	// 13 - playerCount, so the bounds keep the 70-card deal sensible.
	MinPlayers = 3
	MaxPlayers = 5

	// handBase - playerCount = cards dealt per hand.
	handBase = 13

	// roundEndCount ends the round once a color reaches this many owned
	// instances across all players.
	roundEndCount = 5

	// DefaultInitialMoney is the fixed grant per player, the only source of
	// money in the game.
	DefaultInitialMoney Money = 100

	// DefaultCallDelay gates successive calls on a Free auction.
	DefaultCallDelay = 3 * time.Second
)

// defaultValues is the per-round color value table: values[round][rank],
// where rank orders the colors by owned count within that round.
var defaultValues = [5][5]int{
	{30, 20, 10, 0, 0},
	{30, 20, 10, 0, 0},
	{30, 20, 10, 0, 0},
	{30, 20, 10, 0, 0},
	{30, 20, 10, 0, 0},
}

// RosterEntry registers one participant before the game starts.
type RosterEntry struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// Options tune a new game. Zero values fall back to the defaults above;
// Rand and Clock are injectable for tests.
type Options struct {
	InitialMoney Money
	CallDelay    time.Duration
	Rand         *rand.Rand
	Clock        func() time.Time
}

// State is the full authoritative game state of one room. It is owned by
// exactly one room worker; nothing else mutates it.
type State struct {
	Stage        Stage
	Players      []Player
	Hands        [][]Card
	Money        []Money
	OwnedCards   [][]Card
	Pool         []Card
	CurrentRound int
	Values       [5][5]int
	Scores       []int

	callDelay time.Duration
	now       func() time.Time
	dealer    *Dealer
}

// NewState generates the card universe, deals 13 - playerCount cards per
// hand, grants the initial money and opens with player 0 to act.
func NewState(roster []RosterEntry, opts Options) (*State, error) {
	n := len(roster)
	if n < MinPlayers || n > MaxPlayers {
		return nil, fmt.Errorf("player count %d out of range [%d, %d]", n, MinPlayers, MaxPlayers)
	}
	if opts.InitialMoney == 0 {
		opts.InitialMoney = DefaultInitialMoney
	}
	if opts.CallDelay == 0 {
		opts.CallDelay = DefaultCallDelay
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &State{
		Stage:      WaitingForNextCard{Player: 0},
		Players:    make([]Player, n),
		Hands:      make([][]Card, n),
		Money:      make([]Money, n),
		OwnedCards: make([][]Card, n),
		Values:     defaultValues,
		Scores:     make([]int, n),
		callDelay:  opts.CallDelay,
		now:        opts.Clock,
		dealer:     NewDealer(opts.Rand),
	}
	for i, entry := range roster {
		s.Players[i] = Player{ID: i, UUID: entry.UUID, Name: entry.Name}
		s.Money[i] = opts.InitialMoney
		s.OwnedCards[i] = []Card{}
	}

	s.Pool = NewDeck()
	handSize := handBase - n
	for i := range s.Hands {
		s.Hands[i] = s.dealer.Pick(&s.Pool, handSize)
	}
	return s, nil
}

// PlayerCount returns the fixed roster size.
func (s *State) PlayerCount() int {
	return len(s.Players)
}

// NextPlayer is the cyclic successor over player indices. Disconnected
// players stay in rotation; presence never affects turn order.
func (s *State) NextPlayer(id PlayerID) PlayerID {
	return (id + 1) % len(s.Players)
}

// nextPlayerOrNone returns the rotation successor of current, or false when
// the successor would wrap back to starter (a full lap).
func (s *State) nextPlayerOrNone(starter, current PlayerID) (PlayerID, bool) {
	next := s.NextPlayer(current)
	if next == starter {
		return 0, false
	}
	return next, true
}

// validPlayer guards roster bounds so a malformed id fails the one action
// instead of panicking the room worker.
func (s *State) validPlayer(id PlayerID) bool {
	return id >= 0 && id < len(s.Players)
}

// hasFunds reports whether player can spend amount and still keep a positive
// balance.
func (s *State) hasFunds(player PlayerID, amount Money) bool {
	return s.Money[player] > amount
}

// takeCard removes the card with the given id from the player's hand.
func (s *State) takeCard(player PlayerID, cardID int) (Card, error) {
	hand := s.Hands[player]
	for i, card := range hand {
		if card.ID == cardID {
			s.Hands[player] = append(hand[:i], hand[i+1:]...)
			return card, nil
		}
	}
	return Card{}, ErrNoSuchCard
}

// findCard looks a card up in the player's hand without removing it.
func (s *State) findCard(player PlayerID, cardID int) (Card, error) {
	for _, card := range s.Hands[player] {
		if card.ID == cardID {
			return card, nil
		}
	}
	return Card{}, ErrNoSuchCard
}

// colorCounts tallies owned cards per color across all players.
func (s *State) colorCounts() [NumColors]int {
	var counts [NumColors]int
	for _, owned := range s.OwnedCards {
		for _, card := range owned {
			counts[card.Color]++
		}
	}
	return counts
}

// roundShouldEnd reports whether any color has reached the round-end count.
func (s *State) roundShouldEnd() bool {
	for _, count := range s.colorCounts() {
		if count >= roundEndCount {
			return true
		}
	}
	return false
}

// colorRanks orders colors by owned count, descending, ties broken by the
// lower color index. The result maps color -> rank.
func (s *State) colorRanks() [NumColors]int {
	counts := s.colorCounts()
	order := [NumColors]CardColor{}
	for i := range order {
		order[i] = CardColor(i)
	}
	// Insertion sort; five elements.
	for i := 1; i < NumColors; i++ {
		for j := i; j > 0; j-- {
			a, b := order[j-1], order[j]
			if counts[b] > counts[a] || (counts[b] == counts[a] && b < a) {
				order[j-1], order[j] = b, a
			} else {
				break
			}
		}
	}
	var ranks [NumColors]int
	for rank, color := range order {
		ranks[color] = rank
	}
	return ranks
}

// finishRound scores the ended round, clears ownership and either deals the
// next round from the pool or ends the game. actor is whoever triggered the
// round end; their successor opens the next round.
func (s *State) finishRound(actor PlayerID) Stage {
	ranks := s.colorRanks()
	row := s.Values[s.CurrentRound]
	for p, owned := range s.OwnedCards {
		for _, card := range owned {
			s.Scores[p] += row[ranks[card.Color]]
		}
		s.OwnedCards[p] = []Card{}
	}

	s.CurrentRound++
	if s.CurrentRound >= len(s.Values) {
		return GameOver{}
	}

	n := len(s.Players)
	per := len(s.Pool) / n
	if handSize := handBase - n; per > handSize {
		per = handSize
	}
	if per == 0 {
		return GameOver{}
	}
	for i := range s.Hands {
		s.Hands[i] = append(s.Hands[i], s.dealer.Pick(&s.Pool, per)...)
	}
	return WaitingForNextCard{Player: s.NextPlayer(actor)}
}

// Clone deep-copies the state so broadcasts can serialize a stable snapshot
// while the worker keeps mutating the original.
func (s *State) Clone() *State {
	c := &State{
		Stage:        cloneStage(s.Stage),
		Players:      append([]Player(nil), s.Players...),
		Hands:        make([][]Card, len(s.Hands)),
		Money:        append([]Money(nil), s.Money...),
		OwnedCards:   make([][]Card, len(s.OwnedCards)),
		Pool:         append([]Card(nil), s.Pool...),
		CurrentRound: s.CurrentRound,
		Values:       s.Values,
		Scores:       append([]int(nil), s.Scores...),
		callDelay:    s.callDelay,
		now:          s.now,
		dealer:       s.dealer,
	}
	for i := range s.Hands {
		c.Hands[i] = append([]Card{}, s.Hands[i]...)
	}
	for i := range s.OwnedCards {
		c.OwnedCards[i] = append([]Card{}, s.OwnedCards[i]...)
	}
	return c
}

func cloneStage(stage Stage) Stage {
	switch st := stage.(type) {
	case AuctionInAction:
		st.Target = cloneTarget(st.Target)
		if fist, ok := st.State.(FistAuction); ok {
			fist.Bids = append([]Money{}, fist.Bids...)
			fist.ActionTaken = append([]bool{}, fist.ActionTaken...)
			st.State = fist
		}
		return st
	case WaitingForMarkedPrice:
		st.Target = cloneTarget(st.Target)
		return st
	default:
		return stage
	}
}

func cloneTarget(t Target) Target {
	if t.DoubleCard != nil {
		d := *t.DoubleCard
		t.DoubleCard = &d
	}
	return t
}

type stateJSON struct {
	Stage        json.RawMessage `json:"stage"`
	Players      []Player        `json:"players"`
	Hands        [][]Card        `json:"hands"`
	Money        []Money         `json:"money"`
	OwnedCards   [][]Card        `json:"owned_cards"`
	Pool         []Card          `json:"pool"`
	CurrentRound int             `json:"current_round"`
	Values       [5][5]int       `json:"values"`
	Scores       []int           `json:"scores"`
}

func (s *State) MarshalJSON() ([]byte, error) {
	stage, err := MarshalStage(s.Stage)
	if err != nil {
		return nil, err
	}
	return json.Marshal(stateJSON{
		Stage:        stage,
		Players:      s.Players,
		Hands:        s.Hands,
		Money:        s.Money,
		OwnedCards:   s.OwnedCards,
		Pool:         s.Pool,
		CurrentRound: s.CurrentRound,
		Values:       s.Values,
		Scores:       s.Scores,
	})
}

func (s *State) UnmarshalJSON(raw []byte) error {
	var data stateJSON
	if err := json.Unmarshal(raw, &data); err != nil {
		return err
	}
	stage, err := UnmarshalStage(data.Stage)
	if err != nil {
		return err
	}
	s.Stage = stage
	s.Players = data.Players
	s.Hands = data.Hands
	s.Money = data.Money
	s.OwnedCards = data.OwnedCards
	s.Pool = data.Pool
	s.CurrentRound = data.CurrentRound
	s.Values = data.Values
	s.Scores = data.Scores
	return nil
}
