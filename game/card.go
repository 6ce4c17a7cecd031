package game

import "math/rand"

// CardColor is one of the five suits of the fixed card universe.
type CardColor int

const (
	Purple CardColor = iota
	Blue
	Red
	Green
	Yellow
)

// NumColors is the number of distinct card colors.
const NumColors = 5

func (c CardColor) String() string {
	switch c {
	case Purple:
		return "purple"
	case Blue:
		return "blue"
	case Red:
		return "red"
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	}
	return "unknown"
}

// AuctionType decides which bidding mechanic starts when a card is played.
type AuctionType int

const (
	AuctionFree AuctionType = iota
	AuctionCircle
	AuctionFist
	AuctionMarked
	AuctionDouble
)

func (t AuctionType) String() string {
	switch t {
	case AuctionFree:
		return "free"
	case AuctionCircle:
		return "circle"
	case AuctionFist:
		return "fist"
	case AuctionMarked:
		return "marked"
	case AuctionDouble:
		return "double"
	}
	return "unknown"
}

// Card is immutable once dealt. IDs are unique within a game, 1..DeckSize.
type Card struct {
	ID    int         `json:"id"`
	Color CardColor   `json:"color"`
	Type  AuctionType `json:"type"`
}

// DeckSize is the total number of cards in the fixed universe.
const DeckSize = 70

// catalogRow is the per-color count of each auction type.
type catalogRow struct {
	color  CardColor
	counts [5]int // indexed: Free, Fist, Marked, Circle, Double
}

// The color by type count table of the full 70-card universe.
//
//	        | Free | Fist | Marked | Circle | Double |
//	Purple: | 3    | 2    | 2      | 3      | 2      |
//	Blue:   | 3    | 3    | 3      | 2      | 2      |
//	Red:    | 3    | 3    | 3      | 3      | 2      |
//	Green:  | 3    | 3    | 3      | 3      | 3      |
//	Yellow: | 4    | 3    | 3      | 3      | 3      |
var catalog = []catalogRow{
	{Purple, [5]int{3, 2, 2, 3, 2}},
	{Blue, [5]int{3, 3, 3, 2, 2}},
	{Red, [5]int{3, 3, 3, 3, 2}},
	{Green, [5]int{3, 3, 3, 3, 3}},
	{Yellow, [5]int{4, 3, 3, 3, 3}},
}

var catalogTypes = [5]AuctionType{AuctionFree, AuctionFist, AuctionMarked, AuctionCircle, AuctionDouble}

// NewDeck generates the full card universe in catalog order.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	id := 1
	for _, row := range catalog {
		for i, ty := range catalogTypes {
			for n := 0; n < row.counts[i]; n++ {
				deck = append(deck, Card{ID: id, Color: row.color, Type: ty})
				id++
			}
		}
	}
	return deck
}

// Dealer draws cards uniformly at random without replacement.
type Dealer struct {
	rng *rand.Rand
}

func NewDealer(rng *rand.Rand) *Dealer {
	return &Dealer{rng: rng}
}

// Pick removes count random cards from pool and returns them.
func (d *Dealer) Pick(pool *[]Card, count int) []Card {
	picked := make([]Card, 0, count)
	for i := 0; i < count && len(*pool) > 0; i++ {
		j := d.rng.Intn(len(*pool))
		picked = append(picked, (*pool)[j])
		*pool = append((*pool)[:j], (*pool)[j+1:]...)
	}
	return picked
}
