package game

// PlayerID is the stable ordinal index of a player within one room, 0..N-1.
type PlayerID = int

// Money is a non-negative integer balance. Adjusted only by completed
// transactions; checked before every spend.
type Money = int

// Player identity within a room. The roster is fixed for the lifetime of a
// game; only Connected mutates.
type Player struct {
	ID        PlayerID `json:"id"`
	UUID      string   `json:"uuid"`
	Name      string   `json:"name"`
	Connected bool     `json:"connected"`
}

// CardPair ties a card to the player it came from.
type CardPair struct {
	Owner PlayerID `json:"owner"`
	Card  Card     `json:"card"`
}

// MoneyPair ties an amount to a player, e.g. the highest bid and its bidder.
type MoneyPair struct {
	Player PlayerID `json:"player"`
	Amount Money    `json:"amount"`
}

// Target is the card or bundled card pair currently up for sale.
// DoubleCard is nil for a plain single-card sale.
type Target struct {
	DoubleCard *CardPair `json:"double_card,omitempty"`
	TargetCard CardPair  `json:"target_card"`
}

// SingleTarget sells one card played by owner.
func SingleTarget(owner PlayerID, card Card) Target {
	return Target{TargetCard: CardPair{Owner: owner, Card: card}}
}

// DoubleTarget bundles a Double card with the card it chained into.
func DoubleTarget(double CardPair, owner PlayerID, card Card) Target {
	d := double
	return Target{DoubleCard: &d, TargetCard: CardPair{Owner: owner, Card: card}}
}

// IsDouble reports whether the target is a bundled pair.
func (t Target) IsDouble() bool {
	return t.DoubleCard != nil
}

// Cards returns the card(s) being sold, double card first.
func (t Target) Cards() []Card {
	if t.DoubleCard != nil {
		return []Card{t.DoubleCard.Card, t.TargetCard.Card}
	}
	return []Card{t.TargetCard.Card}
}
