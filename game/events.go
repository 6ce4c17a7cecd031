package game

// EventKind discriminates the GameEvent union on the wire.
type EventKind string

const (
	EventPlayerConnect    EventKind = "player_connect"
	EventPlayerDisconnect EventKind = "player_disconnect"
	EventAuctionComplete  EventKind = "auction_complete"
)

// Event is broadcast to every participant when something observable happened
// that is not derivable from a bare state diff.
type Event struct {
	Kind   EventKind  `json:"kind"`
	Player PlayerID   `json:"player,omitempty"`
	Target *Target    `json:"target,omitempty"`
	Buyer  *MoneyPair `json:"buyer,omitempty"`
	Seller PlayerID   `json:"seller,omitempty"`
}

func ConnectEvent(p PlayerID) Event {
	return Event{Kind: EventPlayerConnect, Player: p}
}

func DisconnectEvent(p PlayerID) Event {
	return Event{Kind: EventPlayerDisconnect, Player: p}
}

func AuctionCompleteEvent(target Target, buyer MoneyPair, seller PlayerID) Event {
	t := target
	b := buyer
	return Event{Kind: EventAuctionComplete, Target: &t, Buyer: &b, Seller: seller}
}
