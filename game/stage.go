package game

import (
	"encoding/json"
	"fmt"
	"time"
)

// Stage is the authoritative "what is happening now" of a room. It is a
// closed sum: every transition site switches exhaustively over the concrete
// variants below and no other implementation exists.
type Stage interface {
	stageName() string
}

// WaitingForNextCard: that player must play a card from their hand.
type WaitingForNextCard struct {
	Player PlayerID `json:"player"`
}

// WaitingForDoubleTarget: after a Double card was played, each other player
// in rotation may chain a same-color non-Double card onto it.
type WaitingForDoubleTarget struct {
	DoubleCard CardPair `json:"double_card"`
	Current    PlayerID `json:"current"`
}

// WaitingForMarkedPrice: the starter must set a price for a Marked card,
// optionally bundled with a pending Double pair.
type WaitingForMarkedPrice struct {
	Starter PlayerID `json:"starter"`
	Target  Target   `json:"target"`
}

// AuctionInAction: one of the four live bidding mechanics is running.
type AuctionInAction struct {
	State  AuctionState
	Target Target
}

// GameOver is terminal; no action is accepted.
type GameOver struct{}

func (WaitingForNextCard) stageName() string     { return "waiting_for_next_card" }
func (WaitingForDoubleTarget) stageName() string { return "waiting_for_double_target" }
func (WaitingForMarkedPrice) stageName() string  { return "waiting_for_marked_price" }
func (AuctionInAction) stageName() string        { return "auction_in_action" }
func (GameOver) stageName() string               { return "game_over" }

// AuctionState is the live sub-machine of one bidding mechanic. Closed sum,
// same convention as Stage.
type AuctionState interface {
	auctionName() string
}

// FreeAuction: open outcry. Anyone may raise; the host closes it with three
// calls, each gated by the deadline.
type FreeAuction struct {
	Host     PlayerID  `json:"host"`
	Highest  MoneyPair `json:"highest"`
	Deadline time.Time `json:"deadline"`
	Calls    int       `json:"calls"`
}

// CircleAuction: strict rotation starting at Starter; a full lap of passes
// back to the starter sells to the highest bidder.
type CircleAuction struct {
	Starter PlayerID  `json:"starter"`
	Current PlayerID  `json:"current"`
	Highest MoneyPair `json:"highest"`
}

// FistAuction: simultaneous sealed bids, resolved by the host once everyone
// has acted. Bids and ActionTaken always have length = player count.
type FistAuction struct {
	Host        PlayerID `json:"host"`
	Bids        []Money  `json:"bids"`
	ActionTaken []bool   `json:"action_taken"`
}

// MarkedAuction: sequential accept/pass at the fixed price set by the setter.
type MarkedAuction struct {
	Current PlayerID  `json:"current"`
	Price   MoneyPair `json:"price"`
}

func (FreeAuction) auctionName() string   { return "free" }
func (CircleAuction) auctionName() string { return "circle" }
func (FistAuction) auctionName() string   { return "fist" }
func (MarkedAuction) auctionName() string { return "marked" }

type stageEnvelope struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// MarshalStage encodes a stage as {"name": ..., "data": ...} so clients can
// dispatch on the variant.
func MarshalStage(s Stage) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(stageEnvelope{Name: s.stageName(), Data: data})
}

// UnmarshalStage decodes the envelope produced by MarshalStage.
func UnmarshalStage(raw []byte) (Stage, error) {
	var env stageEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	switch env.Name {
	case "waiting_for_next_card":
		var st WaitingForNextCard
		return st, json.Unmarshal(env.Data, &st)
	case "waiting_for_double_target":
		var st WaitingForDoubleTarget
		return st, json.Unmarshal(env.Data, &st)
	case "waiting_for_marked_price":
		var st WaitingForMarkedPrice
		return st, json.Unmarshal(env.Data, &st)
	case "auction_in_action":
		var st AuctionInAction
		return st, json.Unmarshal(env.Data, &st)
	case "game_over":
		return GameOver{}, nil
	}
	return nil, fmt.Errorf("unknown stage %q", env.Name)
}

type auctionEnvelope struct {
	Auction string          `json:"auction"`
	State   json.RawMessage `json:"state"`
	Target  Target          `json:"target"`
}

func (a AuctionInAction) MarshalJSON() ([]byte, error) {
	state, err := json.Marshal(a.State)
	if err != nil {
		return nil, err
	}
	return json.Marshal(auctionEnvelope{
		Auction: a.State.auctionName(),
		State:   state,
		Target:  a.Target,
	})
}

func (a *AuctionInAction) UnmarshalJSON(raw []byte) error {
	var env auctionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return err
	}
	a.Target = env.Target
	switch env.Auction {
	case "free":
		var st FreeAuction
		if err := json.Unmarshal(env.State, &st); err != nil {
			return err
		}
		a.State = st
	case "circle":
		var st CircleAuction
		if err := json.Unmarshal(env.State, &st); err != nil {
			return err
		}
		a.State = st
	case "fist":
		var st FistAuction
		if err := json.Unmarshal(env.State, &st); err != nil {
			return err
		}
		a.State = st
	case "marked":
		var st MarkedAuction
		if err := json.Unmarshal(env.State, &st); err != nil {
			return err
		}
		a.State = st
	default:
		return fmt.Errorf("unknown auction %q", env.Auction)
	}
	return nil
}
