package game

import "fmt"

// ActionType discriminates the ActionInput union on the wire.
type ActionType string

const (
	ActionPlayCard          ActionType = "play_card"
	ActionPlayCardOptional  ActionType = "play_card_optional"
	ActionBid               ActionType = "bid"
	ActionBidOptional       ActionType = "bid_optional"
	ActionMarkedReaction    ActionType = "marked_reaction"
	ActionAssignMarkedPrice ActionType = "assign_marked_price"
	ActionCall              ActionType = "call"
)

// ActionInput is one player action. Which fields are meaningful depends on
// Type: CardID for play_card and play_card_optional, Amount for bid,
// bid_optional and assign_marked_price, Pass for the optional variants,
// Accept for marked_reaction.
type ActionInput struct {
	Type   ActionType `json:"type"`
	CardID int        `json:"card_id,omitempty"`
	Amount Money      `json:"amount,omitempty"`
	Pass   bool       `json:"pass,omitempty"`
	Accept bool       `json:"accept,omitempty"`
}

// Apply validates the action against the current stage and actor, computes
// the next stage and settles any resulting transfers. On rejection the state
// is left untouched and the error text is relayed to the actor alone.
func (s *State) Apply(actor PlayerID, in ActionInput) ([]Event, error) {
	if !s.validPlayer(actor) {
		return nil, fmt.Errorf("player %d is not in this room", actor)
	}
	if in.Amount < 0 {
		return nil, fmt.Errorf("negative amount")
	}

	switch st := s.Stage.(type) {
	case WaitingForNextCard:
		return s.applyNextCard(st, actor, in)
	case WaitingForDoubleTarget:
		return s.applyDoubleTarget(st, actor, in)
	case WaitingForMarkedPrice:
		return s.applyMarkedPrice(st, actor, in)
	case AuctionInAction:
		return s.applyAuction(st, actor, in)
	case GameOver:
		return nil, ErrGameOver
	}
	return nil, fmt.Errorf("unhandled stage %T", s.Stage)
}

func (s *State) applyNextCard(st WaitingForNextCard, actor PlayerID, in ActionInput) ([]Event, error) {
	if in.Type != ActionPlayCard {
		return nil, ErrInvalidForStage
	}
	if actor != st.Player {
		return nil, ErrTurnViolation
	}
	card, err := s.takeCard(actor, in.CardID)
	if err != nil {
		return nil, err
	}
	if s.roundShouldEnd() {
		s.Stage = s.finishRound(actor)
		return nil, nil
	}

	switch card.Type {
	case AuctionDouble:
		s.Stage = WaitingForDoubleTarget{
			DoubleCard: CardPair{Owner: actor, Card: card},
			Current:    s.NextPlayer(actor),
		}
	case AuctionMarked:
		s.Stage = WaitingForMarkedPrice{
			Starter: actor,
			Target:  SingleTarget(actor, card),
		}
	default:
		s.Stage = AuctionInAction{
			State:  s.newAuctionState(card, actor),
			Target: SingleTarget(actor, card),
		}
	}
	return nil, nil
}

func (s *State) applyDoubleTarget(st WaitingForDoubleTarget, actor PlayerID, in ActionInput) ([]Event, error) {
	if in.Type != ActionPlayCardOptional {
		return nil, ErrInvalidForStage
	}
	if actor != st.Current {
		return nil, ErrTurnViolation
	}

	if in.Pass {
		next, ok := s.nextPlayerOrNone(st.DoubleCard.Owner, st.Current)
		if !ok {
			// Rotation exhausted: the owner takes the double card back for
			// free. Announced like any other completed sale, at price 0.
			owner := st.DoubleCard.Owner
			return s.settle(SingleTarget(owner, st.DoubleCard.Card), 0, owner, owner)
		}
		st.Current = next
		s.Stage = st
		return nil, nil
	}

	card, err := s.findCard(actor, in.CardID)
	if err != nil {
		return nil, err
	}
	if card.Color != st.DoubleCard.Card.Color {
		return nil, ErrColorMismatch
	}
	if card.Type == AuctionDouble {
		return nil, ErrNestedDouble
	}
	if _, err := s.takeCard(actor, in.CardID); err != nil {
		return nil, err
	}
	if s.roundShouldEnd() {
		s.Stage = s.finishRound(actor)
		return nil, nil
	}

	target := DoubleTarget(st.DoubleCard, actor, card)
	if card.Type == AuctionMarked {
		s.Stage = WaitingForMarkedPrice{Starter: actor, Target: target}
	} else {
		s.Stage = AuctionInAction{State: s.newAuctionState(card, actor), Target: target}
	}
	return nil, nil
}

func (s *State) applyMarkedPrice(st WaitingForMarkedPrice, actor PlayerID, in ActionInput) ([]Event, error) {
	if in.Type != ActionAssignMarkedPrice {
		return nil, ErrInvalidForStage
	}
	if actor != st.Starter {
		return nil, ErrTurnViolation
	}
	if !s.hasFunds(actor, in.Amount) {
		return nil, ErrInsufficientFunds
	}
	s.Stage = AuctionInAction{
		State: MarkedAuction{
			Current: s.NextPlayer(actor),
			Price:   MoneyPair{Player: actor, Amount: in.Amount},
		},
		Target: st.Target,
	}
	return nil, nil
}

func (s *State) applyAuction(st AuctionInAction, actor PlayerID, in ActionInput) ([]Event, error) {
	switch auction := st.State.(type) {
	case FreeAuction:
		return s.applyFree(st, auction, actor, in)
	case CircleAuction:
		return s.applyCircle(st, auction, actor, in)
	case FistAuction:
		return s.applyFist(st, auction, actor, in)
	case MarkedAuction:
		return s.applyMarked(st, auction, actor, in)
	}
	return nil, fmt.Errorf("unhandled auction state %T", st.State)
}

func (s *State) applyFree(st AuctionInAction, auction FreeAuction, actor PlayerID, in ActionInput) ([]Event, error) {
	switch in.Type {
	case ActionBid:
		if !s.hasFunds(actor, in.Amount) {
			return nil, ErrInsufficientFunds
		}
		if in.Amount <= auction.Highest.Amount {
			return nil, ErrBidTooLow
		}
		auction.Highest = MoneyPair{Player: actor, Amount: in.Amount}
		auction.Calls = 0
		auction.Deadline = s.now().Add(s.callDelay)
		st.State = auction
		s.Stage = st
		return nil, nil
	case ActionCall:
		if actor != auction.Host {
			return nil, ErrTurnViolation
		}
		if !s.now().After(auction.Deadline) {
			return nil, ErrCalledTooEarly
		}
		if auction.Calls >= 2 {
			return s.settle(st.Target, auction.Highest.Amount, auction.Highest.Player, auction.Host)
		}
		auction.Calls++
		auction.Deadline = s.now().Add(s.callDelay)
		st.State = auction
		s.Stage = st
		return nil, nil
	}
	return nil, ErrInvalidForStage
}

func (s *State) applyCircle(st AuctionInAction, auction CircleAuction, actor PlayerID, in ActionInput) ([]Event, error) {
	if in.Type != ActionBidOptional {
		return nil, ErrInvalidForStage
	}
	if actor != auction.Current {
		return nil, ErrTurnViolation
	}

	if in.Pass {
		if auction.Current == auction.Starter {
			// Full lap with no further raises; sell to the highest bidder.
			return s.settle(st.Target, auction.Highest.Amount, auction.Highest.Player, auction.Starter)
		}
		auction.Current = s.NextPlayer(auction.Current)
		st.State = auction
		s.Stage = st
		return nil, nil
	}

	if in.Amount < auction.Highest.Amount {
		return nil, ErrBidTooLow
	}
	if !s.hasFunds(actor, in.Amount) {
		return nil, ErrInsufficientFunds
	}
	auction.Highest = MoneyPair{Player: actor, Amount: in.Amount}
	auction.Current = s.NextPlayer(auction.Current)
	st.State = auction
	s.Stage = st
	return nil, nil
}

func (s *State) applyFist(st AuctionInAction, auction FistAuction, actor PlayerID, in ActionInput) ([]Event, error) {
	switch in.Type {
	case ActionBid:
		// No turn restriction; anyone may bid, and re-bids overwrite until
		// the host calls.
		if !s.hasFunds(actor, in.Amount) {
			return nil, ErrInsufficientFunds
		}
		bids := append([]Money{}, auction.Bids...)
		taken := append([]bool{}, auction.ActionTaken...)
		bids[actor] = in.Amount
		taken[actor] = true
		auction.Bids = bids
		auction.ActionTaken = taken
		st.State = auction
		s.Stage = st
		return nil, nil
	case ActionCall:
		if actor != auction.Host {
			return nil, ErrTurnViolation
		}
		for _, acted := range auction.ActionTaken {
			if !acted {
				return nil, ErrIncompleteFist
			}
		}
		winner := 0
		for i, bid := range auction.Bids {
			if bid > auction.Bids[winner] {
				winner = i
			}
		}
		return s.settle(st.Target, auction.Bids[winner], winner, auction.Host)
	}
	return nil, ErrInvalidForStage
}

func (s *State) applyMarked(st AuctionInAction, auction MarkedAuction, actor PlayerID, in ActionInput) ([]Event, error) {
	if in.Type != ActionMarkedReaction {
		return nil, ErrInvalidForStage
	}
	if actor != auction.Current {
		return nil, ErrTurnViolation
	}

	// Full lap with no acceptance: the setter buys their own card.
	if auction.Current == auction.Price.Player {
		return s.settle(st.Target, auction.Price.Amount, actor, auction.Price.Player)
	}

	if in.Accept {
		if !s.hasFunds(actor, auction.Price.Amount) {
			return nil, ErrInsufficientFunds
		}
		return s.settle(st.Target, auction.Price.Amount, actor, auction.Price.Player)
	}

	auction.Current = s.NextPlayer(auction.Current)
	st.State = auction
	s.Stage = st
	return nil, nil
}

// newAuctionState opens the live sub-machine for a freshly played card.
func (s *State) newAuctionState(card Card, from PlayerID) AuctionState {
	switch card.Type {
	case AuctionFree:
		return FreeAuction{
			Host:     from,
			Highest:  MoneyPair{Player: from, Amount: 0},
			Deadline: s.now().Add(s.callDelay),
		}
	case AuctionCircle:
		return CircleAuction{
			Starter: from,
			Current: s.NextPlayer(from),
			Highest: MoneyPair{Player: from, Amount: 0},
		}
	case AuctionFist:
		n := len(s.Players)
		return FistAuction{
			Host:        from,
			Bids:        make([]Money, n),
			ActionTaken: make([]bool, n),
		}
	}
	panic(fmt.Sprintf("card type %v does not open an auction", card.Type))
}

// settle is the shared terminal step of every auction: move the money, move
// the card(s) and hand the turn to the seller's successor. A self-purchase
// moves no money.
func (s *State) settle(target Target, amount Money, buyer, seller PlayerID) ([]Event, error) {
	if buyer != seller {
		s.Money[buyer] -= amount
		s.Money[seller] += amount
	}
	s.OwnedCards[buyer] = append(s.OwnedCards[buyer], target.Cards()...)

	event := AuctionCompleteEvent(target, MoneyPair{Player: buyer, Amount: amount}, seller)
	if s.roundShouldEnd() {
		s.Stage = s.finishRound(seller)
	} else {
		s.Stage = WaitingForNextCard{Player: s.NextPlayer(seller)}
	}
	return []Event{event}, nil
}
