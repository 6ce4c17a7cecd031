package game

import (
	"testing"
	"time"
)

func TestFreeAuction(t *testing.T) {
	clock := newFakeClock()
	s := fixedState(clock)
	s.Hands[0] = []Card{{ID: 10, Color: Red, Type: AuctionFree}}

	if _, err := s.Apply(1, ActionInput{Type: ActionPlayCard, CardID: 10}); err != ErrTurnViolation {
		t.Fatalf("Expected ErrTurnViolation for an out-of-turn play, got %v", err)
	}
	if _, err := s.Apply(0, ActionInput{Type: ActionPlayCard, CardID: 99}); err != ErrNoSuchCard {
		t.Fatalf("Expected ErrNoSuchCard, got %v", err)
	}
	if _, err := s.Apply(0, ActionInput{Type: ActionPlayCard, CardID: 10}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	st, ok := s.Stage.(AuctionInAction)
	if !ok {
		t.Fatalf("Expected a live auction, got %#v", s.Stage)
	}
	if _, ok := st.State.(FreeAuction); !ok {
		t.Fatalf("Expected a free auction, got %#v", st.State)
	}

	// A bid at or above the full balance must bounce; money may never go
	// negative and a later mandatory spend must stay payable.
	if _, err := s.Apply(2, ActionInput{Type: ActionBid, Amount: 100}); err != ErrInsufficientFunds {
		t.Errorf("Expected ErrInsufficientFunds for a full-balance bid, got %v", err)
	}
	if _, err := s.Apply(2, ActionInput{Type: ActionBid, Amount: 30}); err != nil {
		t.Fatalf("Bid failed: %v", err)
	}
	if _, err := s.Apply(1, ActionInput{Type: ActionBid, Amount: 30}); err != ErrBidTooLow {
		t.Errorf("Expected ErrBidTooLow for a matching bid, got %v", err)
	}

	// Only the host calls, and never inside the call delay.
	if _, err := s.Apply(1, ActionInput{Type: ActionCall}); err != ErrTurnViolation {
		t.Errorf("Expected ErrTurnViolation for a non-host call, got %v", err)
	}
	if _, err := s.Apply(0, ActionInput{Type: ActionCall}); err != ErrCalledTooEarly {
		t.Errorf("Expected ErrCalledTooEarly, got %v", err)
	}

	for i := 0; i < 2; i++ {
		clock.Advance(4 * time.Second)
		if _, err := s.Apply(0, ActionInput{Type: ActionCall}); err != nil {
			t.Fatalf("Call %d failed: %v", i+1, err)
		}
		if _, err := s.Apply(0, ActionInput{Type: ActionCall}); err != ErrCalledTooEarly {
			t.Errorf("Expected ErrCalledTooEarly right after call %d, got %v", i+1, err)
		}
	}

	clock.Advance(4 * time.Second)
	events, err := s.Apply(0, ActionInput{Type: ActionCall})
	if err != nil {
		t.Fatalf("Closing call failed: %v", err)
	}
	if len(events) != 1 || events[0].Kind != EventAuctionComplete {
		t.Fatalf("Expected one auction_complete event, got %#v", events)
	}

	if s.Money[2] != 70 || s.Money[0] != 130 {
		t.Errorf("Money after the sale = %v, expected [130 100 70]", s.Money)
	}
	if len(s.OwnedCards[2]) != 1 || s.OwnedCards[2][0].ID != 10 {
		t.Errorf("Winner does not own card 10: %#v", s.OwnedCards[2])
	}
	if st, ok := s.Stage.(WaitingForNextCard); !ok || st.Player != 1 {
		t.Errorf("Expected player 1 to act next, got %#v", s.Stage)
	}
	if totalMoney(s) != 300 {
		t.Errorf("Money total drifted to %d", totalMoney(s))
	}
}

func TestFreeAuctionBidResetsCalls(t *testing.T) {
	clock := newFakeClock()
	s := fixedState(clock)
	s.Hands[0] = []Card{{ID: 10, Color: Red, Type: AuctionFree}}
	s.Apply(0, ActionInput{Type: ActionPlayCard, CardID: 10})

	clock.Advance(4 * time.Second)
	s.Apply(0, ActionInput{Type: ActionCall})
	clock.Advance(4 * time.Second)
	s.Apply(0, ActionInput{Type: ActionCall})

	// A raise between calls restarts the count.
	if _, err := s.Apply(1, ActionInput{Type: ActionBid, Amount: 5}); err != nil {
		t.Fatalf("Bid failed: %v", err)
	}
	auction := s.Stage.(AuctionInAction).State.(FreeAuction)
	if auction.Calls != 0 {
		t.Errorf("Calls = %d after a raise, expected 0", auction.Calls)
	}

	clock.Advance(4 * time.Second)
	if _, err := s.Apply(0, ActionInput{Type: ActionCall}); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if _, ok := s.Stage.(AuctionInAction); !ok {
		t.Errorf("A single call after a raise must not close the auction")
	}
}

func TestCircleAuction(t *testing.T) {
	clock := newFakeClock()
	s := fixedState(clock)
	s.Hands[0] = []Card{{ID: 20, Color: Green, Type: AuctionCircle}}
	if _, err := s.Apply(0, ActionInput{Type: ActionPlayCard, CardID: 20}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	auction := s.Stage.(AuctionInAction).State.(CircleAuction)
	if auction.Starter != 0 || auction.Current != 1 {
		t.Fatalf("Expected the rotation to start at player 1, got %#v", auction)
	}

	if _, err := s.Apply(2, ActionInput{Type: ActionBidOptional, Amount: 10}); err != ErrTurnViolation {
		t.Errorf("Expected ErrTurnViolation out of rotation, got %v", err)
	}
	if _, err := s.Apply(1, ActionInput{Type: ActionBidOptional, Amount: 20}); err != nil {
		t.Fatalf("Bid failed: %v", err)
	}
	if _, err := s.Apply(2, ActionInput{Type: ActionBidOptional, Pass: true}); err != nil {
		t.Fatalf("Pass failed: %v", err)
	}
	if _, err := s.Apply(0, ActionInput{Type: ActionBidOptional, Amount: 30}); err != nil {
		t.Fatalf("Raise failed: %v", err)
	}
	// Matching the highest bid is allowed in a circle; the newer bid wins.
	if _, err := s.Apply(1, ActionInput{Type: ActionBidOptional, Amount: 30}); err != nil {
		t.Fatalf("Matching bid failed: %v", err)
	}
	if _, err := s.Apply(2, ActionInput{Type: ActionBidOptional, Amount: 29}); err != ErrBidTooLow {
		t.Errorf("Expected ErrBidTooLow below the highest, got %v", err)
	}
	if _, err := s.Apply(2, ActionInput{Type: ActionBidOptional, Pass: true}); err != nil {
		t.Fatalf("Pass failed: %v", err)
	}

	// The lap is back at the starter; their pass closes the sale to the
	// highest bidder.
	events, err := s.Apply(0, ActionInput{Type: ActionBidOptional, Pass: true})
	if err != nil {
		t.Fatalf("Closing pass failed: %v", err)
	}
	if len(events) != 1 || events[0].Buyer.Player != 1 || events[0].Buyer.Amount != 30 {
		t.Fatalf("Expected player 1 to buy at 30, got %#v", events)
	}
	if s.Money[1] != 70 || s.Money[0] != 130 {
		t.Errorf("Money = %v, expected [130 70 100]", s.Money)
	}
	if totalMoney(s) != 300 {
		t.Errorf("Money total drifted to %d", totalMoney(s))
	}
}

func TestFistAuction(t *testing.T) {
	clock := newFakeClock()
	s := fixedState(clock)
	s.Hands[1] = []Card{{ID: 30, Color: Blue, Type: AuctionFist}}
	s.Stage = WaitingForNextCard{Player: 1}
	if _, err := s.Apply(1, ActionInput{Type: ActionPlayCard, CardID: 30}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if _, err := s.Apply(1, ActionInput{Type: ActionCall}); err != ErrIncompleteFist {
		t.Errorf("Expected ErrIncompleteFist before anyone bid, got %v", err)
	}

	if _, err := s.Apply(0, ActionInput{Type: ActionBid, Amount: 10}); err != nil {
		t.Fatalf("Bid failed: %v", err)
	}
	if _, err := s.Apply(2, ActionInput{Type: ActionBid, Amount: 25}); err != nil {
		t.Fatalf("Bid failed: %v", err)
	}
	if _, err := s.Apply(1, ActionInput{Type: ActionCall}); err != ErrIncompleteFist {
		t.Errorf("Expected ErrIncompleteFist with the host silent, got %v", err)
	}

	// Re-bids overwrite; a zero bid still counts as having acted.
	if _, err := s.Apply(2, ActionInput{Type: ActionBid, Amount: 35}); err != nil {
		t.Fatalf("Re-bid failed: %v", err)
	}
	if _, err := s.Apply(1, ActionInput{Type: ActionBid, Amount: 0}); err != nil {
		t.Fatalf("Host bid failed: %v", err)
	}

	if _, err := s.Apply(0, ActionInput{Type: ActionCall}); err != ErrTurnViolation {
		t.Errorf("Expected ErrTurnViolation for a non-host call, got %v", err)
	}
	events, err := s.Apply(1, ActionInput{Type: ActionCall})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if events[0].Buyer.Player != 2 || events[0].Buyer.Amount != 35 {
		t.Fatalf("Expected player 2 to win at 35, got %#v", events[0].Buyer)
	}
	if s.Money[2] != 65 || s.Money[1] != 135 {
		t.Errorf("Money = %v, expected [100 135 65]", s.Money)
	}
	if totalMoney(s) != 300 {
		t.Errorf("Money total drifted to %d", totalMoney(s))
	}
}

func TestFistAuctionTieGoesToLowerIndex(t *testing.T) {
	clock := newFakeClock()
	s := fixedState(clock)
	s.Hands[0] = []Card{{ID: 31, Color: Blue, Type: AuctionFist}}
	s.Apply(0, ActionInput{Type: ActionPlayCard, CardID: 31})

	s.Apply(0, ActionInput{Type: ActionBid, Amount: 0})
	s.Apply(1, ActionInput{Type: ActionBid, Amount: 35})
	s.Apply(2, ActionInput{Type: ActionBid, Amount: 35})

	events, err := s.Apply(0, ActionInput{Type: ActionCall})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if events[0].Buyer.Player != 1 {
		t.Errorf("Tie at 35: expected player 1 to win, got %d", events[0].Buyer.Player)
	}
}

func TestMarkedAuction(t *testing.T) {
	clock := newFakeClock()
	s := fixedState(clock)
	s.Money[2] = 40
	s.Hands[0] = []Card{{ID: 40, Color: Purple, Type: AuctionMarked}}
	if _, err := s.Apply(0, ActionInput{Type: ActionPlayCard, CardID: 40}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if _, ok := s.Stage.(WaitingForMarkedPrice); !ok {
		t.Fatalf("Expected a price prompt, got %#v", s.Stage)
	}
	if _, err := s.Apply(1, ActionInput{Type: ActionAssignMarkedPrice, Amount: 50}); err != ErrTurnViolation {
		t.Errorf("Expected ErrTurnViolation for a non-starter price, got %v", err)
	}
	// The setter must be able to buy their own card back.
	if _, err := s.Apply(0, ActionInput{Type: ActionAssignMarkedPrice, Amount: 100}); err != ErrInsufficientFunds {
		t.Errorf("Expected ErrInsufficientFunds for an unpayable price, got %v", err)
	}
	if _, err := s.Apply(0, ActionInput{Type: ActionAssignMarkedPrice, Amount: 50}); err != nil {
		t.Fatalf("Pricing failed: %v", err)
	}

	if _, err := s.Apply(1, ActionInput{Type: ActionMarkedReaction}); err != nil {
		t.Fatalf("Decline failed: %v", err)
	}
	if _, err := s.Apply(2, ActionInput{Type: ActionMarkedReaction, Accept: true}); err != ErrInsufficientFunds {
		t.Errorf("Expected ErrInsufficientFunds at 40 money, got %v", err)
	}

	// The rejection left the rotation at player 2; topped up, the accept
	// goes through.
	s.Money[2] = 60
	events, err := s.Apply(2, ActionInput{Type: ActionMarkedReaction, Accept: true})
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if events[0].Buyer.Player != 2 || events[0].Buyer.Amount != 50 {
		t.Fatalf("Expected player 2 to buy at 50, got %#v", events[0].Buyer)
	}
	if s.Money[2] != 10 || s.Money[0] != 150 {
		t.Errorf("Money = %v, expected [150 100 10]", s.Money)
	}
	if len(s.OwnedCards[2]) != 1 || s.OwnedCards[2][0].ID != 40 {
		t.Errorf("Buyer does not own card 40: %#v", s.OwnedCards[2])
	}
}

func TestMarkedAuctionSelfPurchase(t *testing.T) {
	clock := newFakeClock()
	s := fixedState(clock)
	s.Hands[0] = []Card{{ID: 41, Color: Purple, Type: AuctionMarked}}
	s.Apply(0, ActionInput{Type: ActionPlayCard, CardID: 41})
	s.Apply(0, ActionInput{Type: ActionAssignMarkedPrice, Amount: 70})

	s.Apply(1, ActionInput{Type: ActionMarkedReaction})
	s.Apply(2, ActionInput{Type: ActionMarkedReaction})

	// The lap is back at the setter: they keep the card and no money moves.
	events, err := s.Apply(0, ActionInput{Type: ActionMarkedReaction})
	if err != nil {
		t.Fatalf("Self purchase failed: %v", err)
	}
	if events[0].Buyer.Player != 0 || events[0].Seller != 0 {
		t.Fatalf("Expected a self purchase, got %#v", events[0])
	}
	if s.Money[0] != 100 {
		t.Errorf("Money[0] = %d after a self purchase, expected 100", s.Money[0])
	}
	if len(s.OwnedCards[0]) != 1 || s.OwnedCards[0][0].ID != 41 {
		t.Errorf("Setter does not own card 41: %#v", s.OwnedCards[0])
	}
	if st, ok := s.Stage.(WaitingForNextCard); !ok || st.Player != 1 {
		t.Errorf("Expected player 1 to act next, got %#v", s.Stage)
	}
}

func TestDoubleChain(t *testing.T) {
	clock := newFakeClock()
	s := fixedState(clock)
	s.Hands[0] = []Card{{ID: 50, Color: Green, Type: AuctionDouble}}
	s.Hands[1] = []Card{
		{ID: 51, Color: Red, Type: AuctionFree},
		{ID: 52, Color: Green, Type: AuctionDouble},
		{ID: 53, Color: Green, Type: AuctionFree},
	}

	if _, err := s.Apply(0, ActionInput{Type: ActionPlayCard, CardID: 50}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	st, ok := s.Stage.(WaitingForDoubleTarget)
	if !ok || st.Current != 1 {
		t.Fatalf("Expected player 1 to answer the double, got %#v", s.Stage)
	}

	if _, err := s.Apply(1, ActionInput{Type: ActionPlayCardOptional, CardID: 51}); err != ErrColorMismatch {
		t.Errorf("Expected ErrColorMismatch for a red chain, got %v", err)
	}
	if _, err := s.Apply(1, ActionInput{Type: ActionPlayCardOptional, CardID: 52}); err != ErrNestedDouble {
		t.Errorf("Expected ErrNestedDouble, got %v", err)
	}
	if _, err := s.Apply(1, ActionInput{Type: ActionPlayCardOptional, CardID: 53}); err != nil {
		t.Fatalf("Chain failed: %v", err)
	}

	live, ok := s.Stage.(AuctionInAction)
	if !ok {
		t.Fatalf("Expected a live auction, got %#v", s.Stage)
	}
	if !live.Target.IsDouble() {
		t.Fatalf("Expected a bundled target, got %#v", live.Target)
	}
	free, ok := live.State.(FreeAuction)
	if !ok || free.Host != 1 {
		t.Fatalf("Expected player 1 to host the free auction, got %#v", live.State)
	}

	// Both cards go to the winner, the chainer collects the price.
	s.Apply(2, ActionInput{Type: ActionBid, Amount: 30})
	for i := 0; i < 3; i++ {
		clock.Advance(4 * time.Second)
		if _, err := s.Apply(1, ActionInput{Type: ActionCall}); err != nil {
			t.Fatalf("Call %d failed: %v", i+1, err)
		}
	}
	if len(s.OwnedCards[2]) != 2 {
		t.Fatalf("Winner owns %d cards, expected the pair", len(s.OwnedCards[2]))
	}
	if s.OwnedCards[2][0].ID != 50 || s.OwnedCards[2][1].ID != 53 {
		t.Errorf("Pair out of order: %#v", s.OwnedCards[2])
	}
	if s.Money[1] != 130 || s.Money[2] != 70 {
		t.Errorf("Money = %v, expected [100 130 70]", s.Money)
	}
}

func TestDoubleRotationExhausted(t *testing.T) {
	clock := newFakeClock()
	s := fixedState(clock)
	s.Hands[0] = []Card{{ID: 50, Color: Green, Type: AuctionDouble}}
	s.Apply(0, ActionInput{Type: ActionPlayCard, CardID: 50})

	if _, err := s.Apply(1, ActionInput{Type: ActionPlayCardOptional, Pass: true}); err != nil {
		t.Fatalf("Pass failed: %v", err)
	}
	events, err := s.Apply(2, ActionInput{Type: ActionPlayCardOptional, Pass: true})
	if err != nil {
		t.Fatalf("Closing pass failed: %v", err)
	}

	// Everyone declined: the owner keeps the double card for free, and the
	// outcome is announced like any sale.
	if len(events) != 1 || events[0].Kind != EventAuctionComplete {
		t.Fatalf("Expected one auction_complete event, got %#v", events)
	}
	if events[0].Buyer.Amount != 0 || events[0].Buyer.Player != 0 || events[0].Seller != 0 {
		t.Errorf("Expected a free self sale, got %#v", events[0])
	}
	if len(s.OwnedCards[0]) != 1 || s.OwnedCards[0][0].ID != 50 {
		t.Errorf("Owner does not hold card 50: %#v", s.OwnedCards[0])
	}
	if totalMoney(s) != 300 {
		t.Errorf("Money total drifted to %d", totalMoney(s))
	}
	if st, ok := s.Stage.(WaitingForNextCard); !ok || st.Player != 1 {
		t.Errorf("Expected player 1 to act next, got %#v", s.Stage)
	}
}

func TestDoubleIntoMarked(t *testing.T) {
	clock := newFakeClock()
	s := fixedState(clock)
	s.Hands[2] = []Card{{ID: 60, Color: Yellow, Type: AuctionDouble}}
	s.Hands[0] = []Card{{ID: 61, Color: Yellow, Type: AuctionMarked}}
	s.Stage = WaitingForNextCard{Player: 2}

	s.Apply(2, ActionInput{Type: ActionPlayCard, CardID: 60})
	if _, err := s.Apply(0, ActionInput{Type: ActionPlayCardOptional, CardID: 61}); err != nil {
		t.Fatalf("Chain failed: %v", err)
	}

	st, ok := s.Stage.(WaitingForMarkedPrice)
	if !ok || st.Starter != 0 {
		t.Fatalf("Expected player 0 to set the price, got %#v", s.Stage)
	}
	if !st.Target.IsDouble() {
		t.Errorf("Expected the pending double to ride along, got %#v", st.Target)
	}
}

func TestRejectionLeavesStateUntouched(t *testing.T) {
	clock := newFakeClock()
	s := fixedState(clock)
	s.Hands[0] = []Card{{ID: 10, Color: Red, Type: AuctionFree}}
	s.Apply(0, ActionInput{Type: ActionPlayCard, CardID: 10})
	s.Apply(1, ActionInput{Type: ActionBid, Amount: 25})

	before := s.Clone()
	s.Apply(2, ActionInput{Type: ActionBid, Amount: 10})    // too low
	s.Apply(2, ActionInput{Type: ActionCall})               // not the host
	s.Apply(0, ActionInput{Type: ActionCall})               // too early
	s.Apply(1, ActionInput{Type: ActionBid, Amount: -5})    // negative
	s.Apply(7, ActionInput{Type: ActionBid, Amount: 30})    // unknown player
	s.Apply(2, ActionInput{Type: ActionMarkedReaction})     // wrong action kind

	after := s.Stage.(AuctionInAction).State.(FreeAuction)
	want := before.Stage.(AuctionInAction).State.(FreeAuction)
	if after != want {
		t.Errorf("Rejections mutated the auction: %#v != %#v", after, want)
	}
	for i := range s.Money {
		if s.Money[i] != before.Money[i] {
			t.Errorf("Rejections mutated money[%d]", i)
		}
	}
}
