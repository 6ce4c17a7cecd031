package game

// Mask produces the view of the state that one recipient is allowed to see.
// It is a pure projection computed fresh per broadcast recipient and never
// mutates the input.
//
// Hidden from a viewer: every other player's hand, every other player's
// uuid, and all sealed Fist bids (including the host's own; only the
// action-taken booleans are shared before resolution). Everything else
// passes through unmodified.
func Mask(s *State, viewer PlayerID) *State {
	view := s.Clone()
	for i := range view.Players {
		if i != viewer {
			view.Players[i].UUID = ""
			view.Hands[i] = []Card{}
		}
	}
	if st, ok := view.Stage.(AuctionInAction); ok {
		if fist, ok := st.State.(FistAuction); ok {
			fist.Bids = []Money{}
			st.State = fist
			view.Stage = st
		}
	}
	return view
}
