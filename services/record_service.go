// services/record_service.go
package services

import (
	"sync"
	"time"

	"github.com/wfunc/cardauction/game"
	"github.com/wfunc/cardauction/logger"
	"github.com/wfunc/cardauction/models"
	"github.com/wfunc/cardauction/persistence"
)

// RecordService archives completed auctions and finished games. A nil
// database turns every write into a no-op so the game server runs without
// postgres.
type RecordService struct {
	db persistence.Database

	mutex  sync.Mutex
	starts map[string]time.Time
}

func NewRecordService(db persistence.Database) *RecordService {
	return &RecordService{
		db:     db,
		starts: make(map[string]time.Time),
	}
}

// GameStarted marks the room's start so the archived record carries a
// duration.
func (s *RecordService) GameStarted(roomID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.starts[roomID] = time.Now()
}

// GetPlayerTotals exposes cross-game stats, e.g. for the admin RPC surface.
func (s *RecordService) GetPlayerTotals(uuid string) (*models.PlayerTotals, error) {
	if s.db == nil {
		return nil, persistence.ErrRecordNotFound
	}
	return s.db.GetPlayerTotals(uuid)
}

// --- room.Observer ---

// RoomEvent archives completed auctions; connect/disconnect events are not
// worth a row.
func (s *RecordService) RoomEvent(roomID string, ev game.Event) {
	if s.db == nil || ev.Kind != game.EventAuctionComplete {
		return
	}

	record := &models.AuctionRecord{
		RoomID:    roomID,
		CardID:    ev.Target.TargetCard.Card.ID,
		CardColor: ev.Target.TargetCard.Card.Color.String(),
		CardType:  ev.Target.TargetCard.Card.Type.String(),
		Buyer:     ev.Buyer.Player,
		Seller:    ev.Seller,
		Price:     ev.Buyer.Amount,
		CreatedAt: time.Now(),
	}
	if ev.Target.DoubleCard != nil {
		record.DoubleCardID = ev.Target.DoubleCard.Card.ID
	}

	// Archive off the room worker's goroutine; a slow database must not
	// delay action processing.
	go func() {
		if err := s.db.SaveAuctionRecord(record); err != nil {
			logger.Log.Errorf("record: failed to save auction for room %s: %v", roomID, err)
		}
	}()
}

func (s *RecordService) RoomFinished(roomID string, final *game.State) {
	if s.db == nil {
		return
	}

	record := &models.GameRecord{
		RoomID:    roomID,
		Rounds:    final.CurrentRound,
		Players:   make([]models.PlayerResult, len(final.Players)),
		CreatedAt: time.Now(),
	}
	s.mutex.Lock()
	if start, ok := s.starts[roomID]; ok {
		record.Duration = int(time.Since(start).Seconds())
		delete(s.starts, roomID)
	}
	s.mutex.Unlock()
	for i, p := range final.Players {
		record.Players[i] = models.PlayerResult{
			UUID:  p.UUID,
			Name:  p.Name,
			Score: final.Scores[i],
			Money: final.Money[i],
		}
	}

	go func() {
		if err := s.db.SaveGameRecord(record); err != nil {
			logger.Log.Errorf("record: failed to save game record for room %s: %v", roomID, err)
		}
	}()
}

func (s *RecordService) ActionProcessed(roomID string, took time.Duration, rejected bool) {}
