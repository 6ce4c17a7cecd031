// events/publisher.go
package events

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/wfunc/cardauction/game"
	"github.com/wfunc/cardauction/logger"
)

var ErrNotConnected = errors.New("events: nats connection is down")

const subjectPrefix = "cardauction.events."

// Publisher mirrors every broadcast game event onto NATS so external
// services (lobby, stats, spectator feeds) can follow rooms without holding
// a websocket. Implements room.Observer.
type Publisher struct {
	conn *nats.Conn
}

func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}
	logger.Log.Infof("events: connected to nats at %s", url)
	return &Publisher{conn: conn}, nil
}

func (p *Publisher) publish(subject string, payload interface{}) error {
	if p.conn == nil || !p.conn.IsConnected() {
		return ErrNotConnected
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, data)
}

func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// --- room.Observer ---

type eventRecord struct {
	RoomID string     `json:"room_id"`
	Event  game.Event `json:"event"`
}

type finishRecord struct {
	RoomID string   `json:"room_id"`
	Scores []int    `json:"scores"`
	Rounds int      `json:"rounds"`
	Names  []string `json:"names"`
}

func (p *Publisher) RoomEvent(roomID string, ev game.Event) {
	if err := p.publish(subjectPrefix+roomID, eventRecord{RoomID: roomID, Event: ev}); err != nil {
		logger.Log.Warnf("events: publish failed for room %s: %v", roomID, err)
	}
}

func (p *Publisher) RoomFinished(roomID string, final *game.State) {
	names := make([]string, len(final.Players))
	for i, pl := range final.Players {
		names[i] = pl.Name
	}
	rec := finishRecord{RoomID: roomID, Scores: final.Scores, Rounds: final.CurrentRound, Names: names}
	if err := p.publish(subjectPrefix+roomID+".finished", rec); err != nil {
		logger.Log.Warnf("events: publish failed for room %s: %v", roomID, err)
	}
}

func (p *Publisher) ActionProcessed(roomID string, took time.Duration, rejected bool) {}
