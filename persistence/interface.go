// persistence/interface.go
package persistence

import (
	"errors"

	"github.com/wfunc/cardauction/models"
)

// Database 归档存储接口. Records are pure audit writes; the live game never
// reads them back (no restart recovery).
type Database interface {
	SaveGameRecord(record *models.GameRecord) error
	SaveAuctionRecord(record *models.AuctionRecord) error
	GetPlayerTotals(uuid string) (*models.PlayerTotals, error)
	Close() error
}

// 错误定义
var ErrRecordNotFound = errors.New("record not found")
