// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormGameRecord 对局归档表
type GormGameRecord struct {
	gorm.Model
	RoomID   string `gorm:"index;not null"`
	Rounds   int    `gorm:"not null"`
	Players  string `gorm:"type:jsonb;not null"` // JSON-encoded []PlayerResult
	Duration int    `gorm:"default:0"`
}

// GormAuctionRecord 成交归档表
type GormAuctionRecord struct {
	gorm.Model
	RoomID       string `gorm:"index;not null"`
	CardID       int    `gorm:"not null"`
	CardColor    string `gorm:"not null"`
	CardType     string `gorm:"not null"`
	DoubleCardID int    `gorm:"default:0"`
	Buyer        int    `gorm:"not null"`
	Seller       int    `gorm:"not null"`
	Price        int    `gorm:"not null"`
}
