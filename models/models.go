// models/models.go
package models

import (
	"time"
)

// PlayerResult 单个玩家的对局结果
type PlayerResult struct {
	UUID  string `json:"uuid"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Money int    `json:"money"`
}

// GameRecord 一局游戏的归档记录
type GameRecord struct {
	RoomID    string         `json:"room_id"`
	Rounds    int            `json:"rounds"`
	Players   []PlayerResult `json:"players"`
	Duration  int            `json:"duration"` // 秒
	CreatedAt time.Time      `json:"created_at"`
}

// AuctionRecord 一次成交的归档记录
type AuctionRecord struct {
	RoomID       string    `json:"room_id"`
	CardID       int       `json:"card_id"`
	CardColor    string    `json:"card_color"`
	CardType     string    `json:"card_type"`
	DoubleCardID int       `json:"double_card_id,omitempty"` // 0 表示单卡成交
	Buyer        int       `json:"buyer"`
	Seller       int       `json:"seller"`
	Price        int       `json:"price"`
	CreatedAt    time.Time `json:"created_at"`
}

// PlayerTotals 玩家跨对局统计
type PlayerTotals struct {
	UUID       string `json:"uuid"`
	GamesTotal int    `json:"games_total"`
	BestScore  int    `json:"best_score"`
	TotalScore int    `json:"total_score"`
}
