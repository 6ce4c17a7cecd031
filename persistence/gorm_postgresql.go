// persistence/gorm_postgresql.go
package persistence

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wfunc/cardauction/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold: time.Second,
			LogLevel:      gormlogger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormGameRecord{}, &models.GormAuctionRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveGameRecord 保存对局归档
func (p *GormPostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}

	row := models.GormGameRecord{
		RoomID:   record.RoomID,
		Rounds:   record.Rounds,
		Players:  string(players),
		Duration: record.Duration,
	}
	return p.db.Create(&row).Error
}

// SaveAuctionRecord 保存成交归档
func (p *GormPostgreSQL) SaveAuctionRecord(record *models.AuctionRecord) error {
	row := models.GormAuctionRecord{
		RoomID:       record.RoomID,
		CardID:       record.CardID,
		CardColor:    record.CardColor,
		CardType:     record.CardType,
		DoubleCardID: record.DoubleCardID,
		Buyer:        record.Buyer,
		Seller:       record.Seller,
		Price:        record.Price,
	}
	return p.db.Create(&row).Error
}

// GetPlayerTotals 跨对局统计, jsonb 原生查询
func (p *GormPostgreSQL) GetPlayerTotals(uuid string) (*models.PlayerTotals, error) {
	totals := &models.PlayerTotals{UUID: uuid}

	err := p.db.Raw(
		`
        SELECT
            COUNT(*) AS games_total,
            COALESCE(MAX((player->>'score')::int), 0) AS best_score,
            COALESCE(SUM((player->>'score')::int), 0) AS total_score
        FROM gorm_game_records,
             jsonb_array_elements(players::jsonb) AS player
        WHERE player->>'uuid' = ?`,
		uuid,
	).Row().Scan(&totals.GamesTotal, &totals.BestScore, &totals.TotalScore)
	if err != nil {
		return nil, err
	}
	if totals.GamesTotal == 0 {
		return nil, ErrRecordNotFound
	}
	return totals, nil
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
