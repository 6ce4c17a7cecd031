// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/wfunc/cardauction/models"
)

// PostgreSQL 不经ORM的原生实现, 与 GormPostgreSQL 实现同一接口
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS game_records (
            id SERIAL PRIMARY KEY,
            room_id TEXT NOT NULL,
            rounds INT NOT NULL,
            players JSONB NOT NULL,
            duration INT NOT NULL DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS auction_records (
            id SERIAL PRIMARY KEY,
            room_id TEXT NOT NULL,
            card_id INT NOT NULL,
            card_color TEXT NOT NULL,
            card_type TEXT NOT NULL,
            double_card_id INT NOT NULL DEFAULT 0,
            buyer INT NOT NULL,
            seller INT NOT NULL,
            price INT NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_auction_records_room ON auction_records (room_id)`)
	return err
}

// SaveGameRecord 保存对局归档
func (p *PostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}

	_, err = p.db.Exec(
		`INSERT INTO game_records (room_id, rounds, players, duration) VALUES ($1, $2, $3, $4)`,
		record.RoomID, record.Rounds, players, record.Duration,
	)
	return err
}

// SaveAuctionRecord 保存成交归档
func (p *PostgreSQL) SaveAuctionRecord(record *models.AuctionRecord) error {
	_, err := p.db.Exec(
		`INSERT INTO auction_records
            (room_id, card_id, card_color, card_type, double_card_id, buyer, seller, price)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		record.RoomID, record.CardID, record.CardColor, record.CardType,
		record.DoubleCardID, record.Buyer, record.Seller, record.Price,
	)
	return err
}

// GetPlayerTotals 跨对局统计
func (p *PostgreSQL) GetPlayerTotals(uuid string) (*models.PlayerTotals, error) {
	totals := &models.PlayerTotals{UUID: uuid}

	err := p.db.QueryRow(
		`
        SELECT
            COUNT(*),
            COALESCE(MAX((player->>'score')::int), 0),
            COALESCE(SUM((player->>'score')::int), 0)
        FROM game_records,
             jsonb_array_elements(players) AS player
        WHERE player->>'uuid' = $1`,
		uuid,
	).Scan(&totals.GamesTotal, &totals.BestScore, &totals.TotalScore)
	if err != nil {
		return nil, err
	}
	if totals.GamesTotal == 0 {
		return nil, ErrRecordNotFound
	}
	return totals, nil
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
