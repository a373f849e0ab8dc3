// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/wfunc/casino/models"
)

// PostgreSQL 原生 database/sql 实现
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

	// 设置连接池参数
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
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            username VARCHAR(64) UNIQUE NOT NULL,
            password_hash VARCHAR(255) NOT NULL,
            balance BIGINT NOT NULL DEFAULT 10000,
            total_wagered BIGINT NOT NULL DEFAULT 0,
            total_won BIGINT NOT NULL DEFAULT 0,
            games_played INT NOT NULL DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            last_login TIMESTAMP,
            last_daily_bonus TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS game_rooms (
            id BIGSERIAL PRIMARY KEY,
            code VARCHAR(6) NOT NULL,
            game_type VARCHAR(64) NOT NULL,
            host_id BIGINT NOT NULL,
            status VARCHAR(16) NOT NULL DEFAULT 'waiting',
            max_players INT NOT NULL DEFAULT 8,
            current_round INT NOT NULL DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS room_players (
            id BIGSERIAL PRIMARY KEY,
            room_id BIGINT NOT NULL,
            user_id BIGINT NOT NULL,
            score BIGINT NOT NULL DEFAULT 0,
            joined_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            UNIQUE (room_id, user_id)
        )`,
		`CREATE TABLE IF NOT EXISTS transactions (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL,
            amount BIGINT NOT NULL,
            type VARCHAR(16),
            game_type VARCHAR(64),
            description VARCHAR(255),
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS game_sessions (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL,
            game_type VARCHAR(64),
            pattern_type VARCHAR(32),
            difficulty VARCHAR(16),
            bet_amount BIGINT NOT NULL DEFAULT 0,
            payout BIGINT NOT NULL DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

const userColumns = `id, username, password_hash, balance, total_wagered, total_won,
    games_played, created_at, last_login, last_daily_bonus`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Balance, &u.TotalWagered,
		&u.TotalWon, &u.GamesPlayed, &u.CreatedAt, &u.LastLogin, &u.LastDailyBonus)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *PostgreSQL) CreateUser(username, passwordHash string, startingBalance int64) (*models.User, error) {
	row := p.db.QueryRow(`
        INSERT INTO users (username, password_hash, balance)
        VALUES ($1, $2, $3)
        RETURNING `+userColumns, username, passwordHash, startingBalance)
	user, err := scanUser(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}
	return user, nil
}

func (p *PostgreSQL) UserByName(username string) (*models.User, error) {
	return scanUser(p.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (p *PostgreSQL) UserByID(id int64) (*models.User, error) {
	return scanUser(p.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// AddBalance 原子增减余额, 不允许透支
func (p *PostgreSQL) AddBalance(userID int64, delta int64) (*models.User, error) {
	row := p.db.QueryRow(`
        UPDATE users SET balance = balance + $2
        WHERE id = $1 AND balance + $2 >= 0
        RETURNING `+userColumns, userID, delta)
	user, err := scanUser(row)
	if errors.Is(err, ErrRecordNotFound) {
		// 区分用户不存在和余额不足
		if _, lookupErr := p.UserByID(userID); lookupErr == nil {
			return nil, ErrInsufficientBalance
		}
		return nil, ErrRecordNotFound
	}
	return user, err
}

func (p *PostgreSQL) UpdateStats(userID int64, wagered, won int64) error {
	_, err := p.db.Exec(`
        UPDATE users SET games_played = games_played + 1,
            total_wagered = total_wagered + $2, total_won = total_won + $3
        WHERE id = $1`, userID, wagered, won)
	return err
}

func (p *PostgreSQL) TouchLastLogin(userID int64) error {
	_, err := p.db.Exec(`UPDATE users SET last_login = NOW() WHERE id = $1`, userID)
	return err
}

func (p *PostgreSQL) GrantDailyBonus(userID int64, amount int64) (*models.User, error) {
	row := p.db.QueryRow(`
        UPDATE users SET balance = balance + $2, last_daily_bonus = NOW()
        WHERE id = $1
        RETURNING `+userColumns, userID, amount)
	return scanUser(row)
}

func (p *PostgreSQL) RecordTransaction(t *models.Transaction) error {
	_, err := p.db.Exec(`
        INSERT INTO transactions (user_id, amount, type, game_type, description)
        VALUES ($1, $2, $3, $4, $5)`,
		t.UserID, t.Amount, t.Type, t.GameType, t.Description)
	return err
}

func (p *PostgreSQL) TransactionsByUser(userID int64, limit int) ([]models.Transaction, error) {
	rows, err := p.db.Query(`
        SELECT id, user_id, amount, COALESCE(type, ''), COALESCE(game_type, ''),
            COALESCE(description, ''), created_at
        FROM transactions WHERE user_id = $1
        ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.GameType,
			&t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (p *PostgreSQL) Leaderboard(limit int) ([]models.LeaderboardEntry, error) {
	rows, err := p.db.Query(`
        SELECT id, username, total_won, games_played, total_wagered
        FROM users WHERE total_won > 0
        ORDER BY total_won DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Score, &e.GamesPlayed, &e.TotalWagered); err != nil {
			return nil, err
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (p *PostgreSQL) CreateRoom(code, gameType string, hostID int64, maxPlayers int) (*models.Room, error) {
	var room models.Room
	err := p.db.QueryRow(`
        INSERT INTO game_rooms (code, game_type, host_id, max_players)
        VALUES ($1, $2, $3, $4)
        RETURNING id, code, game_type, host_id, status, max_players, current_round, created_at`,
		code, gameType, hostID, maxPlayers).
		Scan(&room.ID, &room.Code, &room.GameType, &room.HostID, &room.Status,
			&room.MaxPlayers, &room.CurrentRound, &room.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (p *PostgreSQL) RoomByCode(code string) (*models.Room, error) {
	var room models.Room
	err := p.db.QueryRow(`
        SELECT id, code, game_type, host_id, status, max_players, current_round, created_at
        FROM game_rooms WHERE code = $1 ORDER BY id DESC LIMIT 1`, code).
		Scan(&room.ID, &room.Code, &room.GameType, &room.HostID, &room.Status,
			&room.MaxPlayers, &room.CurrentRound, &room.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (p *PostgreSQL) UpdateRoomStatus(roomID int64, status string) error {
	_, err := p.db.Exec(`UPDATE game_rooms SET status = $2 WHERE id = $1`, roomID, status)
	return err
}

func (p *PostgreSQL) IncrementRound(roomID int64) error {
	_, err := p.db.Exec(`UPDATE game_rooms SET current_round = current_round + 1 WHERE id = $1`, roomID)
	return err
}

// AddRoomPlayer 幂等: 重复加入不产生新记录, 不重置分数
func (p *PostgreSQL) AddRoomPlayer(roomID, userID int64) error {
	_, err := p.db.Exec(`
        INSERT INTO room_players (room_id, user_id)
        VALUES ($1, $2)
        ON CONFLICT (room_id, user_id) DO NOTHING`, roomID, userID)
	return err
}

func (p *PostgreSQL) RemoveRoomPlayer(roomID, userID int64) error {
	_, err := p.db.Exec(`DELETE FROM room_players WHERE room_id = $1 AND user_id = $2`, roomID, userID)
	return err
}

func (p *PostgreSQL) RoomPlayers(roomID int64) ([]models.RoomPlayer, error) {
	rows, err := p.db.Query(`
        SELECT rp.room_id, rp.user_id, u.username, rp.score, rp.joined_at
        FROM room_players rp
        JOIN users u ON u.id = rp.user_id
        WHERE rp.room_id = $1
        ORDER BY rp.score DESC, rp.joined_at ASC`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []models.RoomPlayer
	for rows.Next() {
		var rp models.RoomPlayer
		if err := rows.Scan(&rp.RoomID, &rp.UserID, &rp.Username, &rp.Score, &rp.JoinedAt); err != nil {
			return nil, err
		}
		players = append(players, rp)
	}
	return players, rows.Err()
}

func (p *PostgreSQL) RoomPlayerCount(roomID int64) (int, error) {
	var count int
	err := p.db.QueryRow(`SELECT COUNT(*) FROM room_players WHERE room_id = $1`, roomID).Scan(&count)
	return count, err
}

func (p *PostgreSQL) AddRoomScore(roomID, userID int64, delta int64) error {
	_, err := p.db.Exec(`
        UPDATE room_players SET score = score + $3
        WHERE room_id = $1 AND user_id = $2`, roomID, userID, delta)
	return err
}

func (p *PostgreSQL) RecordGameSession(userID int64, gameType, patternType, difficulty string, bet, payout int64) error {
	_, err := p.db.Exec(`
        INSERT INTO game_sessions (user_id, game_type, pattern_type, difficulty, bet_amount, payout)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		userID, gameType, patternType, difficulty, bet, payout)
	return err
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
