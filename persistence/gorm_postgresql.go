// persistence/gorm_postgresql.go
package persistence

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/casino/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
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

	// 自动迁移表结构
	if err := autoMigrate(db); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// gormConfig 开启TranslateError, 否则pq的unique_violation不会翻译成gorm.ErrDuplicatedKey
func gormConfig() *gorm.Config {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)
	return &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	}
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.GormUser{},
		&models.GormRoom{},
		&models.GormRoomPlayer{},
		&models.GormTransaction{},
		&models.GormGameSession{},
	)
}

func toUser(u *models.GormUser) *models.User {
	return &models.User{
		ID:             u.ID,
		Username:       u.Username,
		PasswordHash:   u.PasswordHash,
		Balance:        u.Balance,
		TotalWagered:   u.TotalWagered,
		TotalWon:       u.TotalWon,
		GamesPlayed:    u.GamesPlayed,
		CreatedAt:      u.CreatedAt,
		LastLogin:      u.LastLogin,
		LastDailyBonus: u.LastDailyBonus,
	}
}

func (p *GormPostgreSQL) CreateUser(username, passwordHash string, startingBalance int64) (*models.User, error) {
	user := models.GormUser{
		Username:     username,
		PasswordHash: passwordHash,
		Balance:      startingBalance,
	}
	if err := p.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}
	return toUser(&user), nil
}

func (p *GormPostgreSQL) UserByName(username string) (*models.User, error) {
	var user models.GormUser
	if err := p.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return toUser(&user), nil
}

func (p *GormPostgreSQL) UserByID(id int64) (*models.User, error) {
	var user models.GormUser
	if err := p.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return toUser(&user), nil
}

// AddBalance 原子增减余额, 不允许透支
func (p *GormPostgreSQL) AddBalance(userID int64, delta int64) (*models.User, error) {
	var user models.GormUser
	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}
		if delta < 0 && user.Balance+delta < 0 {
			return ErrInsufficientBalance
		}
		if err := tx.Model(&user).Update("balance", gorm.Expr("balance + ?", delta)).Error; err != nil {
			return err
		}
		user.Balance += delta
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toUser(&user), nil
}

func (p *GormPostgreSQL) UpdateStats(userID int64, wagered, won int64) error {
	return p.db.Model(&models.GormUser{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"games_played":  gorm.Expr("games_played + 1"),
		"total_wagered": gorm.Expr("total_wagered + ?", wagered),
		"total_won":     gorm.Expr("total_won + ?", won),
	}).Error
}

func (p *GormPostgreSQL) TouchLastLogin(userID int64) error {
	return p.db.Model(&models.GormUser{}).Where("id = ?", userID).
		Update("last_login", time.Now()).Error
}

func (p *GormPostgreSQL) GrantDailyBonus(userID int64, amount int64) (*models.User, error) {
	var user models.GormUser
	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}
		now := time.Now()
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"balance":          gorm.Expr("balance + ?", amount),
			"last_daily_bonus": now,
		}).Error; err != nil {
			return err
		}
		user.Balance += amount
		user.LastDailyBonus = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toUser(&user), nil
}

func (p *GormPostgreSQL) RecordTransaction(t *models.Transaction) error {
	record := models.GormTransaction{
		UserID:      t.UserID,
		Amount:      t.Amount,
		Type:        t.Type,
		GameType:    t.GameType,
		Description: t.Description,
	}
	return p.db.Create(&record).Error
}

func (p *GormPostgreSQL) TransactionsByUser(userID int64, limit int) ([]models.Transaction, error) {
	var records []models.GormTransaction
	if err := p.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	result := make([]models.Transaction, 0, len(records))
	for _, r := range records {
		result = append(result, models.Transaction{
			ID:          r.ID,
			UserID:      r.UserID,
			Amount:      r.Amount,
			Type:        r.Type,
			GameType:    r.GameType,
			Description: r.Description,
			CreatedAt:   r.CreatedAt,
		})
	}
	return result, nil
}

// Leaderboard 按累计赢取金额排序
func (p *GormPostgreSQL) Leaderboard(limit int) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := p.db.Raw(`
        SELECT id AS user_id, username, total_won AS score, games_played, total_wagered
        FROM users
        WHERE total_won > 0
        ORDER BY total_won DESC
        LIMIT ?`, limit).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (p *GormPostgreSQL) CreateRoom(code, gameType string, hostID int64, maxPlayers int) (*models.Room, error) {
	room := models.GormRoom{
		Code:       code,
		GameType:   gameType,
		HostID:     hostID,
		Status:     models.RoomStatusWaiting,
		MaxPlayers: maxPlayers,
	}
	if err := p.db.Create(&room).Error; err != nil {
		return nil, err
	}
	return &models.Room{
		ID:           room.ID,
		Code:         room.Code,
		GameType:     room.GameType,
		HostID:       room.HostID,
		Status:       room.Status,
		MaxPlayers:   room.MaxPlayers,
		CurrentRound: room.CurrentRound,
		CreatedAt:    room.CreatedAt,
	}, nil
}

func (p *GormPostgreSQL) RoomByCode(code string) (*models.Room, error) {
	var room models.GormRoom
	if err := p.db.Where("code = ?", code).Order("id DESC").First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &models.Room{
		ID:           room.ID,
		Code:         room.Code,
		GameType:     room.GameType,
		HostID:       room.HostID,
		Status:       room.Status,
		MaxPlayers:   room.MaxPlayers,
		CurrentRound: room.CurrentRound,
		CreatedAt:    room.CreatedAt,
	}, nil
}

func (p *GormPostgreSQL) UpdateRoomStatus(roomID int64, status string) error {
	return p.db.Model(&models.GormRoom{}).Where("id = ?", roomID).
		Update("status", status).Error
}

func (p *GormPostgreSQL) IncrementRound(roomID int64) error {
	return p.db.Model(&models.GormRoom{}).Where("id = ?", roomID).
		Update("current_round", gorm.Expr("current_round + 1")).Error
}

// AddRoomPlayer 幂等: 重复加入不产生新记录, 不重置分数
func (p *GormPostgreSQL) AddRoomPlayer(roomID, userID int64) error {
	player := models.GormRoomPlayer{
		RoomID:   roomID,
		UserID:   userID,
		JoinedAt: time.Now(),
	}
	return p.db.Where("room_id = ? AND user_id = ?", roomID, userID).
		FirstOrCreate(&player).Error
}

func (p *GormPostgreSQL) RemoveRoomPlayer(roomID, userID int64) error {
	return p.db.Where("room_id = ? AND user_id = ?", roomID, userID).
		Delete(&models.GormRoomPlayer{}).Error
}

// RoomPlayers 返回房间成员, 按分数降序、加入时间升序
func (p *GormPostgreSQL) RoomPlayers(roomID int64) ([]models.RoomPlayer, error) {
	var players []models.RoomPlayer
	err := p.db.Raw(`
        SELECT rp.room_id, rp.user_id, u.username, rp.score, rp.joined_at
        FROM room_players rp
        JOIN users u ON u.id = rp.user_id
        WHERE rp.room_id = ?
        ORDER BY rp.score DESC, rp.joined_at ASC`, roomID).Scan(&players).Error
	return players, err
}

func (p *GormPostgreSQL) RoomPlayerCount(roomID int64) (int, error) {
	var count int64
	err := p.db.Model(&models.GormRoomPlayer{}).Where("room_id = ?", roomID).Count(&count).Error
	return int(count), err
}

func (p *GormPostgreSQL) AddRoomScore(roomID, userID int64, delta int64) error {
	return p.db.Model(&models.GormRoomPlayer{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Update("score", gorm.Expr("score + ?", delta)).Error
}

func (p *GormPostgreSQL) RecordGameSession(userID int64, gameType, patternType, difficulty string, bet, payout int64) error {
	record := models.GormGameSession{
		UserID:      userID,
		GameType:    gameType,
		PatternType: patternType,
		Difficulty:  difficulty,
		BetAmount:   bet,
		Payout:      payout,
	}
	return p.db.Create(&record).Error
}

func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
