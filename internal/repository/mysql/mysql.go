package mysql

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"Social_Hub/internal/errs"
	"Social_Hub/internal/model"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Options struct {
	MaxOpenConns int
	MaxIdleConns int
}

// Open connects to MySQL. Driver errors are translated so duplicate keys
// surface as gorm.ErrDuplicatedKey.
func Open(dsn string, opts Options) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(model.Tables()...)
}

// Store bundles the repositories sharing one connection pool.
type Store struct {
	Users       *UserRepository
	Communities *CommunityRepository
	Posts       *PostRepository
	Comments    *CommentRepository
	Follows     *FollowRepository
	Outbox      *OutboxRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		Users:       &UserRepository{DB: db},
		Communities: &CommunityRepository{DB: db},
		Posts:       &PostRepository{DB: db},
		Comments:    &CommentRepository{DB: db},
		Follows:     &FollowRepository{DB: db},
		Outbox:      &OutboxRepository{DB: db},
	}
}

const errDataTooLong = 1406

func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errs.NotFound(what + " not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errs.Conflict(what + " already exists")
	}
	var me *gomysql.MySQLError
	if errors.As(err, &me) && me.Number == errDataTooLong {
		return errs.Invalidf("%s field is too long", what)
	}
	return fmt.Errorf("%s: %w", what, err)
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern builds a case-insensitive LIKE pattern, used with
// ESCAPE '!' so it behaves the same on MySQL and SQLite.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
}

func shuffleTake(ids []string, n int) []string {
	rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}

func insertOutbox(tx *gorm.DB, eventType, key string, fields map[string]any) error {
	return tx.Create(model.NewOutboxEvent(eventType, key, time.Now(), fields)).Error
}
