package db

import (
	"fmt"
	"time"

	"meetup-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// Open connects using the named driver.
func Open(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "postgres":
		return Connect(dsn)
	case "sqlite":
		return OpenSQLite(dsn)
	default:
		return nil, fmt.Errorf("db: unknown driver %q", driver)
	}
}

// Connect opens Postgres, retrying while the server comes up.
func Connect(dsn string) (*gorm.DB, error) {
	var gdb *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		gdb, err = gorm.Open(postgres.Open(dsn), gormConfig())
		if err == nil {
			sqlDB, err2 := gdb.DB()
			if err2 == nil {
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetMaxOpenConns(20)
				sqlDB.SetConnMaxLifetime(time.Hour)
				return gdb, nil
			}
			err = err2
		}
		log.Warn().Err(err).Int("attempt", i+1).Msg("database not ready")
		time.Sleep(time.Duration(500+i*200) * time.Millisecond)
	}
	return nil, err
}

// OpenSQLite opens a SQLite database with foreign keys enforced. The pool is
// limited to one connection so an in-memory database is shared by every
// query; callers inside a transaction must use the transaction handle.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	if err := gdb.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}
	return gdb, nil
}

// OpenMemory returns a fresh, migrated in-memory database.
func OpenMemory() (*gorm.DB, error) {
	gdb, err := OpenSQLite("file::memory:")
	if err != nil {
		return nil, err
	}
	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

// Migrate creates or updates every table and seeds the event type catalogue.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return SeedEventTypes(gdb)
}

// DefaultEventTypes is inserted when the event_types table is empty.
var DefaultEventTypes = []models.EventType{
	{Name: "Sports", Image: "event-types/sports.png"},
	{Name: "Music", Image: "event-types/music.png"},
	{Name: "Food & Drinks", Image: "event-types/food.png"},
	{Name: "Travel", Image: "event-types/travel.png"},
	{Name: "Games", Image: "event-types/games.png"},
	{Name: "Culture", Image: "event-types/culture.png"},
	{Name: "Outdoors", Image: "event-types/outdoors.png"},
	{Name: "Other", Image: "event-types/other.png"},
}

func SeedEventTypes(gdb *gorm.DB) error {
	var n int64
	if err := gdb.Model(&models.EventType{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	types := make([]models.EventType, len(DefaultEventTypes))
	copy(types, DefaultEventTypes)
	if err := gdb.Create(&types).Error; err != nil {
		return fmt.Errorf("seed event types: %w", err)
	}
	return nil
}

// Close releases the underlying pool.
func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
