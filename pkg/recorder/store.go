// Package recorder persists matches to SQLite so runs can be replayed and
// compared after the fact. A Store owns the database; a Recorder is attached
// to a Brain as an observer and writes one row per observed step.
package recorder

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/teslashibe/go-arenabot/internal/log"
)

// Models lists every table the store migrates.
var Models = []any{
	&Match{},
	&Step{},
}

// Match is one Brain run.
type Match struct {
	gorm.Model
	RunID     string     `json:"runId" gorm:"size:64;uniqueIndex"`
	Hardware  string     `json:"hardware" gorm:"size:16"`
	Window    int        `json:"window"`
	Reach     int        `json:"reach"`
	Metric    string     `json:"metric" gorm:"size:16"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt"`

	Steps   uint64 `json:"steps"`
	Scans   uint64 `json:"scans"`
	Moves   uint64 `json:"moves"`
	Stays   uint64 `json:"stays"`
	Stabs   uint64 `json:"stabs"`
	Dropped uint64 `json:"dropped"`
}

// Step is the robot's state after one control step.
type Step struct {
	ID      uint      `json:"id" gorm:"primaryKey"`
	MatchID uint      `json:"matchId" gorm:"index;not null"`
	Seq     uint64    `json:"seq" gorm:"index"`
	At      time.Time `json:"at"`
	X       int       `json:"x"`
	Y       int       `json:"y"`
	Heading string    `json:"heading" gorm:"size:8"`
	Action  string    `json:"action" gorm:"size:16"`
	Enemies int       `json:"enemies"`
	Threat  int       `json:"threat"` // score under the robot

	// Snapshot is the full observer snapshot as JSON.
	Snapshot string `json:"snapshot"`
}

// Store is a SQLite database holding recorded matches.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the database at path and migrates the
// schema. ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        500,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	// one connection keeps ":memory:" databases shared and writes serialized
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}

	if err := db.AutoMigrate(Models...); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Debug("recorder store open", "path", path)
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Matches returns every recorded match, oldest first.
func (s *Store) Matches() ([]Match, error) {
	var out []Match
	err := s.db.Order("id").Find(&out).Error
	return out, err
}

// Match looks up a match by run id.
func (s *Store) Match(runID string) (Match, error) {
	var m Match
	err := s.db.Where("run_id = ?", runID).First(&m).Error
	return m, err
}

// Steps returns the steps of one match in order.
func (s *Store) Steps(matchID uint) ([]Step, error) {
	var out []Step
	err := s.db.Where("match_id = ?", matchID).Order("seq, id").Find(&out).Error
	return out, err
}
