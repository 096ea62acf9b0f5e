package pg

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/itchan-dev/boardapi/internal/config"
	"github.com/itchan-dev/boardapi/internal/logger"
)

//go:embed migrations/init.sql
var schema string

type Storage struct {
	db *sql.DB
}

// New connects to postgres and makes sure the schema exists.
func New(ctx context.Context, cfg config.Pg) (*Storage, error) {
	logger.Log.Info("connecting to db", "host", cfg.Host, "port", cfg.Port, "dbname", cfg.Dbname)
	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("successfully connected to db")

	storage := &Storage{db}
	if err := storage.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return storage, nil
}

func Connect(ctx context.Context, cfg config.Pg) (*sql.DB, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Dbname, sslMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

type scanner interface {
	Scan(dest ...any) error
}
