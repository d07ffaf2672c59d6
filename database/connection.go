package database

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// LockConn wraps a raw database/sql connection used for Postgres advisory
// locks. GORM pools connections, which makes session-scoped advisory locks
// unreliable; a dedicated connection keeps lock and unlock on the same
// session.
type LockConn struct {
	conn *sql.DB
}

// LockConfig holds configuration for the lock connection
type LockConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// NewLockConn opens the dedicated advisory-lock connection
func NewLockConn(cfg LockConfig) (*LockConn, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName,
	)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock connection: %w", err)
	}

	// A single session is enough; locks must stay on one connection
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Advisory lock connection established")

	return &LockConn{conn: conn}, nil
}

// TryLock attempts to take the advisory lock for (tenant, period) without
// blocking. Returns false if another aggregation run holds it.
func (l *LockConn) TryLock(ctx context.Context, tenantID, periodKind string, periodStart time.Time) (bool, error) {
	key := lockKey(tenantID, periodKind, periodStart)

	var acquired bool
	err := l.conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, key).Scan(&acquired)
	if err != nil {
		return false, fmt.Errorf("TryLock: %w", err)
	}
	return acquired, nil
}

// Unlock releases the advisory lock for (tenant, period)
func (l *LockConn) Unlock(ctx context.Context, tenantID, periodKind string, periodStart time.Time) error {
	key := lockKey(tenantID, periodKind, periodStart)

	if _, err := l.conn.ExecContext(ctx, `SELECT pg_advisory_unlock($1)`, key); err != nil {
		return fmt.Errorf("Unlock: %w", err)
	}
	return nil
}

// Close closes the lock connection
func (l *LockConn) Close() error {
	if l.conn != nil {
		log.Println("📡 Closing advisory lock connection...")
		return l.conn.Close()
	}
	return nil
}

// lockKey folds (tenant, periodKind, periodStart) into the int64 keyspace
// Postgres advisory locks use
func lockKey(tenantID, periodKind string, periodStart time.Time) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%d", tenantID, periodKind, periodStart.Unix())
	return int64(h.Sum64())
}
