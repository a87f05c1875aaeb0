package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"patientlink/internal/logging"
)

const (
	databaseName = "archive.db"
	lockName     = "archive.lock"

	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	lockRetryDelay          = 25 * time.Millisecond

	// timeLayout is fixed-width so stored timestamps sort lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Store manages the review archive backed by SQLite.
type Store struct {
	mu      sync.Mutex
	db      *sql.DB
	path    string
	lock    *flock.Flock
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	logger  *slog.Logger
	now     func() time.Time
}

type options struct {
	level  zstd.EncoderLevel
	logger *slog.Logger
	now    func() time.Time
}

// Option configures Open.
type Option func(*options)

// WithCompressionLevel sets the zstd level used for run payloads.
func WithCompressionLevel(level zstd.EncoderLevel) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithLogger sets the archive logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// ParseCompressionLevel maps fastest, default, better and best to a zstd
// level. An empty name selects default.
func ParseCompressionLevel(name string) (zstd.EncoderLevel, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return zstd.SpeedDefault, nil
	}
	ok, level := zstd.EncoderLevelFromString(name)
	if !ok {
		return zstd.SpeedDefault, fmt.Errorf("unknown compression level %q", name)
	}
	return level, nil
}

// Open creates or connects to the archive in dir.
func Open(dir string, opts ...Option) (*Store, error) {
	o := options{level: zstd.SpeedDefault, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("archive directory is not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure archive directory: %w", err)
	}

	dbPath := filepath.Join(dir, databaseName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(o.level))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = encoder.Close()
		_ = db.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	store := &Store{
		db:      db,
		path:    dbPath,
		lock:    flock.New(filepath.Join(dir, lockName)),
		encoder: encoder,
		decoder: decoder,
		logger:  logging.NewComponentLogger(o.logger, "archive"),
		now:     o.now,
	}
	if err := store.withWriteLock(context.Background(), store.initSchema); err != nil {
		_ = store.Close()
		return nil, err
	}

	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database, codecs and lock file handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.decoder.Close()
	encErr := s.encoder.Close()
	dbErr := s.db.Close()
	lockErr := s.lock.Close()
	return errors.Join(encErr, dbErr, lockErr)
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

// withWriteLock runs fn while holding the cross-process archive lock.
func (s *Store) withWriteLock(ctx context.Context, fn func(context.Context) error) error {
	ctx = ensureContext(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire archive lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("acquire archive lock: %s is held by another process", s.lock.Path())
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			logging.WarnWithContext(s.logger, "archive unlock failed", "archive_unlock_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove "+s.lock.Path()+" if no patientlink process is running"),
			)
		}
	}()
	return retryOnBusy(ctx, func() error { return fn(ctx) })
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}
