package db

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Session is one unit of work against the store: a single connection,
// an ordered sequence of statements, and exactly one commit when the
// session ends. There is no per-statement transaction boundary and no
// rollback path; the legacy store commits whatever was issued, on error
// exits included.
type Session struct {
	tx  *gorm.DB
	log *zap.Logger
	id  snowflake.ID
}

// OpenSession begins a session. The snowflake id only tags log lines so
// statements of one session can be correlated.
func OpenSession(ctx context.Context, gdb *gorm.DB, log *zap.Logger, node *snowflake.Node) (*Session, error) {
	tx := gdb.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	id := node.Generate()
	log.Debug("store session opened", zap.Int64("session_id", id.Int64()))
	return &Session{tx: tx, log: log, id: id}, nil
}

// DB exposes the session's transaction handle to repositories.
func (s *Session) DB() *gorm.DB {
	return s.tx
}

// Close commits and releases the session. Commit happens on every exit
// path, matching the legacy store contract.
func (s *Session) Close() error {
	err := s.tx.Commit().Error
	s.log.Debug("store session closed", zap.Int64("session_id", s.id.Int64()), zap.Error(err))
	return err
}

// Run executes fn inside a session, guaranteeing commit-then-close even
// when fn fails. fn's error wins over the commit error.
func Run(ctx context.Context, gdb *gorm.DB, log *zap.Logger, node *snowflake.Node, fn func(s *Session) error) (err error) {
	session, openErr := OpenSession(ctx, gdb, log, node)
	if openErr != nil {
		return openErr
	}

	defer func() {
		closeErr := session.Close()
		if err == nil {
			err = closeErr
		}
	}()

	return fn(session)
}
