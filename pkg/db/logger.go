package db

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var queryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "mrpbridge",
	Subsystem: "store",
	Name:      "query_duration_seconds",
	Help:      "Duration of statements issued against the legacy store.",
	Buckets:   prometheus.DefBuckets,
})

// zapGormLogger adapts gorm's logger interface onto zap and records a
// duration histogram per statement, mirroring the per-query timing the
// surrounding application relies on.
type zapGormLogger struct {
	log *zap.Logger
}

// NewGormLogger returns a gorm logger that writes through zap.
func NewGormLogger(log *zap.Logger) gormlogger.Interface {
	return &zapGormLogger{log: log}
}

func (l *zapGormLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return l
}

func (l *zapGormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	l.log.Sugar().Infof(msg, args...)
}

func (l *zapGormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	l.log.Sugar().Warnf(msg, args...)
}

func (l *zapGormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	l.log.Sugar().Errorf(msg, args...)
}

func (l *zapGormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	queryDuration.Observe(elapsed.Seconds())

	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		l.log.Error(fmt.Sprintf("statement failed: %v", err), fields...)
		return
	}
	l.log.Debug("executed statement", fields...)
}
