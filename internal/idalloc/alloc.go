// Package idalloc generates identifiers for rows inserted into the legacy
// store. The store predates sequences, so the historical scheme reads
// max(id)+1; stores with native sequence support can swap in the
// snowflake-backed allocator instead.
package idalloc

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Allocator yields the identifier for the next row of a table.
type Allocator interface {
	NextID(ctx context.Context, gdb *gorm.DB, table, column string) (int64, error)
}

// MaxPlusOne reproduces the legacy read-then-insert scheme. It is NOT
// safe under concurrent writers: two sessions can read the same max and
// collide. That race is an accepted property of the legacy store, not
// something this layer papers over; detect collisions with
// db.IsDuplicateKeyErr and surface them.
type MaxPlusOne struct{}

func (MaxPlusOne) NextID(ctx context.Context, gdb *gorm.DB, table, column string) (int64, error) {
	var next int64
	err := gdb.WithContext(ctx).
		Raw(fmt.Sprintf("SELECT COALESCE(MAX(%s), 0) + 1 FROM %s", column, table)).
		Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

// Snowflake allocates collision-free identifiers for stores whose id
// columns are wide enough; the preferred scheme wherever the legacy
// numbering does not have to be preserved.
type Snowflake struct {
	node *snowflake.Node
}

func NewSnowflake(node *snowflake.Node) Snowflake {
	return Snowflake{node: node}
}

func (a Snowflake) NextID(_ context.Context, _ *gorm.DB, _, _ string) (int64, error) {
	return a.node.Generate().Int64(), nil
}
