package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts "now" so time-derived invoice flags stay testable.
type Clock interface {
	Now() time.Time
}

// Module provides the system clock.
var Module = fx.Module("clock",
	fx.Provide(NewSystem),
)

type systemClock struct{}

// NewSystem returns a Clock backed by the wall clock, in UTC.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}
