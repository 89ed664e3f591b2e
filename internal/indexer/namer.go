package indexer

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// RotationPolicy selects how often the destination index name changes. It is
// chosen once per process from configuration.
type RotationPolicy int

const (
	NoRotation RotationPolicy = iota
	OneHour
	OneDay
	OneWeek
	OneMonth
)

// ParseRotationPolicy maps the configuration value onto a policy.
func ParseRotationPolicy(s string) (RotationPolicy, error) {
	switch s {
	case "", "none":
		return NoRotation, nil
	case "hourly":
		return OneHour, nil
	case "daily":
		return OneDay, nil
	case "weekly":
		return OneWeek, nil
	case "monthly":
		return OneMonth, nil
	}
	return NoRotation, errors.Errorf("unknown index rotation %q (want none, hourly, daily, weekly or monthly)", s)
}

const baseIndex = "analytics"

// Namer computes the destination index name for a point in time. Two calls
// within the same rotation bucket yield the same name, which is what keeps
// mapping declarations and document writes pointed at the same index.
type Namer struct {
	policy RotationPolicy
}

func NewNamer(policy RotationPolicy) Namer {
	return Namer{policy: policy}
}

// Name returns the index for now under the configured policy. Buckets are
// calendar-aligned in UTC; weekly buckets follow ISO week numbering.
func (n Namer) Name(now time.Time) string {
	now = now.UTC()
	switch n.policy {
	case OneHour:
		return baseIndex + "-" + now.Format("2006-01-02-15")
	case OneDay:
		return baseIndex + "-" + now.Format("2006-01-02")
	case OneWeek:
		year, week := now.ISOWeek()
		return fmt.Sprintf("%s-%d-w%02d", baseIndex, year, week)
	case OneMonth:
		return baseIndex + "-" + now.Format("2006-01")
	default:
		return baseIndex
	}
}
