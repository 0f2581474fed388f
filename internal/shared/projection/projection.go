package projection

import "time"

// Metadata captures persistence timestamps attached to read models.
type Metadata struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

