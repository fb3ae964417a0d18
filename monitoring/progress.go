package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar tracks the bytes of a transfer. Bytes are in progress while
// they wait in the peripheral and finished once they are exchanged.
type ProgressBar struct {
	sync.Mutex
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// IncrementInProgress adds bytes that entered the peripheral.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// MoveInProgressToFinished marks queued bytes as exchanged.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	if amount > b.InProgress {
		amount = b.InProgress
	}

	b.InProgress -= amount
	b.Finished += amount
}

// Update replaces both counters. Finished never goes backwards and is capped
// by the total, if the total is known.
func (b *ProgressBar) Update(inProgress, finished uint64) {
	b.Lock()
	defer b.Unlock()

	if b.Total > 0 && finished > b.Total {
		finished = b.Total
	}

	if finished > b.Finished {
		b.Finished = finished
	}

	b.InProgress = inProgress
}

// Done tells if all the bytes are finished.
func (b *ProgressBar) Done() bool {
	b.Lock()
	defer b.Unlock()

	return b.Total > 0 && b.Finished >= b.Total
}
