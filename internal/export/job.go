package export

import (
	"context"
	"sync"

	"github.com/ZacxDev/arcadescript/internal/caption"
	"github.com/ZacxDev/arcadescript/internal/format"
	"github.com/ZacxDev/arcadescript/internal/theme"
)

// Job is one export run. Its captions and theme are snapshots taken at
// Start; edits made afterwards do not reach it.
type Job struct {
	ID         string
	SourcePath string
	Format     format.Format
	Container  string
	Captions   []caption.Segment
	Theme      theme.Theme

	mu         sync.Mutex
	state      State
	progress   int
	outputPath string
	err        error

	cancel context.CancelFunc
	done   chan struct{}
}

func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Progress is the percentage of the source rendered, 0 to 100.
func (j *Job) Progress() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.progress
}

// OutputPath is the finished file, set once the job is Done.
func (j *Job) OutputPath() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.outputPath
}

// Err is the failure cause of a Failed job.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Done is closed once the job is terminal and its resources are released.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the job finishes or ctx ends, and returns the job error.
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return j.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel stops the job and blocks until teardown has completed. Canceling a
// finished job has no effect.
func (j *Job) Cancel() {
	j.cancel()
	<-j.done
}
