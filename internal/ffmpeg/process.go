package ffmpeg

import (
	"context"
	"os/exec"
	"sync"

	"github.com/pkg/errors"
)

// process is a running ffmpeg command that is killed when its context ends.
type process struct {
	cmd    *exec.Cmd
	stderr *tailBuffer

	done     chan struct{}
	waitOnce sync.Once
	waitErr  error
}

// startProcess starts cmd, capturing stderr. The caller must set up pipes
// before calling.
func startProcess(ctx context.Context, cmd *exec.Cmd) (*process, error) {
	p := &process{cmd: cmd, stderr: &tailBuffer{}, done: make(chan struct{})}
	cmd.Stderr = p.stderr
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, "failed to start ffmpeg")
	}
	go func() {
		select {
		case <-ctx.Done():
			p.kill()
		case <-p.done:
		}
	}()
	return p, nil
}

func (p *process) kill() {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}

// wait reaps the process once; later calls return the first result.
func (p *process) wait() error {
	p.waitOnce.Do(func() {
		err := p.cmd.Wait()
		close(p.done)
		if err != nil {
			if tail := p.stderr.String(); tail != "" {
				err = errors.Wrapf(err, "ffmpeg: %s", lastLine(tail))
			}
			p.waitErr = err
		}
	})
	return p.waitErr
}

func lastLine(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '\n' {
			return s[i+1:]
		}
	}
	return s
}
