package python

import (
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/rs/xid"
)

// RunMarkerEnv is set to a unique value in the environment of every child.
// Descendants inherit it, which lets a sweep find processes that left the
// process group with setsid().
const RunMarkerEnv = "AI_DEBUGGER_RUN"

// groupProcess is a child started in its own process group.
//
// When the command's context is done the whole group gets SIGTERM, and
// SIGKILL once grace has elapsed. After the leader has been reaped, any
// member still alive (a daemonised grandchild, for instance) is killed too,
// and so is every process still carrying the run's marker. A descendant that
// both starts a new session and scrubs its environment is not found.
type groupProcess struct {
	cmd    *exec.Cmd
	grace  time.Duration
	marker string
	exited chan struct{}
}

// startGroup starts cmd, which must have been created with exec.CommandContext.
func startGroup(cmd *exec.Cmd, grace time.Duration) (*groupProcess, error) {
	p := &groupProcess{
		cmd:    cmd,
		grace:  grace,
		marker: RunMarkerEnv + "=" + xid.New().String(),
		exited: make(chan struct{}),
	}

	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}
	cmd.Env = append(cmd.Env, p.marker)
	setProcessGroup(cmd)
	cmd.Cancel = p.cancel
	// Wait must return even if a descendant keeps the output pipes open.
	cmd.WaitDelay = 2 * grace

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *groupProcess) cancel() error {
	err := terminateGroup(p.cmd)
	go func() {
		timer := time.NewTimer(p.grace)
		defer timer.Stop()
		select {
		case <-timer.C:
			_ = killGroup(p.cmd)
			// Escaped descendants may hold the output pipes and keep Wait blocked.
			killMarked(p.marker)
		case <-p.exited:
		}
	}()
	if errors.Is(err, os.ErrProcessDone) {
		return os.ErrProcessDone
	}
	return err
}

// wait reaps the leader and then clears out the group and every other
// process carrying the run's marker.
func (p *groupProcess) wait() error {
	err := p.cmd.Wait()
	close(p.exited)
	_ = killGroup(p.cmd)
	killMarked(p.marker)
	return err
}

// exitCode returns the leader's exit status, or -1 when it was killed by a signal.
func (p *groupProcess) exitCode() int {
	if p.cmd.ProcessState == nil {
		return -1
	}
	return p.cmd.ProcessState.ExitCode()
}
