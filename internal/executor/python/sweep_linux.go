//go:build linux

package python

import (
	"bytes"
	"os"
	"strconv"
	"syscall"
)

const maxSweeps = 5

// killMarked SIGKILLs every process whose environment contains marker. It
// repeats while it keeps finding matches, so a process forked during a pass
// is caught by the next one.
func killMarked(marker string) {
	needle := []byte(marker)
	self := os.Getpid()

	for i := 0; i < maxSweeps; i++ {
		entries, err := os.ReadDir("/proc")
		if err != nil {
			return
		}

		found := 0
		for _, e := range entries {
			pid, err := strconv.Atoi(e.Name())
			if err != nil || pid == self {
				continue
			}
			// Unreadable for other users' processes and empty for zombies.
			env, err := os.ReadFile("/proc/" + e.Name() + "/environ")
			if err != nil || len(env) == 0 {
				continue
			}
			for _, kv := range bytes.Split(env, []byte{0}) {
				if bytes.Equal(kv, needle) {
					_ = syscall.Kill(pid, syscall.SIGKILL)
					found++
					break
				}
			}
		}
		if found == 0 {
			return
		}
	}
}
