//go:build unix

package downloads

import (
	"os/exec"
	"syscall"
)

// setProcessGroup lets a cancel kill child processes (e.g. ffmpeg) with the downloader.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
