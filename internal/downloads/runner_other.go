//go:build !unix

package downloads

import "os/exec"

func setProcessGroup(*exec.Cmd) {}
