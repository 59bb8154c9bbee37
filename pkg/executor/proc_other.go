//go:build !unix

package executor

import "os/exec"

// killProcessGroup is a no-op where process groups are unavailable;
// cmd.WaitDelay still bounds the wait.
func killProcessGroup(cmd *exec.Cmd) {}
