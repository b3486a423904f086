package main

import (
	"fmt"
	"os/exec"
	"runtime"
)

func explorerCommand(dir string) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("explorer", dir), nil
	case "darwin":
		return exec.Command("open", dir), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", dir), nil
	default:
		return nil, fmt.Errorf("opening folders is not supported on %s", runtime.GOOS)
	}
}

// openInExplorer starts the platform file browser without waiting for it.
func openInExplorer(dir string) error {
	c, err := explorerCommand(dir)
	if err != nil {
		return err
	}
	if err := startDetached(c); err != nil {
		return fmt.Errorf("open %s: %w", dir, err)
	}
	return nil
}

// startDetached starts c and drops the handle; the browser outlives us.
func startDetached(c *exec.Cmd) error {
	if err := c.Start(); err != nil {
		return err
	}
	return c.Process.Release()
}
