//go:build windows

package server

import "os"

// Windows has no SIGHUP; configuration is only read at startup.
func notifyReload(chan<- os.Signal) {}

func stopReload(ch chan os.Signal) {
	close(ch)
}
