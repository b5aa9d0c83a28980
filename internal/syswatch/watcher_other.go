//go:build !darwin

package syswatch

// Start is a no-op outside darwin: there is no portable sleep/wake
// notification source wired into the dependency stack, mirroring the
// teacher's darwin_stub.go HandleSleep.
func (w *Watcher) Start() {}
