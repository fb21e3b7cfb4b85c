package ffalloc

import "sync"

type locker interface {
	sync.Locker
	RLock()
	RUnlock()
}

// nopLock is used when locking is turned off
type nopLock struct{}

func (nopLock) Lock()    {}
func (nopLock) Unlock()  {}
func (nopLock) RLock()   {}
func (nopLock) RUnlock() {}

func newLocker(on bool) locker {
	if on {
		return &sync.RWMutex{}
	}
	return nopLock{}
}
