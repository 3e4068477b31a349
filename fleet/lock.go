package fleet

import (
	"fmt"
	"sync"
)

// targets tracks which hosts have an active worker. A host is only ever
// polled by one worker at a time, even if it shows up twice in the input
// list.
var targets sync.Map

// lockTarget acquires a host-level lock. Must call unlockTarget when
// done.
func lockTarget(t string) error {
	_, loaded := targets.LoadOrStore(t, 1)
	if loaded {
		return fmt.Errorf("target still locked, refusing to start more runs")
	}
	return nil
}

// unlockTarget releases the host-level lock.
func unlockTarget(t string) {
	targets.Delete(t)
}
