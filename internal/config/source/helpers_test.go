package source

import (
	"time"

	"github.com/dshills/imgclip/internal/config/watcher"
)

func watcherEvent(path string, removed bool) watcher.Event {
	op := watcher.OpWrite
	if removed {
		op = watcher.OpRemove
	}
	return watcher.Event{Path: path, Op: op, Time: time.Now()}
}
