package engine

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/dirdb/dirdb/internal/store"
)

// EventOp classifies a watched change.
type EventOp int

const (
	EventCreate EventOp = iota
	EventUpdate
	EventRemove
)

func (op EventOp) String() string {
	switch op {
	case EventCreate:
		return "create"
	case EventUpdate:
		return "update"
	case EventRemove:
		return "remove"
	}
	return "unknown"
}

// Event is one out-of-band change to a record file, seen through the
// filesystem. It carries no consistency guarantee: a write observed here
// may still be in progress.
type Event struct {
	Table    string
	RecordID string
	Op       EventOp
}

// WatchTable streams record-file changes in a table directory until ctx is
// cancelled. Metadata writes and non-record files are ignored. The channel
// closes when the watcher stops.
func (e *Engine) WatchTable(ctx context.Context, table string) (<-chan Event, error) {
	t, err := e.ensureTable(table)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(t.Path()); err != nil {
		w.Close()
		return nil, err
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case fe, ok := <-w.Events:
				if !ok {
					return
				}
				ev, ok := classify(table, fe)
				if !ok {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("Table watcher error", "table", table, "error", err)
			}
		}
	}()
	return out, nil
}

// classify maps a filesystem notification onto a record event.
func classify(table string, fe fsnotify.Event) (Event, bool) {
	name := filepath.Base(fe.Name)
	if name == store.MetadataFile || !strings.HasSuffix(name, store.RecordExt) {
		return Event{}, false
	}
	id := strings.TrimSuffix(name, store.RecordExt)
	switch {
	case fe.Has(fsnotify.Create):
		return Event{Table: table, RecordID: id, Op: EventCreate}, true
	case fe.Has(fsnotify.Write):
		return Event{Table: table, RecordID: id, Op: EventUpdate}, true
	case fe.Has(fsnotify.Remove), fe.Has(fsnotify.Rename):
		return Event{Table: table, RecordID: id, Op: EventRemove}, true
	}
	return Event{}, false
}
