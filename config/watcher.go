package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/FaaizHaikal/gankenkun/logging"
	"github.com/FaaizHaikal/gankenkun/utils"
)

// reloadQuiet is how long the documents must stay untouched before they are re-read. Editors often
// save a file in several writes.
const reloadQuiet = 100 * time.Millisecond

// Watcher re-reads the configuration directory whenever one of the two documents changes and
// delivers every valid result on Configs. Invalid edits are logged and skipped.
type Watcher struct {
	dir     string
	logger  logging.Logger
	fsw     *fsnotify.Watcher
	configs chan *Config
	workers utils.StoppableWorkers

	debounced func(f func())
}

// NewWatcher starts watching dir.
func NewWatcher(dir string, logger logging.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "cannot create config watcher")
	}
	if err := fsw.Add(dir); err != nil {
		goutils.UncheckedError(fsw.Close())
		return nil, errors.Wrapf(err, "cannot watch %q", dir)
	}
	w := &Watcher{
		dir:     dir,
		logger:  logger,
		fsw:     fsw,
		configs: make(chan *Config, 1),

		debounced: debounce.New(reloadQuiet),
	}
	w.workers = utils.NewStoppableWorkers(w.watch)
	return w, nil
}

// Configs delivers each newly read configuration. Only the latest unread one is kept.
func (w *Watcher) Configs() <-chan *Config {
	return w.configs
}

// Close stops watching.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	w.workers.Stop()
	return err
}

func (w *Watcher) watch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !isDocument(event.Name) || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			name := event.Name
			w.debounced(func() { w.reload(ctx, name) })
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload(ctx context.Context, name string) {
	if ctx.Err() != nil {
		return
	}
	cfg, err := Read(w.dir)
	if err != nil {
		w.logger.Warnw("ignoring invalid configuration change", "file", name, "error", err)
		return
	}
	w.logger.Infow("configuration changed", "file", name)
	w.deliver(cfg)
}

func (w *Watcher) deliver(cfg *Config) {
	for {
		select {
		case w.configs <- cfg:
			return
		default:
		}
		// drop the stale pending config
		select {
		case <-w.configs:
		default:
		}
	}
}

func isDocument(name string) bool {
	base := filepath.Base(name)
	return base == WalkingFile || base == KinematicFile
}
