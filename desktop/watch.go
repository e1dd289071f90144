package desktop

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

type watcher struct {
	fs   *fsnotify.Watcher
	done chan struct{}
}

// watchDir calls changed with the drawing id whenever a metadata file in dir
// is written, created, removed or renamed.
func watchDir(dir string, changed func(id string)) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &watcher{fs: fw, done: make(chan struct{})}
	go func() {
		defer close(w.done)
		for {
			select {
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				name := filepath.Base(event.Name)
				if !strings.HasSuffix(name, metaSuffix) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				changed(strings.TrimSuffix(name, metaSuffix))
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				logrus.WithError(err).Warn("Storage directory watcher error")
			}
		}
	}()
	return w, nil
}

func (w *watcher) Close() error {
	err := w.fs.Close()
	<-w.done
	return err
}
