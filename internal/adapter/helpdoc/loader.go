// Package helpdoc loads the per-topic help documents.
package helpdoc

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"googlebot/internal/domain"
)

const ext = ".help"

// Loader maps topic names to "<dir>/<topic>.help" files.
type Loader struct {
	dir      string
	overview string
	logger   *slog.Logger
}

// New creates a Loader reading topics from dir and falling back to overview.
func New(dir, overview string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{dir: dir, overview: overview, logger: logger}
}

// Load returns the help text for topic, or the overview document when the
// topic has no file of its own. An empty topic loads the overview.
func (l *Loader) Load(topic string) (string, error) {
	if path, ok := l.topicPath(topic); ok {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			l.logger.Debug("help topic found", "topic", topic, "path", path)
			return string(data), nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", domain.NewDomainError("Loader.Load", domain.ErrStoreIO, err.Error())
		}
	}
	return l.Overview()
}

// Overview returns the overview document.
func (l *Loader) Overview() (string, error) {
	data, err := os.ReadFile(l.overview)
	if err != nil {
		return "", domain.NewDomainError("Loader.Overview", domain.ErrStoreIO, err.Error())
	}
	l.logger.Debug("help overview loaded", "path", l.overview)
	return string(data), nil
}

// Topic returns the help text for topic without falling back.
func (l *Loader) Topic(topic string) (string, error) {
	path, ok := l.topicPath(topic)
	if !ok {
		return "", domain.NewDomainError("Loader.Topic", domain.ErrStoreIO, "invalid topic "+topic)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", domain.NewDomainError("Loader.Topic", domain.ErrStoreIO, err.Error())
	}
	return string(data), nil
}

// topicPath returns the file for topic. Names that could leave dir are rejected.
func (l *Loader) topicPath(topic string) (string, bool) {
	if topic == "" || strings.ContainsAny(topic, `/\`) || strings.Contains(topic, "..") {
		return "", false
	}
	return filepath.Join(l.dir, topic+ext), true
}
