// Package kvstore implements the bot's flat "key: value" settings file.
//
// Keys are matched as case-insensitive substrings of whole lines, so a key
// that is a substring of another key can hit the wrong line. The file is
// re-read on every call and rewritten in full on every Set, without locking:
// concurrent writers race.
package kvstore

import (
	"bufio"
	"bytes"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"googlebot/internal/domain"
)

// Missing is returned by Get when no line matches or the value is not an integer.
const Missing = -1

// Well-known keys.
const (
	TextResults  = "TEXT_RESULTS"
	ImageResults = "IMAGE_RESULTS"
)

// FileStore reads and writes a flat settings file.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *FileStore) {
		s.logger = l
	}
}

// New creates a FileStore backed by path. The file is not touched until used.
func New(path string, opts ...Option) *FileStore {
	s := &FileStore{path: path, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Get returns the integer value of the first line containing key, or Missing.
func (s *FileStore) Get(key string) (int, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return Missing, domain.NewDomainError("FileStore.Get", domain.ErrStoreIO, err.Error())
	}
	defer f.Close()

	value := Missing
	needle := strings.ToLower(key)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if key == "" || !strings.Contains(strings.ToLower(line), needle) {
			continue
		}
		value = parseValue(line)
		break
	}
	if err := sc.Err(); err != nil {
		return Missing, domain.NewDomainError("FileStore.Get", domain.ErrStoreIO, err.Error())
	}

	s.logger.Debug("config value read", "key", key, "value", value)
	return value, nil
}

// parseValue returns the integer after the first ':' of line, or Missing.
func parseValue(line string) int {
	_, raw, ok := strings.Cut(line, ":")
	if !ok {
		return Missing
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return Missing
	}
	return n
}

// Set rewrites every line containing key as "<key>: <value>" and reports
// whether any line changed. The whole file is rewritten even when nothing matched.
func (s *FileStore) Set(key string, value int) (bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return false, domain.NewDomainError("FileStore.Set", domain.ErrStoreIO, err.Error())
	}

	var out bytes.Buffer
	changed := false
	needle := strings.ToLower(key)
	for _, line := range splitLinesKeepEnds(string(data)) {
		if key != "" && strings.Contains(strings.ToLower(line), needle) {
			out.WriteString(key + ": " + strconv.Itoa(value) + "\n")
			changed = true
			continue
		}
		out.WriteString(line)
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return false, domain.NewDomainError("FileStore.Set", domain.ErrStoreIO, err.Error())
	}
	if err := os.WriteFile(s.path, out.Bytes(), info.Mode().Perm()); err != nil {
		return false, domain.NewDomainError("FileStore.Set", domain.ErrStoreIO, err.Error())
	}

	if changed {
		s.logger.Debug("config value changed", "key", key, "value", value)
	} else {
		s.logger.Debug("config value not changed", "key", key, "value", value)
	}
	return changed, nil
}

// Raw returns the file content unchanged.
func (s *FileStore) Raw() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", domain.NewDomainError("FileStore.Raw", domain.ErrStoreIO, err.Error())
	}
	return string(data), nil
}

// splitLinesKeepEnds splits s after each newline, keeping the terminators.
func splitLinesKeepEnds(s string) []string {
	var lines []string
	for s != "" {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			lines = append(lines, s)
			break
		}
		lines = append(lines, s[:i+1])
		s = s[i+1:]
	}
	return lines
}
