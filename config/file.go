package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrNotFound is returned by LoadFile when the file does not exist.
var ErrNotFound = errors.New("config: file not found")

// LoadFile reads key=value lines from path and merges them into the store.
//
// Blank lines and lines starting with '#' are skipped, as are lines without
// '='. Keys and values are trimmed. A value in double quotes is always a
// string; otherwise true/false (or TRUE/FALSE) is a bool, then an integer, then
// a float, and anything else a string.
func (s *Store) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	entries, err := parse(f)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	s.merge(entries)
	return nil
}

// SaveFile writes every entry to path in the format LoadFile reads, one per
// line in key order. Strings are quoted. Values of other types are skipped.
func (s *Store) SaveFile(path string) error {
	values := s.snapshot()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("config: save %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, key := range s.Keys() {
		text, ok := format(values[key])
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s=%s\n", key, text)
	}

	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("config: save %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("config: save %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("config: save %s: %w", path, err)
	}
	return nil
}

func parse(r io.Reader) (map[string]any, error) {
	entries := make(map[string]any)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		key, raw, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		entries[key] = parseValue(strings.TrimSpace(raw))
	}
	return entries, sc.Err()
}

func parseValue(raw string) any {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return raw[1 : len(raw)-1]
	}

	switch raw {
	case "true", "TRUE":
		return true
	case "false", "FALSE":
		return false
	}

	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func format(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return `"` + val + `"`, true
	case int:
		return strconv.Itoa(val), true
	case bool:
		return strconv.FormatBool(val), true
	case float64:
		s := strconv.FormatFloat(val, 'g', -1, 64)
		// Keep the value a float when read back.
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s, true
	default:
		return "", false
	}
}
