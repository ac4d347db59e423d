package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoTickerFile is wrapped by the ConfigError LoadTickers returns when
// the ticker list does not exist.
var ErrNoTickerFile = errors.New("ticker file not found")

// ReadTickers parses a ticker list: one symbol per line, only the first
// comma separated column counts, blank lines and # comments are skipped.
// Symbols are upper-cased and de-duplicated keeping first-seen order.
func ReadTickers(r io.Reader) ([]string, error) {
	var (
		out  []string
		seen = map[string]bool{}
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sym, _, _ := strings.Cut(line, ",")
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tickers: %w", err)
	}
	return out, nil
}

// LoadTickers reads the ticker list at path.
func LoadTickers(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &ConfigError{Field: "run.tickers_file", Msg: path, Err: ErrNoTickerFile}
	}
	if err != nil {
		return nil, &ConfigError{Field: "run.tickers_file", Msg: path, Err: err}
	}
	defer f.Close()
	return ReadTickers(f)
}

// EnsureTickerFile creates an empty ticker list, with parent directories,
// when none exists. It reports whether the file was created.
func EnsureTickerFile(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("create ticker dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return false, fmt.Errorf("create ticker file: %w", err)
	}
	return true, f.Close()
}

// SaveTickers rewrites the ticker list, one symbol per line.
func SaveTickers(path string, tickers []string) error {
	var b strings.Builder
	for _, t := range tickers {
		b.WriteString(t)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write tickers: %w", err)
	}
	return nil
}

// AddTickers appends symbols not already present and returns the new list.
func AddTickers(path string, symbols ...string) ([]string, error) {
	list, err := loadOrEmpty(path)
	if err != nil {
		return nil, err
	}
	merged, err := ReadTickers(strings.NewReader(strings.Join(append(list, symbols...), "\n")))
	if err != nil {
		return nil, err
	}
	return merged, SaveTickers(path, merged)
}

// RemoveTickers drops the given symbols and returns the new list.
func RemoveTickers(path string, symbols ...string) ([]string, error) {
	list, err := LoadTickers(path)
	if err != nil {
		return nil, err
	}
	drop := map[string]bool{}
	for _, s := range symbols {
		drop[strings.ToUpper(strings.TrimSpace(s))] = true
	}
	kept := list[:0]
	for _, t := range list {
		if !drop[t] {
			kept = append(kept, t)
		}
	}
	return kept, SaveTickers(path, kept)
}

func loadOrEmpty(path string) ([]string, error) {
	list, err := LoadTickers(path)
	if errors.Is(err, ErrNoTickerFile) {
		return nil, nil
	}
	return list, err
}
