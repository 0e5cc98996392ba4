package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseTokenFile reads upstream API keys from r, one per line. Blank lines
// and lines starting with # are skipped. Order determines rotation priority.
func ParseTokenFile(r io.Reader) ([]string, error) {
	var keys []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keys = append(keys, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	return keys, nil
}

// SeedFromTokenFile imports keys from a token file into an empty store.
// It is a no-op when the store already holds credentials or the file does
// not exist, so restarts never duplicate keys.
func SeedFromTokenFile(store Storage, path string) (int, error) {
	count, err := store.CountCredentials()
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()

	keys, err := ParseTokenFile(f)
	if err != nil {
		return 0, err
	}

	imported := 0
	for i, key := range keys {
		cred := &Credential{
			Name:     fmt.Sprintf("token-%02d", i+1),
			APIKey:   key,
			Priority: i + 1,
		}
		if err := store.CreateCredential(cred); err != nil {
			return imported, fmt.Errorf("importing token %d: %w", i+1, err)
		}
		imported++
	}
	return imported, nil
}
