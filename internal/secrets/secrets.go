// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: anthropic-api-key, sendgrid-api-key, openalex-email.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store holds secrets loaded at startup.
type Store struct {
	values map[string]string
}

// Load reads all files in dir into a Store. A missing directory or
// missing files are not errors; Load returns an empty Store. Unreadable
// files produce a warning on stderr but do not abort.
func Load(dir string) (*Store, error) {
	s := &Store{values: make(map[string]string)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			s.values[name] = value
		}
	}

	return s, nil
}

// Get returns the secret for key, or fallback when fallback is non-empty
// or the key is absent. A value passed explicitly (flag, config file)
// always wins over the secrets directory.
func (s *Store) Get(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if s == nil {
		return ""
	}
	return s.values[key]
}

// Keys returns the loaded key names, sorted. Values are never exposed in
// bulk; this exists for startup diagnostics.
func (s *Store) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
