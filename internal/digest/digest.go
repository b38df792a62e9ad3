// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package digest assembles the final paper digest, renders it for
// delivery, and persists it as JSON plus a run archive in SQLite.
package digest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/research-digest/pkg/types"
)

// Build assembles a Digest from scored, summarized papers.
func Build(period types.Period, papers []types.PaperRecord) types.Digest {
	return types.Digest{
		GeneratedAt: time.Now().UTC(),
		Period:      period,
		PaperCount:  len(papers),
		Papers:      papers,
	}
}

// SaveJSON writes the digest to dir as {period}_digest_{YYYYMMDD}.json
// and returns the path. The directory is created if needed.
func SaveJSON(d types.Digest, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating digest directory: %w", err)
	}

	name := fmt.Sprintf("%s_digest_%s.json", d.Period, d.GeneratedAt.Format("20060102"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding digest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing digest file: %w", err)
	}
	return path, nil
}

// Load reads a digest previously written by SaveJSON.
func Load(path string) (types.Digest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Digest{}, fmt.Errorf("reading digest file: %w", err)
	}
	var d types.Digest
	if err := json.Unmarshal(data, &d); err != nil {
		return types.Digest{}, fmt.Errorf("parsing digest file %s: %w", path, err)
	}
	return d, nil
}
