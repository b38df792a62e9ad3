// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relevance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const keywordsYAML = `primary_keywords:
  market_design:
    - mechanism design
    - auction theory
  energy:
    - capacity market
secondary_keywords:
  industrial_organization:
    - market power
tertiary_keywords:
  methods:
    - game theory
exclude_keywords:
  - blockchain
  - cryptocurrency
`

func TestLoadKeywords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte(keywordsYAML), 0o644))

	ks, err := LoadKeywords(path)
	require.NoError(t, err)

	// Tiers are sorted so matched-keyword order is stable across runs.
	assert.Equal(t, []string{"auction theory", "capacity market", "mechanism design"}, ks.Primary)
	assert.Equal(t, []string{"market power"}, ks.Secondary)
	assert.Equal(t, []string{"game theory"}, ks.Tertiary)
	assert.Equal(t, []string{"blockchain", "cryptocurrency"}, ks.Exclude)
}

func TestLoadKeywords_MissingFile(t *testing.T) {
	_, err := LoadKeywords(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadKeywords_NoPositiveKeywords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte("exclude_keywords:\n  - spam\n"), 0o644))

	_, err := LoadKeywords(path)
	assert.ErrorContains(t, err, "no positive keywords")
}

func TestLoadKeywords_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte("primary_keywords: [unclosed"), 0o644))

	_, err := LoadKeywords(path)
	assert.Error(t, err)
}
