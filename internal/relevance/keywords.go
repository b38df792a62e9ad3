// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package relevance scores papers against a weighted keyword profile and
// filters out those below a period-specific threshold.
package relevance

import (
	"fmt"
	"os"
	"sort"

	"go.yaml.in/yaml/v3"
)

// KeywordSet is the scoring profile: three positive tiers and one
// negative. Matching is case-insensitive on whole words.
type KeywordSet struct {
	Primary   []string
	Secondary []string
	Tertiary  []string
	Exclude   []string
}

// keywordsFile mirrors the on-disk YAML layout: tiers are maps of topic
// name to keyword list, so related terms can be grouped under a label.
type keywordsFile struct {
	Primary   map[string][]string `yaml:"primary_keywords"`
	Secondary map[string][]string `yaml:"secondary_keywords"`
	Tertiary  map[string][]string `yaml:"tertiary_keywords"`
	Exclude   []string            `yaml:"exclude_keywords"`
}

// LoadKeywords reads a keyword profile from a YAML file. Topic grouping
// is flattened; only the tier matters for scoring.
func LoadKeywords(path string) (KeywordSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return KeywordSet{}, fmt.Errorf("reading keywords file: %w", err)
	}

	var kf keywordsFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return KeywordSet{}, fmt.Errorf("parsing keywords file %s: %w", path, err)
	}

	ks := KeywordSet{
		Primary:   flatten(kf.Primary),
		Secondary: flatten(kf.Secondary),
		Tertiary:  flatten(kf.Tertiary),
		Exclude:   kf.Exclude,
	}
	if len(ks.Primary) == 0 && len(ks.Secondary) == 0 && len(ks.Tertiary) == 0 {
		return KeywordSet{}, fmt.Errorf("keywords file %s defines no positive keywords", path)
	}
	return ks, nil
}

// flatten collapses the topic groups of one tier into a single sorted
// list. Map iteration order is random; sorting keeps MatchedKeywords
// and topic grouping stable across runs of the same profile.
func flatten(groups map[string][]string) []string {
	var all []string
	for _, words := range groups {
		all = append(all, words...)
	}
	sort.Strings(all)
	return all
}

// FallbackKeywords is the built-in profile used when no keywords file is
// configured: energy and market design economics.
func FallbackKeywords() KeywordSet {
	return KeywordSet{
		Primary: []string{
			"mechanism design",
			"auction theory",
			"capacity market",
			"electricity market",
			"power market",
			"peak load pricing",
			"carbon pricing",
			"emissions trading",
			"renewable integration",
		},
		Secondary: []string{
			"vertical integration",
			"price regulation",
			"real options",
			"market power",
			"welfare economics",
			"consumer choice",
		},
		Tertiary: []string{
			"game theory",
			"contract theory",
			"energy policy",
		},
		Exclude: []string{
			"machine learning",
			"deep learning",
			"neural network",
			"cryptocurrency",
			"blockchain",
		},
	}
}
