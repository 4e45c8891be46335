package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/jugs/internal/config"
)

const defaultPreset = "classic"

// #region parsing
// parseInts parses a comma- or space-separated list of integers.
func parseInts(s string) ([]int, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(parts) == 0 {
		return nil, errors.New("empty list")
	}
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", p, err)
		}
		out[i] = n
	}
	return out, nil
}

// parseJar converts a 1-based jar number to a 0-based index.
func parseJar(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("jar %q is not a number", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("jar numbers start at 1, got %d", n)
	}
	return n - 1, nil
}

// resolvePuzzle picks capacities and target from flags, falling back to a
// preset. An explicit target overrides the preset's.
func resolvePuzzle(cfg config.Config, preset, capacities string, target int) ([]int, int, error) {
	if capacities != "" {
		if preset != "" {
			return nil, 0, errors.New("use either --preset or --capacities, not both")
		}
		caps, err := parseInts(capacities)
		if err != nil {
			return nil, 0, fmt.Errorf("capacities: %w", err)
		}
		return caps, target, nil
	}

	if preset == "" {
		preset = defaultPreset
	}
	p, err := cfg.Preset(preset)
	if err != nil {
		return nil, 0, err
	}
	if target != 0 {
		return p.Capacities, target, nil
	}
	return p.Capacities, p.Target, nil
}

// #endregion parsing

// #region formatting
// formatState renders amounts against capacities, e.g. "3/8  5/5  0/3".
func formatState(capacities, amounts []int) string {
	parts := make([]string, len(amounts))
	for i, a := range amounts {
		c := 0
		if i < len(capacities) {
			c = capacities[i]
		}
		parts[i] = fmt.Sprintf("%d/%d", a, c)
	}
	return strings.Join(parts, "  ")
}

// #endregion formatting
