package internal

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads a YAML options file, e.g.
//
//	filter: ^svc-
//	maxDepth: 2
//	recursive: true
func LoadConfig(path string) (ScanOptions, error) {
	opts, _, err := LoadConfigKeys(path)
	return opts, err
}

// ConfigKeys records which options a config file set explicitly.
type ConfigKeys map[string]bool

// Has reports whether key was present in the file.
func (k ConfigKeys) Has(key string) bool { return k[key] }

// LoadConfigKeys is LoadConfig that also reports the keys the file set, so
// callers layering flags on top can detect conflicts across both sources.
func LoadConfigKeys(path string) (ScanOptions, ConfigKeys, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ScanOptions{}, nil, fmt.Errorf("read config: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return ScanOptions{}, nil, InvalidType(fmt.Sprintf("options must be an object: %v", err))
	}
	opts, err := ParseOptions(raw)
	if err != nil {
		return ScanOptions{}, nil, err
	}
	keys := make(ConfigKeys, len(raw))
	for k := range raw {
		keys[k] = true
	}
	return opts, keys, nil
}

// ParseOptions validates a loosely typed option bag. Type checks run first,
// then ranges, then combinations.
func ParseOptions(raw map[string]any) (ScanOptions, error) {
	var opts ScanOptions

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch k {
		case "filter", "levels", "maxDepth", "recursive", "threads", "archives":
		default:
			return ScanOptions{}, InvalidType(fmt.Sprintf("unknown option %q", k))
		}
	}

	if v, ok := raw["filter"]; ok {
		s, ok := v.(string)
		if !ok {
			return ScanOptions{}, InvalidType("filter must be a string")
		}
		opts.Filter = s
	}
	levels, hasLevels, err := numberOption(raw, "levels")
	if err != nil {
		return ScanOptions{}, err
	}
	maxDepth, hasMaxDepth, err := numberOption(raw, "maxDepth")
	if err != nil {
		return ScanOptions{}, err
	}
	threads, _, err := numberOption(raw, "threads")
	if err != nil {
		return ScanOptions{}, err
	}
	recursive, hasRecursive, err := boolOption(raw, "recursive")
	if err != nil {
		return ScanOptions{}, err
	}
	archives, _, err := boolOption(raw, "archives")
	if err != nil {
		return ScanOptions{}, err
	}

	if hasLevels && !isPositiveInt(levels) {
		return ScanOptions{}, InvalidRange("levels must be a non-negative non-zero integer")
	}
	if hasMaxDepth && !isPositiveInt(maxDepth) {
		return ScanOptions{}, InvalidRange("maxDepth must be a non-negative non-zero integer")
	}
	if threads != 0 && !isPositiveInt(threads) {
		return ScanOptions{}, InvalidRange("threads must be a non-negative integer")
	}
	for _, o := range []struct {
		key string
		v   float64
	}{{"levels", levels}, {"maxDepth", maxDepth}, {"threads", threads}} {
		if o.v > math.MaxInt32 {
			return ScanOptions{}, InvalidRange(fmt.Sprintf("%s must be at most %d", o.key, math.MaxInt32))
		}
	}
	if hasLevels && hasRecursive {
		return ScanOptions{}, LevelsAndRecursive()
	}
	if hasLevels && hasMaxDepth {
		return ScanOptions{}, InvalidRange("please specify one of: levels | maxDepth")
	}

	if hasLevels {
		opts.Levels = int(levels)
	} else {
		opts.Levels, opts.Recursive = ResolveDepth(int(maxDepth), recursive)
	}
	opts.Threads = int(threads)
	opts.Archives = archives
	return opts, nil
}

func isPositiveInt(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && f == math.Trunc(f)
}

func numberOption(raw map[string]any, key string) (float64, bool, error) {
	v, ok := raw[key]
	if !ok {
		return 0, false, nil
	}
	switch n := v.(type) {
	case int:
		return float64(n), true, nil
	case int64:
		return float64(n), true, nil
	case uint64:
		return float64(n), true, nil
	case float64:
		return n, true, nil
	}
	return 0, true, InvalidType(key + " must be a number")
}

func boolOption(raw map[string]any, key string) (bool, bool, error) {
	v, ok := raw[key]
	if !ok {
		return false, false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, true, InvalidType(key + " must be a boolean")
	}
	return b, true, nil
}
