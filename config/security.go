package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/c360/msgbridge/errors"
)

const (
	maxConfigSize = 1 << 20 // 1MB
	maxJSONDepth  = 32
	maxEnvVarLen  = 4096
	maxPathLen    = 4096
)

// checkConfigPath rejects empty or oversized paths, relative paths that
// escape the working directory and unknown file types
func checkConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty config path", errors.ErrMissingConfig)
	}
	if len(path) > maxPathLen {
		return fmt.Errorf("%w: path too long: %d > %d", errors.ErrInvalidConfig, len(path), maxPathLen)
	}

	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("%w: resolve %s: %w", errors.ErrInvalidConfig, path, err)
		}
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("%w: working directory: %w", errors.ErrInvalidConfig, err)
		}
		rel, err := filepath.Rel(cwd, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("%w: %s resolves outside working directory", errors.ErrInvalidConfig, path)
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return nil
	default:
		return fmt.Errorf("%w: only JSON or YAML config files allowed: %s", errors.ErrInvalidConfig, path)
	}
}

// safeReadFile reads a regular config file of bounded size
func safeReadFile(path string) ([]byte, error) {
	if err := checkConfigPath(path); err != nil {
		return nil, errors.WrapInvalid(err, "Loader", "safeReadFile", "path check")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %w", errors.ErrMissingConfig, err),
			"Loader", "safeReadFile", "stat")
	}
	if !info.Mode().IsRegular() {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: not a regular file: %s", errors.ErrInvalidConfig, path),
			"Loader", "safeReadFile", "stat")
	}
	if info.Size() > maxConfigSize {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: config file too large: %d bytes > %d", errors.ErrInvalidConfig, info.Size(), maxConfigSize),
			"Loader", "safeReadFile", "size check")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapTransient(err, "Loader", "safeReadFile", "read")
	}
	return data, nil
}

// safeWriteFile writes a config file readable by the owner only
func safeWriteFile(path string, data []byte) error {
	if err := checkConfigPath(path); err != nil {
		return errors.WrapInvalid(err, "Config", "SaveToFile", "path check")
	}
	if len(data) > maxConfigSize {
		return errors.WrapInvalid(
			fmt.Errorf("%w: config data too large: %d bytes > %d", errors.ErrInvalidConfig, len(data), maxConfigSize),
			"Config", "SaveToFile", "size check")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.WrapTransient(err, "Config", "SaveToFile", "write")
	}
	return nil
}

// validateEnvVar bounds the length of an override and rejects NUL bytes
func validateEnvVar(key, value string) error {
	if len(value) > maxEnvVarLen {
		return fmt.Errorf("environment variable %s too long: %d > %d", key, len(value), maxEnvVarLen)
	}
	if strings.ContainsRune(value, 0) {
		return fmt.Errorf("null byte in environment variable %s", key)
	}
	return nil
}

// validateJSONDepth rejects documents nested deeper than maxJSONDepth before
// they reach the decoder
func validateJSONDepth(data []byte) error {
	depth := 0
	inString, escaped := false, false

	for _, b := range data {
		switch {
		case escaped:
			escaped = false
		case inString && b == '\\':
			escaped = true
		case b == '"':
			inString = !inString
		case inString:
		case b == '{' || b == '[':
			depth++
			if depth > maxJSONDepth {
				return fmt.Errorf("JSON nesting too deep: %d > %d", depth, maxJSONDepth)
			}
		case b == '}' || b == ']':
			depth--
			if depth < 0 {
				return fmt.Errorf("malformed JSON: unbalanced brackets")
			}
		}
	}

	if depth != 0 {
		return fmt.Errorf("malformed JSON: unclosed brackets (depth=%d)", depth)
	}
	return nil
}
