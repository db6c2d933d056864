package llm

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const maxSourceBytes = 60000

var sourceExtensions = map[string]bool{
	".js":   true,
	".jsx":  true,
	".ts":   true,
	".tsx":  true,
	".html": true,
}

// ReadGameSource collects the game's source files into one bounded string
// for the instruction-generation call. Accepts a single file or a directory.
func ReadGameSource(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("game source: %w", err)
	}

	var sb strings.Builder
	appendFile := func(p string) error {
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		sb.WriteString(fmt.Sprintf("----- %s -----\n", filepath.Base(p)))
		sb.Write(data)
		sb.WriteString("\n")
		return nil
	}

	if !info.IsDir() {
		if err := appendFile(path); err != nil {
			return "", err
		}
		return capSource(sb.String()), nil
	}

	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if name == "node_modules" || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !sourceExtensions[strings.ToLower(filepath.Ext(p))] {
			return nil
		}
		if sb.Len() > maxSourceBytes {
			return filepath.SkipAll
		}
		return appendFile(p)
	})
	if err != nil {
		return "", fmt.Errorf("game source walk: %w", err)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no source files found under %s", path)
	}
	return capSource(sb.String()), nil
}

func capSource(s string) string {
	if len(s) > maxSourceBytes {
		return s[:maxSourceBytes] + "\n...[TRUNCATED]"
	}
	return s
}
