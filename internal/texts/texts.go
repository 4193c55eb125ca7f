// Package texts loads the reference texts offered for typing.
package texts

import (
	"bufio"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed defaults/*.txt
var defaultsFS embed.FS

const wordsFile = "words.txt"

// LoadWords reads one word per line from the provided file path.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	return scanWords(bufio.NewScanner(file))
}

// DefaultWords returns the embedded word list.
func DefaultWords() []string {
	f, err := defaultsFS.Open("defaults/" + wordsFile)
	if err != nil {
		return nil
	}
	defer func() {
		_ = f.Close()
	}()
	words, err := scanWords(bufio.NewScanner(f))
	if err != nil {
		return nil
	}
	return words
}

func scanWords(scanner *bufio.Scanner) ([]string, error) {
	var words []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}

// LoadPassages reads every *.txt file in dir as one passage. A missing
// directory yields the embedded passages.
func LoadPassages(dir string) ([]string, error) {
	if dir != "" {
		if _, err := os.Stat(dir); err == nil {
			passages, err := readPassages(os.DirFS(dir), ".")
			if err != nil {
				return nil, fmt.Errorf("failed to read texts from %s: %w", dir, err)
			}
			if len(passages) > 0 {
				return passages, nil
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat texts dir: %w", err)
		}
	}
	return DefaultPassages(), nil
}

// DefaultPassages returns the embedded passages.
func DefaultPassages() []string {
	passages, err := readPassages(defaultsFS, "defaults")
	if err != nil {
		return nil
	}
	return passages
}

func readPassages(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".txt") || name == wordsFile {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	passages := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, filepath.ToSlash(filepath.Join(dir, name)))
		if err != nil {
			return nil, err
		}
		text := Normalize(string(data))
		if text == "" {
			continue
		}
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		passages = append(passages, text)
	}
	return passages, nil
}

// Normalize collapses line breaks and runs of whitespace into single spaces.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
