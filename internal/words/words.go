// Package words holds the word collaborators used at round and game end:
// a dictionary of definitions and named word lists for bonus scoring.
package words

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Dictionary looks up definitions. A missing word is not an error.
type Dictionary interface {
	Define(ctx context.Context, word string) (definition string, ok bool, err error)
}

// WordLists answers membership queries against named lists.
type WordLists interface {
	Contains(ctx context.Context, list, word string) (bool, error)
}

// Normalize is the form words are stored and queried in.
func Normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// ReadWords reads one word per line, skipping blank lines and # comments.
func ReadWords(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := Normalize(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	return out, nil
}

// Memory is an in-process Dictionary and WordLists.
type Memory struct {
	mu          sync.RWMutex
	definitions map[string]string
	lists       map[string]map[string]struct{}
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		definitions: make(map[string]string),
		lists:       make(map[string]map[string]struct{}),
	}
}

// AddDefinition records a definition for word.
func (m *Memory) AddDefinition(word, definition string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.definitions[Normalize(word)] = definition
}

// AddWords adds words to list, creating it if needed.
func (m *Memory) AddWords(list string, words ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.lists[list]
	if !ok {
		set = make(map[string]struct{}, len(words))
		m.lists[list] = set
	}
	for _, w := range words {
		set[Normalize(w)] = struct{}{}
	}
}

func (m *Memory) Define(_ context.Context, word string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	def, ok := m.definitions[Normalize(word)]
	return def, ok, nil
}

func (m *Memory) Contains(_ context.Context, list, word string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.lists[list][Normalize(word)]
	return ok, nil
}
