// File: internal/infra/store/yaml_store.go
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rs/zerolog"

	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/domain/model"
	"telegram-post-scheduler/internal/domain/ports/repository"
)

var _ repository.MessageRepository = (*YAMLStore)(nil)

const idPrefix = "MESSAGE_"

// YAMLStore persists the id -> definition mapping as a single YAML document
// with a top-level "messages" key. Reads are full-snapshot; concurrent
// writers resolve last-writer-wins on Save.
type YAMLStore struct {
	path string
	log  *zerolog.Logger

	mu sync.Mutex // serializes Save/Delete against each other
}

func NewYAMLStore(path string, logger *zerolog.Logger) *YAMLStore {
	compLog := logger.With().Str("component", "YAMLStore").Logger()
	return &YAMLStore{path: path, log: &compLog}
}

// document mirrors the on-disk shape. The messages mapping is kept as a raw
// node so insertion order survives the round-trip.
type document struct {
	Messages yaml.Node `yaml:"messages"`
}

// Load reads the persisted store. Absent or malformed documents read as an
// empty snapshot and are logged, never surfaced as errors.
func (s *YAMLStore) Load(ctx context.Context) repository.Snapshot {
	snap := repository.EmptySnapshot()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("store unreadable, treating as empty")
		}
		return snap
	}

	var doc document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("store malformed, treating as empty")
		return snap
	}
	if doc.Messages.Kind != yaml.MappingNode {
		if doc.Messages.Kind != 0 {
			s.log.Warn().Str("path", s.path).Msg("messages key is not a mapping, treating as empty")
		}
		return snap
	}

	// Mapping nodes hold alternating key/value children in document order.
	for i := 0; i+1 < len(doc.Messages.Content); i += 2 {
		id := doc.Messages.Content[i].Value
		var def model.MessageDefinition
		if err := doc.Messages.Content[i+1].Decode(&def); err != nil {
			s.log.Warn().Err(err).Str("id", id).Msg("skipping malformed definition")
			continue
		}
		snap.Put(id, &def)
	}
	return snap
}

// Save overwrites the document, preserving the snapshot's id order. The
// write goes to a temp file in the same directory and is renamed over the
// target, which is as atomic as the filesystem allows.
func (s *YAMLStore) Save(ctx context.Context, snap repository.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, id := range snap.Order {
		def, ok := snap.Defs[id]
		if !ok {
			continue
		}
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: id}
		valNode := &yaml.Node{}
		if err := valNode.Encode(def); err != nil {
			return fmt.Errorf("encode %s: %w", id, err)
		}
		mapping.Content = append(mapping.Content, keyNode, valNode)
	}

	b, err := yaml.Marshal(struct {
		Messages *yaml.Node `yaml:"messages"`
	}{Messages: mapping})
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".messages-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp store: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

// Delete removes one definition and persists the rest. Attachment files are
// the caller's responsibility.
func (s *YAMLStore) Delete(ctx context.Context, id string) error {
	snap := s.Load(ctx)
	if _, ok := snap.Defs[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	delete(snap.Defs, id)
	for i, existing := range snap.Order {
		if existing == id {
			snap.Order = append(snap.Order[:i], snap.Order[i+1:]...)
			break
		}
	}
	return s.Save(ctx, snap)
}

// AllocateID returns MESSAGE_<n> with the smallest positive n not in use.
func (s *YAMLStore) AllocateID(snap repository.Snapshot) string {
	used := make(map[int]bool, len(snap.Defs))
	for id := range snap.Defs {
		numeric := strings.TrimPrefix(id, idPrefix)
		if numeric == id {
			continue
		}
		if n, err := strconv.Atoi(numeric); err == nil && n > 0 {
			used[n] = true
		}
	}
	n := 1
	for used[n] {
		n++
	}
	return idPrefix + strconv.Itoa(n)
}
