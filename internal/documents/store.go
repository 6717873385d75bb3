// Package documents tracks the text of open editor buffers, the
// source both the navigation resolver and the document indexer read
// from instead of the filesystem, per spec §4.4 ("the server never has
// to read from disk").
package documents

import (
	"strings"
	"sync"
)

// Document is one open buffer's text, split into lines for fast
// position-based lookups.
type Document struct {
	URI     string
	Version int32
	Text    string
	lines   []string
}

func newDocument(uri, text string, version int32) *Document {
	return &Document{URI: uri, Version: version, Text: text, lines: splitLines(text)}
}

func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

// Store is the process-wide table of open buffers.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

func NewStore() *Store {
	return &Store{docs: make(map[string]*Document)}
}

// Open records a newly opened buffer, spec §4.4 (didOpen primes the
// text source before the first queueIndex call).
func (s *Store) Open(uri, text string, version int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = newDocument(uri, text, version)
}

// Update replaces a buffer's text wholesale, matching the teacher's
// full-document-sync convention (no incremental range patching).
func (s *Store) Update(uri, text string, version int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = newDocument(uri, text, version)
}

// Close drops a buffer's text only; it does not touch the symbol
// index. The didClose handler clears the URI's index entry itself with
// a separate symbols.Store.Clear call.
func (s *Store) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

// Text satisfies indexer.DocumentSource.
func (s *Store) Text(uri string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[uri]
	if !ok {
		return "", false
	}
	return d.Text, true
}

// Line satisfies navigation.TextSource. line is 1-based per
// common.SourceRange's stated convention.
func (s *Store) Line(uri string, line int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[uri]
	if !ok {
		return "", false
	}
	idx := line - 1
	if idx < 0 || idx >= len(d.lines) {
		return "", false
	}
	return d.lines[idx], true
}

// Version reports the buffer's current LSP version, or 0 if unopened.
func (s *Store) Version(uri string) int32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.docs[uri]; ok {
		return d.Version
	}
	return 0
}

// OpenURIs lists every currently open buffer, used to re-queue indexing
// for the whole open set on reconnect (spec §8 scenario S5).
func (s *Store) OpenURIs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		out = append(out, uri)
	}
	return out
}
