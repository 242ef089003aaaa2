// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"
	"sync"
)

// languageIDs are the client language identifiers of ABL documents.
var languageIDs = []string{"progress", "abl", "openedge abl", "progress 4gl"}

// IsABL reports whether a client language identifier denotes ABL source.
func IsABL(languageID string) bool {
	id := strings.ToLower(strings.TrimSpace(languageID))
	for _, l := range languageIDs {
		if id == l {
			return true
		}
	}
	return false
}

// Document represents an open text document tracked by the LSP server.
type Document struct {
	mu         sync.Mutex
	URI        string
	LanguageID string
	Version    int32
	Content    string
}

// Text returns the current content.
func (d *Document) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Content
}

// DocumentStore manages open documents with thread-safe access.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Open adds a document to the store, replacing any earlier one with the
// same URI.
func (s *DocumentStore) Open(uri, languageID string, version int32, content string) *Document {
	doc := &Document{
		URI:        uri,
		LanguageID: languageID,
		Version:    version,
		Content:    content,
	}
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

// Change replaces the content of an open document (full sync). It returns
// nil when the document is not open.
func (s *DocumentStore) Change(uri string, version int32, content string) *Document {
	doc := s.Get(uri)
	if doc == nil {
		return nil
	}
	doc.mu.Lock()
	doc.Version = version
	doc.Content = content
	doc.mu.Unlock()
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// Get retrieves a document by URI. Returns nil if not found.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// Len returns the number of open documents.
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
