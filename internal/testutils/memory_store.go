package testutils

import (
	"context"
	"fmt"
	"sync"

	"decoder/internal/blocks"
	"decoder/internal/publish"
)

type StoredDocument struct {
	Document   publish.Document
	Properties publish.Properties
	Children   []blocks.Block
	Updates    []publish.Properties
}

// MemoryStore is an in-memory publish.Store. The hook fields inject failures.
type MemoryStore struct {
	mu     sync.Mutex
	docs   map[string]*StoredDocument
	order  []string
	nextID int

	AppendCalls int
	CreateCalls int

	FindErr   error
	CreateErr error
	UpdateErr error
	// AppendErr is consulted before every AppendBlocks call with the
	// 1-based call number; a non-nil error fails that call.
	AppendErr func(call int) error
}

var _ publish.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string]*StoredDocument{}}
}

func (s *MemoryStore) FindByFingerprint(_ context.Context, fp string) (*publish.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	for _, id := range s.order {
		d := s.docs[id]
		if d.Properties.Fingerprint == fp {
			doc := d.Document
			return &doc, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateDocument(_ context.Context, props publish.Properties, children []blocks.Block) (*publish.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CreateCalls++
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	s.nextID++
	id := fmt.Sprintf("doc-%d", s.nextID)
	d := &StoredDocument{
		Document:   publish.Document{ID: id, URL: "https://store.test/" + id},
		Properties: props,
		Children:   append([]blocks.Block(nil), children...),
	}
	s.docs[id] = d
	s.order = append(s.order, id)
	doc := d.Document
	return &doc, nil
}

func (s *MemoryStore) UpdateProperties(_ context.Context, id string, props publish.Properties) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	d, ok := s.docs[id]
	if !ok {
		return publish.ErrNotFound
	}
	d.Updates = append(d.Updates, props)
	return nil
}

func (s *MemoryStore) AppendBlocks(_ context.Context, id string, children []blocks.Block) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AppendCalls++
	if s.AppendErr != nil {
		if err := s.AppendErr(s.AppendCalls); err != nil {
			return 0, err
		}
	}
	d, ok := s.docs[id]
	if !ok {
		return 0, publish.ErrNotFound
	}
	d.Children = append(d.Children, children...)
	return len(children), nil
}

// Seed stores a document directly, bypassing the create hooks.
func (s *MemoryStore) Seed(props publish.Properties) publish.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("doc-%d", s.nextID)
	d := &StoredDocument{Document: publish.Document{ID: id, URL: "https://store.test/" + id}, Properties: props}
	s.docs[id] = d
	s.order = append(s.order, id)
	return d.Document
}

func (s *MemoryStore) Get(id string) (*StoredDocument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	return d, ok
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}
