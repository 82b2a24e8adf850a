package template

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/compozy/tplsettings/engine/core"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu          sync.RWMutex
	templates   map[core.ID]*Definition
	published   map[core.ID]bool
	collections []Collection
	failure     error
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(collections ...Collection) *MemoryStore {
	return &MemoryStore{
		templates:   make(map[core.ID]*Definition),
		published:   make(map[core.ID]bool),
		collections: collections,
	}
}

// Seed stores existing templates under their own id.
func (s *MemoryStore) Seed(defs ...*Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, def := range defs {
		if def == nil || def.ID.IsZero() {
			return fmt.Errorf("seeded template requires an id")
		}
		copied, err := withID(def, def.ID)
		if err != nil {
			return err
		}
		s.templates[def.ID] = copied
		s.published[def.ID] = def.Published
	}
	return nil
}

// FailWith makes every subsequent call fail with err until cleared with nil.
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

func (s *MemoryStore) SaveComponentTemplate(
	_ context.Context,
	id core.ID,
	def *Definition,
	publish bool,
) (*SaveResult, error) {
	if def == nil {
		return nil, fmt.Errorf("template definition cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	op := "create template"
	if !id.IsZero() {
		op = "update template"
	}
	if s.failure != nil {
		return nil, &RemoteSaveFailure{Op: op, Cause: s.failure}
	}
	if id.IsZero() {
		newID, err := core.NewID()
		if err != nil {
			return nil, &RemoteSaveFailure{Op: op, Cause: err}
		}
		id = newID
	} else if _, ok := s.templates[id]; !ok {
		return nil, &RemoteSaveFailure{Op: op, Status: http.StatusNotFound, Message: "template not found"}
	}
	saved, err := withID(def, id)
	if err != nil {
		return nil, err
	}
	saved.Published = publish
	s.templates[id] = saved
	s.published[id] = publish
	result, err := withID(saved, id)
	if err != nil {
		return nil, err
	}
	return &SaveResult{ID: id, Definition: result}, nil
}

func (s *MemoryStore) GetComponentsCollections(_ context.Context) ([]Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failure != nil {
		return nil, s.failure
	}
	return slices.Clone(s.collections), nil
}

// Get returns a copy of the stored template.
func (s *MemoryStore) Get(id core.ID) (*Definition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.templates[id]
	if !ok {
		return nil, false
	}
	copied, err := withID(def, id)
	if err != nil {
		return nil, false
	}
	return copied, true
}

// Len returns the number of stored templates.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.templates)
}
