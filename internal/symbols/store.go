package symbols

import (
	"sync"

	"matlab-language-server/internal/common"
)

// Store is the process-wide symbol index, spec §3/§4.3. Mutation is the
// exclusive domain of ParseAndStore and Clear; spec §5 allows this
// without locking under a single-threaded event loop, but this server
// still guards the maps with a mutex so tests and any future
// multi-goroutine caller cannot corrupt it. Writes do arrive from more
// than one goroutine (document-indexer debounce timers and the bus read
// loop feeding the workspace indexer); the mutex is the only thing that
// serializes them.
type Store struct {
	mu        sync.RWMutex
	codeData  map[string]*FileCodeData
	classInfo map[string]*ClassInfo
}

func NewStore() *Store {
	return &Store{
		codeData:  make(map[string]*FileCodeData),
		classInfo: make(map[string]*ClassInfo),
	}
}

// Get returns the FileCodeData for uri, if indexed.
func (s *Store) Get(uri string) (*FileCodeData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.codeData[uri]
	return d, ok
}

// Class returns the ClassInfo for a fully-qualified class name.
func (s *Store) Class(name string) (*ClassInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.classInfo[name]
	return c, ok
}

// Each iterates every indexed FileCodeData. The callback must not call
// back into the Store (RLock is held for the duration).
func (s *Store) Each(fn func(uri string, data *FileCodeData)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for uri, d := range s.codeData {
		fn(uri, d)
	}
}

// ParseAndStore normalizes raw into the FileCodeData/ClassInfo model and
// installs it under uri, replacing any prior entry — spec §4.3 and
// invariant §8.1. When raw describes a class (directly or via a
// class-folder layout), the resulting ClassInfo is merged into any
// existing entry for that class name per mergeClassInfo's last-writer-
// wins-per-member policy (§8.2).
func (s *Store) ParseAndStore(uri string, raw RawCodeData) *FileCodeData {
	data := NewFileCodeData(uri)
	data.PackageName = raw.PackageName
	data.IsClassDef = raw.ClassInfo.IsClassDef

	for _, rf := range raw.Functions {
		fn := toFunctionInfo(uri, rf)
		data.Functions.Set(fn.Name, fn)
	}
	for _, rr := range raw.References {
		data.References[rr.Name] = append(data.References[rr.Name], rr.Range)
	}

	if raw.ClassInfo.HasClassInfo || raw.ClassInfo.IsClassDef {
		incoming := rawToClassInfo(uri, raw)

		s.mu.Lock()
		data.ClassInfo = s.mergeClassInfoLocked(incoming)
		s.installLocked(uri, data)
		s.mu.Unlock()
		return data
	}

	s.mu.Lock()
	s.installLocked(uri, data)
	s.mu.Unlock()
	return data
}

// installLocked replaces codeData[uri], adjusting ref counts on the
// previous and new ClassInfo per SPEC_FULL §9's ref-count policy. The
// caller must hold s.mu.
func (s *Store) installLocked(uri string, data *FileCodeData) {
	if prev, ok := s.codeData[uri]; ok && prev.ClassInfo != nil {
		if data.ClassInfo != prev.ClassInfo {
			prev.ClassInfo.refCount--
			if prev.ClassInfo.refCount <= 0 {
				prev.ClassInfo.orphaned = true
			}
		}
	}
	if data.ClassInfo != nil {
		data.ClassInfo.refCount++
		data.ClassInfo.orphaned = false
	}
	s.codeData[uri] = data
}

// mergeClassInfoLocked implements the class-name-collision policy: union
// of properties/enums/methods, last-writer-wins per member name, exactly
// one ClassInfo surviving per name. The caller must hold s.mu.
func (s *Store) mergeClassInfoLocked(incoming *ClassInfo) *ClassInfo {
	existing, ok := s.classInfo[incoming.Name]
	if !ok {
		s.classInfo[incoming.Name] = incoming
		return incoming
	}
	mergeClassInfo(existing, incoming)
	return existing
}

// mergeClassInfo folds incoming's fields into existing in place, per
// spec §4.3's invariant and SPEC_FULL §4.3: a single function encodes
// the conflict policy so both ParseAndStore and class-closure expansion
// go through it.
func mergeClassInfo(existing, incoming *ClassInfo) {
	if incoming.URI != "" {
		existing.URI = incoming.URI
	}
	if !incoming.Range.IsZero() {
		existing.Range = incoming.Range
	}
	if !incoming.DeclarationRange.IsZero() {
		existing.DeclarationRange = incoming.DeclarationRange
	}
	if incoming.ClassDefFolder != "" {
		existing.ClassDefFolder = incoming.ClassDefFolder
	}
	if len(incoming.BaseClasses) > 0 {
		existing.BaseClasses = incoming.BaseClasses
	}

	incoming.Properties.Each(func(name string, m *MemberInfo) {
		existing.Properties.Set(name, m)
	})
	incoming.Enumerations.Each(func(name string, m *MemberInfo) {
		existing.Enumerations.Set(name, m)
	})
	incoming.Methods.Each(func(name string, fn *FunctionInfo) {
		existing.Methods.Set(name, fn)
	})
}

// FindContainingFunction returns the innermost function in uri's indexed
// file whose range encloses position, spec §4.3.
func (s *Store) FindContainingFunction(uri string, position common.Position) *FunctionInfo {
	data, ok := s.Get(uri)
	if !ok {
		return nil
	}

	var best *FunctionInfo
	data.Functions.Each(func(_ string, fn *FunctionInfo) {
		if !position.In(fn.Range) {
			return
		}
		if best == nil || best.Range.Encloses(fn.Range) {
			best = fn
		}
	})
	if data.ClassInfo != nil {
		data.ClassInfo.Methods.Each(func(_ string, fn *FunctionInfo) {
			if fn.OwnerURI != uri || !position.In(fn.Range) {
				return
			}
			if best == nil || best.Range.Encloses(fn.Range) {
				best = fn
			}
		})
	}
	return best
}

// Clear removes uri's entry, decrementing the ref count of any
// ClassInfo it referenced — spec §4.3, fired on file close/delete.
func (s *Store) Clear(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.codeData[uri]
	if !ok {
		return
	}
	delete(s.codeData, uri)
	if prev.ClassInfo != nil {
		prev.ClassInfo.refCount--
		if prev.ClassInfo.refCount <= 0 {
			prev.ClassInfo.orphaned = true
		}
	}
}

func toFunctionInfo(ownerURI string, rf RawFunction) *FunctionInfo {
	fn := &FunctionInfo{
		Name:         rf.Name,
		ParentClass:  rf.ParentClass,
		Range:        rf.Range,
		Declaration:  rf.Declaration,
		Visibility:   visibilityOf(rf.IsPublic),
		IsPrototype:  rf.IsPrototype,
		VariableInfo: make(map[string]*VariableInfo, len(rf.VariableInfo)),
		Globals:      make(map[string]struct{}, len(rf.Globals)),
		OwnerURI:     ownerURI,
	}
	for name, v := range rf.VariableInfo {
		fn.VariableInfo[name] = &VariableInfo{Definitions: v.Definitions, References: v.References}
	}
	for _, g := range rf.Globals {
		fn.Globals[g] = struct{}{}
	}
	return fn
}

func rawToClassInfo(uri string, raw RawCodeData) *ClassInfo {
	c := NewClassInfo(raw.ClassInfo.Name)
	c.URI = uri
	c.Range = raw.ClassInfo.Range
	c.DeclarationRange = raw.ClassInfo.Declaration
	c.ClassDefFolder = raw.ClassInfo.ClassDefFolder
	c.BaseClasses = raw.ClassInfo.BaseClasses

	for _, p := range raw.ClassInfo.Properties {
		c.Properties.Set(p.Name, &MemberInfo{
			Name: p.Name, Range: p.Range, Visibility: visibilityOf(p.IsPublic), ParentClass: raw.ClassInfo.Name,
		})
	}
	for _, e := range raw.ClassInfo.Enumerations {
		c.Enumerations.Set(e.Name, &MemberInfo{
			Name: e.Name, Range: e.Range, Visibility: visibilityOf(e.IsPublic), ParentClass: raw.ClassInfo.Name,
		})
	}
	for _, rf := range raw.Functions {
		if rf.ParentClass != raw.ClassInfo.Name {
			continue
		}
		c.Methods.Set(rf.Name, toFunctionInfo(uri, rf))
	}
	return c
}

func visibilityOf(isPublic bool) Visibility {
	if isPublic {
		return Public
	}
	return Private
}
