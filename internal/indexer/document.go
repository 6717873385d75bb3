// Package indexer keeps the symbol index fresh: document.go debounces
// per-URI re-indexing of open buffers (spec §4.4), workspace.go bulk
// indexes whole folders (spec §4.5).
package indexer

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"matlab-language-server/internal/bus"
	"matlab-language-server/internal/common"
	"matlab-language-server/internal/pathresolve"
	"matlab-language-server/internal/symbols"
)

const (
	documentRequestChannel  = "/indexDocument/request"
	documentResponseChannel = "/indexDocument/response"
)

// ConnectionState is the sliver of interpreter.Manager the indexer
// needs: whether it's safe to issue a bus request right now.
type ConnectionState interface {
	Connected() bool
}

// DocumentSource supplies the current in-memory text for an open
// buffer, so the indexer never has to read from disk.
type DocumentSource interface {
	Text(uri string) (string, bool)
}

// DocumentIndexer debounces and issues indexDocument requests, spec
// §4.4.
type DocumentIndexer struct {
	store    *symbols.Store
	bus      *bus.Bus
	conn     ConnectionState
	docs     DocumentSource
	resolver *pathresolve.Resolver
	debounce time.Duration

	// onClassFolder is invoked when a freshly indexed file belongs to a
	// class folder, so the caller can trigger a workspace-index of that
	// folder (spec §4.4.1). Wired by whoever constructs both indexers to
	// avoid a direct dependency between them.
	onClassFolder func(folder string)

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewDocumentIndexer(store *symbols.Store, b *bus.Bus, conn ConnectionState, docs DocumentSource, resolver *pathresolve.Resolver, debounce time.Duration) *DocumentIndexer {
	return &DocumentIndexer{
		store:    store,
		bus:      b,
		conn:     conn,
		docs:     docs,
		resolver: resolver,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
	}
}

// OnClassFolder registers the workspace-index trigger used by the
// class-closure expansion step, spec §4.4.1.
func (d *DocumentIndexer) OnClassFolder(fn func(folder string)) {
	d.onClassFolder = fn
}

// QueueIndex debounces indexDocument by d.debounce per URI: a queued
// timer for this URI is cancelled and a new one armed, spec §4.4.
func (d *DocumentIndexer) QueueIndex(uri string) {
	d.mu.Lock()
	if t, ok := d.timers[uri]; ok {
		t.Stop()
	}
	d.timers[uri] = time.AfterFunc(d.debounce, func() {
		d.mu.Lock()
		delete(d.timers, uri)
		d.mu.Unlock()
		d.IndexDocument(context.Background(), uri)
	})
	d.mu.Unlock()
}

// CancelPending stops any armed debounce timer for uri without firing
// it, used when a document closes before its timer fires.
func (d *DocumentIndexer) CancelPending(uri string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[uri]; ok {
		t.Stop()
		delete(d.timers, uri)
	}
}

// IndexDocument issues the document-index request/response pair and
// stores the result, spec §4.4. A no-op if the interpreter is not
// Connected (spec §7 InterpreterUnavailable — silently skipped here;
// the next queueIndex call, or the Server's reindexOpenDocuments on the
// next "connected" lifecycle event per scenario S5, will retry).
func (d *DocumentIndexer) IndexDocument(ctx context.Context, uri string) {
	if !d.conn.Connected() {
		common.IndexLogger.Debug("skipping index of %s: interpreter not connected", uri)
		return
	}

	text, ok := d.docs.Text(uri)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	raw, err := d.bus.Call(reqCtx, documentRequestChannel, documentResponseChannel, map[string]string{
		"code":     text,
		"filePath": uri,
	})
	if err != nil {
		common.IndexLogger.Warn("indexDocument(%s) failed: %v", uri, err)
		return
	}

	var data symbols.RawCodeData
	if err := json.Unmarshal(raw, &data); err != nil {
		common.IndexLogger.Warn("indexDocument(%s): %v: %v", uri, common.ErrMalformedReply, err)
		return
	}

	fileData := d.store.ParseAndStore(uri, data)
	d.expandClassClosure(ctx, uri, fileData)
}

// expandClassClosure implements spec §4.4.1: if the freshly stored data
// belongs to a non-empty class folder, trigger a workspace index of
// that folder, then resolve every base class name and merge its code
// data in directly from the resolver's reply (no second round trip).
func (d *DocumentIndexer) expandClassClosure(ctx context.Context, uri string, data *symbols.FileCodeData) {
	if data.ClassInfo == nil || data.ClassInfo.ClassDefFolder == "" {
		return
	}

	if d.onClassFolder != nil {
		d.onClassFolder(data.ClassInfo.ClassDefFolder)
	}

	if len(data.ClassInfo.BaseClasses) == 0 || d.resolver == nil {
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	results, err := d.resolver.ResolvePaths(reqCtx, data.ClassInfo.BaseClasses, uri)
	if err != nil {
		common.IndexLogger.Warn("class-closure resolve for %s failed: %v", uri, err)
		return
	}

	for _, res := range results {
		if res.NotFound() || res.FileInfo == nil {
			continue
		}
		d.store.ParseAndStore(res.URI, res.FileInfo.CodeData)
	}
}
