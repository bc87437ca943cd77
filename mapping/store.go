// Copyright (c) 2025 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package mapping

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/cloudcall/cloudcallerrors"
)

// GetItemRequest looks up one item by its primary key.
type GetItemRequest struct {
	TableName string
	Key       Item
}

// GetItemResponse carries the item found, or nil.
type GetItemResponse struct {
	Item Item
}

// PutItemRequest stores an item, replacing any item with the same primary
// key.
type PutItemRequest struct {
	TableName string
	Item      Item
}

// PutItemResponse acknowledges a PutItemRequest.
type PutItemResponse struct{}

// QueryRequest selects the items of one partition of an index.
type QueryRequest struct {
	TableName string

	// IndexName is empty for the primary index.
	IndexName string

	PartitionKey   string
	PartitionValue AttributeValue

	// SortKey orders the results. SortBeginsWith, when set, keeps only
	// items whose string sort attribute starts with it.
	SortKey        string
	SortBeginsWith string

	// Descending reverses the order of the results.
	Descending bool

	// Limit caps the number of items returned. Zero means no cap.
	Limit int
}

// QueryResponse carries the matching items in sort order.
type QueryResponse struct {
	Items []Item
}

// ItemStore is the low-level client the item operations call.
type ItemStore interface {
	GetItem(context.Context, *GetItemRequest) (*GetItemResponse, error)
	PutItem(context.Context, *PutItemRequest) (*PutItemResponse, error)
	Query(context.Context, *QueryRequest) (*QueryResponse, error)
}

// MemoryStore is an ItemStore held in memory. It is safe for concurrent
// use.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]*memoryTable
}

type memoryTable struct {
	primary Index
	items   []Item
}

var _ ItemStore = (*MemoryStore)(nil)

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]*memoryTable)}
}

// CreateTable adds an empty table keyed by primary. Creating a table that
// exists fails.
func (m *MemoryStore) CreateTable(name string, primary Index) error {
	if name == "" || primary.PartitionKey == "" {
		return cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
			"table needs a name and a partition key")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[name]; ok {
		return cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
			"table %q already exists", name)
	}
	m.tables[name] = &memoryTable{primary: primary}
	return nil
}

func (m *MemoryStore) table(name string) (*memoryTable, error) {
	t, ok := m.tables[name]
	if !ok {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
			"table %q does not exist", name)
	}
	return t, nil
}

// GetItem implements ItemStore.
func (m *MemoryStore) GetItem(ctx context.Context, req *GetItemRequest) (*GetItemResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, err := m.table(req.TableName)
	if err != nil {
		return nil, err
	}
	if i := t.find(req.Key); i >= 0 {
		return &GetItemResponse{Item: t.items[i].Clone()}, nil
	}
	return &GetItemResponse{}, nil
}

// PutItem implements ItemStore.
func (m *MemoryStore) PutItem(ctx context.Context, req *PutItemRequest) (*PutItemResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.table(req.TableName)
	if err != nil {
		return nil, err
	}
	for _, k := range []string{t.primary.PartitionKey, t.primary.SortKey} {
		if k == "" {
			continue
		}
		if v, ok := req.Item[k]; !ok || v.IsNull() {
			return nil, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
				"item is missing key attribute %q", k)
		}
	}

	item := req.Item.Clone()
	if i := t.find(item); i >= 0 {
		t.items[i] = item
	} else {
		t.items = append(t.items, item)
	}
	return &PutItemResponse{}, nil
}

// Query implements ItemStore.
func (m *MemoryStore) Query(ctx context.Context, req *QueryRequest) (*QueryResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.PartitionKey == "" {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
			"query needs a partition key")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, err := m.table(req.TableName)
	if err != nil {
		return nil, err
	}

	var matched []Item
	for _, item := range t.items {
		if !matchesQuery(item, req) {
			continue
		}
		matched = append(matched, item.Clone())
	}

	if req.SortKey != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			c := compareValues(matched[i][req.SortKey], matched[j][req.SortKey])
			if req.Descending {
				return c > 0
			}
			return c < 0
		})
	}
	if req.Limit > 0 && len(matched) > req.Limit {
		matched = matched[:req.Limit]
	}
	return &QueryResponse{Items: matched}, nil
}

func matchesQuery(item Item, req *QueryRequest) bool {
	pv, ok := item[req.PartitionKey]
	if !ok || pv != req.PartitionValue {
		return false
	}
	if req.SortKey == "" {
		return true
	}
	// Items without the sort attribute do not belong to the index.
	sv, ok := item[req.SortKey]
	if !ok || sv.IsNull() {
		return false
	}
	if req.SortBeginsWith == "" {
		return true
	}
	s, ok := sv.AsString()
	return ok && strings.HasPrefix(s, req.SortBeginsWith)
}

// find returns the position of the item sharing key's primary key
// attributes, or -1.
func (t *memoryTable) find(key Item) int {
	for i, item := range t.items {
		if sameKey(t.primary, item, key) {
			return i
		}
	}
	return -1
}

func sameKey(idx Index, a, b Item) bool {
	if a[idx.PartitionKey] != b[idx.PartitionKey] {
		return false
	}
	return idx.SortKey == "" || a[idx.SortKey] == b[idx.SortKey]
}
