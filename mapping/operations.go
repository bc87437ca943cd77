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
	"go.uber.org/cloudcall/cloudcallerrors"
	"go.uber.org/cloudcall/operation"
)

var (
	_ operation.Operation[*TableSchema[struct{}], *Extension, ItemStore, *GetItemRequest, *GetItemResponse, *struct{}] = GetItem[struct{}]{}
	_ operation.Operation[*TableSchema[struct{}], *Extension, ItemStore, *PutItemRequest, *PutItemResponse, struct{}]  = PutItem[struct{}]{}
	_ operation.Operation[*TableSchema[struct{}], *Extension, ItemStore, *QueryRequest, *QueryResponse, []struct{}]    = Query[struct{}]{}
)

// GetItem reads one item by primary key. It resolves to nil when no item
// has the key. Secondary indexes are not supported.
type GetItem[T any] struct {
	Key Key
}

// GenerateRequest builds the lookup for the primary key.
func (o GetItem[T]) GenerateRequest(s *TableSchema[T], octx operation.Context, _ *Extension) (*GetItemRequest, error) {
	if !octx.IsPrimary() {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeUnimplemented,
			"GetItem cannot be executed against secondary index %q", octx.IndexName)
	}
	key, err := keyItem(s.PrimaryIndex(), o.Key)
	if err != nil {
		return nil, err
	}
	return &GetItemRequest{TableName: octx.TableName, Key: key}, nil
}

// ServiceCall calls store.GetItem.
func (GetItem[T]) ServiceCall(store ItemStore) operation.Call[*GetItemRequest, *GetItemResponse] {
	return store.GetItem
}

// TransformResponse runs AfterRead on the found item and converts it.
func (GetItem[T]) TransformResponse(resp *GetItemResponse, s *TableSchema[T], octx operation.Context, ext *Extension) (*T, error) {
	if resp == nil || resp.Item == nil {
		return nil, nil
	}
	item, err := ext.afterRead(resp.Item, octx)
	if err != nil {
		return nil, err
	}
	v, err := s.MapToItem(item)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// PutItem writes one item through the primary index.
type PutItem[T any] struct {
	Item T
}

// GenerateRequest converts the item and runs BeforeWrite on it.
func (o PutItem[T]) GenerateRequest(s *TableSchema[T], octx operation.Context, ext *Extension) (*PutItemRequest, error) {
	if !octx.IsPrimary() {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeUnimplemented,
			"PutItem cannot be executed against secondary index %q", octx.IndexName)
	}
	item, err := s.ItemToMap(o.Item)
	if err != nil {
		return nil, err
	}
	if item, err = ext.beforeWrite(item, octx); err != nil {
		return nil, err
	}
	return &PutItemRequest{TableName: octx.TableName, Item: item}, nil
}

// ServiceCall calls store.PutItem.
func (PutItem[T]) ServiceCall(store ItemStore) operation.Call[*PutItemRequest, *PutItemResponse] {
	return store.PutItem
}

// TransformResponse has nothing to convert.
func (PutItem[T]) TransformResponse(*PutItemResponse, *TableSchema[T], operation.Context, *Extension) (struct{}, error) {
	return struct{}{}, nil
}

// Query reads the items of one partition of the target index.
type Query[T any] struct {
	// Partition is the value of the index's partition key.
	Partition AttributeValue

	// SortBeginsWith keeps only items whose sort key starts with it. The
	// index must have a sort key.
	SortBeginsWith string

	Descending bool
	Limit      int
}

// GenerateRequest resolves the keys of the target index.
func (o Query[T]) GenerateRequest(s *TableSchema[T], octx operation.Context, _ *Extension) (*QueryRequest, error) {
	idx, err := s.Index(octx.IndexName)
	if err != nil {
		return nil, err
	}
	if o.Partition.IsNull() {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
			"query is missing partition value for %q", idx.PartitionKey)
	}
	if o.SortBeginsWith != "" && idx.SortKey == "" {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
			"index keyed by %q has no sort key to match a prefix against", idx.PartitionKey)
	}
	if o.Limit < 0 {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
			"query limit %d is negative", o.Limit)
	}
	return &QueryRequest{
		TableName:      octx.TableName,
		IndexName:      octx.IndexName,
		PartitionKey:   idx.PartitionKey,
		PartitionValue: o.Partition,
		SortKey:        idx.SortKey,
		SortBeginsWith: o.SortBeginsWith,
		Descending:     o.Descending,
		Limit:          o.Limit,
	}, nil
}

// ServiceCall calls store.Query.
func (Query[T]) ServiceCall(store ItemStore) operation.Call[*QueryRequest, *QueryResponse] {
	return store.Query
}

// TransformResponse runs AfterRead on every item and converts them.
func (Query[T]) TransformResponse(resp *QueryResponse, s *TableSchema[T], octx operation.Context, ext *Extension) ([]T, error) {
	if resp == nil {
		return nil, nil
	}
	out := make([]T, 0, len(resp.Items))
	for _, item := range resp.Items {
		item, err := ext.afterRead(item, octx)
		if err != nil {
			return nil, err
		}
		v, err := s.MapToItem(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
