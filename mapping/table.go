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

	"go.uber.org/cloudcall/operation"
	"go.uber.org/zap"
)

// Table runs item operations for values of T against one table of a
// store.
type Table[T any] struct {
	store  ItemStore
	name   string
	schema *TableSchema[T]
	ext    *Extension
	logger *zap.Logger
}

// TableOption customizes a Table.
type TableOption func(*tableOptions)

type tableOptions struct {
	exts   []*Extension
	logger *zap.Logger
}

// WithExtension adds an extension to the table. Several extensions are
// combined by ChainExtensions.
func WithExtension(ext *Extension) TableOption {
	return func(o *tableOptions) {
		o.exts = append(o.exts, ext)
	}
}

// WithTableLogger logs failed operations to logger.
func WithTableLogger(logger *zap.Logger) TableOption {
	return func(o *tableOptions) {
		o.logger = logger
	}
}

// NewTable binds schema to the table named name in store.
func NewTable[T any](store ItemStore, name string, schema *TableSchema[T], opts ...TableOption) *Table[T] {
	o := tableOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Table[T]{
		store:  store,
		name:   name,
		schema: schema,
		ext:    ChainExtensions(o.exts...),
		logger: o.logger,
	}
}

// Name is the name of the table.
func (t *Table[T]) Name() string { return t.name }

// Schema is the schema of the table.
func (t *Table[T]) Schema() *TableSchema[T] { return t.schema }

func (t *Table[T]) context(index string) operation.Context {
	return operation.Context{TableName: t.name, IndexName: index}
}

// GetItem reads the item with key. It returns nil when there is none.
func (t *Table[T]) GetItem(ctx context.Context, key Key) (*T, error) {
	v, err := operation.Execute[*TableSchema[T], *Extension, ItemStore, *GetItemRequest, *GetItemResponse, *T](
		ctx, GetItem[T]{Key: key}, t.schema, t.context(""), t.ext, t.store)
	return v, t.logged("GetItem", "", err)
}

// PutItem writes v, replacing the item with the same key.
func (t *Table[T]) PutItem(ctx context.Context, v T) error {
	_, err := operation.Execute[*TableSchema[T], *Extension, ItemStore, *PutItemRequest, *PutItemResponse, struct{}](
		ctx, PutItem[T]{Item: v}, t.schema, t.context(""), t.ext, t.store)
	return t.logged("PutItem", "", err)
}

// Query runs q against the primary index.
func (t *Table[T]) Query(ctx context.Context, q Query[T]) ([]T, error) {
	return t.query(ctx, "", q)
}

// QueryIndex runs q against the named secondary index.
func (t *Table[T]) QueryIndex(ctx context.Context, index string, q Query[T]) ([]T, error) {
	return t.query(ctx, index, q)
}

func (t *Table[T]) query(ctx context.Context, index string, q Query[T]) ([]T, error) {
	v, err := operation.Execute[*TableSchema[T], *Extension, ItemStore, *QueryRequest, *QueryResponse, []T](
		ctx, q, t.schema, t.context(index), t.ext, t.store)
	return v, t.logged("Query", index, err)
}

func (t *Table[T]) logged(op, index string, err error) error {
	if err != nil {
		t.logger.Debug("item operation failed",
			zap.String("operation", op),
			zap.String("table", t.name),
			zap.String("index", index),
			zap.Error(err))
	}
	return err
}
