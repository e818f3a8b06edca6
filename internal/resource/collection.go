package resource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/five82/stockroom/internal/api"
)

var errEmptyResponse = errors.New("empty response")

// Record is a server-owned entity with a server-assigned identifier.
type Record interface {
	RecordID() int64
}

// State is a point-in-time copy of a collection.
type State[T Record] struct {
	Items       []T
	Loading     bool
	Err         error
	Loaded      bool // at least one Fetch has succeeded
	LastUpdated time.Time
}

// Op names the operation that caused a transition.
type Op string

const (
	OpFetch  Op = "fetch"
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpRemove Op = "remove"
	OpReset  Op = "reset"
)

// Collection mirrors one server collection and tracks the lifecycle of the
// operations issued against it.
type Collection[T Record] struct {
	path   string
	req    api.Requester
	logger *zap.Logger

	mu        sync.RWMutex
	items     []T
	loading   bool
	err       error
	loaded    bool
	updated   time.Time
	seq       uint64 // most recently dispatched operation
	epoch     uint64 // bumped by Reset; older operations no longer merge
	observers []func(Op, State[T])
}

// Option customises a Collection.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger used for operation tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New returns an empty, unloaded collection for the resource at path.
func New[T Record](name, path string, req api.Requester, opts ...Option) *Collection[T] {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Collection[T]{
		path:   "/" + strings.Trim(path, "/"),
		req:    req,
		logger: o.logger.With(zap.String("resource", name)),
	}
}

// OnChange registers fn to receive every state transition. fn runs on the
// goroutine that caused the transition and must not block.
func (c *Collection[T]) OnChange(fn func(Op, State[T])) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (c *Collection[T]) Snapshot() State[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stateLocked()
}

// Find returns the record with id.
func (c *Collection[T]) Find(id int64) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.RecordID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Fetch replaces the local items with the server's collection.
func (c *Collection[T]) Fetch(ctx context.Context) ([]T, error) {
	t := c.begin(OpFetch)

	var items []T
	err := c.req.Do(ctx, http.MethodGet, c.path, nil, &items)
	if err == nil && items == nil {
		items = []T{}
	}
	c.settle(t, err, func() {
		c.items = cloneItems(items)
		c.loaded = true
	})
	if err != nil {
		return nil, err
	}
	return cloneItems(items), nil
}

// Add creates a record. The server assigns the identifier and its response
// is appended to the local items. A response without an identifier fails
// with a decode error and leaves items unchanged.
func (c *Collection[T]) Add(ctx context.Context, in any) (T, error) {
	t := c.begin(OpAdd)

	var created T
	err := c.req.Do(ctx, http.MethodPost, c.path, in, &created)
	if err == nil {
		err = c.requireRecord(http.MethodPost, c.path, created)
	}
	c.settle(t, err, func() {
		c.items = append(c.items, created)
	})
	return created, err
}

// Update replaces record id on the server. The server's response replaces
// the local record in place; an id unknown locally leaves items unchanged.
// A response without an identifier fails with a decode error.
func (c *Collection[T]) Update(ctx context.Context, id int64, in any) (T, error) {
	t := c.begin(OpUpdate)

	var updated T
	err := c.req.Do(ctx, http.MethodPut, c.itemPath(id), in, &updated)
	if err == nil {
		err = c.requireRecord(http.MethodPut, c.itemPath(id), updated)
	}
	c.settle(t, err, func() {
		for i := range c.items {
			if c.items[i].RecordID() == id {
				c.items[i] = updated
				return
			}
		}
	})
	return updated, err
}

// Remove deletes record id on the server and drops it locally. The request
// is issued even when id is not present locally.
func (c *Collection[T]) Remove(ctx context.Context, id int64) (int64, error) {
	t := c.begin(OpRemove)

	err := c.req.Do(ctx, http.MethodDelete, c.itemPath(id), nil, nil)
	c.settle(t, err, func() {
		kept := c.items[:0:0]
		for _, item := range c.items {
			if item.RecordID() != id {
				kept = append(kept, item)
			}
		}
		c.items = kept
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Reset discards local state. Operations still in flight settle without
// touching the collection.
func (c *Collection[T]) Reset() {
	c.mu.Lock()
	c.items = nil
	c.loading = false
	c.err = nil
	c.loaded = false
	c.updated = time.Time{}
	c.seq++
	c.epoch++
	state, observers := c.stateLocked(), c.observersLocked()
	c.mu.Unlock()

	notify(observers, OpReset, state)
}

type ticket struct {
	op    Op
	id    string
	seq   uint64
	epoch uint64
	start time.Time
}

func (c *Collection[T]) begin(op Op) ticket {
	c.mu.Lock()
	c.seq++
	t := ticket{op: op, id: uuid.NewString(), seq: c.seq, epoch: c.epoch, start: time.Now()}
	c.loading = true
	c.err = nil
	state, observers := c.stateLocked(), c.observersLocked()
	c.mu.Unlock()

	c.logger.Debug("dispatch",
		zap.String("op", string(op)),
		zap.String("op_id", t.id),
		zap.Uint64("seq", t.seq))
	notify(observers, op, state)
	return t
}

// settle applies merge on success. Loading and Err only follow the most
// recently dispatched operation: an older operation that fails after a newer
// one was dispatched returns its error to its caller but never reaches
// State.Err.
func (c *Collection[T]) settle(t ticket, err error, merge func()) {
	c.mu.Lock()
	if t.epoch != c.epoch {
		c.mu.Unlock()
		c.logger.Debug("discarded after reset", zap.String("op_id", t.id))
		return
	}
	if err == nil {
		merge()
		c.updated = time.Now()
	}
	latest := t.seq == c.seq
	if latest {
		c.loading = false
		c.err = err
	}
	state, observers := c.stateLocked(), c.observersLocked()
	c.mu.Unlock()

	fields := []zap.Field{
		zap.String("op", string(t.op)),
		zap.String("op_id", t.id),
		zap.Uint64("seq", t.seq),
		zap.Bool("latest", latest),
		zap.Duration("elapsed", time.Since(t.start)),
	}
	if err != nil {
		c.logger.Warn("operation failed", append(fields, zap.Error(err))...)
	} else {
		c.logger.Debug("operation settled", append(fields, zap.Int("items", len(state.Items)))...)
	}
	notify(observers, t.op, state)
}

// requireRecord rejects a success response that carried no record, such as
// an empty 200 or 204 body.
func (c *Collection[T]) requireRecord(method, path string, rec T) error {
	if rec.RecordID() != 0 {
		return nil
	}
	return &api.Error{Kind: api.KindDecode, Method: method, Path: path, Cause: errEmptyResponse}
}

func (c *Collection[T]) itemPath(id int64) string {
	return fmt.Sprintf("%s/%d", c.path, id)
}

func (c *Collection[T]) stateLocked() State[T] {
	return State[T]{
		Items:       cloneItems(c.items),
		Loading:     c.loading,
		Err:         c.err,
		Loaded:      c.loaded,
		LastUpdated: c.updated,
	}
}

func (c *Collection[T]) observersLocked() []func(Op, State[T]) {
	if len(c.observers) == 0 {
		return nil
	}
	dup := make([]func(Op, State[T]), len(c.observers))
	copy(dup, c.observers)
	return dup
}

func notify[T Record](observers []func(Op, State[T]), op Op, state State[T]) {
	for _, fn := range observers {
		fn(op, state)
	}
}

func cloneItems[T any](items []T) []T {
	if items == nil {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
