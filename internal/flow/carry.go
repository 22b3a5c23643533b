package flow

import "sort"

// Key addresses a typed value in a Carry.
type Key[T any] struct {
	name string
}

// NewKey returns a key for values of type T stored under name.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the key's name.
func (k Key[T]) Name() string {
	return k.name
}

// DefaultKey is the single integer slot modes have always shared.
var DefaultKey = NewKey[int]("value")

// Carry holds values handed from an outgoing mode to its successor.
// It survives every transition. Only the loop goroutine may touch it.
type Carry struct {
	values map[string]any
}

// NewCarry creates an empty carry store.
func NewCarry() *Carry {
	return &Carry{values: make(map[string]any)}
}

// Get returns the value stored under k.
// It reports false if nothing is stored or the stored value is not a T.
func Get[T any](c *Carry, k Key[T]) (T, bool) {
	var zero T
	v, ok := c.Lookup(k.name)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// GetOr returns the value stored under k, or def.
func GetOr[T any](c *Carry, k Key[T], def T) T {
	if v, ok := Get(c, k); ok {
		return v
	}
	return def
}

// Set stores v under k, replacing any previous value.
func Set[T any](c *Carry, k Key[T], v T) {
	c.Store(k.name, v)
}

// Take returns the value stored under k and removes it, scoping the value
// to a single hand-off.
func Take[T any](c *Carry, k Key[T]) (T, bool) {
	v, ok := Get(c, k)
	if ok {
		c.Delete(k.name)
	}
	return v, ok
}

// Lookup returns the untyped value stored under name.
func (c *Carry) Lookup(name string) (any, bool) {
	if c == nil || c.values == nil {
		return nil, false
	}
	v, ok := c.values[name]
	return v, ok
}

// Store stores an untyped value under name.
func (c *Carry) Store(name string, v any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	c.values[name] = v
}

// Delete removes the value stored under name.
func (c *Carry) Delete(name string) {
	delete(c.values, name)
}

// Len returns the number of stored values.
func (c *Carry) Len() int {
	if c == nil {
		return 0
	}
	return len(c.values)
}

// Keys returns the stored names in sorted order.
func (c *Carry) Keys() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.values))
	for name := range c.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear removes every value.
func (c *Carry) Clear() {
	clear(c.values)
}
