// Package pattern implements the block-oriented matching engine that locates
// repeating structural units in the text of a financial document and binds
// named captures across multiple consecutive lines.
//
// The engine interprets immutable configuration data: a DocumentType gates a
// document with a marker pattern and owns an ordered list of Blocks; a Block
// delimits one repeatable unit and owns an ordered list of Sections; a
// Section is an ordered run of line matchers whose named groups are merged
// into a Context and handed to an assignment closure. The engine itself is
// stateless; per-recipe behavior is entirely in the configuration values.
package pattern

// Context is the ordered set of named string bindings accumulated while
// matching one structural unit. A typed side channel carries non-string
// values (a resolved exchange rate, say) between sections of the same match
// attempt.
type Context struct {
	keys  []string
	vals  map[string]string
	typed map[string]any
}

// NewContext returns an empty Context.
func NewContext() *Context {
	return &Context{vals: make(map[string]string)}
}

// Put binds a value to a name. Rebinding an existing name overwrites the
// value but keeps its original position.
func (c *Context) Put(name, value string) {
	if _, ok := c.vals[name]; !ok {
		c.keys = append(c.keys, name)
	}
	c.vals[name] = value
}

// Get returns the value bound to name, or the empty string.
func (c *Context) Get(name string) string { return c.vals[name] }

// Lookup returns the value bound to name and whether it is bound.
func (c *Context) Lookup(name string) (string, bool) {
	v, ok := c.vals[name]
	return v, ok
}

// Has reports whether name is bound.
func (c *Context) Has(name string) bool {
	_, ok := c.vals[name]
	return ok
}

// Keys returns the bound names in insertion order.
func (c *Context) Keys() []string { return append([]string(nil), c.keys...) }

// Len returns the number of bound names.
func (c *Context) Len() int { return len(c.keys) }

// PutType stores a typed value on the side channel.
func (c *Context) PutType(key string, v any) {
	if c.typed == nil {
		c.typed = make(map[string]any)
	}
	c.typed[key] = v
}

// GetType returns a typed value from the side channel.
func (c *Context) GetType(key string) (any, bool) {
	v, ok := c.typed[key]
	return v, ok
}

// view returns a Context holding the given bindings while sharing the typed
// side channel with c, so sections of one match attempt can exchange typed
// values without seeing each other's string bindings.
func (c *Context) view(keys []string, vals map[string]string) *Context {
	if c.typed == nil {
		c.typed = make(map[string]any)
	}
	return &Context{keys: keys, vals: vals, typed: c.typed}
}
