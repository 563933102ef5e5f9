package header

import (
	"strings"
)

// Field holds every value recorded for one header name. Name keeps the case
// it was first declared with; Line is where that declaration happened.
type Field struct {
	Name   string
	Values []string
	Line   int
}

func (f *Field) clone() *Field {
	values := make([]string, len(f.Values))
	copy(values, f.Values)
	return &Field{Name: f.Name, Values: values, Line: f.Line}
}

// Collection is an insertion-ordered, case-insensitive multi-map of header
// fields.
type Collection struct {
	order  []string
	fields map[string]*Field
}

func New() *Collection {
	return &Collection{
		fields: make(map[string]*Field, 8),
	}
}

func normalize(name string) string {
	return strings.ToLower(name)
}

// Add appends value to the field, creating it at lineNumber when absent.
func (c *Collection) Add(name, value string, lineNumber int) {
	key := normalize(name)
	field, ok := c.fields[key]
	if !ok {
		field = &Field{Name: name, Line: lineNumber}
		c.fields[key] = field
		c.order = append(c.order, key)
	}
	field.Values = append(field.Values, value)
}

// Set replaces all values of the field, keeping its original position.
func (c *Collection) Set(name, value string) {
	key := normalize(name)
	if field, ok := c.fields[key]; ok {
		field.Values = []string{value}
		return
	}
	c.Add(name, value, 0)
}

func (c *Collection) Remove(name string) {
	key := normalize(name)
	if _, ok := c.fields[key]; !ok {
		return
	}
	delete(c.fields, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Collection) Has(name string) bool {
	_, ok := c.fields[normalize(name)]
	return ok
}

// Value renders every value of the field joined by ", ". Missing fields
// render as the empty string.
func (c *Collection) Value(name string) string {
	field, ok := c.fields[normalize(name)]
	if !ok {
		return ""
	}
	return strings.Join(field.Values, ", ")
}

// Values returns a copy of the field's values in declaration order.
func (c *Collection) Values(name string) []string {
	field, ok := c.fields[normalize(name)]
	if !ok {
		return nil
	}
	values := make([]string, len(field.Values))
	copy(values, field.Values)
	return values
}

func (c *Collection) Field(name string) (Field, bool) {
	field, ok := c.fields[normalize(name)]
	if !ok {
		return Field{}, false
	}
	return *field.clone(), true
}

// Names lists field names with their declared case, in insertion order.
func (c *Collection) Names() []string {
	names := make([]string, 0, len(c.order))
	for _, key := range c.order {
		names = append(names, c.fields[key].Name)
	}
	return names
}

func (c *Collection) Len() int {
	return len(c.order)
}

func (c *Collection) Clone() *Collection {
	out := &Collection{
		order:  make([]string, len(c.order)),
		fields: make(map[string]*Field, len(c.fields)),
	}
	copy(out.order, c.order)
	for key, field := range c.fields {
		out.fields[key] = field.clone()
	}
	return out
}

// Map flattens the collection into name -> values using the declared names.
func (c *Collection) Map() map[string][]string {
	out := make(map[string][]string, len(c.order))
	for _, key := range c.order {
		field := c.fields[key]
		out[field.Name] = c.Values(field.Name)
	}
	return out
}

// Finalize renders the collection as wire header lines followed by the
// blank separator line.
func (c *Collection) Finalize() []byte {
	size := 2
	for _, key := range c.order {
		field := c.fields[key]
		size += len(field.Name) + 2 + len(c.Value(field.Name)) + 2
	}

	buf := make([]byte, 0, size)
	for _, key := range c.order {
		field := c.fields[key]
		buf = append(buf, field.Name...)
		buf = append(buf, ':', ' ')
		buf = append(buf, strings.Join(field.Values, ", ")...)
		buf = append(buf, '\r', '\n')
	}
	buf = append(buf, '\r', '\n')
	return buf
}

func (c *Collection) String() string {
	return string(c.Finalize())
}
