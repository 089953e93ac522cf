package params

// Category is a named wrapper around one categorical value. Categorical
// parameters keep their categories in insertion order; that order is what
// index-based decoding of sampled values relies on.
type Category struct {
	Name  string
	Value any
}

// NewCategory creates a category with an explicit name and value.
func NewCategory(name string, value any) Category {
	return Category{Name: name, Value: value}
}

// Categories builds a category set from plain string values, using each
// value as its own name.
func Categories(values ...string) []Category {
	cats := make([]Category, len(values))
	for i, v := range values {
		cats[i] = Category{Name: v, Value: v}
	}
	return cats
}
