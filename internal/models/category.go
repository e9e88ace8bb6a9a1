package models

// CategoryRule associates a normalized description key with a category.
type CategoryRule struct {
	Key      string `csv:"key" yaml:"key"`
	Category string `csv:"category" yaml:"category"`
}

// Category is the result of a successful categorization.
type Category struct {
	Name string
	Key  string // store key that produced the match
}
