// Package catalog holds the static registry of framework signatures used to
// recognize project roots and bucket their files into architectural
// categories.
package catalog

import "regexp"

// CategoryOther is the fallback bucket for files no pattern claims.
const CategoryOther = "other"

// Category is a named architectural bucket with its path pattern.
// Patterns match against slash-separated paths relative to the project root.
type Category struct {
	Name    string
	Pattern *regexp.Regexp
}

// Signature describes how to recognize one framework. All fields are fixed
// at construction; a Signature is never mutated after registration.
type Signature struct {
	ID           string
	Name         string
	Icon         string
	ConfigFiles  []string
	Dependencies []string
	Dirs         []string
	Categories   []Category
}

// Category returns the name of the first category whose pattern matches
// relPath, in declaration order, or CategoryOther.
func (s Signature) Category(relPath string) string {
	for _, c := range s.Categories {
		if c.Pattern.MatchString(relPath) {
			return c.Name
		}
	}
	return CategoryOther
}

// Catalog is an immutable ordered collection of signatures. Detection is
// first-match-wins over registration order, so meta-frameworks are
// registered before the base frameworks they depend on.
type Catalog struct {
	sigs []Signature
}

// New builds a catalog from the given signatures, preserving order.
func New(sigs ...Signature) *Catalog {
	return &Catalog{sigs: sigs}
}

// Signatures returns the registered signatures in registration order.
// Callers must not modify the returned slice.
func (c *Catalog) Signatures() []Signature {
	return c.sigs
}

// Lookup returns the signature with the given id.
func (c *Catalog) Lookup(id string) (Signature, bool) {
	for _, s := range c.sigs {
		if s.ID == id {
			return s, true
		}
	}
	return Signature{}, false
}

// Len returns the number of registered signatures.
func (c *Catalog) Len() int {
	return len(c.sigs)
}
