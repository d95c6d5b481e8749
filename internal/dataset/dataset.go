// Package dataset holds the assembled corpus of training examples and
// hands it to a trainer in randomly indexable or batched form.
package dataset

import (
	"frameset/internal/domain"
)

// Source records one video's contribution to the corpus: which file it
// came from and where its examples landed in the flat index space.
// Per-video internal order is always preserved; the cross-video order
// is whatever order Append was called in, which the builder keeps
// deterministic (sorted by path) so runs are reproducible.
type Source struct {
	Path  string
	Start int
	Count int
}

// Dataset is a flat, append-only collection of examples. It is safe
// for concurrent reads once assembly is finished; Append is not safe
// to interleave with reads.
type Dataset struct {
	examples []domain.Example
	sources  []Source
	dim      int
}

// New returns an empty dataset.
func New() *Dataset {
	return &Dataset{}
}

// Append adds one video's examples to the end of the corpus. Empty
// contributions are recorded but add no examples.
func (d *Dataset) Append(path string, examples []domain.Example) {
	d.sources = append(d.sources, Source{
		Path:  path,
		Start: len(d.examples),
		Count: len(examples),
	})
	d.examples = append(d.examples, examples...)
	if d.dim == 0 && len(examples) > 0 {
		d.dim = len(examples[0].Target)
	}
}

// Len returns the number of examples in the corpus.
func (d *Dataset) Len() int {
	return len(d.examples)
}

// Get returns the example at index i.
func (d *Dataset) Get(i int) (domain.Example, error) {
	if i < 0 || i >= len(d.examples) {
		return domain.Example{}, &domain.IndexError{Index: i, Size: len(d.examples)}
	}
	return d.examples[i], nil
}

// Dimension returns the embedding dimension, or 0 for an empty corpus.
func (d *Dataset) Dimension() int {
	return d.dim
}

// Sources returns the per-video provenance records in append order.
func (d *Dataset) Sources() []Source {
	return d.sources
}

// Stats summarizes the corpus.
func (d *Dataset) Stats() domain.Stats {
	return domain.Stats{
		Videos:    len(d.sources),
		Frames:    len(d.examples),
		Examples:  len(d.examples),
		Dimension: d.dim,
	}
}
