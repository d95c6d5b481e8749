package window

import (
	"errors"
	"reflect"
	"testing"

	"frameset/internal/domain"
)

func vec(vals ...float32) []float32 { return vals }

func seq(n, dim int) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		out[i] = make([]float32, dim)
		for j := range out[i] {
			out[i][j] = float32(i*dim + j + 1)
		}
	}
	return out
}

func TestBuildCounts(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 17} {
		b := NewBuilder(3)
		examples, err := b.Build(seq(n, 4))
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if len(examples) != n {
			t.Errorf("n=%d: expected %d examples, got %d", n, n, len(examples))
		}
		for i, ex := range examples {
			if len(ex.Context) != 3 {
				t.Errorf("n=%d i=%d: context length %d, want 3", n, i, len(ex.Context))
			}
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	b := NewBuilder(3)
	examples, err := b.Build(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(examples) != 0 {
		t.Errorf("expected no examples for empty input, got %d", len(examples))
	}
}

// Mirrors the five-frame walkthrough: with embeddings e0..e4 and a
// window of 3, examples are ([0,0,0],e0), ([0,0,e0],e1), ([0,e0,e1],e2),
// ([e0,e1,e2],e3), ([e1,e2,e3],e4).
func TestBuildWindowContents(t *testing.T) {
	e := [][]float32{
		vec(1, 10), vec(2, 20), vec(3, 30), vec(4, 40), vec(5, 50),
	}
	b := NewBuilder(3)
	examples, err := b.Build(e)
	if err != nil {
		t.Fatal(err)
	}

	zero := vec(0, 0)
	want := []domain.Example{
		{Context: [][]float32{zero, zero, zero}, Target: e[0]},
		{Context: [][]float32{zero, zero, e[0]}, Target: e[1]},
		{Context: [][]float32{zero, e[0], e[1]}, Target: e[2]},
		{Context: [][]float32{e[0], e[1], e[2]}, Target: e[3]},
		{Context: [][]float32{e[1], e[2], e[3]}, Target: e[4]},
	}

	if len(examples) != len(want) {
		t.Fatalf("expected %d examples, got %d", len(want), len(examples))
	}
	for i := range want {
		if !reflect.DeepEqual(examples[i], want[i]) {
			t.Errorf("example %d:\n got  %v\n want %v", i, examples[i], want[i])
		}
	}
}

func TestBuildPaddingPositions(t *testing.T) {
	const w = 4
	const n = 7
	b := NewBuilder(w)
	embeddings := seq(n, 3)
	examples, err := b.Build(embeddings)
	if err != nil {
		t.Fatal(err)
	}

	null := make([]float32, 3)
	for i, ex := range examples {
		padding := w - i
		if padding < 0 {
			padding = 0
		}
		for k, slot := range ex.Context {
			isNull := reflect.DeepEqual(slot, null)
			if k < padding && !isNull {
				t.Errorf("i=%d k=%d: expected null slot", i, k)
			}
			if k >= padding {
				src := i - (w - k)
				if !reflect.DeepEqual(slot, embeddings[src]) {
					t.Errorf("i=%d k=%d: expected embeddings[%d]", i, k, src)
				}
			}
		}
	}
}

func TestBuildIdempotent(t *testing.T) {
	embeddings := seq(9, 5)
	b := NewBuilder(3)

	first, err := b.Build(embeddings)
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Build(embeddings)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated builds of the same sequence differ")
	}
}

func TestBuildCopiesVectors(t *testing.T) {
	embeddings := seq(4, 2)
	b := NewBuilder(2)
	examples, err := b.Build(embeddings)
	if err != nil {
		t.Fatal(err)
	}

	// Mutating the source must not reach into the examples.
	embeddings[0][0] = -999
	if examples[1].Context[1][0] == -999 {
		t.Error("example context aliases the source embedding")
	}
	embeddings[3][1] = -999
	if examples[3].Target[1] == -999 {
		t.Error("example target aliases the source embedding")
	}
}

func TestBuildShapeMismatchWithinSequence(t *testing.T) {
	b := NewBuilder(3)
	_, err := b.Build([][]float32{vec(1, 2, 3), vec(4, 5)})
	var shapeErr *domain.ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected ShapeError, got %v", err)
	}
	if shapeErr.Want != 3 || shapeErr.Got != 2 {
		t.Errorf("unexpected shape error: %+v", shapeErr)
	}
}

func TestBuildShapeMismatchAcrossSequences(t *testing.T) {
	b := NewBuilder(3)
	if _, err := b.Build(seq(2, 4)); err != nil {
		t.Fatal(err)
	}
	_, err := b.Build(seq(2, 8))
	var shapeErr *domain.ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected ShapeError across sequences, got %v", err)
	}
}

func TestNullSharedAndDimensionLearned(t *testing.T) {
	b := NewBuilder(3)
	if b.Dimension() != 0 {
		t.Errorf("expected dimension 0 before first build, got %d", b.Dimension())
	}
	if _, err := b.Build(seq(1, 6)); err != nil {
		t.Fatal(err)
	}
	if b.Dimension() != 6 {
		t.Errorf("expected learned dimension 6, got %d", b.Dimension())
	}
	if len(b.Null()) != 6 {
		t.Errorf("expected null embedding of length 6, got %d", len(b.Null()))
	}
	for _, v := range b.Null() {
		if v != 0 {
			t.Error("null embedding must be all zeros")
		}
	}
}
