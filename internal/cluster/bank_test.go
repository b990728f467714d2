package cluster

import (
	"errors"
	"testing"
)

func TestNegativeIsExactNegation(t *testing.T) {
	matrices := [][][]float64{
		DefaultPositive(),
		{{1.5, -2.0}, {0, 4.25}},
		{{0.1}},
	}
	for _, m := range matrices {
		b, err := NewBank(m)
		if err != nil {
			t.Fatalf("NewBank: %v", err)
		}
		pos := b.Positive()
		neg := b.Negative()
		for i := range pos {
			for j := range pos[i] {
				if neg[i][j] != -pos[i][j] {
					t.Fatalf("negative[%d][%d] = %f, want %f", i, j, neg[i][j], -pos[i][j])
				}
			}
		}
	}
}

func TestNewBankCopiesInput(t *testing.T) {
	m := DefaultPositive()
	b, err := NewBank(m)
	if err != nil {
		t.Fatalf("NewBank: %v", err)
	}
	m[0][0] = 42

	if got := b.Value(0, 0, Positive); got != 0.9 {
		t.Fatalf("bank changed with caller's matrix: got %f", got)
	}
	if got := b.Value(0, 0, Negative); got != -0.9 {
		t.Fatalf("negative changed with caller's matrix: got %f", got)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	b := Default()

	neg := b.Negative()
	neg[1][1] = 100
	col, _ := b.Column(1, Negative)
	col[0] = 100

	if got := b.Value(1, 1, Negative); got != -0.9 {
		t.Fatalf("negative matrix mutated through accessor: %f", got)
	}
	if got := b.Value(0, 1, Negative); got != -0.5 {
		t.Fatalf("negative matrix mutated through column: %f", got)
	}
}

func TestColumn(t *testing.T) {
	b := Default()

	pos, err := b.Column(0, Positive)
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	want := []float64{0.9, 0.3, 0.5}
	for i := range want {
		if pos[i] != want[i] {
			t.Fatalf("positive column 0 [%d] = %f, want %f", i, pos[i], want[i])
		}
	}

	neg, err := b.Column(2, Negative)
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	want = []float64{-0.3, -0.5, -0.9}
	for i := range want {
		if neg[i] != want[i] {
			t.Fatalf("negative column 2 [%d] = %f, want %f", i, neg[i], want[i])
		}
	}
}

func TestColumnOutOfRange(t *testing.T) {
	b := Default()
	for _, dim := range []int{-1, 3, 10} {
		if _, err := b.Column(dim, Positive); !errors.Is(err, ErrDimensionOutOfRange) {
			t.Fatalf("Column(%d): expected ErrDimensionOutOfRange, got %v", dim, err)
		}
	}
	if _, err := b.Row(3); !errors.Is(err, ErrDimensionOutOfRange) {
		t.Fatalf("Row(3): expected ErrDimensionOutOfRange, got %v", err)
	}
}

func TestRow(t *testing.T) {
	b := Default()
	row, err := b.Row(1)
	if err != nil {
		t.Fatalf("Row: %v", err)
	}
	want := []float64{0.3, 0.9, 0.5}
	for i := range want {
		if row[i] != want[i] {
			t.Fatalf("row 1 [%d] = %f, want %f", i, row[i], want[i])
		}
	}
}

func TestNewBankInvalid(t *testing.T) {
	cases := map[string][][]float64{
		"empty":  {},
		"no-dim": {{}},
		"ragged": {{1, 2}, {3}},
	}
	for name, m := range cases {
		if _, err := NewBank(m); !errors.Is(err, ErrInvalidMatrix) {
			t.Errorf("%s: expected ErrInvalidMatrix, got %v", name, err)
		}
	}
}

func TestShape(t *testing.T) {
	b, err := NewBank([][]float64{{1, 2, 3, 4}, {5, 6, 7, 8}})
	if err != nil {
		t.Fatalf("NewBank: %v", err)
	}
	if b.Clusters() != 2 || b.Dimensions() != 4 {
		t.Fatalf("expected 2x4, got %dx%d", b.Clusters(), b.Dimensions())
	}
}

func TestSignString(t *testing.T) {
	if Positive.String() != "positive" || Negative.String() != "negative" {
		t.Fatalf("unexpected sign names: %s %s", Positive, Negative)
	}
}
