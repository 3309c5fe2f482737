package word

import (
	"testing"
)

func TestWordViews(t *testing.T) {
	cell := []byte("-abc")
	w := New(cell)

	if !w.HasPrefix("-") {
		t.Errorf("HasPrefix(%q) = false, want true", "-")
	}
	if w.HasPrefix("-abcd") {
		t.Errorf("HasPrefix(%q) = true, want false", "-abcd")
	}
	if got := w.Len(); got != 4 {
		t.Errorf("Len() = %d, want 4", got)
	}

	clone := w.Clone()
	cell[1] = 'X'
	if got := clone.String(); got != "-abc" {
		t.Errorf("Clone().String() = %q, want %q", got, "-abc")
	}
	if got := w.String(); got != "-Xbc" {
		t.Errorf("String() = %q, want %q", got, "-Xbc")
	}
}

func TestList(t *testing.T) {
	tests := []struct {
		name  string
		list  List
		from  int
		want  []string
		wantS string
	}{
		{name: "empty", list: ListOf(), from: 0, want: []string{}, wantS: ""},
		{name: "all", list: ListOf("a", "b", "c"), from: 0, want: []string{"a", "b", "c"}, wantS: "a b c"},
		{name: "tail", list: ListOf("a", "b", "c"), from: 2, want: []string{"c"}, wantS: "c"},
		{name: "past end", list: ListOf("a"), from: 3, want: []string{}, wantS: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.list.Slice(tt.from)
			strs := got.Strings()
			if len(strs) != len(tt.want) {
				t.Fatalf("Slice(%d).Strings() = %v, want %v", tt.from, strs, tt.want)
			}
			for i := range strs {
				if strs[i] != tt.want[i] {
					t.Errorf("Strings()[%d] = %q, want %q", i, strs[i], tt.want[i])
				}
			}
			if s := got.String(); s != tt.wantS {
				t.Errorf("String() = %q, want %q", s, tt.wantS)
			}
		})
	}
}

func TestNewListBorrowsCells(t *testing.T) {
	cells := [][]byte{[]byte("one"), []byte("two")}
	l := NewList(cells)
	cells[1][0] = 'T'

	if got := l.At(1).String(); got != "Two" {
		t.Errorf("At(1) = %q, want %q", got, "Two")
	}
}
