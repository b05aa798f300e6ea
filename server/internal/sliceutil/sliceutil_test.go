package sliceutil

import (
	"reflect"
	"testing"
)

func TestDeleteVal(t *testing.T) {
	s := []int{1, 2, 3, 2}
	s = DeleteVal(s, 2)
	if !reflect.DeepEqual(s, []int{1, 3, 2}) {
		t.Fatalf("got %v", s)
	}
}

func TestDeleteValAbsent(t *testing.T) {
	s := []int{1, 2, 3}
	out := DeleteVal(s, 9)
	if !reflect.DeepEqual(out, s) {
		t.Fatalf("got %v, want unchanged %v", out, s)
	}
}

func TestIndexOf(t *testing.T) {
	s := []string{"a", "b", "c"}
	if IndexOf(s, "b") != 1 {
		t.Fatalf("IndexOf = %d, want 1", IndexOf(s, "b"))
	}
	if IndexOf(s, "z") != -1 {
		t.Fatalf("IndexOf = %d, want -1", IndexOf(s, "z"))
	}
}
