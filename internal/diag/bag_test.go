package diag

import (
	"testing"

	"gluec/internal/source"
)

func span(file source.FileID, start, end uint32) source.Span {
	return source.Span{File: file, Start: start, End: end}
}

func TestBagLimit(t *testing.T) {
	b := NewBag(2)
	if !b.Add(NewError(LoadFileMissing, source.Span{}, "one")) {
		t.Error("first add dropped")
	}
	if !b.Add(NewError(LoadFileMissing, source.Span{}, "two")) {
		t.Error("second add dropped")
	}
	if b.Add(NewError(LoadFileMissing, source.Span{}, "three")) {
		t.Error("add past the limit was accepted")
	}
	if b.Len() != 2 {
		t.Errorf("Len = %d", b.Len())
	}
}

func TestBagHasErrors(t *testing.T) {
	b := NewBag(10)
	b.Add(New(SevWarning, GlueInfo, source.Span{}, "just a warning"))
	if b.HasErrors() {
		t.Error("warning counted as error")
	}
	b.Add(NewError(GlueUnknownUnit, source.Span{}, "boom"))
	if !b.HasErrors() {
		t.Error("error not detected")
	}
}

func TestBagSortOrder(t *testing.T) {
	b := NewBag(10)
	b.Add(New(SevWarning, GlueInfo, span(1, 40, 44), "late warning"))
	b.Add(NewError(GlueUnknownUnit, span(1, 10, 14), "early error"))
	b.Add(NewError(GlueUnknownField, span(0, 5, 9), "other file"))
	// same position, different severity: the error sorts first
	b.Add(New(SevWarning, GlueInfo, span(1, 10, 14), "shadowed warning"))

	b.Sort()
	items := b.Items()
	want := []string{"other file", "early error", "shadowed warning", "late warning"}
	for i, msg := range want {
		if items[i].Message != msg {
			t.Errorf("items[%d] = %q, want %q", i, items[i].Message, msg)
		}
	}
}

func TestBagMergeGrowsLimit(t *testing.T) {
	a := NewBag(1)
	a.Add(NewError(GlueUnknownUnit, source.Span{}, "a"))

	b := NewBag(2)
	b.Add(NewError(GlueUnknownUnit, source.Span{}, "b1"))
	b.Add(NewError(GlueUnknownUnit, source.Span{}, "b2"))

	a.Merge(b)
	if a.Len() != 3 {
		t.Fatalf("Len = %d", a.Len())
	}
	// the merged bag still accepts nothing beyond its grown limit
	if a.Add(NewError(GlueUnknownUnit, source.Span{}, "over")) {
		t.Error("add past the grown limit was accepted")
	}
}

func TestCodeString(t *testing.T) {
	if got := GlueUnknownUnit.String(); got[:2] != "GC" || len(got) != 6 {
		t.Errorf("code string = %q", got)
	}
}
