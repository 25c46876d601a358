package diag

import (
	"testing"

	"pytutor/internal/kb"
)

func TestBagLimit(t *testing.T) {
	bag := NewBag(2)
	r := BagReporter{Bag: bag}
	ReportError(r, kb.NameError, 1, "a")
	ReportError(r, kb.NameError, 2, "b")
	ReportError(r, kb.NameError, 3, "c")

	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", bag.Len())
	}
	if bag.Items()[1].Line != 2 {
		t.Fatalf("expected insertion order to be kept, got %+v", bag.Items())
	}
}

func TestBagUnlimited(t *testing.T) {
	bag := NewBag(0)
	for i := 1; i <= 100; i++ {
		if !bag.Add(NewError(kb.SyntaxError, uint32(i), "x")) {
			t.Fatalf("add %d rejected", i)
		}
	}
	if bag.Len() != 100 {
		t.Fatalf("expected 100 diagnostics, got %d", bag.Len())
	}
}

func TestBagSeverityQueries(t *testing.T) {
	bag := NewBag(0)
	if bag.HasErrors() || bag.HasWarnings() {
		t.Fatal("empty bag reports findings")
	}
	bag.Add(New(SevWarning, kb.KeyError, 1, "w"))
	if bag.HasErrors() || !bag.HasWarnings() {
		t.Fatal("expected warnings only")
	}
	bag.Add(NewError(kb.KeyError, 2, "e"))
	if !bag.HasErrors() {
		t.Fatal("expected errors")
	}
	if got := bag.CountByKind()[kb.KeyError]; got != 2 {
		t.Fatalf("expected 2 KeyError, got %d", got)
	}
}

func TestBagMergeGrowsLimit(t *testing.T) {
	a := NewBag(1)
	a.Add(NewError(kb.TypeError, 1, "a"))
	b := NewBag(0)
	b.Add(NewError(kb.TypeError, 2, "b"))
	b.Add(NewError(kb.TypeError, 3, "c"))
	a.Merge(b)
	if a.Len() != 3 || a.Cap() != 3 {
		t.Fatalf("unexpected merge result len=%d cap=%d", a.Len(), a.Cap())
	}
}

func TestNewAttachesInfo(t *testing.T) {
	d := NewError(kb.ZeroDivisionError, 1, "division by zero")
	if d.Info == nil || d.Info.Definition != "Dividing by zero." {
		t.Fatalf("expected knowledge base entry, got %+v", d.Info)
	}
	missing := NewError(kb.Kind("MadeUpError"), 1, "x")
	if missing.Info != nil {
		t.Fatal("unknown kinds must have no info")
	}
	if d.Title() != "ZeroDivisionError: division by zero" {
		t.Fatalf("unexpected title %q", d.Title())
	}
}
