package models

import "testing"

func TestStringArrayRoundTripAndNull(t *testing.T) {
	value, err := StringArray{"doi", "crossref"}.Value()
	if err != nil {
		t.Fatalf("value failed: %v", err)
	}
	var got StringArray
	if err := got.Scan([]byte(value.(string))); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(got) != 2 || got[1] != "crossref" {
		t.Fatalf("unexpected keywords: %v", got)
	}

	if err := got.Scan(nil); err != nil || got == nil || len(got) != 0 {
		t.Fatalf("NULL should scan to empty array, got %v err=%v", got, err)
	}
	if v, _ := StringArray(nil).Value(); v != nil {
		t.Fatalf("nil array should store NULL")
	}
}

func TestJSONScanRejectsUnknownType(t *testing.T) {
	var detail JSON
	if err := detail.Scan(`{"role":"editor"}`); err != nil || detail["role"] != "editor" {
		t.Fatalf("unexpected detail %v err=%v", detail, err)
	}
	if err := detail.Scan(42); err == nil {
		t.Fatalf("int column value should be rejected")
	}
}
