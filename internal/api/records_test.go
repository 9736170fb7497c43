package api

import (
	"encoding/json"
	"testing"

	"github.com/nerrad567/sqlguard/internal/guard"
)

func TestDecodeFieldsPreservesOrder(t *testing.T) {
	raw := json.RawMessage(`{"zeta":"z","alpha":"a","mid":3}`)

	fields, err := decodeFields(raw)
	if err != nil {
		t.Fatalf("decodeFields: %v", err)
	}
	if len(fields) != 3 {
		t.Fatalf("fields = %d, want 3", len(fields))
	}

	want := []string{"zeta", "alpha", "mid"}
	for i, w := range want {
		if fields[i].Column != w {
			t.Errorf("fields[%d] = %q, want %q", i, fields[i].Column, w)
		}
	}
}

func TestDecodeFieldsRejectsNonObject(t *testing.T) {
	if _, err := decodeFields(json.RawMessage(`[1,2]`)); err == nil {
		t.Error("array should be rejected")
	}
	if _, err := decodeFields(json.RawMessage(`"text"`)); err == nil {
		t.Error("string should be rejected")
	}
}

func TestDecodeFieldsRejectsNestedValues(t *testing.T) {
	if _, err := decodeFields(json.RawMessage(`{"config":{"a":1}}`)); err == nil {
		t.Error("object value should be rejected")
	}
}

func TestJSONValueTagging(t *testing.T) {
	tests := []struct {
		name string
		in   any
		kind guard.Kind
	}{
		{"integer", json.Number("42"), guard.KindInt},
		{"float", json.Number("2.5"), guard.KindFloat},
		{"string", "x", guard.KindText},
		{"bool", true, guard.KindText},
		{"null", nil, guard.KindText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := jsonValue(tt.in)
			if err != nil {
				t.Fatalf("jsonValue: %v", err)
			}
			if v.Kind() != tt.kind {
				t.Errorf("kind = %v, want %v", v.Kind(), tt.kind)
			}
		})
	}
}
