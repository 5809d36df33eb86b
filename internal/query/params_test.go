package query

import (
	"net/url"
	"reflect"
	"testing"

	"salesboard/internal/model"
)

func TestParseSelection(t *testing.T) {
	t.Parallel()

	values, err := url.ParseQuery("category=TOP&categories=%20A%20,B,,A&branch=B1&supplier=%20%20&fabrics=,,&fabric=Cotton&concepts=X&concepts=Y,X")
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}

	sel := ParseSelection(values)
	want := model.FilterSelection{
		model.DimensionCategory: {"A", "B"},
		model.DimensionBranch:   {"B1"},
		model.DimensionFabric:   {"Cotton"},
		model.DimensionConcept:  {"X", "Y"},
	}
	if !reflect.DeepEqual(sel, want) {
		t.Fatalf("want=%v got=%v", want, sel)
	}
}

func TestParseSelection_Empty(t *testing.T) {
	t.Parallel()

	if sel := ParseSelection(url.Values{}); !sel.IsEmpty() {
		t.Fatalf("want empty selection, got %v", sel)
	}
}
