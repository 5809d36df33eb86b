package query

import (
	"reflect"
	"testing"

	"salesboard/internal/model"
)

func sampleRecords() []*model.Record {
	return []*model.Record{
		{Category: "A", Supplier: "X", Branch: "B1", Amount: 10},
		{Category: "A", Supplier: "Y", Branch: "B2", Amount: 20},
		{Category: "B", Supplier: "X", Branch: "B1", Amount: 30},
		{Category: "C", Supplier: "Z", Branch: "B3", Amount: 40, Fabric: "Cotton"},
	}
}

func matching(records []*model.Record, pred Predicate) []float64 {
	var out []float64
	for _, r := range records {
		if pred(r) {
			out = append(out, r.Amount)
		}
	}
	return out
}

func TestCompile_AndMode(t *testing.T) {
	t.Parallel()

	sel := model.FilterSelection{}.Set(model.DimensionCategory, "A").Set(model.DimensionSupplier, "X")
	got := matching(sampleRecords(), Compile(sel, model.CombineAll))
	if want := []float64{10}; !reflect.DeepEqual(got, want) {
		t.Fatalf("and mode want=%v got=%v", want, got)
	}
}

func TestCompile_OrMode(t *testing.T) {
	t.Parallel()

	sel := model.FilterSelection{}.Set(model.DimensionCategory, "A").Set(model.DimensionSupplier, "X")
	got := matching(sampleRecords(), Compile(sel, model.CombineAny))
	if want := []float64{10, 20, 30}; !reflect.DeepEqual(got, want) {
		t.Fatalf("or mode want=%v got=%v", want, got)
	}
}

func TestCompile_NoFiltersMatchesEverything(t *testing.T) {
	t.Parallel()

	records := sampleRecords()
	for _, mode := range []model.Combinator{model.CombineAll, model.CombineAny} {
		for _, sel := range []model.FilterSelection{nil, {}, {model.DimensionBranch: nil}} {
			if got := matching(records, Compile(sel, mode)); len(got) != len(records) {
				t.Fatalf("mode=%s sel=%v want all records, got %v", mode, sel, got)
			}
		}
	}
}

func TestCompile_SetMembershipWithinDimension(t *testing.T) {
	t.Parallel()

	sel := model.FilterSelection{}.Set(model.DimensionBranch, "B1", "B3")
	got := matching(sampleRecords(), Compile(sel, model.CombineAll))
	if want := []float64{10, 30, 40}; !reflect.DeepEqual(got, want) {
		t.Fatalf("want=%v got=%v", want, got)
	}
}

func TestCompile_EmptyValueMatchesNotApplicable(t *testing.T) {
	t.Parallel()

	sel := model.FilterSelection{}.Single(model.DimensionFabric, "Cotton")
	got := matching(sampleRecords(), Compile(sel, model.CombineAll))
	if want := []float64{40}; !reflect.DeepEqual(got, want) {
		t.Fatalf("want=%v got=%v", want, got)
	}
}

func TestCompileSQL(t *testing.T) {
	t.Parallel()

	columns := map[model.Dimension]string{
		model.DimensionCategory: "category",
		model.DimensionSupplier: "supplier",
	}
	sel := model.FilterSelection{}.Set(model.DimensionCategory, "A", "B").Single(model.DimensionSupplier, "X")

	where, args := CompileSQL(sel, model.CombineAll, columns)
	if want := "(category IN (?, ?) AND supplier = ?)"; where != want {
		t.Fatalf("and where want=%q got=%q", want, where)
	}
	if want := []interface{}{"A", "B", "X"}; !reflect.DeepEqual(args, want) {
		t.Fatalf("args want=%v got=%v", want, args)
	}

	where, _ = CompileSQL(sel, model.CombineAny, columns)
	if want := "(category IN (?, ?) OR supplier = ?)"; where != want {
		t.Fatalf("or where want=%q got=%q", want, where)
	}

	where, args = CompileSQL(model.FilterSelection{}, model.CombineAny, columns)
	if where != "" || args != nil {
		t.Fatalf("empty selection want no clause, got %q %v", where, args)
	}
}
