package mwtab

import "testing"

func TestColumnFinders_Loaded(t *testing.T) {
	if len(columnFinders) == 0 {
		t.Fatalf("expected embedded column finders to load")
	}
	for _, name := range []string{"moverz_quant", "pubchem_id", "retention_time", "polarity"} {
		if finderByName[name] == nil {
			t.Fatalf("expected a finder named %q", name)
		}
	}
}

func TestImpliedPairs(t *testing.T) {
	if got := impliedPairs["other_id"]; len(got) != 1 || got[0] != "other_id_type" {
		t.Fatalf("expected other_id to imply other_id_type, got %v", got)
	}
	if got := impliedPairs["retention_index"]; len(got) != 1 || got[0] != "retention_index_type" {
		t.Fatalf("expected retention_index to imply retention_index_type, got %v", got)
	}
}

func TestNameMatcher_MoverzVariants(t *testing.T) {
	finder := finderByName["moverz_quant"]
	names := []string{"quant mz", "CalcMZ", "Mass To Charge", "structure mz", "quartile"}
	got := finder.Name.Match(names)
	want := []string{"quant mz", "CalcMZ", "Mass To Charge"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestNameMatcher_RetentionTime(t *testing.T) {
	finder := finderByName["retention_time"]
	got := finder.Name.Match([]string{"RT", "ret. time", "quartile", "rt error"})
	want := []string{"RT", "ret. time"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestNameMatcher_OtherIDExcludesNamedDatabases(t *testing.T) {
	finder := finderByName["other_id"]
	if got := finder.Name.Match([]string{"pubchem_id"}); len(got) != 0 {
		t.Fatalf("expected pubchem_id to be excluded from other_id, got %v", got)
	}
	if got := finder.Name.Match([]string{"database id"}); len(got) != 1 {
		t.Fatalf("expected database id to match other_id, got %v", got)
	}
	if got := finder.Name.Match([]string{"ID"}); len(got) != 1 {
		t.Fatalf("expected bare ID to match other_id exactly, got %v", got)
	}
}

func TestValueMatcher_PubchemIDs(t *testing.T) {
	finder := finderByName["pubchem_id"]
	got := finder.Value.Match([]string{"5793", "12, 34", "N/A", "glucose"})
	want := []bool{true, true, true, false}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestValueMatcher_Moverz(t *testing.T) {
	finder := finderByName["moverz_quant"]
	got := finder.Value.Match([]string{"181.07", "181.07/182.08", "1.2E+3", "apple"})
	want := []bool{true, true, true, false}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestValueMatcher_NonNumericType(t *testing.T) {
	finder := finderByName["class"]
	got := finder.Value.Match([]string{"Sphingolipid", "123.4"})
	if !got[0] || got[1] {
		t.Fatalf("expected non-numeric class values only, got %v", got)
	}
}

func TestValueMatcher_IntegerType(t *testing.T) {
	finder := finderByName["pathway_sortorder"]
	got := finder.Value.Match([]string{"3", "3.5", "NA"})
	want := []bool{true, false, true}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestIsColumnNA(t *testing.T) {
	for _, v := range []string{"", "-", "NF", "No result", "Int Std"} {
		if !isColumnNA(v) {
			t.Fatalf("expected %q to be a column NA placeholder", v)
		}
	}
	if isColumnNA("Glucose") {
		t.Fatalf("expected Glucose to not be a placeholder")
	}
}
