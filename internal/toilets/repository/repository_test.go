package repository

import (
	"strings"
	"testing"
)

func TestUpsertSQL_MergePolicy(t *testing.T) {
	if !strings.Contains(upsertSQL, "ON CONFLICT (fp)") {
		t.Fatal("upsert must dedupe on the fingerprint")
	}

	// Descriptive fields keep the stored value when the incoming one is null.
	for _, col := range []string{
		"category", "phone", "open_time",
		"male_toilet", "female_toilet",
		"male_disabled", "female_disabled",
		"male_child", "female_child",
	} {
		want := col + " = COALESCE(EXCLUDED." + col + ", toilets." + col + ")"
		if !strings.Contains(collapseSpaces(upsertSQL), want) {
			t.Fatalf("missing merge clause for %s", col)
		}
	}

	// A stored geometry is never overwritten by a re-ingest.
	if !strings.Contains(collapseSpaces(upsertSQL), "geom = COALESCE(toilets.geom, EXCLUDED.geom)") {
		t.Fatal("stored geometry must win over the incoming one")
	}

	// Identity fields always take the incoming value.
	for _, col := range []string{"name", "address", "source", "is_public"} {
		want := col + " = EXCLUDED." + col
		if !strings.Contains(collapseSpaces(upsertSQL), want) {
			t.Fatalf("%s must be overwritten on conflict", col)
		}
	}
}

func TestUpsertSQL_EmptyFlagsStayNull(t *testing.T) {
	// Unknown O/X flags arrive as "" and must be stored as NULL so a later
	// ingest with real data can fill them in.
	if got := strings.Count(upsertSQL, "NULLIF($"); got != 6 {
		t.Fatalf("expected 6 NULLIF-wrapped flag params, got %d", got)
	}
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
