package models

import (
	"strings"
	"testing"
)

func TestBuildSummary(t *testing.T) {
	entry := &BmsImport{
		Status:           BmsImportStatusSuccess,
		DocumentCount:    1,
		CustomerCount:    2,
		VehicleCount:     1,
		ClaimCount:       1,
		RepairOrderCount: 1,
		PartLineCount:    14,
	}

	summary := entry.BuildSummary(0, 0)
	want := "import success: 1 document(s), 2 customer(s), 1 vehicle(s), 1 claim(s), 1 repair order(s), 14 part line(s)"
	if summary != want {
		t.Fatalf("expected %q, got %q", want, summary)
	}
}

func TestBuildSummary_ErrorsAndWarnings(t *testing.T) {
	entry := &BmsImport{Status: BmsImportStatusPartial, CustomerCount: 1}

	summary := entry.BuildSummary(2, 3)
	if !strings.Contains(summary, "partial") {
		t.Errorf("expected status in summary, got %q", summary)
	}
	if !strings.Contains(summary, "2 error(s)") || !strings.Contains(summary, "3 warning(s)") {
		t.Errorf("expected error and warning tallies, got %q", summary)
	}

	// Clean runs don't mention errors at all.
	clean := entry.BuildSummary(0, 0)
	if strings.Contains(clean, "error") || strings.Contains(clean, "warning") {
		t.Errorf("expected no tallies on clean summary, got %q", clean)
	}
}

func TestDecodedErrorsAndWarnings(t *testing.T) {
	entry := &BmsImport{
		Errors:   `["vehicle: connection reset"]`,
		Warnings: `["claim CLM-1 already exists, reusing record 4","repair order skipped: claim, customer or vehicle was not materialized"]`,
	}

	errs := entry.DecodedErrors()
	if len(errs) != 1 || !strings.Contains(errs[0], "vehicle") {
		t.Errorf("expected stored error list back, got %v", errs)
	}
	warnings := entry.DecodedWarnings()
	if len(warnings) != 2 {
		t.Errorf("expected stored warning list back, got %v", warnings)
	}

	// Rows finalized before any column was written decode to empty lists.
	empty := &BmsImport{}
	if len(empty.DecodedErrors()) != 0 || len(empty.DecodedWarnings()) != 0 {
		t.Error("expected empty columns to decode to nothing")
	}
}
