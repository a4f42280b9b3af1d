package artifact

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/validity-events/backend/internal/raster"
	"github.com/validity-events/backend/internal/token"
)

func adaData() ConfirmationData {
	return ConfirmationData{
		GuestID:   "g-1",
		BadgeID:   "evt1234-1700000000000",
		EventName: "Annual Technology Conference 2025",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@x.com",
		Phone:     "555-0100",
	}
}

func TestAttendeeRowsOptionalFieldsOmitted(t *testing.T) {
	rows := attendeeRows(adaData())
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4 when company and job title are empty", len(rows))
	}
	want := [][2]string{
		{"Name:", "Ada Lovelace"},
		{"Email:", "ada@x.com"},
		{"Phone:", "555-0100"},
		{"Badge ID:", "evt1234-1700000000000"},
	}
	for i, w := range want {
		if rows[i] != w {
			t.Errorf("row %d = %v, want %v", i, rows[i], w)
		}
	}
}

func TestAttendeeRowsWithOptionalFields(t *testing.T) {
	d := adaData()
	d.Company = "Analytical Engines Ltd"
	d.JobTitle = "Programmer"
	rows := attendeeRows(d)
	if len(rows) != 6 {
		t.Fatalf("rows = %d, want 6", len(rows))
	}
	if rows[4][0] != "Company:" || rows[5][0] != "Job Title:" {
		t.Errorf("optional rows out of order: %v", rows[4:])
	}
}

func TestAssembleConfirmationWithoutRaster(t *testing.T) {
	out, err := AssembleConfirmation(adaData())
	if err != nil {
		t.Fatalf("AssembleConfirmation: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
	if bytes.Contains(out, []byte("/XObject")) {
		t.Error("textual fallback expected, but document embeds an image")
	}
}

func TestAssembleConfirmationWithRaster(t *testing.T) {
	svg, err := token.EncodeLinearSVG("g-1", token.DefaultLinearOptions())
	if err != nil {
		t.Fatal(err)
	}
	img, err := raster.NewSVGRasterizer().Rasterize(context.Background(), svg)
	if err != nil {
		t.Fatal(err)
	}

	d := adaData()
	d.Raster = img
	out, err := AssembleConfirmation(d)
	if err != nil {
		t.Fatalf("AssembleConfirmation: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
	if !bytes.Contains(out, []byte("/XObject")) {
		t.Error("raster given but no image embedded")
	}
}

func TestAssembleConfirmationBadRaster(t *testing.T) {
	d := adaData()
	d.Raster = []byte("not a png")
	out, err := AssembleConfirmation(d)
	if err == nil {
		t.Fatal("expected error for invalid raster bytes")
	}
	var aerr *AssemblyError
	if !errors.As(err, &aerr) {
		t.Errorf("err = %T, want *AssemblyError", err)
	}
	if out != nil {
		t.Error("partial document returned alongside error")
	}
}

func TestAssembleConfirmationDeterministicDate(t *testing.T) {
	d := adaData()
	d.GeneratedAt = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	first, err := AssembleConfirmation(d)
	if err != nil {
		t.Fatal(err)
	}
	second, err := AssembleConfirmation(d)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Error("documents for identical input differ in size")
	}
}

func TestFilename(t *testing.T) {
	if got := adaData().Filename(); got != "event-registration-evt1234-1700000000000.pdf" {
		t.Errorf("Filename() = %q", got)
	}
}
