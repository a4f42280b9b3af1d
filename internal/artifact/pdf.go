// Package artifact assembles registration confirmation documents (PDF) from
// guest data and a rasterized token image.
package artifact

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// AssemblyError reports a failed document composition. No partial document
// bytes are ever returned alongside it.
type AssemblyError struct {
	Err error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assemble confirmation: %v", e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }

// ConfirmationData carries everything the confirmation document shows.
// Raster is the PNG of the guest's barcode token; when nil (or when
// rasterization failed upstream) the document falls back to a textual
// token section instead of failing.
type ConfirmationData struct {
	GuestID     string
	BadgeID     string
	EventName   string
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Company     string // optional, row omitted when empty
	JobTitle    string // optional, row omitted when empty
	Raster      []byte
	GeneratedAt time.Time // zero value = now
}

// Filename returns the download filename for the confirmation document.
func (d ConfirmationData) Filename() string {
	return "event-registration-" + d.BadgeID + ".pdf"
}

// Theme colors (black and yellow branding).
var (
	colorYellow      = [3]int{255, 220, 0}
	colorBlack       = [3]int{0, 0, 0}
	colorWhite       = [3]int{255, 255, 255}
	colorLightYellow = [3]int{255, 250, 230}
)

// attendeeRows returns the label/value rows of the attendee information
// table. Optional fields are absent rows, never blank ones.
func attendeeRows(d ConfirmationData) [][2]string {
	rows := [][2]string{
		{"Name:", d.FirstName + " " + d.LastName},
		{"Email:", d.Email},
		{"Phone:", d.Phone},
		{"Badge ID:", d.BadgeID},
	}
	if d.Company != "" {
		rows = append(rows, [2]string{"Company:", d.Company})
	}
	if d.JobTitle != "" {
		rows = append(rows, [2]string{"Job Title:", d.JobTitle})
	}
	return rows
}

// AssembleConfirmation builds the complete confirmation PDF for a guest.
// Section order is fixed: header, attendee table, token section,
// instructions, footer. The returned bytes are a complete document; on any
// composition failure the result is nil and an *AssemblyError.
func AssembleConfirmation(d ConfirmationData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	// Header band with title and event name.
	pdf.SetFillColor(colorYellow[0], colorYellow[1], colorYellow[2])
	pdf.Rect(0, 0, 210, 40, "F")
	pdf.SetTextColor(colorBlack[0], colorBlack[1], colorBlack[2])
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetXY(0, 14)
	pdf.CellFormat(210, 10, "Event Registration Confirmation", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 16)
	pdf.SetXY(0, 26)
	pdf.CellFormat(210, 8, d.EventName, "", 1, "C", false, 0, "")

	generatedAt := d.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(0, 47)
	pdf.CellFormat(210, 6, "Generated on: "+generatedAt.Format("January 2, 2006"), "", 1, "C", false, 0, "")

	// Attendee information table.
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(20, 65, "Attendee Information")
	pdf.SetDrawColor(colorYellow[0], colorYellow[1], colorYellow[2])
	pdf.SetLineWidth(0.1)
	y := 70.0
	for _, row := range attendeeRows(d) {
		pdf.SetXY(20, y)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetFillColor(colorLightYellow[0], colorLightYellow[1], colorLightYellow[2])
		pdf.CellFormat(30, 8, row[0], "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(100, 8, row[1], "1", 0, "L", false, 0, "")
		y += 8
	}

	drawTokenSection(pdf, d)

	// Instructions band.
	pdf.SetFillColor(colorBlack[0], colorBlack[1], colorBlack[2])
	pdf.Rect(20, 185, 170, 25, "F")
	pdf.SetTextColor(colorWhite[0], colorWhite[1], colorWhite[2])
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetXY(20, 191)
	pdf.CellFormat(170, 6, "Please present this confirmation at the event entrance to print your badge.", "", 1, "C", false, 0, "")
	pdf.SetXY(20, 198)
	pdf.CellFormat(170, 6, "You can also show the barcode on your mobile device.", "", 1, "C", false, 0, "")

	// Branding footer.
	pdf.SetFillColor(colorYellow[0], colorYellow[1], colorYellow[2])
	pdf.Rect(0, 270, 210, 27, "F")
	pdf.SetTextColor(colorBlack[0], colorBlack[1], colorBlack[2])
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(0, 277)
	pdf.CellFormat(210, 5, "Validity Events Management System", "", 1, "C", false, 0, "")
	pdf.SetXY(0, 282)
	pdf.CellFormat(210, 5, "This is an automatically generated document.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &AssemblyError{Err: err}
	}
	return buf.Bytes(), nil
}

// drawTokenSection renders the barcode panel: the raster image when one is
// available, otherwise a textual fallback with the raw guest id so the
// document never omits the identity.
func drawTokenSection(pdf *gofpdf.Fpdf, d ConfirmationData) {
	pdf.SetFillColor(colorYellow[0], colorYellow[1], colorYellow[2])
	pdf.Rect(50, 120, 110, 40, "F")
	pdf.SetTextColor(colorBlack[0], colorBlack[1], colorBlack[2])
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(50, 125)
	pdf.CellFormat(110, 8, "Your Barcode", "", 1, "C", false, 0, "")

	pdf.SetFillColor(colorWhite[0], colorWhite[1], colorWhite[2])
	pdf.RoundedRect(65, 135, 80, 20, 2, "1234", "F")

	if len(d.Raster) > 0 {
		name := "token-" + d.BadgeID
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(d.Raster))
		pdf.ImageOptions(name, 70, 137, 70, 15, false, opts, 0, "")
	} else {
		pdf.SetFont("Helvetica", "", 12)
		pdf.Text(70, 145, "Guest ID:")
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Text(95, 145, d.GuestID)

		// Decorative bar strip derived from the guest id characters.
		pdf.SetFillColor(colorBlack[0], colorBlack[1], colorBlack[2])
		x := 70.0
		for _, r := range d.GuestID {
			if int(r)%2 == 0 {
				h := 10 + float64(int(r)%5)
				pdf.Rect(x, 150, 0.8, h, "F")
			}
			x += 1.6
		}
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(50, 161)
	pdf.CellFormat(110, 6, "Badge ID:", "", 1, "C", false, 0, "")
	pdf.SetXY(50, 168)
	pdf.CellFormat(110, 6, d.BadgeID, "", 1, "C", false, 0, "")
}
