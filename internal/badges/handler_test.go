package badges

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/validity-events/backend/internal/badge"
	"github.com/validity-events/backend/internal/models"
	"github.com/validity-events/backend/internal/raster"
)

var (
	testGuestID = uuid.MustParse("11111111-2222-3333-4444-555555555555")
	testEventID = uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")
)

type fakeGuests struct {
	guest       *models.Guest
	markedCount int
}

func (f *fakeGuests) GetByID(_ context.Context, id uuid.UUID) (*models.Guest, error) {
	if f.guest == nil || f.guest.ID != id {
		return nil, errors.New("no rows")
	}
	return f.guest, nil
}

func (f *fakeGuests) ListByEvent(_ context.Context, eventID uuid.UUID) ([]models.Guest, error) {
	if f.guest == nil || f.guest.EventID != eventID {
		return nil, nil
	}
	return []models.Guest{*f.guest}, nil
}

func (f *fakeGuests) MarkBadgePrinted(_ context.Context, _ uuid.UUID) error {
	f.markedCount++
	return nil
}

type fakeEvents struct {
	event *models.Event
}

func (f *fakeEvents) GetByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	if f.event == nil || f.event.ID != id {
		return nil, errors.New("no rows")
	}
	return f.event, nil
}

type fakeTemplates struct {
	byID map[uuid.UUID]*models.BadgeTemplate
}

func (f *fakeTemplates) Create(_ context.Context, t *models.BadgeTemplate) error {
	t.ID = uuid.New()
	if f.byID == nil {
		f.byID = map[uuid.UUID]*models.BadgeTemplate{}
	}
	f.byID[t.ID] = t
	return nil
}

func (f *fakeTemplates) GetByID(_ context.Context, id uuid.UUID) (*models.BadgeTemplate, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return t, nil
}

func (f *fakeTemplates) List(_ context.Context) ([]models.BadgeTemplate, error) {
	var list []models.BadgeTemplate
	for _, t := range f.byID {
		list = append(list, *t)
	}
	return list, nil
}

func (f *fakeTemplates) Update(_ context.Context, t *models.BadgeTemplate) error {
	if _, ok := f.byID[t.ID]; !ok {
		return errors.New("no rows")
	}
	f.byID[t.ID] = t
	return nil
}

func (f *fakeTemplates) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

type recordingPrinter struct {
	printed []string
}

func (p *recordingPrinter) Print(_ context.Context, badgeID, markup string) error {
	if markup == "" {
		return errors.New("empty markup")
	}
	p.printed = append(p.printed, badgeID)
	return nil
}

func testRouter(t *testing.T, guests *fakeGuests, printer badge.Printer) (*gin.Engine, *fakeTemplates) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	company := "Analytical Engines Ltd"
	if guests.guest == nil {
		guests.guest = &models.Guest{
			ID:        testGuestID,
			EventID:   testEventID,
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Phone:     "555-0100",
			Company:   &company,
			BadgeID:   "aaaaaaaa-1700000000000",
		}
	}
	events := &fakeEvents{event: &models.Event{ID: testEventID, Name: "Validity Summit 2026"}}
	templates := &fakeTemplates{}

	h := NewHandler(HandlerConfig{
		Guests:     guests,
		Events:     events,
		Templates:  templates,
		Compositor: badge.NewCompositor(printer, zap.NewNop()),
		Rasterizer: raster.NewSVGRasterizer(),
		Theme:      badge.Theme{PrimaryColor: "#FFDC00", TextColor: "#000000", FontSize: 16},
		Logger:     zap.NewNop(),
	})

	r := gin.New()
	r.GET("/guests/:id/badge.svg", h.BadgeSVG)
	r.GET("/guests/:id/badge.png", h.BadgePNG)
	r.GET("/guests/:id/qr.png", h.QRCodePNG)
	r.GET("/guests/:id/barcode.svg", h.BarcodeSVG)
	r.GET("/guests/:id/barcode.png", h.Code128PNG)
	r.GET("/guests/:id/confirmation.pdf", h.ConfirmationPDF)
	r.POST("/guests/:id/badge/print", h.PrintBadge)
	r.POST("/badge-templates", h.CreateTemplate)
	r.GET("/badge-templates/:id", h.GetTemplate)
	return r, templates
}

func doRequest(r *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBadgeSVG(t *testing.T) {
	r, _ := testRouter(t, &fakeGuests{}, nil)

	w := doRequest(r, http.MethodGet, "/guests/"+testGuestID.String()+"/badge.svg", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{"Ada Lovelace", "Validity Summit 2026", "aaaaaaaa-1700000000000"} {
		if !strings.Contains(body, want) {
			t.Errorf("badge svg missing %q", want)
		}
	}
}

func TestBadgeSVGUnknownGuest(t *testing.T) {
	r, _ := testRouter(t, &fakeGuests{}, nil)

	w := doRequest(r, http.MethodGet, "/guests/"+uuid.New().String()+"/badge.svg", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestBadgePNG(t *testing.T) {
	r, _ := testRouter(t, &fakeGuests{}, nil)

	w := doRequest(r, http.MethodGet, "/guests/"+testGuestID.String()+"/badge.png", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatal("response is not a PNG")
	}
}

func TestTokenEndpoints(t *testing.T) {
	r, _ := testRouter(t, &fakeGuests{}, nil)
	base := "/guests/" + testGuestID.String()

	tests := []struct {
		path        string
		contentType string
		pngBody     bool
	}{
		{base + "/qr.png", "image/png", true},
		{base + "/barcode.png", "image/png", true},
		{base + "/barcode.svg", "image/svg+xml", false},
	}
	for _, tt := range tests {
		w := doRequest(r, http.MethodGet, tt.path, nil)
		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d", tt.path, w.Code)
			continue
		}
		if got := w.Header().Get("Content-Type"); got != tt.contentType {
			t.Errorf("%s: content type = %q, want %q", tt.path, got, tt.contentType)
		}
		if tt.pngBody && !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
			t.Errorf("%s: response is not a PNG", tt.path)
		}
	}
}

func TestConfirmationPDF(t *testing.T) {
	r, _ := testRouter(t, &fakeGuests{}, nil)

	w := doRequest(r, http.MethodGet, "/guests/"+testGuestID.String()+"/confirmation.pdf", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
		t.Fatal("response is not a PDF")
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "event-registration-aaaaaaaa-1700000000000.pdf") {
		t.Fatalf("content disposition = %q", cd)
	}
}

func TestPrintBadgeMarksGuest(t *testing.T) {
	guests := &fakeGuests{}
	printer := &recordingPrinter{}
	r, _ := testRouter(t, guests, printer)

	w := doRequest(r, http.MethodPost, "/guests/"+testGuestID.String()+"/badge/print", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if len(printer.printed) != 1 || printer.printed[0] != "aaaaaaaa-1700000000000" {
		t.Fatalf("printed = %v", printer.printed)
	}
	if guests.markedCount != 1 {
		t.Fatalf("markedCount = %d, want 1", guests.markedCount)
	}
}

func TestCreateTemplateValidatesLayout(t *testing.T) {
	r, templates := testRouter(t, &fakeGuests{}, nil)

	bad, _ := json.Marshal(map[string]any{
		"name": "broken",
		"layout": map[string]any{
			"elements": []map[string]any{{"id": "x", "type": "hologram"}},
		},
	})
	w := doRequest(r, http.MethodPost, "/badge-templates", bad)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	layout := badge.DefaultLayout(badge.Theme{PrimaryColor: "#FFDC00"}, badge.OrientationLandscape)
	rawLayout, _ := json.Marshal(layout)
	good, _ := json.Marshal(map[string]any{"name": "default", "layout": json.RawMessage(rawLayout)})
	w = doRequest(r, http.MethodPost, "/badge-templates", good)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if len(templates.byID) != 1 {
		t.Fatalf("stored templates = %d, want 1", len(templates.byID))
	}
}

func TestBadgeSVGWithTemplate(t *testing.T) {
	r, templates := testRouter(t, &fakeGuests{}, nil)

	layout := badge.DefaultLayout(badge.Theme{PrimaryColor: "#FFDC00", TextColor: "#000000", FontSize: 16}, badge.OrientationPortrait)
	raw, _ := json.Marshal(layout)
	tpl := &models.BadgeTemplate{Name: "portrait", Layout: raw}
	if err := templates.Create(context.Background(), tpl); err != nil {
		t.Fatal(err)
	}

	w := doRequest(r, http.MethodGet,
		"/guests/"+testGuestID.String()+"/badge.svg?template_id="+tpl.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `width="204"`) {
		t.Fatalf("portrait template not applied: %s", w.Body.String()[:120])
	}
}
