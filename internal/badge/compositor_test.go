package badge

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func badgeData() Data {
	return Data{
		GuestID:   "g-1",
		BadgeID:   "evt1234-1700000000000",
		FullName:  "Ada Lovelace",
		Company:   "Analytical Engines Ltd",
		JobTitle:  "Programmer",
		EventName: "Annual Technology Conference 2025",
	}
}

func TestRenderBadge(t *testing.T) {
	c := NewCompositor(nil, nil)
	svg, err := c.RenderBadge(badgeData(), Layout{Theme: themeForTest()})
	if err != nil {
		t.Fatalf("RenderBadge: %v", err)
	}
	for _, want := range []string{
		"Ada Lovelace",
		"Annual Technology Conference 2025",
		"Badge ID: evt1234-1700000000000",
		"Analytical Engines Ltd",
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("badge markup missing %q", want)
		}
	}
	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("badge markup is not a complete svg element")
	}
}

func TestRenderBadgeEmptyCompanyShowsGuest(t *testing.T) {
	d := badgeData()
	d.Company = ""
	svg, err := NewCompositor(nil, nil).RenderBadge(d, Layout{Theme: themeForTest()})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(svg, ">Guest</text>") {
		t.Error("empty company should render as Guest")
	}
}

func TestRenderBadgeEscapesMarkup(t *testing.T) {
	d := badgeData()
	d.FullName = `Ada <script>&"`
	svg, err := NewCompositor(nil, nil).RenderBadge(d, Layout{Theme: themeForTest()})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(svg, "<script>") {
		t.Error("guest fields not escaped in markup")
	}
}

func TestRenderBadgeMissingIdentity(t *testing.T) {
	d := badgeData()
	d.GuestID = ""
	if _, err := NewCompositor(nil, nil).RenderBadge(d, Layout{Theme: themeForTest()}); err == nil {
		t.Error("expected error without guest id")
	}
}

type fakePrinter struct {
	calls int
	fail  error
	last  string
}

func (f *fakePrinter) Print(ctx context.Context, badgeID, markup string) error {
	if f.fail != nil {
		return f.fail
	}
	f.calls++
	f.last = markup
	return nil
}

func TestPrintBadgeCallbackFiresOnce(t *testing.T) {
	p := &fakePrinter{}
	c := NewCompositor(p, nil)
	fired := 0
	err := c.PrintBadge(context.Background(), badgeData(), Layout{Theme: themeForTest()}, func() { fired++ })
	if err != nil {
		t.Fatalf("PrintBadge: %v", err)
	}
	if fired != 1 {
		t.Errorf("onPrint fired %d times, want 1", fired)
	}
	if p.calls != 1 {
		t.Errorf("printer called %d times, want 1", p.calls)
	}
	if !strings.Contains(p.last, "Badge ID:") {
		t.Error("printed markup is not the badge subtree")
	}
}

func TestPrintBadgeNoCallbackOnRenderFailure(t *testing.T) {
	p := &fakePrinter{}
	c := NewCompositor(p, nil)
	d := badgeData()
	d.GuestID = "" // render cannot capture the badge
	fired := 0
	if err := c.PrintBadge(context.Background(), d, Layout{Theme: themeForTest()}, func() { fired++ }); err == nil {
		t.Fatal("expected render error")
	}
	if fired != 0 {
		t.Error("onPrint fired although the badge could not be rendered")
	}
	if p.calls != 0 {
		t.Error("printer invoked although the badge could not be rendered")
	}
}

func TestPrintBadgeNoCallbackOnPrinterFailure(t *testing.T) {
	p := &fakePrinter{fail: errors.New("spool full")}
	c := NewCompositor(p, nil)
	fired := 0
	if err := c.PrintBadge(context.Background(), badgeData(), Layout{Theme: themeForTest()}, func() { fired++ }); err == nil {
		t.Fatal("expected printer error")
	}
	if fired != 0 {
		t.Error("onPrint fired although printing failed")
	}
}

func TestSpoolPrinter(t *testing.T) {
	dir := t.TempDir()
	p := NewSpoolPrinter(dir, nil)
	if err := p.Print(context.Background(), "evt1234-1", "<svg></svg>"); err != nil {
		t.Fatalf("Print: %v", err)
	}
	if err := p.Print(context.Background(), "evt1234-1", ""); err == nil {
		t.Error("empty markup must not spool")
	}
}
