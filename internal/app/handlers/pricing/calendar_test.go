package pricing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	domainpricing "ratecraft/internal/domain/pricing"
)

func TestCalendarRangeValidation(t *testing.T) {
	start := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		propertyID string
		start, end time.Time
	}{
		{"missing property", "", start, start.AddDate(0, 0, 3)},
		{"missing start", "p1", time.Time{}, start},
		{"missing end", "p1", start, time.Time{}},
		{"end before start", "p1", start, start.AddDate(0, 0, -1)},
		{"range over a year", "p1", start, start.AddDate(0, 0, 400)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := calendarRange(tc.propertyID, tc.start, tc.end)
			if !errors.Is(err, domainpricing.ErrValidation) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
}

func TestComputeCalendarHandler(t *testing.T) {
	f := newFixture(t)
	f.storeConfig(t, domainpricing.BasePriceConfig{PropertyID: "p1", BasePrice: 100, Currency: "EUR"})

	h := &ComputeCalendarHandler{Resolver: f.resolver, UoWFactory: f.factory}
	out, err := h.Handle(context.Background(), ComputeCalendarCommand{
		PropertyID: "p1",
		StartDate:  time.Date(2026, time.July, 3, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, time.July, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(out.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(out.Entries))
	}
	for _, e := range out.Entries {
		if e.Error != "" || e.Result == nil {
			t.Fatalf("entry %s: error=%q result=%v, want a price", e.Date, e.Error, e.Result)
		}
	}
	// July 3 2026 is a Friday, July 4 a Saturday.
	if out.Entries[0].Result.FinalPrice >= out.Entries[1].Result.FinalPrice {
		t.Errorf("friday %v not below saturday %v", out.Entries[0].Result.FinalPrice, out.Entries[1].Result.FinalPrice)
	}
	if out.StartDate != "2026-07-03" || out.EndDate != "2026-07-05" {
		t.Errorf("range = %s..%s, want 2026-07-03..2026-07-05", out.StartDate, out.EndDate)
	}
}

func TestComputeCalendarReportsPerDayErrors(t *testing.T) {
	f := newFixture(t)

	h := &ComputeCalendarHandler{Resolver: f.resolver, UoWFactory: f.factory}
	out, err := h.Handle(context.Background(), ComputeCalendarCommand{
		PropertyID: "missing",
		StartDate:  time.Date(2026, time.July, 3, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(out.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(out.Entries))
	}
	for _, e := range out.Entries {
		if e.Error == "" || e.Result != nil {
			t.Errorf("entry %s: expected an error entry, got result %v", e.Date, e.Result)
		}
	}
}

func TestRecomputeHandler(t *testing.T) {
	f := newFixture(t)
	f.storeConfig(t, domainpricing.BasePriceConfig{PropertyID: "p1", BasePrice: 100, Currency: "EUR"})

	h := &RecomputeHandler{Resolver: f.resolver, UoWFactory: f.factory}
	report, err := h.Handle(context.Background(), RecomputeCommand{
		PropertyID: "p1",
		StartDate:  time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, time.July, 7, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if report.Updated != 7 || report.Failed != 0 {
		t.Errorf("report = %d updated / %d failed, want 7/0", report.Updated, report.Failed)
	}

	// Nothing changed, so a second run updates the same days and leaves no
	// history behind.
	report, err = h.Handle(context.Background(), RecomputeCommand{
		PropertyID: "p1",
		StartDate:  time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, time.July, 7, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("second handle: %v", err)
	}
	if report.Updated != 7 {
		t.Errorf("second report updated = %d, want 7", report.Updated)
	}
	if n := f.historyCount(t, "p1"); n != 0 {
		t.Errorf("history entries = %d, want none after identical recompute", n)
	}
}

type fakeFeedStore struct {
	key         string
	payload     []byte
	contentType string
	err         error
}

func (s *fakeFeedStore) Put(_ context.Context, key string, payload []byte, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.key = key
	s.payload = payload
	s.contentType = contentType
	return "https://cdn.example.com/" + key, nil
}

func TestExportFeedHandler(t *testing.T) {
	f := newFixture(t)
	f.storeConfig(t, domainpricing.BasePriceConfig{PropertyID: "p1", BasePrice: 100, Currency: "EUR"})

	store := &fakeFeedStore{}
	h := &ExportFeedHandler{
		Calendar: &ComputeCalendarHandler{Resolver: f.resolver, UoWFactory: f.factory},
		Store:    store,
		Clock:    func() time.Time { return f.now },
	}
	out, err := h.Handle(context.Background(), ExportFeedCommand{
		PropertyID: "p1",
		StartDate:  time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, time.July, 3, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if out.Days != 3 {
		t.Errorf("days = %d, want 3", out.Days)
	}
	if !strings.HasPrefix(out.ObjectKey, "feeds/p1/") || !strings.HasSuffix(out.ObjectKey, ".json") {
		t.Errorf("objectKey = %q, want feeds/p1/<stamp>.json", out.ObjectKey)
	}
	if out.URL != "https://cdn.example.com/"+out.ObjectKey {
		t.Errorf("url = %q does not match store result", out.URL)
	}
	if store.contentType != "application/json" {
		t.Errorf("contentType = %q, want application/json", store.contentType)
	}
	if !strings.Contains(string(store.payload), "2026-07-02") {
		t.Error("payload does not contain calendar dates")
	}
}

func TestExportFeedHandlerStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.storeConfig(t, domainpricing.BasePriceConfig{PropertyID: "p1", BasePrice: 100, Currency: "EUR"})

	wantErr := errors.New("bucket unreachable")
	h := &ExportFeedHandler{
		Calendar: &ComputeCalendarHandler{Resolver: f.resolver, UoWFactory: f.factory},
		Store:    &fakeFeedStore{err: wantErr},
	}
	_, err := h.Handle(context.Background(), ExportFeedCommand{
		PropertyID: "p1",
		StartDate:  time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want store failure", err)
	}
}
