package domain

import (
	"reflect"
	"testing"
	"time"
)

func validUmrahDraft() *Draft {
	d := InitDraft(VariantUmrah)
	d.Name = "Shawal 14 Days"
	d.Price = "150000"
	d.Duration = "14"
	d.DistanceMakkah = "200m from Haram"
	d.DaysInMakkah = "7"
	d.DaysInMadinah = "7"
	return d
}

func validHajjDraft() *Draft {
	d := InitDraft(VariantHajj)
	d.Name = "Hajj Premium"
	d.Price = "950000"
	d.Duration = "21"
	d.DistanceMakkah = "500m from Haram"
	d.CampType = "VIP"
	d.MinaDays = "5"
	return d
}

func TestValidateOrder(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Draft)
		draft     func() *Draft
		wantField string
	}{
		{"missing name", func(d *Draft) { d.Name = " " }, validUmrahDraft, "name"},
		{"missing price", func(d *Draft) { d.Price = "" }, validUmrahDraft, "price"},
		{"non-numeric price", func(d *Draft) { d.Price = "cheap" }, validUmrahDraft, "price"},
		{"missing duration", func(d *Draft) { d.Duration = "" }, validUmrahDraft, "duration"},
		{"non-numeric duration", func(d *Draft) { d.Duration = "two weeks" }, validUmrahDraft, "duration"},
		{"missing distance", func(d *Draft) { d.DistanceMakkah = "" }, validUmrahDraft, "distanceMakkah"},
		{"hajj missing campType", func(d *Draft) { d.CampType = "" }, validHajjDraft, "campType"},
		{"hajj missing minaDays", func(d *Draft) { d.MinaDays = "" }, validHajjDraft, "minaDays"},
		{"umrah missing daysInMakkah", func(d *Draft) { d.DaysInMakkah = "" }, validUmrahDraft, "daysInMakkah"},
		{"umrah missing daysInMadinah", func(d *Draft) { d.DaysInMadinah = "" }, validUmrahDraft, "daysInMadinah"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.draft()
			tt.mutate(d)
			err := d.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if err.Field != tt.wantField {
				t.Errorf("Validate() failed on field %q, want %q", err.Field, tt.wantField)
			}
		})
	}

	if err := validUmrahDraft().Validate(); err != nil {
		t.Errorf("valid umrah draft rejected: %v", err)
	}
	if err := validHajjDraft().Validate(); err != nil {
		t.Errorf("valid hajj draft rejected: %v", err)
	}
}

func TestSetField(t *testing.T) {
	d := InitDraft(VariantUmrah)

	if err := d.SetField("name", "Ramadan Special"); err != nil {
		t.Fatalf("SetField(name) error: %v", err)
	}
	if err := d.SetField("makkahHotel.name", "Hilton Makkah"); err != nil {
		t.Fatalf("SetField(makkahHotel.name) error: %v", err)
	}
	if err := d.SetField("makkahHotel.starRating", "5"); err != nil {
		t.Fatalf("SetField(makkahHotel.starRating) error: %v", err)
	}
	if err := d.SetField("visaIncluded", "true"); err != nil {
		t.Fatalf("SetField(visaIncluded) error: %v", err)
	}

	if d.Name != "Ramadan Special" {
		t.Errorf("name = %q", d.Name)
	}
	if d.MakkahHotel.Name != "Hilton Makkah" || d.MakkahHotel.StarRating != "5" {
		t.Errorf("makkahHotel = %+v", d.MakkahHotel)
	}
	if d.MadinahHotel.Name != "" {
		t.Error("sibling madinahHotel was touched")
	}
	if !d.VisaIncluded {
		t.Error("visaIncluded not set")
	}

	if err := d.SetField("noSuchField", "x"); err == nil {
		t.Error("SetField accepted an unknown path")
	}
}

func TestToPackageSplitsLists(t *testing.T) {
	d := validUmrahDraft()
	d.Inclusions = "Breakfast, Tours"
	d.DepartureDates = " 2026-03-01 ,2026-04-15,  "

	p := d.ToPackage(time.Now())

	if !reflect.DeepEqual(p.Inclusions, []string{"Breakfast", "Tours"}) {
		t.Errorf("inclusions = %v", p.Inclusions)
	}
	if !reflect.DeepEqual(p.DepartureDates, []string{"2026-03-01", "2026-04-15"}) {
		t.Errorf("departureDates = %v", p.DepartureDates)
	}
}

func TestToPackageEmptyListsStayEmpty(t *testing.T) {
	p := validUmrahDraft().ToPackage(time.Now())
	if p.Inclusions == nil || p.DepartureDates == nil {
		t.Fatal("list fields must never be nil")
	}
	if len(p.Inclusions) != 0 || len(p.DepartureDates) != 0 {
		t.Errorf("empty source produced non-empty lists: %v %v", p.Inclusions, p.DepartureDates)
	}
}

func TestToPackageCreatedAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// New draft: stamped at submit time.
	p := validUmrahDraft().ToPackage(now)
	if !p.CreatedAt.Equal(now) {
		t.Errorf("new package createdAt = %v, want %v", p.CreatedAt, now)
	}

	// Existing package: createdAt preserved across the edit round-trip.
	original := p
	original.ID = "abc123"
	d := DraftFromPackage(original)
	later := now.Add(48 * time.Hour)
	updated := d.ToPackage(later)
	if !updated.CreatedAt.Equal(now) {
		t.Errorf("update changed createdAt: %v, want %v", updated.CreatedAt, now)
	}
}

func TestEditRoundTripPreservesFields(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	original := &Package{
		ID:                "pkg1",
		Variant:           VariantUmrah,
		Name:              "Shawal 14 Days",
		Price:             150000,
		Duration:          14,
		DistanceMakkah:    "200m from Haram",
		VisaIncluded:      true,
		TransportIncluded: true,
		Inclusions:        []string{"Breakfast", "Ziyarat Tours"},
		DepartureDates:    []string{"2026-03-01"},
		MakkahHotel:       Hotel{Name: "Hilton Makkah", StarRating: 5},
		MakkahImages:      []string{"https://img/1.jpg"},
		DaysInMakkah:      7,
		DaysInMadinah:     7,
		MadinahHotel:      Hotel{Name: "Pullman Zamzam", StarRating: 4},
		MadinahImages:     []string{},
		CreatedAt:         now,
	}

	// Edit without changing any field, then submit.
	got := DraftFromPackage(original).ToPackage(now.Add(time.Hour))

	if !reflect.DeepEqual(got, original) {
		t.Errorf("round trip changed the package:\n got: %+v\nwant: %+v", got, original)
	}
}

func TestDraftFromPackageDefaultsHotels(t *testing.T) {
	p := &Package{ID: "x", Variant: VariantUmrah}
	d := DraftFromPackage(p)

	// Hotel sub-objects must be bound with empty-string defaults, never
	// left undefined for the form layer.
	if d.MakkahHotel != (HotelDraft{}) || d.MadinahHotel != (HotelDraft{}) {
		t.Errorf("hotel drafts not defaulted: %+v %+v", d.MakkahHotel, d.MadinahHotel)
	}
}

func TestFieldsFor(t *testing.T) {
	hajj := FieldsFor(VariantHajj)
	umrah := FieldsFor(VariantUmrah)

	hasField := func(specs []FieldSpec, name string) bool {
		for _, s := range specs {
			if s.Name == name {
				return true
			}
		}
		return false
	}

	if !hasField(hajj, "minaDays") || hasField(hajj, "daysInMadinah") {
		t.Error("hajj schema has wrong variant fields")
	}
	if !hasField(umrah, "daysInMadinah") || hasField(umrah, "campType") {
		t.Error("umrah schema has wrong variant fields")
	}
	if hajj[0].Name != "name" {
		t.Error("schema order lost")
	}
}
