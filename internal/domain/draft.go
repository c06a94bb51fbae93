package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldKind tells the form layer how to render an editor field.
type FieldKind string

const (
	FieldText   FieldKind = "text"
	FieldNumber FieldKind = "number"
	FieldBool   FieldKind = "bool"
	FieldList   FieldKind = "list" // comma-separated free text
	FieldImages FieldKind = "images"
)

// FieldSpec describes one editor field. The per-variant schemas below are
// the source of truth for form rendering; rendering never enumerates struct
// keys.
type FieldSpec struct {
	Name  string    `json:"name"`
	Kind  FieldKind `json:"kind"`
	Label string    `json:"label"`
}

var commonFields = []FieldSpec{
	{Name: "name", Kind: FieldText, Label: "Package Name"},
	{Name: "price", Kind: FieldNumber, Label: "Price (PKR)"},
	{Name: "duration", Kind: FieldNumber, Label: "Duration (days)"},
	{Name: "distanceMakkah", Kind: FieldText, Label: "Distance to Makkah"},
	{Name: "visaIncluded", Kind: FieldBool, Label: "Visa Included"},
	{Name: "transportIncluded", Kind: FieldBool, Label: "Transport Included"},
	{Name: "inclusions", Kind: FieldList, Label: "Inclusions"},
	{Name: "departureDates", Kind: FieldList, Label: "Departure Dates"},
	{Name: "makkahHotel.name", Kind: FieldText, Label: "Makkah Hotel"},
	{Name: "makkahHotel.starRating", Kind: FieldNumber, Label: "Makkah Hotel Stars"},
	{Name: "makkahHotelImages", Kind: FieldImages, Label: "Makkah Hotel Images"},
}

var hajjFields = append(append([]FieldSpec{}, commonFields...),
	FieldSpec{Name: "campType", Kind: FieldText, Label: "Mina Camp Type"},
	FieldSpec{Name: "minaDays", Kind: FieldNumber, Label: "Days in Mina"},
)

var umrahFields = append(append([]FieldSpec{}, commonFields...),
	FieldSpec{Name: "daysInMakkah", Kind: FieldNumber, Label: "Days in Makkah"},
	FieldSpec{Name: "daysInMadinah", Kind: FieldNumber, Label: "Days in Madinah"},
	FieldSpec{Name: "madinahHotel.name", Kind: FieldText, Label: "Madinah Hotel"},
	FieldSpec{Name: "madinahHotel.starRating", Kind: FieldNumber, Label: "Madinah Hotel Stars"},
	FieldSpec{Name: "madinahHotelImages", Kind: FieldImages, Label: "Madinah Hotel Images"},
)

// FieldsFor returns the ordered editor schema for a variant.
func FieldsFor(v Variant) []FieldSpec {
	if v == VariantHajj {
		return hajjFields
	}
	return umrahFields
}

// HotelDraft keeps hotel sub-object fields as text while editing. Both
// fields default to empty strings so form bindings never see an absent
// sub-object.
type HotelDraft struct {
	Name       string `json:"name"`
	StarRating string `json:"starRating"`
}

// PendingImage is a locally selected file awaiting upload on submit.
type PendingImage struct {
	Filename    string
	ContentType string
	Data        []byte
	Madinah     bool // belongs to the Madinah image list
}

// Draft is an in-progress, unsaved edit of a Package. Numeric and list
// fields are held as free text the way the form captures them; coercion
// happens on submit.
type Draft struct {
	Variant Variant `json:"variant"`
	ID      string  `json:"id"` // empty until the store assigns one

	Name              string     `json:"name"`
	Price             string     `json:"price"`
	Duration          string     `json:"duration"`
	DistanceMakkah    string     `json:"distanceMakkah"`
	VisaIncluded      bool       `json:"visaIncluded"`
	TransportIncluded bool       `json:"transportIncluded"`
	Inclusions        string     `json:"inclusions"`     // comma-separated
	DepartureDates    string     `json:"departureDates"` // comma-separated
	MakkahHotel       HotelDraft `json:"makkahHotel"`
	MakkahImages      []string   `json:"makkahHotelImages"`

	CampType string `json:"campType"`
	MinaDays string `json:"minaDays"`

	DaysInMakkah  string     `json:"daysInMakkah"`
	DaysInMadinah string     `json:"daysInMadinah"`
	MadinahHotel  HotelDraft `json:"madinahHotel"`
	MadinahImages []string   `json:"madinahHotelImages"`

	Pending []PendingImage `json:"-"`

	CreatedAt time.Time `json:"createdAt"` // preserved across updates
}

// InitDraft produces a variant-appropriate empty draft.
func InitDraft(v Variant) *Draft {
	return &Draft{
		Variant:       v,
		MakkahImages:  []string{},
		MadinahImages: []string{},
	}
}

// DraftFromPackage re-hydrates a draft from an existing package for editing.
// Array fields are joined back into comma-separated text.
func DraftFromPackage(p *Package) *Draft {
	d := &Draft{
		Variant:           p.Variant,
		ID:                p.ID,
		Name:              p.Name,
		Price:             formatNumber(p.Price),
		Duration:          strconv.Itoa(p.Duration),
		DistanceMakkah:    p.DistanceMakkah,
		VisaIncluded:      p.VisaIncluded,
		TransportIncluded: p.TransportIncluded,
		Inclusions:        strings.Join(p.Inclusions, ", "),
		DepartureDates:    strings.Join(p.DepartureDates, ", "),
		MakkahHotel:       hotelDraft(p.MakkahHotel),
		MakkahImages:      append([]string{}, p.MakkahImages...),
		CampType:          p.CampType,
		MadinahHotel:      hotelDraft(p.MadinahHotel),
		MadinahImages:     append([]string{}, p.MadinahImages...),
		CreatedAt:         p.CreatedAt,
	}
	if p.Variant == VariantHajj {
		d.MinaDays = strconv.Itoa(p.MinaDays)
	} else {
		d.DaysInMakkah = strconv.Itoa(p.DaysInMakkah)
		d.DaysInMadinah = strconv.Itoa(p.DaysInMadinah)
	}
	return d
}

// SetField updates a single addressed field, leaving siblings untouched.
// Paths support one level of nesting for the hotel sub-objects, e.g.
// "makkahHotel.name".
func (d *Draft) SetField(path, value string) error {
	switch path {
	case "name":
		d.Name = value
	case "price":
		d.Price = value
	case "duration":
		d.Duration = value
	case "distanceMakkah":
		d.DistanceMakkah = value
	case "visaIncluded":
		d.VisaIncluded = parseBool(value)
	case "transportIncluded":
		d.TransportIncluded = parseBool(value)
	case "inclusions":
		d.Inclusions = value
	case "departureDates":
		d.DepartureDates = value
	case "makkahHotel.name":
		d.MakkahHotel.Name = value
	case "makkahHotel.starRating":
		d.MakkahHotel.StarRating = value
	case "madinahHotel.name":
		d.MadinahHotel.Name = value
	case "madinahHotel.starRating":
		d.MadinahHotel.StarRating = value
	case "campType":
		d.CampType = value
	case "minaDays":
		d.MinaDays = value
	case "daysInMakkah":
		d.DaysInMakkah = value
	case "daysInMadinah":
		d.DaysInMadinah = value
	default:
		return fmt.Errorf("unknown draft field %q", path)
	}
	return nil
}

// Validate enforces the required-field rules in order and returns the first
// failure, or nil when the draft is submittable.
func (d *Draft) Validate() *ValidationError {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Message: "package name is required"}
	}
	if strings.TrimSpace(d.Price) == "" {
		return &ValidationError{Field: "price", Message: "price is required"}
	}
	if !isNumeric(d.Price) {
		return &ValidationError{Field: "price", Message: "price must be a number"}
	}
	if strings.TrimSpace(d.Duration) == "" {
		return &ValidationError{Field: "duration", Message: "duration is required"}
	}
	if !isNumeric(d.Duration) {
		return &ValidationError{Field: "duration", Message: "duration must be a number"}
	}
	if strings.TrimSpace(d.DistanceMakkah) == "" {
		return &ValidationError{Field: "distanceMakkah", Message: "distance to Makkah is required"}
	}

	switch d.Variant {
	case VariantHajj:
		if strings.TrimSpace(d.CampType) == "" {
			return &ValidationError{Field: "campType", Message: "camp type is required for Hajj packages"}
		}
		if strings.TrimSpace(d.MinaDays) == "" {
			return &ValidationError{Field: "minaDays", Message: "days in Mina is required for Hajj packages"}
		}
	case VariantUmrah:
		if strings.TrimSpace(d.DaysInMakkah) == "" {
			return &ValidationError{Field: "daysInMakkah", Message: "days in Makkah is required for Umrah packages"}
		}
		if strings.TrimSpace(d.DaysInMadinah) == "" {
			return &ValidationError{Field: "daysInMadinah", Message: "days in Madinah is required for Umrah packages"}
		}
	}
	return nil
}

// ToPackage coerces the draft into a Package. now is used to stamp createdAt
// on first creation only; updates keep the original timestamp. Pending
// images are not handled here; the editor appends their uploaded URLs before
// calling this.
func (d *Draft) ToPackage(now time.Time) *Package {
	createdAt := d.CreatedAt
	if d.ID == "" {
		createdAt = now
	}

	p := &Package{
		ID:                d.ID,
		Variant:           d.Variant,
		Name:              strings.TrimSpace(d.Name),
		Price:             coerceNumber(d.Price),
		Duration:          int(coerceNumber(d.Duration)),
		DistanceMakkah:    strings.TrimSpace(d.DistanceMakkah),
		VisaIncluded:      d.VisaIncluded,
		TransportIncluded: d.TransportIncluded,
		Inclusions:        SplitList(d.Inclusions),
		DepartureDates:    SplitList(d.DepartureDates),
		MakkahHotel: Hotel{
			Name:       strings.TrimSpace(d.MakkahHotel.Name),
			StarRating: coerceNumber(d.MakkahHotel.StarRating),
		},
		MakkahImages: append([]string{}, d.MakkahImages...),
		CreatedAt:    createdAt,
	}

	switch d.Variant {
	case VariantHajj:
		p.CampType = strings.TrimSpace(d.CampType)
		p.MinaDays = int(coerceNumber(d.MinaDays))
	case VariantUmrah:
		p.DaysInMakkah = int(coerceNumber(d.DaysInMakkah))
		p.DaysInMadinah = int(coerceNumber(d.DaysInMadinah))
		p.MadinahHotel = Hotel{
			Name:       strings.TrimSpace(d.MadinahHotel.Name),
			StarRating: coerceNumber(d.MadinahHotel.StarRating),
		}
		p.MadinahImages = append([]string{}, d.MadinahImages...)
	}
	return p
}

// SplitList turns comma-separated free text into a trimmed list, dropping
// empty elements. Empty input yields an empty (never nil) slice.
func SplitList(s string) []string {
	out := []string{}
	if strings.TrimSpace(s) == "" {
		return out
	}
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func hotelDraft(h Hotel) HotelDraft {
	d := HotelDraft{Name: h.Name}
	if h.StarRating != 0 {
		d.StarRating = formatNumber(h.StarRating)
	}
	return d
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

// coerceNumber parses free text as a number; malformed input coerces to 0,
// never stays text.
func coerceNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(s))
	return b
}
