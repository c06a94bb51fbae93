package domain

import (
	"context"
	"fmt"
	"time"
)

// Variant identifies which catalog a package belongs to.
type Variant string

const (
	VariantHajj  Variant = "hajj"
	VariantUmrah Variant = "umrah"
)

// Collection returns the store collection name for the variant.
func (v Variant) Collection() string {
	switch v {
	case VariantHajj:
		return "hajjPackages"
	case VariantUmrah:
		return "umrahPackages"
	}
	return ""
}

// ParseVariant maps a URL segment to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case string(VariantHajj):
		return VariantHajj, nil
	case string(VariantUmrah):
		return VariantUmrah, nil
	}
	return "", fmt.Errorf("unknown package type %q", s)
}

// Hotel describes a hotel attached to a package.
type Hotel struct {
	Name       string  `bson:"name" json:"name"`
	StarRating float64 `bson:"starRating" json:"starRating"`
}

// Package is a purchasable travel itinerary. Hajj and Umrah packages share
// the common fields; the variant-specific ones stay zero-valued for the
// other variant.
type Package struct {
	ID                string    `bson:"_id,omitempty" json:"id"`
	Variant           Variant   `bson:"-" json:"variant"`
	Name              string    `bson:"name" json:"name"`
	Price             float64   `bson:"price" json:"price"`
	Duration          int       `bson:"duration" json:"duration"` // days
	DistanceMakkah    string    `bson:"distanceMakkah" json:"distanceMakkah"` // free text, unit suffix preserved
	VisaIncluded      bool      `bson:"visaIncluded" json:"visaIncluded"`
	TransportIncluded bool      `bson:"transportIncluded" json:"transportIncluded"`
	Inclusions        []string  `bson:"inclusions" json:"inclusions"`
	DepartureDates    []string  `bson:"departureDates" json:"departureDates"`
	MakkahHotel       Hotel     `bson:"makkahHotel" json:"makkahHotel"`
	MakkahImages      []string  `bson:"makkahHotelImages" json:"makkahHotelImages"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`

	// Hajj only
	CampType string `bson:"campType,omitempty" json:"campType,omitempty"`
	MinaDays int    `bson:"minaDays,omitempty" json:"minaDays,omitempty"`

	// Umrah only
	DaysInMakkah  int      `bson:"daysInMakkah,omitempty" json:"daysInMakkah,omitempty"`
	DaysInMadinah int      `bson:"daysInMadinah,omitempty" json:"daysInMadinah,omitempty"`
	MadinahHotel  Hotel    `bson:"madinahHotel,omitempty" json:"madinahHotel,omitempty"`
	MadinahImages []string `bson:"madinahHotelImages,omitempty" json:"madinahHotelImages,omitempty"`
}

// DistanceMakkahMeters extracts the numeric part of the free-text distance:
// "200m from Haram" -> 200. No digits means 0.
func (p *Package) DistanceMakkahMeters() int {
	return digitsToInt(p.DistanceMakkah)
}

// PackageRepository defines operations against the catalog store. Documents
// in the store are untyped attribute bags; implementations must hand back
// normalized Packages (numbers coerced, list fields never nil).
type PackageRepository interface {
	Create(ctx context.Context, pkg *Package) (string, error)
	Update(ctx context.Context, pkg *Package) error
	Delete(ctx context.Context, variant Variant, id string) error
	ReadAll(ctx context.Context, variant Variant) ([]*Package, error)
	// Watch emits an event whenever the collection changes, until stop is
	// called. Callers must always call stop to release the stream.
	Watch(ctx context.Context, variant Variant) (events <-chan struct{}, stop func(), err error)
}

// CatalogEntry is the persisted cache layout: the last successful read plus
// the time it was taken. Entries hold normalized Packages.
type CatalogEntry struct {
	Data      []*Package `json:"data"`
	Timestamp int64      `json:"timestamp"` // epoch millis
}

// StoredAt returns the entry timestamp as a time.Time.
func (e *CatalogEntry) StoredAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// CatalogCache persists one entry per collection across restarts.
type CatalogCache interface {
	GetCatalog(ctx context.Context, variant Variant) (*CatalogEntry, error)
	SetCatalog(ctx context.Context, variant Variant, pkgs []*Package) error
	InvalidateCatalog(ctx context.Context, variant Variant) error
}
