package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chichienterprises/safarbook/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoPackageRepository implements domain.PackageRepository over one
// collection per variant. It is the only place raw store documents are
// touched: everything it returns has passed through mapDocToPackage.
type MongoPackageRepository struct {
	db *mongo.Database
}

// NewMongoPackageRepository creates a new package repository
func NewMongoPackageRepository(db *mongo.Database) *MongoPackageRepository {
	return &MongoPackageRepository{db: db}
}

func (r *MongoPackageRepository) collection(v domain.Variant) *mongo.Collection {
	return r.db.Collection(v.Collection())
}

// Create inserts the package and returns the store-assigned ID.
func (r *MongoPackageRepository) Create(ctx context.Context, pkg *domain.Package) (string, error) {
	doc := packageToDoc(pkg)

	res, err := r.collection(pkg.Variant).InsertOne(ctx, doc)
	if err != nil {
		return "", wrapStoreErr("failed to create package", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// Update overwrites the full document. Partial patches are intentionally not
// supported; the editor always submits a complete package.
func (r *MongoPackageRepository) Update(ctx context.Context, pkg *domain.Package) error {
	oid, err := primitive.ObjectIDFromHex(pkg.ID)
	if err != nil {
		return fmt.Errorf("invalid package id %q: %w", pkg.ID, err)
	}

	res, err := r.collection(pkg.Variant).ReplaceOne(ctx, bson.M{"_id": oid}, packageToDoc(pkg))
	if err != nil {
		return wrapStoreErr("failed to update package", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoPackageRepository) Delete(ctx context.Context, variant domain.Variant, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid package id %q: %w", id, err)
	}

	res, err := r.collection(variant).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return wrapStoreErr("failed to delete package", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReadAll fetches the whole collection and normalizes every document.
func (r *MongoPackageRepository) ReadAll(ctx context.Context, variant domain.Variant) ([]*domain.Package, error) {
	cursor, err := r.collection(variant).Find(ctx, bson.M{})
	if err != nil {
		return nil, wrapStoreErr("failed to read packages", err)
	}
	defer cursor.Close(ctx)

	packages := []*domain.Package{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, wrapStoreErr("failed to decode package document", err)
		}
		packages = append(packages, mapDocToPackage(variant, raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, wrapStoreErr("failed to iterate packages", err)
	}
	return packages, nil
}

// Watch opens a change stream on the variant's collection and emits an event
// for every change. Events are coalesced: a slow consumer sees at least one
// event per burst. stop must always be called to release the stream.
func (r *MongoPackageRepository) Watch(ctx context.Context, variant domain.Variant) (<-chan struct{}, func(), error) {
	stream, err := r.collection(variant).Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, nil, wrapStoreErr("failed to open change stream", err)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	events := make(chan struct{}, 1)

	go func() {
		defer close(events)
		defer stream.Close(context.Background())
		for stream.Next(streamCtx) {
			select {
			case events <- struct{}{}:
			default:
			}
		}
	}()

	return events, cancel, nil
}

// packageToDoc builds the full attribute bag written on create and update.
// The _id is excluded; the store owns identity.
func packageToDoc(pkg *domain.Package) bson.M {
	doc := bson.M{
		"name":              pkg.Name,
		"price":             pkg.Price,
		"duration":          pkg.Duration,
		"distanceMakkah":    pkg.DistanceMakkah,
		"visaIncluded":      pkg.VisaIncluded,
		"transportIncluded": pkg.TransportIncluded,
		"inclusions":        pkg.Inclusions,
		"departureDates":    pkg.DepartureDates,
		"makkahHotel": bson.M{
			"name":       pkg.MakkahHotel.Name,
			"starRating": pkg.MakkahHotel.StarRating,
		},
		"makkahHotelImages": pkg.MakkahImages,
		"createdAt":         pkg.CreatedAt,
	}

	switch pkg.Variant {
	case domain.VariantHajj:
		doc["campType"] = pkg.CampType
		doc["minaDays"] = pkg.MinaDays
	case domain.VariantUmrah:
		doc["daysInMakkah"] = pkg.DaysInMakkah
		doc["daysInMadinah"] = pkg.DaysInMadinah
		doc["madinahHotel"] = bson.M{
			"name":       pkg.MadinahHotel.Name,
			"starRating": pkg.MadinahHotel.StarRating,
		}
		doc["madinahHotelImages"] = pkg.MadinahImages
	}
	return doc
}

// mapDocToPackage is the normalization boundary between the store's untyped
// attribute bags and typed Packages. Numbers are coerced (malformed values
// become 0, never stay text), list fields are always non-nil, and the
// free-text distance is kept verbatim.
func mapDocToPackage(variant domain.Variant, raw bson.M) *domain.Package {
	pkg := &domain.Package{
		Variant:        variant,
		Inclusions:     []string{},
		DepartureDates: []string{},
		MakkahImages:   []string{},
	}
	if variant == domain.VariantUmrah {
		pkg.MadinahImages = []string{}
	}

	if id, ok := raw["_id"].(primitive.ObjectID); ok {
		pkg.ID = id.Hex()
	} else if id, ok := raw["_id"].(string); ok {
		pkg.ID = id
	}
	if name, ok := raw["name"].(string); ok {
		pkg.Name = name
	}
	pkg.Price = coerceFloat(raw["price"])
	pkg.Duration = coerceInt(raw["duration"])
	if dist, ok := raw["distanceMakkah"].(string); ok {
		pkg.DistanceMakkah = dist
	}
	if visa, ok := raw["visaIncluded"].(bool); ok {
		pkg.VisaIncluded = visa
	}
	if transport, ok := raw["transportIncluded"].(bool); ok {
		pkg.TransportIncluded = transport
	}
	pkg.Inclusions = coerceStringList(raw["inclusions"])
	pkg.DepartureDates = coerceStringList(raw["departureDates"])
	pkg.MakkahHotel = coerceHotel(raw["makkahHotel"])
	pkg.MakkahImages = coerceStringList(raw["makkahHotelImages"])
	pkg.CreatedAt = coerceTime(raw["createdAt"])

	switch variant {
	case domain.VariantHajj:
		if camp, ok := raw["campType"].(string); ok {
			pkg.CampType = camp
		}
		pkg.MinaDays = coerceInt(raw["minaDays"])
	case domain.VariantUmrah:
		pkg.DaysInMakkah = coerceInt(raw["daysInMakkah"])
		pkg.DaysInMadinah = coerceInt(raw["daysInMadinah"])
		pkg.MadinahHotel = coerceHotel(raw["madinahHotel"])
		pkg.MadinahImages = coerceStringList(raw["madinahHotelImages"])
	}

	return pkg
}

func coerceFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func coerceInt(v interface{}) int {
	return int(coerceFloat(v))
}

func coerceStringList(v interface{}) []string {
	out := []string{}
	items, ok := v.(bson.A)
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func coerceHotel(v interface{}) domain.Hotel {
	hotel := domain.Hotel{}
	raw, ok := v.(bson.M)
	if !ok {
		return hotel
	}
	if name, ok := raw["name"].(string); ok {
		hotel.Name = name
	}
	hotel.StarRating = coerceFloat(raw["starRating"])
	return hotel
}

func coerceTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case primitive.DateTime:
		return t.Time()
	case interface{ Time() time.Time }:
		return t.Time()
	}
	return time.Time{}
}

// wrapStoreErr tags authorization failures with domain.ErrPermissionDenied
// so the services can report denied reads/writes distinctly.
func wrapStoreErr(msg string, err error) error {
	if isAuthError(err) {
		return fmt.Errorf("%s: %w: %v", msg, domain.ErrPermissionDenied, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func isAuthError(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 13 { // Unauthorized
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not authorized") || strings.Contains(msg, "unauthorized")
}
