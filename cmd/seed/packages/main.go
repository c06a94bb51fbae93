package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chichienterprises/safarbook/internal/config"
	"github.com/chichienterprises/safarbook/internal/domain"
	"github.com/chichienterprises/safarbook/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to Mongo: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB.Database)
	repo := repository.NewMongoPackageRepository(db)

	now := time.Now().UTC()

	packages := []*domain.Package{
		{
			Variant:           domain.VariantUmrah,
			Name:              "Shawal 14 Days",
			Price:             222830,
			Duration:          14,
			DistanceMakkah:    "700 meters",
			VisaIncluded:      true,
			TransportIncluded: true,
			Inclusions:        []string{"Visa", "Return Flights", "Hotel Stay", "Ziyarat", "Transport"},
			DepartureDates:    []string{"10 Shawal", "24 Shawal"},
			MakkahHotel:       domain.Hotel{Name: "Taiba Al Taiba", StarRating: 4},
			MakkahImages:      []string{},
			DaysInMakkah:      7,
			DaysInMadinah:     7,
			MadinahHotel:      domain.Hotel{Name: "Al Eiman Taiba", StarRating: 4},
			MadinahImages:     []string{},
			CreatedAt:         now,
		},
		{
			Variant:           domain.VariantUmrah,
			Name:              "Economy Umrah 21 Days",
			Price:             185000,
			Duration:          21,
			DistanceMakkah:    "1200 meters",
			VisaIncluded:      true,
			TransportIncluded: false,
			Inclusions:        []string{"Visa", "Return Flights", "Hotel Stay"},
			DepartureDates:    []string{"1st of every month"},
			MakkahHotel:       domain.Hotel{Name: "Dar Al Eiman Ajyad", StarRating: 3},
			MakkahImages:      []string{},
			DaysInMakkah:      12,
			DaysInMadinah:     9,
			MadinahHotel:      domain.Hotel{Name: "Rawda Al Aqeeq", StarRating: 3},
			MadinahImages:     []string{},
			CreatedAt:         now,
		},
		{
			Variant:           domain.VariantHajj,
			Name:              "Premium Hajj Package",
			Price:             1485000,
			Duration:          28,
			DistanceMakkah:    "500 meters",
			VisaIncluded:      true,
			TransportIncluded: true,
			Inclusions:        []string{"Visa", "Return Flights", "Hotel Stay", "Mina Camp", "Qurbani", "Ziyarat", "Transport"},
			DepartureDates:    []string{"1 Dhul Hijjah"},
			MakkahHotel:       domain.Hotel{Name: "Swissotel Al Maqam", StarRating: 5},
			MakkahImages:      []string{},
			CampType:          "VIP",
			MinaDays:          5,
			CreatedAt:         now,
		},
		{
			Variant:           domain.VariantHajj,
			Name:              "Standard Hajj Package",
			Price:             1150000,
			Duration:          35,
			DistanceMakkah:    "900 meters",
			VisaIncluded:      true,
			TransportIncluded: true,
			Inclusions:        []string{"Visa", "Return Flights", "Hotel Stay", "Mina Camp", "Transport"},
			DepartureDates:    []string{"25 Dhul Qadah"},
			MakkahHotel:       domain.Hotel{Name: "Makarem Ajyad", StarRating: 4},
			MakkahImages:      []string{},
			CampType:          "Standard",
			MinaDays:          5,
			CreatedAt:         now,
		},
	}

	for _, pkg := range packages {
		id, err := repo.Create(ctx, pkg)
		if err != nil {
			log.Fatalf("Failed to seed %q: %v", pkg.Name, err)
		}
		fmt.Printf("✓ Seeded %s package %q (%s)\n", pkg.Variant, pkg.Name, id)
	}

	fmt.Printf("Done. Seeded %d packages.\n", len(packages))
}
