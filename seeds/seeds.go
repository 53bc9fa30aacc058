package seeds

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/actuallystonmai/restaurant-recommender/internal/logging"
	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type city struct {
	name       string
	lat, lon   float64
	population int
}

type profile struct {
	cuisine     string
	names       []string
	description string
	review      string
	menu        []string
	tags        []string
	priceLevels []int
}

var cities = []city{
	{"Portland", 45.5152, -122.6784, 652503},
	{"Austin", 30.2672, -97.7431, 961855},
	{"Chicago", 41.8781, -87.6298, 2746388},
}

var profiles = []profile{
	{
		cuisine:     "Italian",
		names:       []string{"Trattoria Roma", "Osteria Lucca", "Pasta Fresca", "Nonna's Table"},
		description: "Rustic trattoria with handmade pasta and a wood-fired oven",
		review:      "Guests praise the fresh pasta and the warm, family-style service",
		menu:        []string{"cacio e pepe", "margherita pizza", "tiramisu", "osso buco"},
		tags:        []string{"romantic", "wine bar", "family-friendly"},
		priceLevels: []int{2, 3},
	},
	{
		cuisine:     "Japanese",
		names:       []string{"Sushi Kaze", "Ramen Ichi", "Izakaya Tora", "Omakase Hana"},
		description: "Intimate counter serving seasonal sushi and small plates",
		review:      "Reviewers highlight pristine fish and attentive chefs",
		menu:        []string{"nigiri", "tonkotsu ramen", "gyoza", "miso soup"},
		tags:        []string{"counter seating", "date night", "sake"},
		priceLevels: []int{2, 4},
	},
	{
		cuisine:     "Mexican",
		names:       []string{"Taqueria El Sol", "Cantina Verde", "La Palapa", "Mole Madre"},
		description: "Lively taqueria with street-style tacos and house salsas",
		review:      "People love the al pastor and the cheap margaritas",
		menu:        []string{"al pastor tacos", "elote", "churros", "guacamole"},
		tags:        []string{"casual", "outdoor seating", "late night"},
		priceLevels: []int{1, 2},
	},
	{
		cuisine:     "Indian",
		names:       []string{"Spice Route", "Tandoor House", "Masala Club", "Curry Leaf"},
		description: "Regional Indian cooking with a clay tandoor and rich curries",
		review:      "Diners recommend the butter chicken and the fresh naan",
		menu:        []string{"butter chicken", "garlic naan", "saag paneer", "biryani"},
		tags:        []string{"vegetarian options", "spicy", "takeout"},
		priceLevels: []int{2},
	},
	{
		cuisine:     "American",
		names:       []string{"Smokehouse 88", "Burger Barn", "Diner Deluxe", "Prairie Grill"},
		description: "Neighborhood grill with smoked meats and classic burgers",
		review:      "Big portions, friendly staff, and a great brunch",
		menu:        []string{"brisket", "cheeseburger", "mac and cheese", "apple pie"},
		tags:        []string{"casual", "sports bar", "brunch"},
		priceLevels: []int{1, 2, 3},
	},
}

// Setup inserts a deterministic sample of searches with reference and city
// restaurants.
func Setup(ctx context.Context, pool *pgxpool.Pool) error {
	log := logging.With("seed")
	rng := rand.New(rand.NewSource(42))

	// Truncate existing data before insert
	log.Info().Msg("truncating existing data")
	if _, err := pool.Exec(ctx, `
		TRUNCATE restaurant_details, city_restaurants, restaurants, searches RESTART IDENTITY CASCADE
	`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	for _, c := range cities {
		if err := seedSearch(ctx, pool, rng, c); err != nil {
			return fmt.Errorf("seed search %s: %w", c.name, err)
		}
		log.Info().Str("city", c.name).Msg("search seeded")
	}

	log.Info().Msg("seeding complete")
	return nil
}

func seedSearch(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, c city) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var searchID int64
	if err := tx.QueryRow(ctx,
		`INSERT INTO searches (location_name, location_latitude, location_longitude, location_population)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		c.name, c.lat, c.lon, c.population,
	).Scan(&searchID); err != nil {
		return fmt.Errorf("insert search: %w", err)
	}

	// Reference restaurants: two liked profiles
	liked := rng.Perm(len(profiles))[:2]
	for i, idx := range liked {
		p := profiles[idx]
		var id int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO restaurants (search_id, name, address, categories)
			VALUES ($1, $2, $3, $4) RETURNING id`,
			searchID, p.names[0], fmt.Sprintf("%d Home St", 100+i), strings.ToLower(p.cuisine),
		).Scan(&id); err != nil {
			return fmt.Errorf("insert reference restaurant: %w", err)
		}
		if err := insertDetails(ctx, tx, "restaurant_id", id, rng, p); err != nil {
			return err
		}
	}

	// City restaurants: every profile name, some without enrichment
	n := 0
	for _, p := range profiles {
		for _, name := range p.names {
			n++
			distance := math.Round(rng.Float64()*15*100) / 100
			var id int64
			if err := tx.QueryRow(ctx,
				`INSERT INTO city_restaurants (search_id, name, address, categories,
				        position_lat, position_lon, distance_from_center, tomtom_poi_id)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
				searchID, name, fmt.Sprintf("%d %s Ave", 10*n, c.name), strings.ToLower(p.cuisine),
				c.lat+rng.Float64()*0.1-0.05, c.lon+rng.Float64()*0.1-0.05, distance,
				fmt.Sprintf("poi-%d-%d", searchID, n),
			).Scan(&id); err != nil {
				return fmt.Errorf("insert city restaurant: %w", err)
			}
			if rng.Float64() < 0.2 {
				continue
			}
			if err := insertDetails(ctx, tx, "city_restaurant_id", id, rng, p); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func insertDetails(ctx context.Context, tx pgx.Tx, column string, id int64, rng *rand.Rand, p profile) error {
	menu, err := json.Marshal(sample(rng, p.menu, 3))
	if err != nil {
		return fmt.Errorf("marshal menu: %w", err)
	}
	tags, err := json.Marshal(sample(rng, p.tags, 2))
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	price := p.priceLevels[rng.Intn(len(p.priceLevels))]

	query := fmt.Sprintf(`INSERT INTO restaurant_details
		(%s, cuisine, price_level, description, review_summary, menu_highlights, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`, column)
	if _, err := tx.Exec(ctx, query, id, p.cuisine, price, p.description, p.review, string(menu), string(tags)); err != nil {
		return fmt.Errorf("insert details: %w", err)
	}
	return nil
}

func sample(rng *rand.Rand, items []string, n int) []string {
	n = min(n, len(items))
	out := make([]string, 0, n)
	for _, i := range rng.Perm(len(items))[:n] {
		out = append(out, items[i])
	}
	return out
}
