// Command seed fills the configured database with fake users, articles and likes.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/minasenanami/wonderful-editor/internal/config"
	"github.com/minasenanami/wonderful-editor/internal/database"
	"github.com/minasenanami/wonderful-editor/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numArticles := flag.Int("articles", 100, "Number of articles to create")
	maxLikes := flag.Int("likes", 10, "Maximum likes per article")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed; 0 picks one")
	flag.Parse()

	log.Printf("Target: %d users, %d articles, up to %d likes each, clean=%v", *numUsers, *numArticles, *maxLikes, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	res, err := seed.NewSeeder(db, seed.Options{
		Users:              *numUsers,
		Articles:           *numArticles,
		MaxLikesPerArticle: *maxLikes,
		Clean:              *shouldClean,
		RandSeed:           *randSeed,
	}).Run(context.Background())
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users, %d articles, %d likes", res.Users, res.Articles, res.Likes)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
