// Command seed applies the schema migrations and loads the Explore
// California catalog into the configured database. Rows that already exist
// are skipped so the tool can run repeatedly.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"github.com/explorecali/tours-api/internal/config"
	"github.com/explorecali/tours-api/internal/repository"
	"github.com/explorecali/tours-api/internal/store"
)

type catalogFile struct {
	Tours     []tourEntry     `json:"tours"`
	Customers []customerEntry `json:"customers"`
}

type tourEntry struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	Duration    string  `json:"duration"`
	Difficulty  string  `json:"difficulty"`
	Region      string  `json:"region"`
}

type customerEntry struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func main() {
	var (
		data       = flag.String("data", "db/seed/explore_california.json", "path to catalog data file")
		migrations = flag.String("migrations", "db/migrations", "path to migration directory, empty to skip")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	file, err := os.ReadFile(*data)
	if err != nil {
		log.Fatalf("read catalog data: %v", err)
	}

	var catalog catalogFile
	if err := json.Unmarshal(file, &catalog); err != nil {
		log.Fatalf("parse catalog data: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	st, err := store.New(ctx, cfg.DBURL, store.Options{ConnTimeout: 10 * time.Second})
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer st.Close()

	if *migrations != "" {
		if err := applyMigrations(ctx, st, *migrations); err != nil {
			log.Fatalf("apply migrations: %v", err)
		}
	}

	repo := repository.New(st)

	var seededTours int
	for _, entry := range catalog.Tours {
		id := entry.ID
		_, err := repo.Tours.Create(ctx, repository.TourCreateParams{
			ID:          &id,
			Title:       entry.Title,
			Description: entry.Description,
			Price:       entry.Price,
			Duration:    entry.Duration,
			Difficulty:  entry.Difficulty,
			Region:      entry.Region,
		})
		if err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				log.Printf("tour %d (%s) already present, skipping", entry.ID, entry.Title)
				continue
			}
			log.Fatalf("seed tour %q: %v", entry.Title, err)
		}
		seededTours++
	}

	var seededCustomers int
	for _, entry := range catalog.Customers {
		id := entry.ID
		_, err := repo.Customers.Create(ctx, repository.CustomerCreateParams{
			ID:        &id,
			FirstName: entry.FirstName,
			LastName:  entry.LastName,
		})
		if err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				log.Printf("customer %d already present, skipping", entry.ID)
				continue
			}
			log.Fatalf("seed customer %d: %v", entry.ID, err)
		}
		seededCustomers++
	}

	if err := repo.Tours.SyncIDSequence(ctx); err != nil {
		log.Fatalf("sync tours sequence: %v", err)
	}
	if err := repo.Customers.SyncIDSequence(ctx); err != nil {
		log.Fatalf("sync customers sequence: %v", err)
	}

	log.Printf("seeded %d tours and %d customers", seededTours, seededCustomers)
}

func applyMigrations(ctx context.Context, st *store.Store, dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*_*.up.sql"))
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, file := range files {
		contents, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if _, err := st.Pool().Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
		log.Printf("applied migration %s", filepath.Base(file))
	}
	return nil
}
