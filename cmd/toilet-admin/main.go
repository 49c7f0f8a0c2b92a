// toilet-admin performs one-off manual corrections:
//
//	toilet-admin add <name> <address>   insert a single row, geocoding it immediately
//	toilet-admin delete <csv-path>      delete rows listed as name,address-pattern pairs
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"loolook_backend/internal/address"
	"loolook_backend/internal/geocode"
	"loolook_backend/internal/toilets"
	"loolook_backend/internal/toilets/repository"
	"loolook_backend/platform/config"
	"loolook_backend/platform/db"
	"loolook_backend/platform/logger"
)

func main() {
	if len(os.Args) < 3 {
		usage()
	}

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	toiletsModule := toilets.NewModule(pool, log)
	repo := toiletsModule.Repository()

	switch os.Args[1] {
	case "add":
		if len(os.Args) != 4 {
			usage()
		}
		add(ctx, cfg, toiletsModule, repo, os.Args[2], os.Args[3], log)
	case "delete":
		remove(ctx, repo, os.Args[2])
	default:
		usage()
	}
}

func add(ctx context.Context, cfg *config.Config, toiletsModule *toilets.Module, repo repository.Repository, name, rawAddr string, log *logger.Logger) {
	addr := address.Normalize(rawAddr)
	if addr == "" {
		panic("address must not be empty")
	}

	geocodeModule := geocode.NewModule(cfg, nil, toiletsModule, log)
	result, err := geocodeModule.Resolver().Resolve(ctx, addr)
	if err != nil {
		log.Error("geocode failed", "error", err)
		panic("geocode failed: " + err.Error())
	}
	if result == nil {
		panic("could not geocode address: " + addr)
	}

	inserted, err := repo.InsertIgnore(ctx, name, addr, true, result.Point)
	if err != nil {
		log.DatabaseError("insert toilet", err)
		panic("insert failed: " + err.Error())
	}
	if !inserted {
		fmt.Println("row already exists, nothing inserted")
		return
	}
	fmt.Printf("inserted %q at %s (%.6f, %.6f) via %s\n", name, addr, result.Point.Lat, result.Point.Lng, result.Source)
}

// remove deletes every name/address-pattern pair in the CSV, reporting
// the match count before and the deleted count after each pair. Rows
// with no match are skipped rather than treated as failures.
func remove(ctx context.Context, repo repository.Repository, csvPath string) {
	f, err := os.Open(csvPath)
	if err != nil {
		panic("failed to open CSV: " + err.Error())
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	totalDeleted := int64(0)
	for line := 0; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			panic("failed to read CSV: " + err.Error())
		}
		if line == 0 && len(record) > 0 && strings.EqualFold(strings.TrimPrefix(record[0], "\ufeff"), "name") {
			continue
		}
		if len(record) < 2 {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(record[0], "\ufeff"))
		pattern := strings.TrimSpace(record[1])
		if name == "" || pattern == "" {
			fmt.Printf("skipping row with missing name or address: %v\n", record)
			continue
		}

		matches, err := repo.CountByNameAndAddress(ctx, name, pattern)
		if err != nil {
			panic("count failed: " + err.Error())
		}
		if matches == 0 {
			fmt.Printf("no rows match name=%q address~%q, skipping\n", name, pattern)
			continue
		}

		deleted, err := repo.DeleteByNameAndAddress(ctx, name, pattern)
		if err != nil {
			panic("delete failed: " + err.Error())
		}
		fmt.Printf("name=%q address~%q: matched %d, deleted %d\n", name, pattern, matches, deleted)
		totalDeleted += deleted
	}

	fmt.Printf("\ntotal deleted: %d\n", totalDeleted)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: toilet-admin add <name> <address>")
	fmt.Fprintln(os.Stderr, "       toilet-admin delete <csv-path>")
	os.Exit(1)
}
