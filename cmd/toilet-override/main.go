// toilet-override applies manual address corrections from a CSV of
// id,address pairs. The whole batch runs in one transaction; corrected
// rows get their geometry cleared so the next backfill re-geocodes them.
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"loolook_backend/internal/address"
	"loolook_backend/internal/toilets/repository"
	"loolook_backend/platform/config"
	"loolook_backend/platform/db"
	"loolook_backend/platform/logger"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: toilet-override <csv-path>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	overrides, skipped, err := readOverrides(os.Args[1])
	if err != nil {
		log.Error("failed to read CSV", "error", err)
		panic("failed to read CSV: " + err.Error())
	}
	if len(overrides) == 0 {
		fmt.Println("no overrides to apply")
		return
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	repo := repository.New(pool)
	applied, err := repo.OverrideAddresses(ctx, overrides)
	if err != nil {
		log.Error("override batch failed", "error", err)
		panic("override batch failed: " + err.Error())
	}

	fmt.Printf("overrides read:    %d\n", len(overrides))
	fmt.Printf("rows skipped:      %d\n", skipped)
	fmt.Printf("rows updated:      %d\n", applied)
	fmt.Printf("rows not found:    %d\n", len(overrides)-applied)
}

// readOverrides parses id,address rows. A header line is tolerated;
// rows with a non-numeric id or an empty address are counted as skipped.
func readOverrides(path string) ([]repository.AddressOverride, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var overrides []repository.AddressOverride
	skipped := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		if len(record) < 2 {
			skipped++
			continue
		}

		id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(record[0]), "\ufeff"), 10, 64)
		if err != nil {
			skipped++
			continue
		}
		addr := address.Normalize(record[1])
		if addr == "" {
			skipped++
			continue
		}

		overrides = append(overrides, repository.AddressOverride{ID: id, Address: addr})
	}
	return overrides, skipped, nil
}
