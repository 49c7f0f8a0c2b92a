// toilet-geocode backfills coordinates for rows without geometry by
// resolving their addresses through the provider chain.
package main

import (
	"context"
	"fmt"

	"loolook_backend/internal/geocode"
	"loolook_backend/internal/toilets"
	"loolook_backend/platform/config"
	"loolook_backend/platform/db"
	"loolook_backend/platform/logger"

	"golang.org/x/time/rate"
)

const (
	batchSize      = 500
	progressEvery  = 25
	maxFailSamples = 30
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if cfg.KakaoRESTKey == "" {
		panic("KAKAO_REST_KEY is required for geocoding")
	}

	log := logger.New(cfg.Env)
	log.Info("starting geocode backfill")

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	toiletsModule := toilets.NewModule(pool, log)
	geocodeModule := geocode.NewModule(cfg, nil, toiletsModule, log)
	repo := toiletsModule.Repository()
	resolver := geocodeModule.Resolver()

	// Fixed pacing between provider calls keeps batch runs under the
	// provider rate limits.
	limiter := rate.NewLimiter(rate.Every(cfg.GeocodeDelay), 1)

	total, err := repo.CountMissingCoordinates(ctx)
	if err != nil {
		log.Error("failed to count targets", "error", err)
		panic("failed to count targets: " + err.Error())
	}
	fmt.Printf("rows missing coordinates: %d\n", total)

	processed, resolved := 0, 0
	var failSamples []string

	for {
		targets, err := repo.ListMissingCoordinates(ctx, batchSize)
		if err != nil {
			log.Error("failed to list targets", "error", err)
			panic("failed to list targets: " + err.Error())
		}
		if len(targets) == 0 {
			break
		}

		progress := false
		for _, t := range targets {
			if err := limiter.Wait(ctx); err != nil {
				panic("interrupted: " + err.Error())
			}

			processed++
			if processed%progressEvery == 0 {
				fmt.Printf("progress: %d/%d (resolved %d)\n", processed, total, resolved)
			}

			result, err := resolver.Resolve(ctx, t.Address)
			if err != nil {
				log.Error("resolve failed", "id", t.ID, "error", err)
				continue
			}
			if result == nil {
				if len(failSamples) < maxFailSamples {
					failSamples = append(failSamples, t.Address)
				}
				continue
			}

			if err := repo.UpdateCoordinates(ctx, t.ID, result.Point); err != nil {
				log.DatabaseError("update coordinates", err)
				continue
			}
			resolved++
			progress = true
		}

		// Unresolvable rows stay in the listing; stop once a full batch
		// makes no progress instead of spinning on them.
		if !progress {
			break
		}
	}

	fmt.Printf("\nprocessed: %d, resolved: %d, unresolved: %d\n", processed, resolved, processed-resolved)
	if len(failSamples) > 0 {
		fmt.Println("sample addresses with no result:")
		for _, addr := range failSamples {
			fmt.Printf("  - %s\n", addr)
		}
	}
}
