// toilet-ingest loads a Seoul open-data CSV export into the toilets
// table. Usage: toilet-ingest <csv-path> <source-tag>
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"loolook_backend/internal/toilets/repository"
	"loolook_backend/internal/toilets/service"
	"loolook_backend/platform/config"
	"loolook_backend/platform/db"
	"loolook_backend/platform/logger"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: toilet-ingest <csv-path> <source-tag>")
		os.Exit(1)
	}
	csvPath, source := os.Args[1], os.Args[2]

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting toilet ingest", "file", csvPath, "source", source)

	rows, err := readRows(csvPath)
	if err != nil {
		log.Error("failed to read CSV", "error", err)
		panic("failed to read CSV: " + err.Error())
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	svc := service.New(repository.New(pool), log)
	report, err := svc.Ingest(ctx, rows, source)
	if err != nil {
		log.Error("ingest failed", "error", err)
		panic("ingest failed: " + err.Error())
	}

	fmt.Printf("total rows:       %d\n", report.Total)
	fmt.Printf("succeeded:        %d\n", report.Succeeded)
	fmt.Printf("skipped (no addr): %d\n", report.Skipped)
	fmt.Printf("failed:           %d\n", report.Failed)
	fmt.Printf("missing geometry: %d\n", report.NoGeometry)
}

// readRows parses the export into ingest rows. The export uses the
// standard Korean column headers; columns missing from the file leave
// the matching fields empty.
func readRows(path string) ([]service.IngestRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	cell := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var rows []service.IngestRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		rows = append(rows, service.IngestRow{
			Name:        cell(record, "화장실명"),
			RoadAddress: cell(record, "소재지도로명주소"),
			LotAddress:  cell(record, "소재지지번주소"),
			Lat:         cell(record, "WGS84위도"),
			Lng:         cell(record, "WGS84경도"),
			Category:    cell(record, "구분"),
			Phone:       cell(record, "전화번호"),
			OpenTime:    cell(record, "개방시간"),
			OpenDetail:  cell(record, "개방시간상세"),

			MaleStall:           cell(record, "남성용-대변기수"),
			MaleUrinal:          cell(record, "남성용-소변기수"),
			FemaleStall:         cell(record, "여성용-대변기수"),
			MaleDisabledStall:   cell(record, "남성용-장애인용대변기수"),
			MaleDisabledUrinal:  cell(record, "남성용-장애인용소변기수"),
			FemaleDisabledStall: cell(record, "여성용-장애인용대변기수"),
			MaleChildStall:      cell(record, "남성용-어린이용대변기수"),
			MaleChildUrinal:     cell(record, "남성용-어린이용소변기수"),
			FemaleChildStall:    cell(record, "여성용-어린이용대변기수"),

			EmergencyBell: cell(record, "비상벨설치여부"),
			CCTV:          cell(record, "화장실입구CCTV설치유무"),
			BabyChange:    cell(record, "기저귀교환대유무"),
		})
	}
	return rows, nil
}
