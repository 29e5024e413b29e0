// Command seed-debtors imports canonical debtor rows from a CSV file.
// Expected columns: name,surname,amount,address,region,city. Rows are
// attributed to the user given with -user and bypass the review
// workflow, so the command is for bootstrapping and migrations only.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/spec-kit/debtor-registry/internal/config"
	"github.com/spec-kit/debtor-registry/internal/domain"
	"github.com/spec-kit/debtor-registry/internal/observability"
	"github.com/spec-kit/debtor-registry/internal/persistence"
	"github.com/spec-kit/debtor-registry/internal/repository"
)

func main() {
	var (
		filePath  = flag.String("file", "", "path to the CSV file")
		ownerID   = flag.String("user", "", "id of the user the rows belong to")
		hasHeader = flag.Bool("header", true, "skip the first row")
	)
	flag.Parse()

	if *filePath == "" || *ownerID == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	f, err := os.Open(*filePath)
	if err != nil {
		logger.Fatal("failed to open csv", zap.Error(err))
	}
	defer f.Close()

	imported, err := importFile(ctx, f, *ownerID, *hasHeader, pg.PoolHandle())
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}
	logger.Info("import complete", zap.Int("rows", imported))
}

func importFile(ctx context.Context, r io.Reader, ownerID string, skipHeader bool, db repository.Querier) (int, error) {
	requests := repository.NewRequestRepository(db)
	debtors := repository.NewDebtorRepository(db)

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 6

	imported := 0
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++
		if skipHeader && line == 1 {
			continue
		}

		cents, err := domain.ParseAmountCents(record[2])
		if err != nil {
			return imported, fmt.Errorf("line %d: amount %q: %w", line, record[2], err)
		}

		key, err := requests.NextIndexKey(ctx)
		if err != nil {
			return imported, fmt.Errorf("line %d: draw index key: %w", line, err)
		}

		debtor := &domain.Debtor{
			UserID:      ownerID,
			Name:        record[0],
			Surname:     record[1],
			AmountCents: cents,
			Address:     record[3],
			Region:      record[4],
			City:        record[5],
			IndexKey:    key,
		}
		if err := debtors.Create(ctx, debtor); err != nil {
			return imported, fmt.Errorf("line %d: insert: %w", line, err)
		}
		imported++
	}
	return imported, nil
}
