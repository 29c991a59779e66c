package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labforms/coc-extractor/internal/common"
	"github.com/labforms/coc-extractor/internal/pipeline"
)

// ExtractionResult is one stored extraction outcome.
type ExtractionResult struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	Document   *pipeline.Document
	CreatedAt  time.Time
}

type ResultRepository interface {
	Save(ctx context.Context, documentID uuid.UUID, doc *pipeline.Document) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ExtractionResult, error)
	ListRecent(ctx context.Context, limit int) ([]ExtractionResult, error)
}

type resultRepo struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewResultRepository(pool *pgxpool.Pool, log *slog.Logger) ResultRepository {
	if log == nil {
		log = slog.Default()
	}
	return &resultRepo{pool: pool, log: log}
}

// EnsureSchema creates the results table when it does not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS extraction_results (
			id          UUID PRIMARY KEY,
			document_id UUID NOT NULL,
			document    JSONB NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return common.NewAppError("DB_MIGRATE", "create extraction_results", err)
	}
	return nil
}

func (r *resultRepo) Save(ctx context.Context, documentID uuid.UUID, doc *pipeline.Document) (uuid.UUID, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return uuid.Nil, common.WrapError(err, "marshal document")
	}

	id := uuid.New()
	_, err = r.pool.Exec(ctx,
		`INSERT INTO extraction_results (id, document_id, document) VALUES ($1, $2, $3)`,
		id, documentID, body)
	if err != nil {
		r.log.Error("result save failed", "document_id", documentID, "err", err)
		return uuid.Nil, common.NewAppError("DB_SAVE", "insert extraction result", err)
	}
	r.log.Info("result saved", "result_id", id, "document_id", documentID)
	return id, nil
}

func (r *resultRepo) GetByID(ctx context.Context, id uuid.UUID) (*ExtractionResult, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, document_id, document, created_at FROM extraction_results WHERE id = $1`, id)

	res, err := scanResult(row)
	if err == pgx.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.log.Error("result fetch failed", "result_id", id, "err", err)
		return nil, common.NewAppError("DB_GET", "select extraction result", err)
	}
	return res, nil
}

func (r *resultRepo) ListRecent(ctx context.Context, limit int) ([]ExtractionResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, document_id, document, created_at
		 FROM extraction_results ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, common.NewAppError("DB_LIST", "list extraction results", err)
	}
	defer rows.Close()

	var out []ExtractionResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, common.NewAppError("DB_LIST", "scan extraction result", err)
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*ExtractionResult, error) {
	var (
		res  ExtractionResult
		body []byte
	)
	if err := row.Scan(&res.ID, &res.DocumentID, &body, &res.CreatedAt); err != nil {
		return nil, err
	}
	var doc pipeline.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	res.Document = &doc
	return &res, nil
}
