package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/labforms/coc-extractor/internal/common"
	"github.com/labforms/coc-extractor/internal/pipeline"
)

// Archive is a local SQLite store for batch runs. No server required, so
// replay jobs can run anywhere a file can be written.
type Archive struct {
	db  *sql.DB
	log *slog.Logger
}

func OpenArchive(path string, logger *slog.Logger) (*Archive, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.NewAppError("ARCHIVE_OPEN", "open sqlite archive", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			id          TEXT PRIMARY KEY,
			source      TEXT NOT NULL,
			document    TEXT NOT NULL,
			created_at  TEXT NOT NULL
		)`)
	if err != nil {
		_ = db.Close()
		return nil, common.NewAppError("ARCHIVE_MIGRATE", "create documents table", err)
	}

	logger.Info("archive opened", "path", path)
	return &Archive{db: db, log: logger}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// Save stores one extracted document under its source name.
func (a *Archive) Save(ctx context.Context, source string, doc *pipeline.Document) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", common.WrapError(err, "marshal document")
	}

	id := uuid.New().String()
	_, err = a.db.ExecContext(ctx,
		`INSERT INTO documents (id, source, document, created_at) VALUES (?, ?, ?, ?)`,
		id, source, string(body), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		a.log.Error("archive save failed", "source", source, "err", err)
		return "", common.NewAppError("ARCHIVE_SAVE", "insert document", err)
	}
	a.log.Info("document archived", "id", id, "source", source)
	return id, nil
}

// Load retrieves one archived document by ID.
func (a *Archive) Load(ctx context.Context, id string) (*pipeline.Document, error) {
	var body string
	err := a.db.QueryRowContext(ctx,
		`SELECT document FROM documents WHERE id = ?`, id).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.NewAppError("ARCHIVE_GET", "select document", err)
	}

	var doc pipeline.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, common.WrapError(err, "unmarshal document")
	}
	return &doc, nil
}

// Sources lists archived source names, newest first.
func (a *Archive) Sources(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT source FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, common.NewAppError("ARCHIVE_LIST", "list sources", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
