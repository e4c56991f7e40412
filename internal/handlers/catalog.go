package handlers

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/goesrx/goesrx/internal/lrit"
)

// CatalogHandler records every emitted file in a sqlite catalog so
// operators can query what came down without crawling the output tree.
// It never skips: every filetype is indexed.
type CatalogHandler struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

const catalogSchema = `
CREATE TABLE IF NOT EXISTS lrit_files (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	received_at  TEXT    NOT NULL,
	vcid         INTEGER NOT NULL,
	filetype     INTEGER NOT NULL,
	annotation   TEXT,
	product_id   INTEGER,
	product_sub  INTEGER,
	issued_at    TEXT,
	data_bytes   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS lrit_files_vcid ON lrit_files(vcid);
CREATE INDEX IF NOT EXISTS lrit_files_filetype ON lrit_files(filetype);
`

// NewCatalogHandler opens (creating if needed) the catalog at path.
func NewCatalogHandler(path string, log *zap.SugaredLogger) (*CatalogHandler, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	if _, err := db.Exec(catalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: init schema: %w", err)
	}
	return &CatalogHandler{db: db, log: log}, nil
}

func (h *CatalogHandler) Handle(l *lrit.LRIT) error {
	var annotation sql.NullString
	if l.Headers.Annotation != nil {
		annotation = sql.NullString{String: l.Headers.Annotation.Text, Valid: true}
	}
	var productID, productSub sql.NullInt64
	if noaa := l.Headers.NOAA; noaa != nil {
		productID = sql.NullInt64{Int64: int64(noaa.ProductID), Valid: true}
		productSub = sql.NullInt64{Int64: int64(noaa.ProductSubID), Valid: true}
	}
	var issued sql.NullString
	if ts := l.Headers.Timestamp; ts != nil {
		issued = sql.NullString{String: ts.Time().Format(time.RFC3339), Valid: true}
	}

	_, err := h.db.Exec(
		`INSERT INTO lrit_files
		 (received_at, vcid, filetype, annotation, product_id, product_sub, issued_at, data_bytes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339),
		l.VCID,
		l.Headers.Primary.FileTypeCode,
		annotation,
		productID,
		productSub,
		issued,
		len(l.Data),
	)
	if err != nil {
		return fmt.Errorf("catalog: insert: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying database.
func (h *CatalogHandler) Close() error {
	return h.db.Close()
}
