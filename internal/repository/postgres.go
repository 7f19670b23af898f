package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/Dan9191/bureau-service/internal/models"
)

// Default Postgres tables holding the feeds. Every column is text, named as
// in the delimited feeds; tradelines carry a serial id giving feed order.
const (
	DefaultTradelineTable = "bureau.tradelines"
	DefaultFeatureTable   = "bureau.tradeline_features"
)

// PostgresFeed loads both source tables from Postgres.
type PostgresFeed struct {
	db             *sql.DB
	tradelineTable string
	featureTable   string
	featureColumns []string
}

// NewPostgresFeed creates a feed over db. featureColumns names the feature
// columns to select besides crn.
func NewPostgresFeed(db *sql.DB, featureColumns []string) *PostgresFeed {
	return &PostgresFeed{
		db:             db,
		tradelineTable: DefaultTradelineTable,
		featureTable:   DefaultFeatureTable,
		featureColumns: featureColumns,
	}
}

// Name identifies the feed in logs.
func (f *PostgresFeed) Name() string {
	return "postgres:" + f.tradelineTable + "," + f.featureTable
}

// Load reads both tables into a fresh snapshot.
func (f *PostgresFeed) Load(ctx context.Context) (*Snapshot, error) {
	rows, err := f.queryRows(ctx, tradelineQuery(f.tradelineTable), TradelineColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to load tradelines: %w", err)
	}
	tradelines := make([]models.RawTradeline, 0, len(rows))
	for _, row := range rows {
		if tl, ok := ParseTradeline(row); ok {
			tradelines = append(tradelines, tl)
		}
	}

	featureCols := append([]string{ColCRN}, f.featureColumns...)
	featureRows, err := f.queryRows(ctx, selectQuery(f.featureTable, featureCols, ColCRN), featureCols)
	if err != nil {
		return nil, fmt.Errorf("failed to load tradeline features: %w", err)
	}
	features := make(map[int64]map[string]string, len(featureRows))
	for _, row := range featureRows {
		crn, ok := parseCRN(row[ColCRN])
		if !ok {
			continue
		}
		if _, seen := features[crn]; !seen {
			features[crn] = row
		}
	}

	return NewSnapshot(tradelines, features), nil
}

func (f *PostgresFeed) queryRows(ctx context.Context, query string, columns []string) ([]map[string]string, error) {
	rows, err := f.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]string
	values := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			if values[i].Valid {
				row[col] = strings.TrimSpace(values[i].String)
			} else {
				row[col] = ""
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func tradelineQuery(table string) string {
	return selectQuery(table, TradelineColumns, "id")
}

// selectQuery builds a SELECT of text-cast columns with quoted identifiers.
func selectQuery(table string, columns []string, orderBy string) string {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = pq.QuoteIdentifier(c) + "::text"
	}
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(cols, ", "), quoteTable(table), pq.QuoteIdentifier(orderBy))
}

func quoteTable(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}
