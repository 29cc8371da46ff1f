package geocode

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chorostat/chorostat/internal/platform/database/schema"
	"github.com/chorostat/chorostat/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed geo-code store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Resolve finds the geo code for a free-text label.

Description: A single query checks all three candidate columns
case-insensitively and ranks matches so that a FIPS hit wins over a name hit,
which wins over an abbreviation hit. Equivalent to an OR filter but with a
deterministic priority when a label is ambiguous (e.g. a county named after
a state).
*/
func (repository *PostgresRepository) Resolve(context context.Context, label string) (GeoCode, bool, error) {
	normalized := NormalizeLabel(label)
	if normalized == "" {
		return GeoCode{}, false, nil
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE LOWER(%s) = $1 OR LOWER(%s) = $1 OR LOWER(%s) = $1
		ORDER BY CASE
			WHEN LOWER(%s) = $1 THEN 1
			WHEN LOWER(%s) = $1 THEN 2
			ELSE 3
		END
		LIMIT 1`,
		schema.GeoCodes.ID, schema.GeoCodes.FIPSCode, schema.GeoCodes.Name,
		schema.GeoCodes.Abbreviation, schema.GeoCodes.GeographicLevel,
		schema.GeoCodes.Table,
		schema.GeoCodes.FIPSCode, schema.GeoCodes.Name, schema.GeoCodes.Abbreviation,
		schema.GeoCodes.FIPSCode, schema.GeoCodes.Name,
	)

	var code GeoCode
	err := repository.pool.QueryRow(context, query, normalized).Scan(
		&code.ID, &code.FIPSCode, &code.Name, &code.Abbreviation, &code.Level,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return GeoCode{}, false, nil
		}
		return GeoCode{}, false, dberr.Wrap(err, "resolve_geo_code")
	}

	return code, true, nil
}

// List returns all reference rows at a geographic level, ordered by name.
func (repository *PostgresRepository) List(context context.Context, level Level) ([]GeoCode, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC`,
		schema.GeoCodes.ID, schema.GeoCodes.FIPSCode, schema.GeoCodes.Name,
		schema.GeoCodes.Abbreviation, schema.GeoCodes.GeographicLevel,
		schema.GeoCodes.Table,
		schema.GeoCodes.GeographicLevel,
		schema.GeoCodes.Name,
	)

	rows, err := repository.pool.Query(context, query, level)
	if err != nil {
		return nil, dberr.Wrap(err, "list_geo_codes")
	}
	defer rows.Close()

	codes := make([]GeoCode, 0)
	for rows.Next() {
		var code GeoCode
		if err := rows.Scan(&code.ID, &code.FIPSCode, &code.Name, &code.Abbreviation, &code.Level); err != nil {
			return nil, dberr.Wrap(err, "scan_geo_code")
		}
		codes = append(codes, code)
	}

	return codes, rows.Err()
}
