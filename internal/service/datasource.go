package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/lib/pq"

	"listdist/internal/analysis"
)

// DataSourceConfig holds connection details
type DataSourceConfig struct {
	Type     string `json:"type"` // "postgres"
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"` // "disable", "require"
	// DSN, when set, is used as is instead of the fields above.
	DSN string `json:"dsn,omitempty"`
}

func (c DataSourceConfig) connString() string {
	if c.DSN != "" {
		return c.DSN
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslMode)
}

// DataSource defines the interface for database backed columns
type DataSource interface {
	Connect(ctx context.Context, config DataSourceConfig) error
	Close() error
	ListTables(ctx context.Context) ([]string, error)
	ReadColumns(ctx context.Context, table, left, right string) (analysis.Columns, error)
}

// PostgresDataSource implements DataSource for PostgreSQL
type PostgresDataSource struct {
	db *sql.DB
}

func (p *PostgresDataSource) Connect(ctx context.Context, config DataSourceConfig) error {
	db, err := sql.Open("postgres", config.connString())
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return err
	}

	p.db = db
	return nil
}

func (p *PostgresDataSource) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func (p *PostgresDataSource) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name;
	`
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}
	return tables, rows.Err()
}

// columnsQuery selects two columns in physical row order. Identifiers are
// quoted, so table and column names cannot inject SQL.
func columnsQuery(table, left, right string) (string, error) {
	if table == "" || left == "" || right == "" {
		return "", fmt.Errorf("table, left and right column names are required")
	}
	return fmt.Sprintf("SELECT %s, %s FROM %s ORDER BY ctid",
		pq.QuoteIdentifier(left), pq.QuoteIdentifier(right), pq.QuoteIdentifier(table)), nil
}

// ReadColumns reads two integer columns of table into analysis columns.
// NULLs and values outside the uint32 range fail like unparsable CSV fields.
func (p *PostgresDataSource) ReadColumns(ctx context.Context, table, left, right string) (analysis.Columns, error) {
	location := "postgres:" + table
	if p.db == nil {
		return analysis.Columns{}, analysis.SourceError(location, "no database connection")
	}
	query, err := columnsQuery(table, left, right)
	if err != nil {
		return analysis.Columns{}, analysis.SourceError(location, err.Error())
	}

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return analysis.Columns{}, analysis.IOError(location, err)
	}
	defer rows.Close()

	var cols analysis.Columns
	row := 0
	for rows.Next() {
		row++
		var l, r sql.NullInt64
		if err := rows.Scan(&l, &r); err != nil {
			return analysis.Columns{}, analysis.ParseError(location, row, 0, err)
		}
		lv, err := columnValue(l)
		if err != nil {
			return analysis.Columns{}, analysis.ParseError(location, row, 1, err)
		}
		rv, err := columnValue(r)
		if err != nil {
			return analysis.Columns{}, analysis.ParseError(location, row, 2, err)
		}
		cols.Left = append(cols.Left, lv)
		cols.Right = append(cols.Right, rv)
	}
	if err := rows.Err(); err != nil {
		return analysis.Columns{}, analysis.IOError(location, err)
	}
	return cols, nil
}

func columnValue(v sql.NullInt64) (uint32, error) {
	if !v.Valid {
		return 0, fmt.Errorf("NULL value")
	}
	if v.Int64 < 0 || v.Int64 > math.MaxUint32 {
		return 0, fmt.Errorf("value %d out of range", v.Int64)
	}
	return uint32(v.Int64), nil
}

// TableLoader adapts a connected DataSource to analysis.Loader. The
// location passed to Load is ignored.
type TableLoader struct {
	DS                 DataSource
	Table, Left, Right string
}

func (l TableLoader) Load(ctx context.Context, _ string) (analysis.Columns, error) {
	return l.DS.ReadColumns(ctx, l.Table, l.Left, l.Right)
}
