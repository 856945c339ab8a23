package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/samber/lo"
	"github.com/webstack/backend/internal/domain/shared"
	"github.com/webstack/backend/internal/infrastructure/config"
)

// Column describes one column of a table
type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// ForeignKey describes a single-column foreign key
type ForeignKey struct {
	Column    string `json:"column"`
	RefTable  string `json:"refTable"`
	RefColumn string `json:"refColumn"`
}

// TableDescription is the console view of one table
type TableDescription struct {
	Name        string       `json:"name"`
	Columns     []Column     `json:"columns"`
	ForeignKeys []ForeignKey `json:"foreignKeys"`
}

// SchemaInspector reads table metadata from the live database.
// sqlite is read through its pragma table functions, postgres through information_schema.
type SchemaInspector struct {
	db      *sql.DB
	driver  string
	builder sq.StatementBuilderType
}

// NewSchemaInspector creates an inspector over the database connection
func NewSchemaInspector(database *Database) (*SchemaInspector, error) {
	sqlDB, err := database.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return newSchemaInspector(sqlDB, database.Driver), nil
}

func newSchemaInspector(db *sql.DB, driver string) *SchemaInspector {
	builder := sq.StatementBuilder.RunWith(db)
	if driver == config.DriverPostgres {
		builder = builder.PlaceholderFormat(sq.Dollar)
	}
	return &SchemaInspector{db: db, driver: driver, builder: builder}
}

// TableNames returns the user tables ordered by name
func (i *SchemaInspector) TableNames(ctx context.Context) ([]string, error) {
	var query sq.SelectBuilder
	if i.driver == config.DriverPostgres {
		query = i.builder.Select("table_name").
			From("information_schema.tables").
			Where("table_schema = current_schema()").
			Where(sq.Eq{"table_type": "BASE TABLE"}).
			OrderBy("table_name")
	} else {
		query = i.builder.Select("name").
			From("sqlite_master").
			Where(sq.Eq{"type": "table"}).
			Where(sq.NotLike{"name": "sqlite_%"}).
			OrderBy("name")
	}

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// TableExists reports whether the table exists
func (i *SchemaInspector) TableExists(ctx context.Context, table string) (bool, error) {
	names, err := i.TableNames(ctx)
	if err != nil {
		return false, err
	}
	return lo.Contains(names, table), nil
}

// requireTable returns NOT_FOUND for unknown tables; pragma arguments are only built from known names
func (i *SchemaInspector) requireTable(ctx context.Context, table string) error {
	exists, err := i.TableExists(ctx, table)
	if err != nil {
		return err
	}
	if !exists {
		return shared.Errorf(shared.ErrNotFound, "table %q does not exist", table)
	}
	return nil
}

func pragmaSource(function, table string) string {
	return fmt.Sprintf("%s('%s')", function, strings.ReplaceAll(table, "'", "''"))
}

// Columns returns the columns of a table in declaration order
func (i *SchemaInspector) Columns(ctx context.Context, table string) ([]Column, error) {
	if err := i.requireTable(ctx, table); err != nil {
		return nil, err
	}

	var query sq.SelectBuilder
	if i.driver == config.DriverPostgres {
		query = i.builder.Select("column_name", "data_type", "is_nullable = 'YES'").
			From("information_schema.columns").
			Where("table_schema = current_schema()").
			Where(sq.Eq{"table_name": table}).
			OrderBy("ordinal_position")
	} else {
		query = i.builder.Select("name", "type", `"notnull" = 0 AND pk = 0`).
			From(pragmaSource("pragma_table_info", table)).
			OrderBy("cid")
	}

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	columns := []Column{}
	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Name, &col.Type, &col.Nullable); err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// HasColumns returns the names among want that the table lacks
func (i *SchemaInspector) HasColumns(ctx context.Context, table string, want ...string) ([]string, error) {
	columns, err := i.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	names := lo.Map(columns, func(c Column, _ int) string { return c.Name })
	return lo.Without(want, names...), nil
}

// ForeignKeys returns the foreign keys declared on a table
func (i *SchemaInspector) ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	if err := i.requireTable(ctx, table); err != nil {
		return nil, err
	}

	var query sq.SelectBuilder
	if i.driver == config.DriverPostgres {
		query = i.builder.Select("kcu.column_name", "ccu.table_name", "ccu.column_name").
			From("information_schema.table_constraints tc").
			Join("information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema").
			Join("information_schema.constraint_column_usage ccu ON ccu.constraint_name = tc.constraint_name AND ccu.table_schema = tc.table_schema").
			Where(sq.Eq{"tc.constraint_type": "FOREIGN KEY"}).
			Where("tc.table_schema = current_schema()").
			Where(sq.Eq{"tc.table_name": table}).
			OrderBy("kcu.column_name")
	} else {
		query = i.builder.Select(`"from"`, `"table"`, `"to"`).
			From(pragmaSource("pragma_foreign_key_list", table)).
			OrderBy(`"from"`)
	}

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign keys of %s: %w", table, err)
	}
	defer rows.Close()

	keys := []ForeignKey{}
	for rows.Next() {
		var fk ForeignKey
		var refColumn sql.NullString
		if err := rows.Scan(&fk.Column, &fk.RefTable, &refColumn); err != nil {
			return nil, err
		}
		// sqlite leaves "to" empty when the key targets the primary key
		fk.RefColumn = lo.Ternary(refColumn.String == "", "id", refColumn.String)
		keys = append(keys, fk)
	}
	return keys, rows.Err()
}

// HasForeignKeyTo reports whether table has a foreign key referencing refTable
func (i *SchemaInspector) HasForeignKeyTo(ctx context.Context, table, refTable string) (bool, error) {
	keys, err := i.ForeignKeys(ctx, table)
	if err != nil {
		return false, err
	}
	return lo.ContainsBy(keys, func(fk ForeignKey) bool { return fk.RefTable == refTable }), nil
}

// Describe returns the columns and foreign keys of a table
func (i *SchemaInspector) Describe(ctx context.Context, table string) (*TableDescription, error) {
	columns, err := i.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	keys, err := i.ForeignKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	return &TableDescription{Name: table, Columns: columns, ForeignKeys: keys}, nil
}

// DescribeAll describes every table
func (i *SchemaInspector) DescribeAll(ctx context.Context) ([]TableDescription, error) {
	names, err := i.TableNames(ctx)
	if err != nil {
		return nil, err
	}
	tables := make([]TableDescription, 0, len(names))
	for _, name := range names {
		desc, err := i.Describe(ctx, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, *desc)
	}
	return tables, nil
}

// expectedSchema lists the columns the sales repositories read and write
var expectedSchema = map[string][]string{
	"customers":                    {"id", "name", "shipping_contact_id"},
	"customer_phone_numbers":       {"customer_id", "position", "phone_number"},
	"customer_addresses":           {"customer_id", "position", "address_line1", "address_line2", "city", "postal_code", "high_rise_extension_id"},
	"customer_meal_preferences":    {"customer_id", "meal", "dish"},
	"shipping_contacts":            {"id", "name", "phone_number", "customer_id"},
	"high_rise_address_extensions": {"id", "suite", "floor", "buzzer_code"},
	"invoices":                     {"id", "date", "place", "customer_id"},
	"invoice_products":             {"invoice_id", "product_id"},
	"products":                     {"id", "name", "number"},
}

// VerifySchema checks that every table and column used by the repositories exists
func VerifySchema(ctx context.Context, inspector *SchemaInspector) error {
	tables := lo.Keys(expectedSchema)
	slices.Sort(tables)
	for _, table := range tables {
		missing, err := inspector.HasColumns(ctx, table, expectedSchema[table]...)
		if err != nil {
			return fmt.Errorf("schema check failed: %w", err)
		}
		if len(missing) > 0 {
			return fmt.Errorf("schema check failed: table %s is missing columns %s", table, strings.Join(missing, ", "))
		}
	}
	return nil
}
