package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webstack/backend/internal/domain/shared"
	"github.com/webstack/backend/internal/infrastructure/config"
)

func TestSchemaInspector_SQLite(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	inspector, err := NewSchemaInspector(db)
	require.NoError(t, err)

	t.Run("lists generated tables", func(t *testing.T) {
		names, err := inspector.TableNames(ctx)
		require.NoError(t, err)
		assert.Subset(t, names, []string{
			"customers", "customer_phone_numbers", "customer_addresses", "customer_meal_preferences",
			"shipping_contacts", "high_rise_address_extensions", "invoices", "invoice_products", "products",
		})
	})

	t.Run("reports missing columns", func(t *testing.T) {
		missing, err := inspector.HasColumns(ctx, "customers", "id", "name", "email")
		require.NoError(t, err)
		assert.Equal(t, []string{"email"}, missing)
	})

	t.Run("describes column nullability", func(t *testing.T) {
		columns, err := inspector.Columns(ctx, "invoices")
		require.NoError(t, err)
		byName := map[string]Column{}
		for _, c := range columns {
			byName[c.Name] = c
		}
		assert.False(t, byName["id"].Nullable)
		assert.False(t, byName["date"].Nullable)
		assert.True(t, byName["customer_id"].Nullable)
	})

	foreignKeys := []struct {
		table, ref string
		want       bool
	}{
		{"customers", "shipping_contacts", true},
		{"customer_addresses", "customers", true},
		{"customer_addresses", "high_rise_address_extensions", true},
		{"customer_phone_numbers", "customers", true},
		{"customer_meal_preferences", "customers", true},
		{"invoices", "customers", true},
		{"invoice_products", "invoices", true},
		{"invoice_products", "products", true},
		{"shipping_contacts", "customers", false},
	}
	for _, tt := range foreignKeys {
		t.Run("foreign key "+tt.table+" -> "+tt.ref, func(t *testing.T) {
			ok, err := inspector.HasForeignKeyTo(ctx, tt.table, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}

	t.Run("unknown table is not found", func(t *testing.T) {
		_, err := inspector.Describe(ctx, "nope'); DROP TABLE customers; --")
		assert.ErrorIs(t, err, shared.ErrNotFound)

		exists, err := inspector.TableExists(ctx, "customers")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("describes every table", func(t *testing.T) {
		tables, err := inspector.DescribeAll(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(tables), 9)
	})

	t.Run("verifies the migrated schema", func(t *testing.T) {
		assert.NoError(t, VerifySchema(ctx, inspector))
	})
}

func TestVerifySchema_EmptyDatabase(t *testing.T) {
	db, err := NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"}, nil)
	require.NoError(t, err)
	defer db.Close()

	inspector, err := NewSchemaInspector(db)
	require.NoError(t, err)

	err = VerifySchema(context.Background(), inspector)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema check failed")
}

func TestSchemaInspector_Postgres(t *testing.T) {
	ctx := context.Background()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	inspector := newSchemaInspector(mockDB, config.DriverPostgres)

	expectTables := func() {
		mock.ExpectQuery(`SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema\(\) AND table_type = \$1 ORDER BY table_name`).
			WithArgs("BASE TABLE").
			WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("customers").AddRow("invoices"))
	}

	t.Run("lists tables", func(t *testing.T) {
		expectTables()

		names, err := inspector.TableNames(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"customers", "invoices"}, names)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reads columns", func(t *testing.T) {
		expectTables()
		mock.ExpectQuery(`SELECT column_name, data_type, is_nullable = 'YES' FROM information_schema.columns WHERE table_schema = current_schema\(\) AND table_name = \$1 ORDER BY ordinal_position`).
			WithArgs("invoices").
			WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "nullable"}).
				AddRow("id", "bigint", false).
				AddRow("customer_id", "bigint", true))

		columns, err := inspector.Columns(ctx, "invoices")
		require.NoError(t, err)
		assert.Equal(t, []Column{
			{Name: "id", Type: "bigint", Nullable: false},
			{Name: "customer_id", Type: "bigint", Nullable: true},
		}, columns)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reads foreign keys", func(t *testing.T) {
		expectTables()
		mock.ExpectQuery(`SELECT kcu.column_name, ccu.table_name, ccu.column_name FROM information_schema.table_constraints tc JOIN .* WHERE tc.constraint_type = \$1 AND tc.table_schema = current_schema\(\) AND tc.table_name = \$2`).
			WithArgs("FOREIGN KEY", "invoices").
			WillReturnRows(sqlmock.NewRows([]string{"column_name", "table_name", "column_name"}).
				AddRow("customer_id", "customers", "id"))

		ok, err := inspector.HasForeignKeyTo(ctx, "invoices", "customers")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown table skips the metadata query", func(t *testing.T) {
		expectTables()

		_, err := inspector.Columns(ctx, "ghosts")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
