package data

import (
	"context"
	"testing"

	"ambassador-tracker/ent/schema"

	"entgo.io/ent"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestData opens an isolated in-memory SQLite database with the schema applied.
func newTestData(t *testing.T) *Data {
	t.Helper()

	drv, err := openDriver("sqlite3", "file:"+uuid.NewString()+"?mode=memory&cache=shared&_fk=1")
	require.NoError(t, err)
	require.NoError(t, Migrate(context.Background(), drv))
	t.Cleanup(func() { _ = drv.Close() })

	return NewDataFromDriver(drv, nil)
}

func TestMigrate_Idempotent(t *testing.T) {
	d := newTestData(t)
	require.NoError(t, Migrate(context.Background(), d.db))
}

func TestNewData_DefaultsToSQLite(t *testing.T) {
	d, cleanup, err := NewData(nil, log.DefaultLogger)
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, "sqlite3", d.Driver().Dialect())
	assert.Nil(t, d.Redis())
}

func TestTables_MatchEntSchema(t *testing.T) {
	tests := []struct {
		name   string
		fields []ent.Field
		table  string
	}{
		{name: "click_events", fields: schema.ClickEvent{}.Fields(), table: clickEventsTable},
		{name: "invitations", fields: schema.Invitation{}.Fields(), table: invitationsTable},
		{name: "widgets", fields: schema.Widget{}.Fields(), table: widgetsTable},
	}

	byName := make(map[string]map[string]bool)
	for _, tbl := range Tables {
		cols := make(map[string]bool)
		for _, c := range tbl.Columns {
			cols[c.Name] = c.Nullable
		}
		byName[tbl.Name] = cols
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, ok := byName[tt.table]
			require.True(t, ok)
			assert.Len(t, cols, len(tt.fields))

			for _, f := range tt.fields {
				desc := f.Descriptor()
				nullable, ok := cols[desc.Name]
				if assert.True(t, ok, "column %s missing", desc.Name) {
					assert.Equal(t, desc.Nillable, nullable, "nullability of %s", desc.Name)
				}
			}
		})
	}
}

func TestUnitOfWork_RollsBackOnError(t *testing.T) {
	d := newTestData(t)
	uow := NewUnitOfWork(d, log.DefaultLogger)
	repo := NewClickRepo(d, log.DefaultLogger)
	ctx := context.Background()

	err := uow.Do(ctx, func(ctx context.Context) error {
		require.NotNil(t, TxFromContext(ctx))
		require.NoError(t, repo.Create(ctx, newClick("c1", "w1", nil)))
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	found, err := repo.FindByID(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestUnitOfWork_Commits(t *testing.T) {
	d := newTestData(t)
	uow := NewUnitOfWork(d, log.DefaultLogger)
	repo := NewClickRepo(d, log.DefaultLogger)
	ctx := context.Background()

	err := uow.Do(ctx, func(ctx context.Context) error {
		// Nested calls join the outer transaction.
		return uow.Do(ctx, func(ctx context.Context) error {
			return repo.Create(ctx, newClick("c1", "w1", nil))
		})
	})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, "c1")
	require.NoError(t, err)
	assert.NotNil(t, found)
}

func TestOpenDriver_UnknownDriver(t *testing.T) {
	_, err := entsql.Open("nope", "")
	assert.Error(t, err)
}
