package connector

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/movie-cleaning/pkg/config"
	"github.com/David-Botos/movie-cleaning/pkg/converter"
	"github.com/David-Botos/movie-cleaning/pkg/model"
	"github.com/David-Botos/movie-cleaning/pkg/tableio"
)

type fakeRows struct {
	columns []string
	data    [][]interface{}
	pos     int
	err     error
}

func (r *fakeRows) Columns() ([]string, error) { return r.columns, nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...interface{}) error {
	for i, v := range r.data[r.pos-1] {
		*(dest[i].(*interface{})) = v
	}
	return nil
}

func (r *fakeRows) Err() error { return r.err }

func TestScanTable(t *testing.T) {
	rows := &fakeRows{
		columns: []string{"TITLE", "DURATION", "VOTES"},
		data: [][]interface{}{
			{[]byte("Heat"), "2h 50m", nil},
			{"Up", nil, 1200.0},
		},
	}

	table, err := scanTable(rows, "movies")
	require.NoError(t, err)
	assert.Equal(t, "movies", table.Name)
	assert.Equal(t, []string{"title", "duration", "votes"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Heat", table.Rows[0]["title"])
	assert.Nil(t, table.Rows[0]["votes"])
	assert.Equal(t, 1200.0, table.Rows[1]["votes"])
}

func TestScanTable_IterationError(t *testing.T) {
	rows := &fakeRows{columns: []string{"a"}, err: errors.New("network reset")}
	_, err := scanTable(rows, "movies")
	assert.ErrorContains(t, err, "network reset")
}

func TestBuildInsert(t *testing.T) {
	query, args, err := buildInsert("public", "movies_cleaned", []string{"title", "votes_numeric"}, [][]interface{}{
		{"Heat", 720000.0},
		{"Up", nil},
	})
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "public"."movies_cleaned" ("title", "votes_numeric") VALUES ($1, $2), ($3, $4)`,
		query)
	assert.Equal(t, []interface{}{"Heat", 720000.0, "Up", nil}, args)

	_, _, err = buildInsert("public", "t", []string{"a", "b"}, [][]interface{}{{1}})
	assert.Error(t, err)
}

func TestInsertBatchSize(t *testing.T) {
	assert.Equal(t, 1000, insertBatchSize(0, 10))
	assert.Equal(t, 500, insertBatchSize(500, 10))
	assert.Equal(t, 65535/11, insertBatchSize(10000, 11))
}

func TestCreateTableSQL(t *testing.T) {
	sql := createTableSQL("public", "movies_cleaned", []string{`"title" TEXT NULL`, `"votes_numeric" INTEGER NULL`})
	assert.Equal(t,
		"CREATE TABLE IF NOT EXISTS \"public\".\"movies_cleaned\" (\n\t\"title\" TEXT NULL,\n\t\"votes_numeric\" INTEGER NULL\n)",
		sql)
	assert.Equal(t, `"movies"`, qualifiedName("", "movies"))
}

type fakeFetcher struct {
	name, query string
}

func (f *fakeFetcher) FetchTable(_ context.Context, name, query string) (*model.Table, error) {
	f.name, f.query = name, query
	return &model.Table{Name: name}, nil
}

func TestSnowflakeSource(t *testing.T) {
	fetcher := &fakeFetcher{}
	table, err := NewSnowflakeSource(fetcher, "movies", "SELECT * FROM MOVIES").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "movies", table.Name)
	assert.Equal(t, "SELECT * FROM MOVIES", fetcher.query)

	_, err = NewSnowflakeSource(fetcher, "movies", "").Load(context.Background())
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

type fakeLoader struct {
	metadata *model.TableMetadata
	defs     []string
	values   [][]interface{}
	batch    int
}

func (f *fakeLoader) WriteTable(_ context.Context, metadata *model.TableMetadata, defs []string, values [][]interface{}, batchSize int) (int64, error) {
	f.metadata, f.defs, f.values, f.batch = metadata, defs, values, batchSize
	return int64(len(values)), nil
}

func TestPostgresSink_Write(t *testing.T) {
	loader := &fakeLoader{}
	sink := NewPostgresSink(loader, converter.NewTypeConverter(zap.NewNop()), "analytics", "movies_cleaned", 250, zap.NewNop())

	table := &model.Table{
		Name:    "movies",
		Columns: []string{"title", model.ColumnReleaseDate, model.ColumnVotesNumeric},
		Rows: []map[string]interface{}{
			{"title": "Heat", model.ColumnReleaseDate: time.Date(1995, 12, 15, 0, 0, 0, 0, time.UTC), model.ColumnVotesNumeric: 720000.0},
			{"title": "Up", model.ColumnReleaseDate: time.Date(2009, 5, 29, 0, 0, 0, 0, time.UTC), model.ColumnVotesNumeric: nil},
		},
	}

	require.NoError(t, sink.Write(context.Background(), table))
	assert.Equal(t, "analytics", loader.metadata.Schema)
	assert.Equal(t, "movies_cleaned", loader.metadata.Table)
	assert.Equal(t, 250, loader.batch)
	assert.Equal(t, []string{
		`"title" VARCHAR(50) NULL`,
		`"release_date" DATE NULL`,
		`"votes_numeric" INTEGER NULL`,
	}, loader.defs)
	require.Len(t, loader.values, 2)
	assert.Equal(t, int64(720000), loader.values[0][2])
	assert.Nil(t, loader.values[1][2])
}

func TestConnectorFactory_FileKinds(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.InputPath = filepath.Join(dir, "in.csv")
	cfg.OutputPath = filepath.Join(dir, "out.xlsx")

	f := NewConnectorFactory(cfg, zap.NewNop())
	defer f.Close()

	source, err := f.CreateSource(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &tableio.CSVLoader{}, source)

	sink, err := f.CreateSink(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &tableio.ExcelWriter{}, sink)
}

func TestConnectorFactory_MissingDatabaseConfig(t *testing.T) {
	cfg := config.Default()
	cfg.SourceKind = config.KindSnowflake
	cfg.SinkKind = config.KindPostgres

	f := NewConnectorFactory(cfg, zap.NewNop())
	_, err := f.CreateSource(context.Background())
	assert.ErrorIs(t, err, config.ErrMissingSetting)
	_, err = f.CreateSink(context.Background())
	assert.ErrorIs(t, err, config.ErrMissingSetting)
	assert.NoError(t, f.Close())
}
