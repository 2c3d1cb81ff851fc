package migrate

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/migrate-go/migrate/history"
	"github.com/satishbabariya/migrate-go/migrate/planner"
	"github.com/satishbabariya/migrate-go/migrate/schema"
	"github.com/satishbabariya/migrate-go/migrate/sqlgen"
)

var fixedNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func clock() time.Time { return fixedNow }

func createTable(name string) Migration {
	return Migration{
		Name: "create " + name,
		Up: func(db *schema.Database) error {
			db.AddTable(name).AddColumn("Id", schema.Int).NotNull()
			return nil
		},
		Down: func(db *schema.Database) error {
			db.DropTable(name)
			return nil
		},
	}
}

func registry(t *testing.T) *Registry {
	t.Helper()
	a, b := createTable("A"), createTable("B")
	a.Version, b.Version = 1, 2
	r := NewRegistry()
	require.NoError(t, r.Register(a, b))
	return r
}

func newEngine(t *testing.T, reg *Registry, opts ...Option) (*Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	t.Cleanup(func() { assert.NoError(t, mock.ExpectationsWereMet()) })
	return NewEngine(db, sqlgen.NewMSSQL(), reg, append([]Option{WithClock(clock)}, opts...)...), mock
}

// expectStep expects one committed migration running stmts
func expectStep(mock sqlmock.Sqlmock, stmts ...string) {
	mock.ExpectBegin()
	for _, stmt := range stmts {
		mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()
}

type recordingListener struct {
	mu         sync.Mutex
	events     []string
	cancelMigr func(MigrationEvent) bool
	cancelSQL  func(SQLEvent) bool
}

func (l *recordingListener) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, s)
}

func (l *recordingListener) BeforeMigration(_ context.Context, e MigrationEvent) bool {
	l.add("before " + e.Direction.String())
	return l.cancelMigr == nil || !l.cancelMigr(e)
}

func (l *recordingListener) AfterMigration(_ context.Context, e MigrationEvent) {
	if e.Err != nil {
		l.add("failed " + e.Direction.String())
		return
	}
	l.add("after " + e.Direction.String())
}

func (l *recordingListener) BeforeSQL(_ context.Context, e SQLEvent) bool {
	l.add("before sql")
	return l.cancelSQL == nil || !l.cancelSQL(e)
}

func (l *recordingListener) AfterSQL(_ context.Context, e SQLEvent) {
	l.add("after sql")
}

const (
	createA = "CREATE TABLE [A] (\n\t[Id] INT NOT NULL\n);"
	createB = "CREATE TABLE [B] (\n\t[Id] INT NOT NULL\n);"
)

func TestEngine_MigrateFromScratch(t *testing.T) {
	e, mock := newEngine(t, registry(t))

	mock.ExpectExec("CREATE TABLE [MigrationHistory] (\n\t[Date] DATETIME NOT NULL,\n\t[Version] BIGINT NOT NULL,\n\t[Direction] TINYINT NOT NULL\n);").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT [Date], [Version], [Direction] FROM [MigrationHistory] ORDER BY [Date]").
		WillReturnRows(sqlmock.NewRows([]string{"Date", "Version", "Direction"}))
	expectStep(mock, createA,
		"INSERT INTO [MigrationHistory] ([Date], [Version], [Direction]) VALUES('2024-01-02 03:04:05', 1, 0);")
	expectStep(mock, createB,
		"INSERT INTO [MigrationHistory] ([Date], [Version], [Direction]) VALUES('2024-01-02 03:04:05', 2, 0);")

	done, err := e.Migrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, planner.Plan{{Version: 1, Direction: history.Up}, {Version: 2, Direction: history.Up}}, done)
	assert.Equal(t, sql.LevelSerializable, e.isolation)
}

func TestEngine_MigrateToRevertsNewestFirst(t *testing.T) {
	repo := history.NewMemoryRepository(
		history.Item{Version: 1, Direction: history.Up, Date: fixedNow.Add(-time.Hour)},
		history.Item{Version: 2, Direction: history.Up, Date: fixedNow.Add(-time.Minute)},
	)
	e, mock := newEngine(t, registry(t), WithHistory(repo))
	expectStep(mock, "DROP TABLE [B];")
	expectStep(mock, "DROP TABLE [A];")

	done, err := e.MigrateTo(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "2 down, 1 down", done.String())

	items := repo.Items()
	require.Len(t, items, 4)
	assert.Equal(t, history.Item{Version: 2, Direction: history.Down, Date: fixedNow}, items[2])
	assert.Equal(t, history.Item{Version: 1, Direction: history.Down, Date: fixedNow}, items[3])
}

func TestEngine_NothingToDo(t *testing.T) {
	repo := history.NewMemoryRepository(
		history.Item{Version: 1, Direction: history.Up, Date: fixedNow},
		history.Item{Version: 2, Direction: history.Up, Date: fixedNow},
	)
	e, _ := newEngine(t, registry(t), WithHistory(repo))

	done, err := e.Migrate(context.Background())
	require.NoError(t, err)
	assert.True(t, done.Empty())
}

func TestEngine_FailureStopsPlanAndRollsBack(t *testing.T) {
	boom := errors.New("boom")
	reg := registry(t)
	c := createTable("C")
	c.Version = 3
	require.NoError(t, reg.Register(c))

	repo := history.NewMemoryRepository()
	l := &recordingListener{}
	e, mock := newEngine(t, reg, WithHistory(repo), WithListener(l))
	expectStep(mock, createA)
	mock.ExpectBegin()
	mock.ExpectExec(createB).WillReturnError(boom)
	mock.ExpectRollback()

	done, err := e.Migrate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "1 up", done.String())

	assert.Equal(t, []history.Item{{Version: 1, Direction: history.Up, Date: fixedNow}}, repo.Items())
	assert.Equal(t, []string{
		"before up", "before sql", "after sql", "after up",
		"before up", "before sql", "after sql", "failed up",
	}, l.events)
}

func TestEngine_UpErrorRollsBack(t *testing.T) {
	boom := errors.New("bad migration")
	reg := NewRegistry(Migration{
		Version: 1,
		Up: func(db *schema.Database) error {
			db.AddTable("A").AddColumn("Id", schema.Int)
			return boom
		},
		Down: noop,
	})
	repo := history.NewMemoryRepository()
	e, mock := newEngine(t, reg, WithHistory(repo))
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := e.Migrate(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, repo.Items())
}

func TestEngine_CommitFailure(t *testing.T) {
	boom := errors.New("connection reset")
	l := &recordingListener{}
	e, mock := newEngine(t, registry(t), WithHistory(history.NewMemoryRepository()), WithListener(l))
	mock.ExpectBegin()
	mock.ExpectExec(createA).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit().WillReturnError(boom)

	done, err := e.Migrate(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.True(t, done.Empty())
	assert.Equal(t, []string{"before up", "before sql", "after sql", "after up", "failed up"}, l.events)
}

func TestEngine_CancelMigration(t *testing.T) {
	repo := history.NewMemoryRepository()
	l := &recordingListener{cancelMigr: func(e MigrationEvent) bool { return e.Version == 2 }}
	e, mock := newEngine(t, registry(t), WithHistory(repo), WithListener(l))
	expectStep(mock, createA)
	mock.ExpectBegin()
	mock.ExpectRollback()

	done, err := e.Migrate(context.Background())
	assert.ErrorIs(t, err, ErrCanceled)
	assert.Equal(t, "1 up", done.String())
	assert.Len(t, repo.Items(), 1)
}

func TestEngine_CancelStatement(t *testing.T) {
	repo := history.NewMemoryRepository()
	l := &recordingListener{cancelSQL: func(e SQLEvent) bool { return strings.Contains(e.SQL, "[A]") }}
	e, mock := newEngine(t, registry(t), WithHistory(repo), WithListener(l))
	mock.ExpectBegin()
	mock.ExpectRollback()

	done, err := e.Migrate(context.Background())
	assert.ErrorIs(t, err, ErrCanceled)
	assert.True(t, done.Empty())
	assert.Empty(t, repo.Items())
}

func TestEngine_FlushDuringUp(t *testing.T) {
	var queuedAtFlush int
	reg := NewRegistry(Migration{
		Version: 1,
		Up: func(db *schema.Database) error {
			db.AddTable("A").AddColumn("Id", schema.Int).NotNull()
			if err := db.Flush(); err != nil {
				return err
			}
			queuedAtFlush = db.Queue().Len()
			db.Table("A").Insert(schema.NewRow("Id", 1))
			return nil
		},
		Down: noop,
	})
	e, mock := newEngine(t, reg, WithHistory(history.NewMemoryRepository()))
	expectStep(mock, createA, "INSERT INTO [A] ([Id]) VALUES(1);")

	_, err := e.Migrate(context.Background())
	require.NoError(t, err)
	assert.Zero(t, queuedAtFlush)
}

func TestEngine_WhatIf(t *testing.T) {
	repo := history.NewMemoryRepository()
	var out bytes.Buffer
	e, mock := newEngine(t, registry(t), WithHistory(repo), WithWhatIf(&out))
	expectStep(mock)
	expectStep(mock)

	done, err := e.Migrate(context.Background())
	require.NoError(t, err)
	assert.Len(t, done, 2)
	assert.Empty(t, repo.Items())
	assert.Equal(t, createA+"\n"+createB+"\n", out.String())
}

func TestEngine_ReadOnlyQueries(t *testing.T) {
	repo := history.NewMemoryRepository(
		history.Item{Version: 1, Direction: history.Up, Date: fixedNow},
		history.Item{Version: 7, Direction: history.Up, Date: fixedNow},
	)
	e, _ := newEngine(t, registry(t), WithHistory(repo))
	ctx := context.Background()

	plan, err := e.Plan(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "2 up", plan.String())

	status, err := e.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, []planner.VersionStatus{
		{Version: 1, State: planner.Applied},
		{Version: 2, State: planner.Pending},
		{Version: 7, State: planner.Orphaned},
	}, status)

	items, err := e.History(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestEngine_Options(t *testing.T) {
	e, mock := newEngine(t, registry(t),
		WithHistory(history.NewMemoryRepository()),
		WithIsolation(sql.LevelReadCommitted),
		WithTimeout(time.Minute),
	)
	assert.Equal(t, time.Minute, e.timeout)
	assert.Equal(t, sql.LevelReadCommitted, e.isolation)
	assert.Equal(t, "mssql", e.Dialect().Name())
	assert.Equal(t, 2, e.Registry().Len())

	expectStep(mock, createA)
	expectStep(mock, createB)
	_, err := e.Migrate(context.Background())
	require.NoError(t, err)
}

func TestListeners(t *testing.T) {
	a := &recordingListener{}
	b := &recordingListener{cancelSQL: func(SQLEvent) bool { return true }}
	c := &recordingListener{}
	ls := Listeners{a, b, c, NopListener{}}
	ctx := context.Background()

	assert.True(t, ls.BeforeMigration(ctx, MigrationEvent{}))
	assert.False(t, ls.BeforeSQL(ctx, SQLEvent{}))
	ls.AfterSQL(ctx, SQLEvent{})

	assert.Equal(t, []string{"before up", "before sql", "after sql"}, a.events)
	assert.Equal(t, []string{"before up", "before sql", "after sql"}, b.events)
	assert.Equal(t, []string{"before up", "after sql"}, c.events)
}
