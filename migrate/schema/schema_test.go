package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabase_AddTable(t *testing.T) {
	db := NewDatabase(nil)
	table := db.AddTable("Users")

	require.Equal(t, 1, db.Queue().Len())
	head, ok := db.Queue().Peek()
	require.True(t, ok)
	assert.Same(t, table, head)
	assert.Equal(t, Add, table.Modifier)
	assert.Equal(t, "Users", NameOf(head))
}

func TestDatabase_AlterAndDropTable(t *testing.T) {
	db := NewDatabase(nil)
	db.AlterTable("A")
	db.DropTable("B")
	db.ExecuteSQL("SELECT 1")

	elements := db.Queue().Elements()
	require.Len(t, elements, 3)
	assert.Equal(t, Alter, ModifierOf(elements[0]))
	assert.Equal(t, Drop, ModifierOf(elements[1]))
	assert.Equal(t, Add, ModifierOf(elements[2]))
	assert.Equal(t, "sql", Kind(elements[2]))
}

func TestDatabase_TableReturnsPendingCreate(t *testing.T) {
	db := NewDatabase(nil)
	created := db.AddTable("Users")
	assert.Same(t, created, db.Table("Users"))

	other := db.Table("Orders")
	assert.Equal(t, Alter, other.Modifier)
	assert.Equal(t, 1, db.Queue().Len(), "a handle queues nothing")

	db.AlterTable("Users")
	assert.NotSame(t, created, db.Table("Users"), "a later ALTER hides the pending CREATE")

	db.Queue().Clear()
	assert.Equal(t, Alter, db.Table("Users").Modifier)
}

func TestDatabase_InsertAfterAlterTable(t *testing.T) {
	db := NewDatabase(nil)
	table := db.AlterTable("Users")
	table.AddColumn("Age", Int)
	assert.Equal(t, 1, db.Queue().Len())

	table.Insert(NewRow("Age", 3))
	elements := db.Queue().Elements()
	require.Len(t, elements, 2)
	insert, ok := elements[1].(*Insert)
	require.True(t, ok)
	assert.Same(t, table, insert.Table)
}

func TestColumn_LastCallWins(t *testing.T) {
	db := NewDatabase(nil)
	table := db.AddTable("T")

	c := table.AddColumn("Price", Decimal, 10, 2)
	assert.Equal(t, 10, c.Precision)
	assert.Equal(t, 2, c.Scale)
	assert.Zero(t, c.Length)

	c.SetType(NVarChar, 50)
	assert.Equal(t, NVarChar, c.DataType)
	assert.Equal(t, 50, c.Length)
	assert.Zero(t, c.Precision)
	assert.Zero(t, c.Scale)

	c.SetType(Int)
	assert.Zero(t, c.Length)

	assert.True(t, c.Nullable)
	c.NotNull()
	assert.False(t, c.Nullable)
	c.Null()
	assert.True(t, c.Nullable)

	c.AutoIncrement()
	require.NotNil(t, c.Identity)
	assert.Equal(t, Identity{Seed: 1, Step: 1}, *c.Identity)
	c.AutoIncrementFrom(100, 5)
	assert.Equal(t, Identity{Seed: 100, Step: 5}, *c.Identity)
}

func TestColumn_ConstraintsEnqueueOneElementEach(t *testing.T) {
	tests := []struct {
		name  string
		apply func(c *Column)
		check func(t *testing.T, e Element)
	}{
		{
			name:  "primary key",
			apply: func(c *Column) { c.PrimaryKey() },
			check: func(t *testing.T, e Element) {
				pk, ok := e.(*PrimaryKeyConstraint)
				require.True(t, ok)
				assert.Equal(t, "PK_Users", pk.Name)
				assert.Equal(t, []string{"Id"}, pk.Columns)
			},
		},
		{
			name:  "named primary key",
			apply: func(c *Column) { c.PrimaryKey("PK_Custom") },
			check: func(t *testing.T, e Element) {
				assert.Equal(t, "PK_Custom", NameOf(e))
			},
		},
		{
			name:  "unique",
			apply: func(c *Column) { c.Unique() },
			check: func(t *testing.T, e Element) {
				uq, ok := e.(*UniqueConstraint)
				require.True(t, ok)
				assert.Equal(t, "UQ_Users_Id", uq.Name)
			},
		},
		{
			name:  "index",
			apply: func(c *Column) { c.Index() },
			check: func(t *testing.T, e Element) {
				ix, ok := e.(*Index)
				require.True(t, ok)
				assert.Equal(t, "IX_Users_Id", ix.Name)
				assert.Equal(t, Add, ix.Modifier)
			},
		},
		{
			name:  "references",
			apply: func(c *Column) { c.References("Groups", "Id").OnDelete(Cascade) },
			check: func(t *testing.T, e Element) {
				fk, ok := e.(*ForeignKeyConstraint)
				require.True(t, ok)
				assert.Equal(t, "FK_Users_Groups", fk.Name)
				assert.Equal(t, "Groups", fk.RelatedTable)
				assert.Equal(t, []string{"Id"}, fk.RelatedColumns)
				assert.Equal(t, Cascade, fk.OnDelete)
			},
		},
		{
			name:  "default",
			apply: func(c *Column) { c.Default(0).Default(1) },
			check: func(t *testing.T, e Element) {
				df, ok := e.(*DefaultConstraint)
				require.True(t, ok)
				assert.Equal(t, "DF_Users_Id", df.Name)
				assert.Equal(t, "Id", df.Column)
				assert.Equal(t, 1, df.Value)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := NewDatabase(nil)
			table := db.AddTable("Users")
			c := table.AddColumn("Id", Int)
			tt.apply(c)

			elements := db.Queue().Elements()
			require.Len(t, elements, 2)
			assert.Same(t, table, elements[0])
			tt.check(t, elements[1])
		})
	}
}

func TestColumn_PrimaryKeyForcesNotNull(t *testing.T) {
	db := NewDatabase(nil)
	c := db.AddTable("T").AddColumn("Id", Int).PrimaryKey()
	assert.False(t, c.Nullable)
}

func TestColumn_DropDefault(t *testing.T) {
	db := NewDatabase(nil)
	db.AlterTable("T").AlterColumn("C").DropDefault()

	elements := db.Queue().Elements()
	require.Len(t, elements, 2)
	df, ok := elements[1].(*DefaultConstraint)
	require.True(t, ok)
	assert.Equal(t, Drop, df.Modifier)
	assert.Equal(t, "C", df.Column)
	assert.Empty(t, df.Name)
}

func TestTable_DropOperations(t *testing.T) {
	db := NewDatabase(nil)
	table := db.Table("T")
	table.DropConstraint("C1")
	table.DropPrimaryKey()
	table.DropForeignKey("FK")
	table.DropUnique("UQ")
	table.DropDefault("DF")
	table.DropIndex("IX")

	kinds := []string{}
	for _, e := range db.Queue().Elements() {
		assert.Equal(t, Drop, ModifierOf(e))
		kinds = append(kinds, Kind(e))
	}
	assert.Equal(t, []string{"constraint", "primary key", "foreign key", "unique constraint", "default constraint", "index"}, kinds)
}

func TestTable_InsertStruct(t *testing.T) {
	type user struct {
		ID     int    `db:"Id"`
		Name   string
		Secret string `db:"-"`
		hidden bool
	}

	db := NewDatabase(nil)
	require.NoError(t, db.Table("Users").InsertStruct(user{ID: 1, Name: "ada", hidden: true}))

	e, ok := db.Queue().Peek()
	require.True(t, ok)
	insert := e.(*Insert)
	assert.Equal(t, Row{{"Id", 1}, {"Name", "ada"}}, insert.Row)

	assert.Error(t, db.Table("Users").InsertStruct(42))
}

func TestTable_Update(t *testing.T) {
	db := NewDatabase(nil)
	db.Table("Users").Update(NewRow("Name", "x"), NewRow("Id", 1))

	e, _ := db.Queue().Peek()
	update, ok := e.(*Update)
	require.True(t, ok)
	assert.Equal(t, Alter, update.Modifier)
	assert.Equal(t, []string{"Name"}, update.Set.Columns())
	assert.Equal(t, []string{"Id"}, update.Where.Columns())
}

func TestDatabase_Flush(t *testing.T) {
	db := NewDatabase(nil)
	assert.NoError(t, db.Flush())

	calls := 0
	db.OnFlush(func(d *Database) error {
		calls++
		assert.Same(t, db, d)
		d.Queue().Clear()
		return nil
	})
	db.AddTable("T")
	require.NoError(t, db.Flush())
	assert.Equal(t, 1, calls)
	assert.Zero(t, db.Queue().Len())
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		value any
		want  DataType
		ok    bool
	}{
		{"s", NVarChar, true},
		{true, Boolean, true},
		{int8(1), TinyInt, true},
		{int16(1), SmallInt, true},
		{1, Int, true},
		{int64(1), BigInt, true},
		{float32(1), Single, true},
		{1.5, Double, true},
		{[]byte("x"), VarBinary, true},
		{[16]byte{}, Guid, true},
		{struct{}{}, Unspecified, false},
		{nil, Unspecified, false},
	}

	for _, tt := range tests {
		got, ok := TypeOf(tt.value)
		assert.Equal(t, tt.want, got, "%T", tt.value)
		assert.Equal(t, tt.ok, ok, "%T", tt.value)
	}
}
