package sqlgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/migrate-go/migrate/schema"
)

func generate(t *testing.T, d Dialect, build func(db *schema.Database)) []string {
	t.Helper()
	db := schema.NewDatabase(d)
	build(db)
	cmds, err := New(d).Generate(db)
	require.NoError(t, err)
	assert.Zero(t, db.Queue().Len(), "queue should be drained")
	return cmds
}

func TestCreateTable_FoldsPrimaryKey(t *testing.T) {
	cmds := generate(t, NewMSSQL(), func(db *schema.Database) {
		users := db.AddTable("Users")
		users.AddColumn("Id", schema.Int).PrimaryKey().AutoIncrement()
		users.AddColumn("Name", schema.NVarChar, 50).NotNull()
		users.AddColumn("Email", schema.NVarChar, 100).NotNull()
	})

	require.Len(t, cmds, 1)
	assert.Equal(t, "CREATE TABLE [Users] (\n"+
		"\t[Id] INT NOT NULL IDENTITY(1, 1),\n"+
		"\t[Name] NVARCHAR(50) NOT NULL,\n"+
		"\t[Email] NVARCHAR(100) NOT NULL,\n"+
		"\tCONSTRAINT [PK_Users] PRIMARY KEY ([Id])\n"+
		");", cmds[0])
}

func TestCreateTable_FoldOrder(t *testing.T) {
	cmds := generate(t, NewMSSQL(), func(db *schema.Database) {
		orders := db.AddTable("Orders")
		orders.AddColumn("Code", schema.VarChar, 10).Unique()
		orders.AddColumn("UserId", schema.Int).NotNull().References("Users", "Id").OnDelete(schema.Cascade)
		orders.AddColumn("Id", schema.BigInt).AutoIncrementFrom(1000, 10).PrimaryKey()
		orders.AddColumn("Active", schema.Boolean).NotNull().Default(true)
	})

	require.Len(t, cmds, 1)
	assert.Equal(t, "CREATE TABLE [Orders] (\n"+
		"\t[Code] VARCHAR(10) NULL,\n"+
		"\t[UserId] INT NOT NULL,\n"+
		"\t[Id] BIGINT NOT NULL IDENTITY(1000, 10),\n"+
		"\t[Active] BIT NOT NULL CONSTRAINT [DF_Orders_Active] DEFAULT 1,\n"+
		"\tCONSTRAINT [PK_Orders] PRIMARY KEY ([Id]),\n"+
		"\tCONSTRAINT [FK_Orders_Users] FOREIGN KEY ([UserId]) REFERENCES [Users] ([Id]) ON DELETE CASCADE,\n"+
		"\tCONSTRAINT [UQ_Orders_Code] UNIQUE ([Code])\n"+
		");", cmds[0])
}

func TestCreateTable_CompoundPrimaryKey(t *testing.T) {
	cmds := generate(t, NewMySQL(), func(db *schema.Database) {
		link := db.AddTable("UserGroups")
		link.AddColumn("UserId", schema.Int).PrimaryKey()
		link.AddColumn("GroupId", schema.Int).PrimaryKey()
	})

	require.Len(t, cmds, 1)
	assert.Equal(t, "CREATE TABLE `UserGroups` (\n"+
		"\t`UserId` INT NOT NULL,\n"+
		"\t`GroupId` INT NOT NULL,\n"+
		"\tCONSTRAINT `PK_UserGroups` PRIMARY KEY (`UserId`, `GroupId`)\n"+
		");", cmds[0])
}

func TestCreateTable_LeavesOtherTablesConstraints(t *testing.T) {
	cmds := generate(t, NewMSSQL(), func(db *schema.Database) {
		db.AddTable("A").AddColumn("Id", schema.Int)
		db.Table("B").AddUnique("Code")
		db.Table("A").AddIndex("Id")
	})

	require.Len(t, cmds, 3)
	assert.Equal(t, "ALTER TABLE [B] ADD CONSTRAINT [UQ_B_Code] UNIQUE ([Code]);", cmds[1])
	assert.Equal(t, "CREATE INDEX [IX_A_Id] ON [A] ([Id]);", cmds[2])
}

func TestAlterTable_AddAndRename(t *testing.T) {
	cmds := generate(t, NewMSSQL(), func(db *schema.Database) {
		users := db.AlterTable("Users")
		users.AddColumn("Age", schema.Int)
		users.AlterColumn("Name").Rename("FullName")
	})

	assert.Equal(t, []string{
		"ALTER TABLE [Users] ADD [Age] INT NULL;",
		"EXEC sp_rename '[Users].[Name]', 'FullName', 'COLUMN';",
	}, cmds)
}

func TestAlterTable_AddColumnWithDefault(t *testing.T) {
	cmds := generate(t, NewMySQL(), func(db *schema.Database) {
		db.AlterTable("Users").AddColumn("Active", schema.Boolean).NotNull().Default(false)
	})

	assert.Equal(t, []string{
		"ALTER TABLE `Users` ADD `Active` TINYINT(1) NOT NULL DEFAULT 0;",
	}, cmds)
}

func TestAlterTable_DropColumnWithDefault(t *testing.T) {
	cmds := generate(t, NewMySQL(), func(db *schema.Database) {
		db.AlterTable("Users").DropColumn("Active").DropDefault()
	})

	assert.Equal(t, []string{
		"ALTER TABLE `Users` ALTER COLUMN `Active` DROP DEFAULT;",
		"ALTER TABLE `Users` DROP COLUMN `Active`;",
	}, cmds)
}

func TestAlterTable_DropColumnWithDefault_MSSQL(t *testing.T) {
	cmds := generate(t, NewMSSQL(), func(db *schema.Database) {
		db.AlterTable("Users").DropColumn("Active").DropDefault()
	})

	require.Len(t, cmds, 2)
	assert.Equal(t, "DECLARE @ActiveDefaultName VARCHAR(MAX);\n"+
		"SELECT @ActiveDefaultName = o2.name FROM syscolumns c JOIN sysobjects o ON c.id = o.id JOIN sysobjects o2 ON c.cdefault = o2.id WHERE o.name = 'Users' AND c.name = 'Active';\n"+
		"EXEC('ALTER TABLE [Users] DROP CONSTRAINT ' + @ActiveDefaultName);", cmds[0])
	assert.Equal(t, "ALTER TABLE [Users] DROP COLUMN [Active];", cmds[1])
}

func TestAlterTable_AlterColumn(t *testing.T) {
	tests := []struct {
		name  string
		alter func(c *schema.Column)
		want  []string
	}{
		{
			name:  "type only",
			alter: func(c *schema.Column) { c.SetType(schema.VarChar, 20).NotNull() },
			want:  []string{"ALTER TABLE `T` MODIFY COLUMN `C` VARCHAR(20) NOT NULL;"},
		},
		{
			name:  "rename only",
			alter: func(c *schema.Column) { c.Rename("D") },
			want:  []string{"ALTER TABLE `T` RENAME COLUMN `C` TO `D`;"},
		},
		{
			name:  "type then rename",
			alter: func(c *schema.Column) { c.SetType(schema.Decimal, 12, 4).Rename("D") },
			want: []string{
				"ALTER TABLE `T` MODIFY COLUMN `C` DECIMAL(12, 4) NULL;",
				"ALTER TABLE `T` RENAME COLUMN `C` TO `D`;",
			},
		},
		{
			name:  "drop default then type",
			alter: func(c *schema.Column) { c.DropDefault().SetType(schema.Int) },
			want: []string{
				"ALTER TABLE `T` ALTER COLUMN `C` DROP DEFAULT;",
				"ALTER TABLE `T` MODIFY COLUMN `C` INT NULL;",
			},
		},
		{
			name:  "nothing requested",
			alter: func(c *schema.Column) {},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := generate(t, NewMySQL(), func(db *schema.Database) {
				tt.alter(db.AlterTable("T").AlterColumn("C"))
			})
			assert.Equal(t, tt.want, cmds)
		})
	}
}

func TestInsert(t *testing.T) {
	cmds := generate(t, NewMSSQL(), func(db *schema.Database) {
		db.Table("MyTable").Insert(schema.NewRow(
			"MyColumn1", time.Date(1970, 2, 24, 0, 0, 0, 0, time.UTC),
			"MyColumn2", "Test",
			"MyColumn3", 23,
		))
	})

	assert.Equal(t, []string{
		"INSERT INTO [MyTable] ([MyColumn1], [MyColumn2], [MyColumn3]) VALUES('1970-02-24', 'Test', 23);",
	}, cmds)
}

func TestUpdate(t *testing.T) {
	cmds := generate(t, NewPostgres(), func(db *schema.Database) {
		users := db.Table("users")
		users.Update(schema.NewRow("active", true, "name", "x"), schema.NewRow("id", 1, "tenant", 2))
		users.Update(schema.NewRow("active", false), nil)
	})

	assert.Equal(t, []string{
		`UPDATE "users" SET "active" = TRUE, "name" = 'x' WHERE "id" = 1 AND "tenant" = 2;`,
		`UPDATE "users" SET "active" = FALSE;`,
	}, cmds)
}

func TestUpdate_NullInWhere(t *testing.T) {
	var missing *string
	cmds := generate(t, NewMSSQL(), func(db *schema.Database) {
		db.Table("Users").Update(schema.NewRow("Name", nil), schema.NewRow("Email", nil, "Nick", missing, "Id", 3))
	})

	assert.Equal(t, []string{
		"UPDATE [Users] SET [Name] = NULL WHERE [Email] IS NULL AND [Nick] IS NULL AND [Id] = 3;",
	}, cmds)
}

func TestConstraintsOnExistingTables(t *testing.T) {
	cmds := generate(t, NewMSSQL(), func(db *schema.Database) {
		orders := db.Table("Orders")
		orders.AddForeignKey([]string{"UserId"}, "Users", []string{"Id"}).Nullify()
		orders.AddPrimaryKey("Id")
		orders.AddDefault("Status", "new")
		orders.DropForeignKey("FK_Old")
		orders.DropUnique("UQ_Old")
		orders.DropDefault("DF_Old")
		orders.DropPrimaryKey("PK_Old")
		orders.DropConstraint("CK_Old")
		orders.DropIndex("IX_Old")
	})

	assert.Equal(t, []string{
		"ALTER TABLE [Orders] ADD CONSTRAINT [FK_Orders_Users] FOREIGN KEY ([UserId]) REFERENCES [Users] ([Id]) ON DELETE SET NULL;",
		"ALTER TABLE [Orders] ADD CONSTRAINT [PK_Orders] PRIMARY KEY ([Id]);",
		"ALTER TABLE [Orders] ADD CONSTRAINT [DF_Orders_Status] DEFAULT('new') FOR [Status];",
		"ALTER TABLE [Orders] DROP CONSTRAINT [FK_Old];",
		"ALTER TABLE [Orders] DROP CONSTRAINT [UQ_Old];",
		"ALTER TABLE [Orders] DROP CONSTRAINT [DF_Old];",
		"ALTER TABLE [Orders] DROP CONSTRAINT [PK_Old];",
		"ALTER TABLE [Orders] DROP CONSTRAINT [CK_Old];",
		"DROP INDEX [IX_Old] ON [Orders];",
	}, cmds)
}

func TestUnsupportedPairsAreSkipped(t *testing.T) {
	cmds := generate(t, NewMSSQL(), func(db *schema.Database) {
		table := db.Table("T")
		q := db.Queue()
		q.Enqueue(&schema.Index{Base: schema.Base{Name: "IX", Modifier: schema.Alter}, Table: table})
		q.Enqueue(&schema.Insert{Base: schema.Base{Modifier: schema.Drop}, Table: table})
		q.Enqueue(&schema.Update{Base: schema.Base{Modifier: schema.Add}, Table: table})
		q.Enqueue(&schema.Constraint{Base: schema.Base{Name: "C", Modifier: schema.Add}, Table: table})
		q.Enqueue(&schema.SQLStatement{Base: schema.Base{Modifier: schema.Drop}, SQL: "x"})
		db.DropTable("T")
	})

	assert.Equal(t, []string{"DROP TABLE [T];"}, cmds)
}

func TestExecuteSQL_AppendsTerminator(t *testing.T) {
	cmds := generate(t, NewMSSQL(), func(db *schema.Database) {
		db.ExecuteSQL("UPDATE T SET A = 1")
		db.ExecuteSQL("DELETE FROM T;")
	})

	assert.Equal(t, []string{"UPDATE T SET A = 1;", "DELETE FROM T;"}, cmds)
}

func TestCommands_IsLazy(t *testing.T) {
	d := NewMSSQL()
	db := schema.NewDatabase(d)
	db.DropTable("A")
	db.DropTable("B")

	for cmd, err := range New(d).Commands(db) {
		require.NoError(t, err)
		assert.Equal(t, "DROP TABLE [A];", cmd)
		break
	}
	assert.Equal(t, 1, db.Queue().Len())
}

func TestCommands_UnknownType(t *testing.T) {
	d := NewMSSQL()
	db := schema.NewDatabase(d)
	db.AddTable("T").AddColumn("C", schema.Unspecified)

	_, err := New(d).Generate(db)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestMSSQL_IdentityInsert(t *testing.T) {
	cmds := generate(t, NewMSSQL(), func(db *schema.Database) {
		users := db.Table("Users")
		IdentityInsert(users, true)
		users.Insert(schema.NewRow("Id", 1))
		IdentityInsert(users, false)
	})

	assert.Equal(t, []string{
		"SET IDENTITY_INSERT [Users] ON;",
		"INSERT INTO [Users] ([Id]) VALUES(1);",
		"SET IDENTITY_INSERT [Users] OFF;",
	}, cmds)
}

func TestMSSQL_DropPrimaryKeyWithoutName(t *testing.T) {
	cmds := generate(t, NewMSSQL(), func(db *schema.Database) {
		db.Table("Users").DropPrimaryKey()
	})

	require.Len(t, cmds, 1)
	assert.Contains(t, cmds[0], "OBJECT_ID('Users')")
	assert.Contains(t, cmds[0], "EXEC('ALTER TABLE [Users] DROP CONSTRAINT ' + @PrimaryKeyName);")
}

func TestPostgres(t *testing.T) {
	cmds := generate(t, NewPostgres(), func(db *schema.Database) {
		users := db.AddTable("users")
		users.AddColumn("id", schema.BigInt).AutoIncrement().PrimaryKey()
		users.AddColumn("active", schema.Boolean).NotNull().Default(true)

		alter := db.AlterTable("users")
		alter.AlterColumn("name").SetType(schema.Text).NotNull()
		db.Table("users").DropPrimaryKey()
		db.Table("users").DropIndex("ix_name")
	})

	assert.Equal(t, []string{
		"CREATE TABLE \"users\" (\n" +
			"\t\"id\" BIGINT NOT NULL GENERATED BY DEFAULT AS IDENTITY (START WITH 1 INCREMENT BY 1),\n" +
			"\t\"active\" BOOLEAN NOT NULL DEFAULT TRUE,\n" +
			"\tCONSTRAINT \"PK_users\" PRIMARY KEY (\"id\")\n" +
			");",
		`ALTER TABLE "users" ALTER COLUMN "name" TYPE TEXT;`,
		`ALTER TABLE "users" ALTER COLUMN "name" SET NOT NULL;`,
		`ALTER TABLE "users" DROP CONSTRAINT "users_pkey";`,
		`DROP INDEX "ix_name";`,
	}, cmds)
}

func TestSQLite(t *testing.T) {
	cmds := generate(t, NewSQLite(), func(db *schema.Database) {
		notes := db.AddTable("notes")
		notes.AddColumn("id", schema.Int).AutoIncrement().PrimaryKey()
		notes.AddColumn("body", schema.NVarCharMax).Default("")
		db.AlterTable("notes").AlterColumn("body").Rename("text")
	})

	assert.Equal(t, []string{
		"CREATE TABLE \"notes\" (\n" +
			"\t\"id\" INTEGER NOT NULL,\n" +
			"\t\"body\" TEXT NULL CONSTRAINT \"DF_notes_body\" DEFAULT '',\n" +
			"\tCONSTRAINT \"PK_notes\" PRIMARY KEY (\"id\")\n" +
			");",
		`ALTER TABLE "notes" RENAME COLUMN "body" TO "text";`,
	}, cmds)
}

func TestSQLite_ConstraintThroughTableHandle(t *testing.T) {
	cmds := generate(t, NewSQLite(), func(db *schema.Database) {
		db.AddTable("t").AddColumn("a", schema.Int).NotNull()
		db.Table("t").AddUnique("a")
	})

	assert.Equal(t, []string{
		"CREATE TABLE \"t\" (\n" +
			"\t\"a\" INTEGER NOT NULL,\n" +
			"\tCONSTRAINT \"UQ_t_a\" UNIQUE (\"a\")\n" +
			");",
	}, cmds)
}

func TestSQLite_Unsupported(t *testing.T) {
	d := NewSQLite()
	db := schema.NewDatabase(d)
	db.AlterTable("notes").AlterColumn("body").SetType(schema.Int)

	_, err := New(d).Generate(db)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestForProvider(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"mssql", "mssql"},
		{"SqlServer", "mssql"},
		{"mysql", "mysql"},
		{"mariadb", "mysql"},
		{"postgresql", "postgres"},
		{" pg ", "postgres"},
		{"sqlite3", "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			d, err := ForProvider(tt.provider)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name())
		})
	}

	_, err := ForProvider("oracle")
	assert.ErrorIs(t, err, ErrUnknownDialect)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "[a]]b]", NewMSSQL().Quote("a]b"))
	assert.Equal(t, "`a``b`", NewMySQL().Quote("a`b"))
	assert.Equal(t, `"a""b"`, NewPostgres().Quote(`a"b`))
	assert.Equal(t, `"a""b"`, NewSQLite().Quote(`a"b`))
}

func TestDataType_Decimal(t *testing.T) {
	db := schema.NewDatabase(nil)
	c := db.AddTable("T").AddColumn("Price", schema.Decimal, 10, 2)

	for _, d := range []Dialect{NewMSSQL(), NewMySQL()} {
		got, err := d.DataType(c)
		require.NoError(t, err)
		assert.Equal(t, "DECIMAL(10, 2)", got, d.Name())
	}
	got, err := NewPostgres().DataType(c)
	require.NoError(t, err)
	assert.Equal(t, "NUMERIC(10, 2)", got)
}

func TestDataType_DateTimePrecision(t *testing.T) {
	db := schema.NewDatabase(nil)
	c := db.AddTable("T").AddColumn("At", schema.DateTime, 3)

	tests := []struct {
		dialect Dialect
		want    string
	}{
		{NewMSSQL(), "DATETIME"},
		{NewMySQL(), "DATETIME(3)"},
		{NewPostgres(), "TIMESTAMP(3)"},
		{NewSQLite(), "DATETIME"},
	}
	for _, tt := range tests {
		got, err := tt.dialect.DataType(c)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.dialect.Name())
	}
}

func TestMySQL_NameLength(t *testing.T) {
	d := NewMySQL()
	name := d.IndexName("a_table_with_quite_a_long_name", []string{"first_long_column", "second_long_column"})
	assert.LessOrEqual(t, len(name), 64)
}
