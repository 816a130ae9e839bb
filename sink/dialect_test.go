package sink

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestDialectSQL(t *testing.T) {
	cols := []Column{
		{Name: KeyColumn, Type: "int", PrimaryKey: true},
		{Name: "g_word", Type: "text"},
	}
	assert.Equal(t, `CREATE TABLE "word" ("_id" int PRIMARY KEY, "g_word" text)`,
		createTableSQL(SQLite{}, "word", cols, true))
	assert.Equal(t, `CREATE TABLE "word" ("_id" int, "g_word" text)`,
		createTableSQL(SQLite{}, "word", cols, false))
	assert.Equal(t, "DROP TABLE IF EXISTS `word`", dropTableSQL(MySQL{}, "word"))
	assert.Equal(t, "ALTER TABLE `word` ADD `lex` VARCHAR(255)",
		addColumnSQL(MySQL{}, "word", Column{Name: "lex", Type: MySQL{}.StringType()}))
	assert.Equal(t, `INSERT INTO "mother" ("from_node", "to_node", "value") VALUES (?, ?, ?)`,
		insertSQL(SQLite{}, "mother", FromColumn, ToColumn, ValueColumn))

	assert.Equal(t,
		`INSERT INTO "word" ("_id", "g_word") VALUES (?, ?) ON CONFLICT ("_id") DO UPDATE SET "g_word" = excluded."g_word"`,
		SQLite{}.Upsert("word", "g_word"))
	assert.Equal(t,
		"INSERT INTO `word` (`_id`, `g_word`) VALUES (?, ?) ON DUPLICATE KEY UPDATE `g_word` = VALUES(`g_word`)",
		MySQL{}.Upsert("word", "g_word"))
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"a""b"`, SQLite{}.Quote(`a"b`))
	assert.Equal(t, "`a``b`", MySQL{}.Quote("a`b"))
}

func TestParseMySQLConnection(t *testing.T) {
	cfg, err := ParseMySQLConnection("hostname=db.local;databasename=bhsa;username=tf;password=p=w")
	require.NoError(t, err)
	assert.Equal(t, "tcp", cfg.Net)
	assert.Equal(t, "db.local:3306", cfg.Addr)
	assert.Equal(t, "bhsa", cfg.DBName)
	assert.Equal(t, "tf", cfg.User)
	assert.Equal(t, "p=w", cfg.Passwd)
	assert.Equal(t, map[string]string{"autocommit": "0"}, cfg.Params)
	assert.Contains(t, cfg.FormatDSN(), "autocommit=0")

	s, err := OpenMySQL(cfg)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 1, s.DB().Stats().MaxOpenConnections)

	cfg, err = ParseMySQLConnection("HostName=db:3307; databasename=bhsa; username=tf;")
	require.NoError(t, err)
	assert.Equal(t, "db:3307", cfg.Addr)
	assert.Empty(t, cfg.Passwd)

	for _, bad := range []string{
		"",
		"hostname=db;databasename=bhsa",
		"hostname=db;databasename=bhsa;username=tf;port=1",
		"hostname=db;databasename",
	} {
		_, err := ParseMySQLConnection(bad)
		assert.Error(t, err, bad)
	}
}
