package sink

import (
	"database/sql"
	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"net"
	"strings"
)

const defaultMySQLPort = "3306"

// ParseMySQLConnection parses a connection string of the form
//
//	hostname=H;databasename=D;username=U;password=P
//
// Keys are case-insensitive. The host may carry a port.
func ParseMySQLConnection(conn string) (*mysql.Config, error) {
	fields := map[string]string{}
	for _, part := range strings.Split(conn, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, errors.Errorf("mysql connection: %q is not a key=value pair", part)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		switch key {
		case "hostname", "databasename", "username", "password":
		default:
			return nil, errors.Errorf("mysql connection: unknown key %q", key)
		}
		fields[key] = value
	}
	for _, key := range []string{"hostname", "databasename", "username"} {
		if fields[key] == "" {
			return nil, errors.Errorf("mysql connection: missing %s", key)
		}
	}

	addr := fields["hostname"]
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, defaultMySQLPort)
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = addr
	cfg.DBName = fields["databasename"]
	cfg.User = fields["username"]
	cfg.Passwd = fields["password"]
	// DDL commits implicitly and would otherwise leave the session in autocommit mode,
	// committing every later insert on its own.
	cfg.Params = map[string]string{"autocommit": "0"}
	return cfg, nil
}

// OpenMySQL returns a Sink connected to the MySQL server described by cfg.
// No connection is made until the sink is used.
func OpenMySQL(cfg *mysql.Config) (*SQL, error) {
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "mysql connector")
	}
	db := sql.OpenDB(connector)
	// With autocommit off, work done outside Begin stays pending on its session
	// until the next commit, so every statement must share one session.
	db.SetMaxOpenConns(1)
	return NewSQL(db, MySQL{}), nil
}
