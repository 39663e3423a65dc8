package adaptertest

import (
	"context"
	"testing"
)

// Execer runs DDL against a test database.
type Execer interface {
	Exec(ctx context.Context, query string, args ...any) error
}

// Fixture is the DDL that builds the teams / users / page_visits tables on
// one backend. Drop statements may fail when the tables don't exist yet.
type Fixture struct {
	Drop   []string
	Create []string
}

// Setup drops and recreates the fixture tables.
func Setup(t *testing.T, db Execer, f Fixture) {
	t.Helper()
	ctx := context.Background()
	for _, q := range f.Drop {
		if err := db.Exec(ctx, q); err != nil {
			t.Logf("ignoring drop failure: %v", err)
		}
	}
	for _, q := range f.Create {
		if err := db.Exec(ctx, q); err != nil {
			t.Fatalf("failed to create fixture: %v\n%s", err, q)
		}
	}
}

var SQLiteFixture = Fixture{
	Drop: []string{
		`DROP TABLE IF EXISTS page_visits`,
		`DROP TABLE IF EXISTS users`,
		`DROP TABLE IF EXISTS teams`,
	},
	Create: []string{
		`CREATE TABLE teams (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid CHAR(36) NOT NULL UNIQUE,
			name VARCHAR(100),
			description TEXT,
			credits INTEGER,
			created_at DATETIME,
			activated_at DATE
		)`,
		`CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			team_id INTEGER NOT NULL REFERENCES teams (id) ON UPDATE CASCADE ON DELETE CASCADE,
			email VARCHAR(100),
			password VARCHAR(60)
		)`,
		`CREATE TABLE page_visits (
			request_path VARCHAR(100),
			user_agent VARCHAR(200),
			created_at DATETIME
		)`,
	},
}

var MSSQLFixture = Fixture{
	Drop: []string{
		`DROP TABLE IF EXISTS page_visits`,
		`DROP TABLE IF EXISTS users`,
		`DROP TABLE IF EXISTS teams`,
	},
	Create: []string{
		`CREATE TABLE teams (
			id INT IDENTITY(1,1) PRIMARY KEY,
			uuid CHAR(36) NOT NULL UNIQUE,
			name VARCHAR(100),
			description VARCHAR(MAX),
			credits INT,
			created_at DATETIME2,
			activated_at DATE
		)`,
		`CREATE TABLE users (
			id INT IDENTITY(1,1) PRIMARY KEY,
			team_id INT NOT NULL,
			email VARCHAR(100),
			password VARCHAR(60),
			CONSTRAINT users_team_id_foreign FOREIGN KEY (team_id) REFERENCES teams (id) ON UPDATE CASCADE ON DELETE CASCADE
		)`,
		`CREATE TABLE page_visits (
			request_path VARCHAR(100),
			user_agent VARCHAR(200),
			created_at DATETIME2
		)`,
	},
}

var MySQLFixture = Fixture{
	Drop: []string{
		`DROP TABLE IF EXISTS page_visits`,
		`DROP TABLE IF EXISTS users`,
		`DROP TABLE IF EXISTS teams`,
	},
	Create: []string{
		`CREATE TABLE teams (
			id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			uuid CHAR(36) NOT NULL UNIQUE,
			name VARCHAR(100),
			description TEXT,
			credits INT,
			created_at DATETIME,
			activated_at DATE
		)`,
		`CREATE TABLE users (
			id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			team_id INT UNSIGNED NOT NULL,
			email VARCHAR(100),
			password VARCHAR(60),
			CONSTRAINT users_team_id_foreign FOREIGN KEY (team_id) REFERENCES teams (id) ON UPDATE CASCADE ON DELETE CASCADE
		)`,
		`CREATE TABLE page_visits (
			request_path VARCHAR(100),
			user_agent VARCHAR(200),
			created_at DATETIME
		)`,
	},
}

var PostgresFixture = Fixture{
	Drop: []string{
		`DROP TABLE IF EXISTS page_visits`,
		`DROP TABLE IF EXISTS users`,
		`DROP TABLE IF EXISTS teams`,
	},
	Create: []string{
		`CREATE TABLE teams (
			id SERIAL PRIMARY KEY,
			uuid CHAR(36) NOT NULL UNIQUE,
			name VARCHAR(100),
			description TEXT,
			credits INTEGER,
			created_at TIMESTAMP,
			activated_at DATE
		)`,
		`CREATE TABLE users (
			id SERIAL PRIMARY KEY,
			team_id INTEGER NOT NULL,
			email VARCHAR(100),
			password VARCHAR(60),
			CONSTRAINT users_team_id_foreign FOREIGN KEY (team_id) REFERENCES teams (id) ON UPDATE CASCADE ON DELETE CASCADE
		)`,
		`CREATE TABLE page_visits (
			request_path VARCHAR(100),
			user_agent VARCHAR(200),
			created_at TIMESTAMP
		)`,
	},
}

// CockroachFixture uses the PostgreSQL DDL; SERIAL maps to unique_rowid().
var CockroachFixture = PostgresFixture

var OracleFixture = Fixture{
	Drop: []string{
		`DROP TABLE "page_visits"`,
		`DROP TABLE "users"`,
		`DROP TABLE "teams"`,
	},
	Create: []string{
		`CREATE TABLE "teams" (
			"id" NUMBER(10) GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
			"uuid" CHAR(36) NOT NULL UNIQUE,
			"name" VARCHAR2(100),
			"description" CLOB,
			"credits" NUMBER(10),
			"created_at" TIMESTAMP,
			"activated_at" DATE
		)`,
		`CREATE TABLE "users" (
			"id" NUMBER(10) GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
			"team_id" NUMBER(10) NOT NULL,
			"email" VARCHAR2(100),
			"password" VARCHAR2(60),
			CONSTRAINT "users_team_id_foreign" FOREIGN KEY ("team_id") REFERENCES "teams" ("id") ON DELETE CASCADE
		)`,
		`CREATE TABLE "page_visits" (
			"request_path" VARCHAR2(100),
			"user_agent" VARCHAR2(200),
			"created_at" TIMESTAMP
		)`,
	},
}
