package config

import (
	"strings"
	"testing"
)

func validLegacyDB() DBConfig {
	return DBConfig{
		LegacyHost:     "localhost",
		LegacyPort:     5432,
		LegacyUser:     "broker",
		LegacyPassword: "secret",
		LegacyName:     "motorsure",
		LegacySSLMode:  "disable",
	}
}

func TestEnsureDSNKeepsExplicitDSN(t *testing.T) {
	db := DBConfig{DSN: "postgres://broker@localhost:5432/motorsure"}
	if err := db.ensureDSN(); err != nil {
		t.Fatalf("ensureDSN: %v", err)
	}
	if db.DSN != "postgres://broker@localhost:5432/motorsure" {
		t.Fatalf("DSN mutated: %s", db.DSN)
	}
}

func TestEnsureDSNAssemblesLegacyParts(t *testing.T) {
	db := validLegacyDB()
	if err := db.ensureDSN(); err != nil {
		t.Fatalf("ensureDSN: %v", err)
	}
	for _, want := range []string{"postgres://", "broker:secret@localhost:5432", "/motorsure", "sslmode=disable"} {
		if !strings.Contains(db.DSN, want) {
			t.Fatalf("expected DSN to contain %q, got %s", want, db.DSN)
		}
	}
}

func TestEnsureDSNRequiresLegacyParts(t *testing.T) {
	db := DBConfig{LegacyHost: "localhost"}
	err := db.ensureDSN()
	if err == nil {
		t.Fatal("expected error when user/name missing")
	}
	if !strings.Contains(err.Error(), EnvDBUser) || !strings.Contains(err.Error(), EnvDBName) {
		t.Fatalf("error should name missing vars: %v", err)
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	app := AppConfig{Env: "DEV"}
	if !app.IsDev() || app.IsProd() {
		t.Fatal("DEV should be dev")
	}
	app.Env = "prod"
	if app.IsDev() || !app.IsProd() {
		t.Fatal("prod should be prod")
	}
}
