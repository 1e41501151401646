package session

import (
	"strings"
	"testing"
)

func TestSchemaPerDialect(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		want    []string
	}{
		{
			name:    "postgres",
			dialect: DialectPostgreSQL,
			want:    []string{"TIMESTAMPTZ", "CREATE INDEX"},
		},
		{
			name:    "mysql",
			dialect: DialectMySQL,
			want:    []string{"VARCHAR(64)", "INDEX idx_addrnav_sessions_expires"},
		},
		{
			name:    "sqlite",
			dialect: DialectSQLite,
			want:    []string{"TEXT PRIMARY KEY", "INTEGER NOT NULL DEFAULT 0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Schema(tt.dialect, "addrnav_sessions")
			if !strings.Contains(got, "CREATE TABLE IF NOT EXISTS addrnav_sessions") {
				t.Errorf("missing table statement in:\n%s", got)
			}
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("missing %q in:\n%s", want, got)
				}
			}
		})
	}
}

func TestPlaceholder(t *testing.T) {
	pg := &SQLStore{dialect: DialectPostgreSQL}
	if got := pg.placeholder(2); got != "$2" {
		t.Errorf("postgres placeholder = %q, want $2", got)
	}
	my := &SQLStore{dialect: DialectMySQL}
	if got := my.placeholder(2); got != "?" {
		t.Errorf("mysql placeholder = %q, want ?", got)
	}
}
