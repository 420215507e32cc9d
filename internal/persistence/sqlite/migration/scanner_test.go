package migration

import (
	"errors"
	"testing"
	"testing/fstest"
)

func TestFileScanner_ScanMigrations(t *testing.T) {
	tests := []struct {
		name          string
		files         map[string]string
		expectedOrder []string
		expectedErr   error
	}{
		{
			name: "orders files by numeric version",
			files: map[string]string{
				"migrations/010_add_attendance.sql": "CREATE TABLE attendance (id TEXT PRIMARY KEY);",
				"migrations/002_add_sessions.sql":   "CREATE TABLE sessions (id TEXT PRIMARY KEY);",
				"migrations/001_initial_schema.sql": "CREATE TABLE groups (id TEXT PRIMARY KEY);",
			},
			expectedOrder: []string{"001", "002", "010"},
		},
		{
			name: "ignores non sql files",
			files: map[string]string{
				"migrations/001_initial_schema.sql": "CREATE TABLE groups (id TEXT PRIMARY KEY);",
				"migrations/README.md":              "# notes",
			},
			expectedOrder: []string{"001"},
		},
		{
			name:          "empty directory",
			files:         map[string]string{"migrations/.keep": ""},
			expectedOrder: nil,
		},
		{
			name: "rejects bad file names",
			files: map[string]string{
				"migrations/initial.sql": "CREATE TABLE groups (id TEXT PRIMARY KEY);",
			},
			expectedErr: ErrInvalidMigrationFile,
		},
		{
			name: "rejects duplicate versions",
			files: map[string]string{
				"migrations/001_groups.sql":   "CREATE TABLE groups (id TEXT PRIMARY KEY);",
				"migrations/001_sessions.sql": "CREATE TABLE sessions (id TEXT PRIMARY KEY);",
			},
			expectedErr: ErrDuplicateVersion,
		},
		{
			name: "rejects comment only files",
			files: map[string]string{
				"migrations/001_empty.sql": "-- nothing here\n",
			},
			expectedErr: ErrInvalidMigrationFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := fstest.MapFS{}
			for name, content := range tt.files {
				files[name] = &fstest.MapFile{Data: []byte(content)}
			}

			migrations, err := NewFileScanner().ScanMigrations(files, "migrations")
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected %v, got %v", tt.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(migrations) != len(tt.expectedOrder) {
				t.Fatalf("expected %d migrations, got %d", len(tt.expectedOrder), len(migrations))
			}
			for i, version := range tt.expectedOrder {
				if migrations[i].Version != version {
					t.Fatalf("position %d: expected %s, got %s", i, version, migrations[i].Version)
				}
				if migrations[i].Checksum == "" {
					t.Fatalf("expected checksum for %s", version)
				}
			}
		})
	}
}

func TestFileScanner_Description(t *testing.T) {
	files := fstest.MapFS{
		"m/001_initial_schema.sql": {Data: []byte("-- Migration: 001\n-- Description: Groups and rules\nCREATE TABLE groups (id TEXT);")},
		"m/002_add_index.sql":      {Data: []byte("CREATE INDEX idx ON groups(id);")},
	}

	migrations, err := NewFileScanner().ScanMigrations(files, "m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if migrations[0].Description != "Groups and rules" {
		t.Fatalf("expected description from header, got %q", migrations[0].Description)
	}
	if migrations[1].Description != "add index" {
		t.Fatalf("expected description from file name, got %q", migrations[1].Description)
	}
}

func TestSplitStatements(t *testing.T) {
	sqlText := `
-- leading comment
CREATE TABLE a (id TEXT);

-- between
CREATE INDEX idx_a ON a(id);
-- trailing
`
	statements := splitStatements(sqlText)
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(statements), statements)
	}
	if statements[0] != "CREATE TABLE a (id TEXT)" {
		t.Fatalf("unexpected first statement %q", statements[0])
	}
}
