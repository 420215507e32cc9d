package migration

import (
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

type fileScannerImpl struct {
	pattern *regexp.Regexp
}

// NewFileScanner returns a scanner for {version}_{description}.sql files.
func NewFileScanner() FileScanner {
	return &fileScannerImpl{pattern: regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)}
}

// ScanMigrations reads every .sql file in dir and returns them ordered by
// numeric version.
func (s *fileScannerImpl) ScanMigrations(files fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(files, dir)
	if err != nil {
		return nil, NewMigrationError("", dir, "read directory", err)
	}

	var migrations []Migration
	seen := make(map[string]string)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		if err := s.ValidateFileName(entry.Name()); err != nil {
			return nil, NewMigrationError("", entry.Name(), "validate filename", err)
		}

		filePath := path.Join(dir, entry.Name())
		content, err := fs.ReadFile(files, filePath)
		if err != nil {
			return nil, NewMigrationError("", filePath, "read file", err)
		}

		matches := s.pattern.FindStringSubmatch(entry.Name())
		version := matches[1]
		if other, ok := seen[version]; ok {
			return nil, NewMigrationError(version, entry.Name(), "check duplicates",
				fmt.Errorf("%w: version %s found in both %s and %s", ErrDuplicateVersion, version, other, entry.Name()))
		}
		seen[version] = entry.Name()

		sqlText := string(content)
		if strings.TrimSpace(stripComments(sqlText)) == "" {
			return nil, NewMigrationError(version, filePath, "validate content",
				fmt.Errorf("%w: migration file has no statements", ErrInvalidMigrationFile))
		}

		description := descriptionFromContent(sqlText)
		if description == "" {
			description = strings.ReplaceAll(matches[2], "_", " ")
		}

		migrations = append(migrations, Migration{
			Version:     version,
			Description: description,
			SQL:         sqlText,
			FilePath:    filePath,
			Checksum:    fmt.Sprintf("%x", sha256.Sum256(content)),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return versionNumber(migrations[i].Version) < versionNumber(migrations[j].Version)
	})
	return migrations, nil
}

// ValidateFileName checks the {version}_{description}.sql convention.
func (s *fileScannerImpl) ValidateFileName(filename string) error {
	if !s.pattern.MatchString(filename) {
		return fmt.Errorf("%w: filename '%s' does not match pattern '{version}_{description}.sql'",
			ErrInvalidMigrationFile, filename)
	}
	return nil
}

func descriptionFromContent(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "--") {
			return ""
		}
		if rest, ok := strings.CutPrefix(line, "-- Description:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

func stripComments(sqlText string) string {
	var b strings.Builder
	for _, line := range strings.Split(sqlText, "\n") {
		if i := strings.Index(line, "--"); i >= 0 {
			line = line[:i]
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func versionNumber(version string) int {
	n, err := strconv.Atoi(version)
	if err != nil {
		return -1
	}
	return n
}
