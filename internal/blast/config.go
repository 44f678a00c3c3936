// Package blast holds the settings of BLAST job submissions.
package blast

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Defaults applied by NewConfig.
const (
	DefaultTableName       = "job"
	DefaultNrPerSubmission = 20
)

// Config describes where BLAST jobs are archived and how they are submitted.
type Config struct {
	Email           string `split_words:"true" yaml:"email"`
	ArchiveDir      string `split_words:"true" yaml:"archive_dir"`
	DatabaseDir     string `split_words:"true" yaml:"database_dir"`
	TableName       string `split_words:"true" yaml:"table_name"`
	NrPerSubmission int    `split_words:"true" yaml:"nr_per_submission"`
}

// NewConfig returns the default configuration for email. Working
// directories live under the system temporary directory.
func NewConfig(email string) *Config {
	work := filepath.Join(os.TempDir(), "blast")
	return &Config{
		Email:           email,
		ArchiveDir:      filepath.Join(work, "archive"),
		DatabaseDir:     filepath.Join(work, "db"),
		TableName:       DefaultTableName,
		NrPerSubmission: DefaultNrPerSubmission,
	}
}

// Load returns the defaults for email overridden by BLAST_* environment
// variables, e.g. BLAST_TABLE_NAME or BLAST_NR_PER_SUBMISSION.
func Load(email string) (*Config, error) {
	c := NewConfig(email)
	if err := envconfig.Process("blast", c); err != nil {
		return nil, fmt.Errorf("blast config: %w", err)
	}
	return c, nil
}

// Validate checks that jobs can be submitted with c.
func (c *Config) Validate() error {
	var errs []error
	if c.Email == "" {
		errs = append(errs, errors.New("an email address is required"))
	}
	if c.NrPerSubmission <= 0 {
		errs = append(errs, fmt.Errorf("sequences per submission must be positive, got %d", c.NrPerSubmission))
	}
	if c.TableName == "" {
		errs = append(errs, errors.New("a table name is required"))
	}
	return errors.Join(errs...)
}

// EnsureDirs creates the archive and database directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.ArchiveDir, c.DatabaseDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create blast directory: %w", err)
		}
	}
	return nil
}
