package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/dischargeprep/internal/normalize"
)

// Default directory names, relative to the executable.
const (
	DefaultInputDirName  = "Arquivos"
	DefaultOutputDirName = "output"
	DefaultTempDirName   = "temp_csvs"
)

// Config holds all runtime configuration for a dischargeprep run.
type Config struct {
	InputDir          string
	OutputDir         string
	TempDir           string
	RulesPath         string
	LogFormat         string // "text" or "json"
	AllSheets         bool
	ExportParquet     bool
	KeepRawPartitions bool

	// load/migrate
	DSN      string
	FilePath string
	Force    bool

	Rules normalize.Rules
}

// yamlRules is the on-disk YAML structure of a rules file. Omitted keys keep
// their defaults.
type yamlRules struct {
	DischargeTypes   []string          `yaml:"discharge_types"`
	FacilityPrefixes []string          `yaml:"facility_prefixes"`
	ReferralAliases  map[string]string `yaml:"referral_aliases"`
}

// LoadRules starts from normalize.DefaultRules and, when RulesPath is set,
// overrides the lists present in the YAML file.
func (c *Config) LoadRules() error {
	c.Rules = normalize.DefaultRules()
	if c.RulesPath == "" {
		return nil
	}
	return c.LoadRulesFromFile(c.RulesPath)
}

// LoadRulesFromFile reads a YAML rules file and merges its values into Rules.
func (c *Config) LoadRulesFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read rules file: %w", err)
	}
	var yr yamlRules
	if err := yaml.Unmarshal(data, &yr); err != nil {
		return fmt.Errorf("parse rules file: %w", err)
	}
	if c.Rules.DischargeTypes == nil {
		c.Rules = normalize.DefaultRules()
	}
	if yr.DischargeTypes != nil {
		c.Rules.DischargeTypes = yr.DischargeTypes
	}
	if yr.FacilityPrefixes != nil {
		c.Rules.FacilityPrefixes = yr.FacilityPrefixes
	}
	if yr.ReferralAliases != nil {
		c.Rules.ReferralAliases = yr.ReferralAliases
	}
	return c.validateRules()
}

func (c *Config) validateRules() error {
	for _, t := range c.Rules.DischargeTypes {
		if normalize.FoldUpper(t) == "" {
			return fmt.Errorf("blank discharge type in rules")
		}
	}
	for from := range c.Rules.ReferralAliases {
		if from == "" {
			return fmt.Errorf("blank referral alias in rules")
		}
	}
	return nil
}

// ApplyDefaults fills unset directories: input and output next to the
// executable, temp inside output. All directories are made absolute.
func (c *Config) ApplyDefaults(baseDir string) error {
	if c.InputDir == "" {
		c.InputDir = filepath.Join(baseDir, DefaultInputDirName)
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(baseDir, DefaultOutputDirName)
	}
	if c.TempDir == "" {
		c.TempDir = filepath.Join(c.OutputDir, DefaultTempDirName)
	}
	for _, p := range []*string{&c.InputDir, &c.OutputDir, &c.TempDir} {
		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", *p, err)
		}
		*p = abs
	}
	return nil
}

// ExecutableDir returns the directory of the running binary, falling back to
// the working directory.
func ExecutableDir() string {
	exe, err := os.Executable()
	if err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			return filepath.Dir(resolved)
		}
		return filepath.Dir(exe)
	}
	wd, _ := os.Getwd()
	return wd
}

// Validate checks that the input directory exists.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("--input-dir is required")
	}
	info, err := os.Stat(c.InputDir)
	if err != nil {
		return fmt.Errorf("input directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("input path %s is not a directory", c.InputDir)
	}
	return nil
}

// ValidateFile checks the --file flag used by load.
func (c *Config) ValidateFile() error {
	if c.FilePath == "" {
		return fmt.Errorf("--file is required")
	}
	if _, err := os.Stat(c.FilePath); err != nil {
		return fmt.Errorf("file not accessible: %w", err)
	}
	return nil
}

// ValidateWithDSN checks both file and DSN fields.
func (c *Config) ValidateWithDSN() error {
	if err := c.ValidateFile(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or DISCHARGEPREP_DB_URL is required")
	}
	return nil
}
