package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .logward.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to logward! Let's configure your warehouse.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Database connection.
	hostPrompt := promptui.Prompt{
		Label:   "PostgreSQL host",
		Default: cfg.Database.Host,
	}
	host, err := hostPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("database host: %w", err)
	}
	cfg.Database.Host = host

	portPrompt := promptui.Prompt{
		Label:   "PostgreSQL port",
		Default: strconv.Itoa(cfg.Database.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("database port: %w", err)
	}
	cfg.Database.Port, _ = strconv.Atoi(portStr)

	namePrompt := promptui.Prompt{
		Label:   "Database name",
		Default: cfg.Database.Name,
	}
	if cfg.Database.Name, err = namePrompt.Run(); err != nil {
		return nil, fmt.Errorf("database name: %w", err)
	}

	userPrompt := promptui.Prompt{
		Label:   "Database user",
		Default: cfg.Database.User,
	}
	if cfg.Database.User, err = userPrompt.Run(); err != nil {
		return nil, fmt.Errorf("database user: %w", err)
	}

	passPrompt := promptui.Prompt{
		Label: "Database password (leave blank to use PGPASSWORD)",
		Mask:  '*',
	}
	if cfg.Database.Password, err = passPrompt.Run(); err != nil {
		return nil, fmt.Errorf("database password: %w", err)
	}

	// 2. Directories.
	logDirPrompt := promptui.Prompt{
		Label:   "Directory containing the raw log files",
		Default: cfg.LogDir,
	}
	if cfg.LogDir, err = logDirPrompt.Run(); err != nil {
		return nil, fmt.Errorf("log dir: %w", err)
	}

	outDirPrompt := promptui.Prompt{
		Label:   "Output directory for the canonical dataset",
		Default: cfg.OutDir,
	}
	if cfg.OutDir, err = outDirPrompt.Run(); err != nil {
		return nil, fmt.Errorf("out dir: %w", err)
	}

	// 3. Loader mode.
	modePrompt := promptui.Select{
		Label: "Select loader mode",
		Items: []string{
			"copy  — COPY through staging tables, one transaction (fastest)",
			"batch — multi-row inserts, one transaction per batch",
		},
	}
	modeIdx, _, err := modePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("loader mode: %w", err)
	}
	cfg.LoaderMode = []LoaderMode{LoaderCopy, LoaderBatch}[modeIdx]

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(DefaultPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultPath)
	return cfg, nil
}
