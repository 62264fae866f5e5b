package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/CTAG07/namegen/pkg/namegen"
	"github.com/CTAG07/namegen/pkg/store"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate names from a definition file",
		Long: `Generate learns a YAML name definition (or loads a saved JSON name) and
prints generated names, one per line.`,
		Example: `  namegen generate -f elves.yaml -n 20
  namegen generate -f elves.yaml --save elves.json
  namegen generate --load elves.json --format full --seed 42`,
		RunE: runGenerate,
	}
	cmd.Flags().StringP("file", "f", "", "YAML name definition to learn")
	cmd.Flags().String("load", "", "Saved JSON name to generate from")
	cmd.Flags().IntP("amount", "n", 10, "Number of names to generate")
	cmd.Flags().Uint64("seed", 0, "Random seed (random if unset)")
	cmd.Flags().String("format", "", "Format to generate (defaults to the first)")
	cmd.Flags().String("save", "", "Write the learned name as JSON to this path")
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	load, _ := cmd.Flags().GetString("load")
	amount, _ := cmd.Flags().GetInt("amount")
	format, _ := cmd.Flags().GetString("format")
	save, _ := cmd.Flags().GetString("save")

	var (
		name *namegen.Name
		err  error
	)
	switch {
	case file != "" && load != "":
		return errors.New("--file and --load are mutually exclusive")
	case file != "":
		name, err = loadDefinition(file)
	case load != "":
		name, err = loadSavedName(load)
	default:
		return errors.New("one of --file or --load is required")
	}
	if err != nil {
		return err
	}

	if save != "" {
		data, err := json.MarshalIndent(name, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode name: %w", err)
		}
		if err = atomic.WriteFile(save, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("failed to save name: %w", err)
		}
	}

	seed := rand.Uint64()
	if cmd.Flags().Changed("seed") {
		seed, _ = cmd.Flags().GetUint64("seed")
	}
	names, err := name.Generator(seed, format).Take(amount)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, n := range names {
		fmt.Fprintln(out, n)
	}
	return nil
}

// loadDefinition reads a YAML name definition and learns its samples.
func loadDefinition(path string) (*namegen.Name, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	var config namegen.NameConfig
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse definition: %w", err)
	}
	name, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", path, err)
	}
	return name, nil
}

// loadSavedName reads and validates a name saved with --save.
func loadSavedName(path string) (*namegen.Name, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read saved name: %w", err)
	}
	name := namegen.NewName()
	if err = json.Unmarshal(data, name); err != nil {
		return nil, fmt.Errorf("failed to parse saved name: %w", err)
	}
	if err = name.Validate(); err != nil {
		return nil, fmt.Errorf("saved name is invalid: %w", err)
	}
	return name, nil
}

// openStore opens the database named by the config file for the offline
// commands.
func openStore(configPath string) (*store.Store, func(), error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	db, err := initDB(config.Server.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	s, err := store.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	// Exports may be written to stdout.
	s.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(config.Server.LogLevel)})))
	return s, func() {
		s.Close()
		_ = db.Close()
	}, nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export every stored name as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			s, closeStore, err := openStore(configPath)
			if err != nil {
				return err
			}
			defer closeStore()

			if len(args) == 0 {
				return s.Export(context.Background(), cmd.OutOrStdout())
			}
			var buf bytes.Buffer
			if err = s.Export(context.Background(), &buf); err != nil {
				return err
			}
			return atomic.WriteFile(args[0], &buf)
		},
	}
	cmd.Flags().String("config", "./config.json", "Path to the JSON config file")
	return cmd
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import names from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			s, closeStore, err := openStore(configPath)
			if err != nil {
				return err
			}
			defer closeStore()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			n, err := s.Import(context.Background(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d names\n", n)
			return nil
		},
	}
	cmd.Flags().String("config", "./config.json", "Path to the JSON config file")
	return cmd
}
