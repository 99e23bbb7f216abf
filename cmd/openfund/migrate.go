package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/openfund/internal/config"
	migrations "github.com/dropDatabas3/openfund/migrations/postgres"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down]",
		Short: "Aplica las migraciones embebidas sobre PostgreSQL",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = strings.ToLower(args[0])
			}
			if action != "up" && action != "down" {
				return fmt.Errorf("acción desconocida %q", action)
			}

			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("config load: %w", err)
			}
			if cfg.Storage.DSN == "" {
				return fmt.Errorf("storage.dsn requerido para migrar")
			}
			return migrate(cmd.Context(), cfg.Storage.DSN, action)
		},
	}
}

func migrate(ctx context.Context, dsn, action string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("pgxpool: %w", err)
	}
	defer pool.Close()

	files, err := listSQL(action)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("nothing to do")
		return nil
	}

	for _, f := range files {
		sql, err := migrations.FS.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
		fmt.Printf("applied %s\n", f)
	}
	return nil
}

func listSQL(action string) ([]string, error) {
	entries, err := migrations.FS.ReadDir(".")
	if err != nil {
		return nil, err
	}
	suffix := "_" + action + ".sql"
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	if action == "down" {
		// down en orden inverso
		for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
			files[i], files[j] = files[j], files[i]
		}
	}
	return files, nil
}
