package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/jly61/knowledge-and-blog/internal"
	"github.com/jly61/knowledge-and-blog/internal/auth"
	pkgconfig "github.com/jly61/knowledge-and-blog/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg, err := pkgconfig.LoadOptional(cmd.String("config"), internal.NewDefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg))
}

func importVault(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if p := cmd.String("vault"); p != "" {
		cfg.Vault.Path = p
	}
	sum, err := internal.RunImport(ctx, cmd.Bool("force"), internal.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	fmt.Printf("created %d, updated %d, unchanged %d, deleted %d, failed %d\n",
		sum.Created, sum.Updated, sum.Unchanged, sum.Deleted, sum.Failed)
	return nil
}

func exportNotes(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	n, err := internal.RunExport(ctx, cmd.String("dir"), cmd.String("owner"), internal.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Printf("exported %d notes\n", n)
	return nil
}

func issueToken(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is not configured")
	}
	tok, err := auth.IssueToken(cmd.String("user"), []byte(cfg.Auth.JWTSecret), cmd.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "knowledge-and-blog",
		Usage:  "Personal knowledge base with bidirectional links, a knowledge graph and a blog",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: mcp,
			},
			{
				Name:   "import",
				Usage:  "Mirror the Markdown vault into notes once",
				Action: importVault,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "vault", Usage: "Vault directory (overrides vault.path)"},
					&cli.BoolFlag{Name: "force", Usage: "Re-import files whose body is unchanged"},
				},
			},
			{
				Name:   "export",
				Usage:  "Write notes as Markdown files",
				Action: exportNotes,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Usage: "Target directory", Required: true},
					&cli.StringFlag{Name: "owner", Usage: "Owner of the notes (defaults to vault.owner)"},
				},
			},
			{
				Name:   "token",
				Usage:  "Issue an HS256 token for auth.mode jwt",
				Action: issueToken,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Usage: "User id", Required: true},
					&cli.DurationFlag{Name: "ttl", Usage: "Token lifetime", Value: 24 * time.Hour},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
