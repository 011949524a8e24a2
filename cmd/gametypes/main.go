// cmd/gametypes is the admin tool for the game type store.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/twilightcoders/cardgames/internal/app"
	"github.com/twilightcoders/cardgames/internal/auth"
	"github.com/twilightcoders/cardgames/internal/config"
)

func main() {
	cliApp := &cli.App{
		Name:  "gametypes",
		Usage: "manage card game type configurations",
		Commands: []*cli.Command{
			migrateCommand(),
			seedCommand(),
			listCommand(),
			tokenCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, cfg.Logger(), nil
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create the game_types table for the configured STORE_DRIVER",
		Action: func(c *cli.Context) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			// opening a SQL repository applies its schema
			_, closeRepo, err := app.OpenRepository(c.Context, cfg, logger)
			if err != nil {
				return err
			}
			defer closeRepo()
			logger.WithField("driver", cfg.StoreDriver).Info("schema is up to date")
			return nil
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "create game types from a YAML seed file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Value:   "seeds/gametypes.yaml",
				Usage:   "path to the seed file",
			},
			&cli.BoolFlag{
				Name:  "reset",
				Usage: "delete every stored game type first",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			store, closeStore, err := app.NewStore(c.Context, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			n, err := app.SeedFromFile(c.Context, store, c.String("file"), c.Bool("reset"))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "created %d game types\n", n)
			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "print every stored game type as JSON",
		Action: func(c *cli.Context) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			store, closeStore, err := app.NewStore(c.Context, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			all, err := store.List(c.Context)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(all)
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "mint a JWT signed with JWT_SEED",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Value: "admin", Usage: "token subject"},
			&cli.BoolFlag{Name: "admin", Value: true, Usage: "grant write access to game types"},
		},
		Action: func(c *cli.Context) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.JWTSeed == "" {
				return fmt.Errorf("JWT_SEED must be set so the server can verify the token")
			}
			expiry, err := auth.ParseTokenExpireTime(cfg.TokenExpireTime)
			if err != nil {
				return err
			}
			signer, err := auth.NewSigner(cfg.JWTSeed, expiry)
			if err != nil {
				return err
			}
			token, err := signer.CreateJWT(c.String("subject"), c.Bool("admin"))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, token)
			return nil
		},
	}
}
