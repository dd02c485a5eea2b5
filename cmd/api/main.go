package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yigit/escola/internal/bootstrap"
	"github.com/yigit/escola/internal/pkg/logger"
	"github.com/yigit/escola/internal/seed"
	"github.com/yigit/escola/internal/server"
)

func main() {
	app := &cli.App{
		Name:  "escola",
		Usage: "school administration web application",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   bootstrap.DefaultConfigPath,
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "migrate the database and run the HTTP server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply the database migrations",
				Action: migrate,
			},
			{
				Name:  "create-admin",
				Usage: "create the administrator account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Value: seed.DefaultAdmin.Username},
					&cli.StringFlag{Name: "email", Value: seed.DefaultAdmin.Email},
					&cli.StringFlag{Name: "password", Value: seed.DefaultAdmin.Password},
					&cli.StringFlag{Name: "name", Value: seed.DefaultAdmin.FullName},
				},
				Action: createAdmin,
			},
			{
				Name:   "seed",
				Usage:  "insert the sample students and pets",
				Action: seedData,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	srv, err := server.NewServer(c.Context, c.String("config"))
	if err != nil {
		return err
	}
	return srv.Run()
}

// withServices runs fn against a migrated database and closes the pool afterwards
func withServices(c *cli.Context, fn func(ctx context.Context, deps *bootstrap.Dependencies) error) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
	if err != nil {
		return err
	}

	database, err := bootstrap.ConnectDatabase(c.Context, cfg, lgr)
	if err != nil {
		return err
	}
	defer database.Close()

	if _, err := bootstrap.RunMigrations(c.Context, database, lgr); err != nil {
		return err
	}

	return fn(c.Context, bootstrap.BuildServices(cfg, database, lgr))
}

func migrate(c *cli.Context) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
	if err != nil {
		return err
	}

	database, err := bootstrap.ConnectDatabase(c.Context, cfg, lgr)
	if err != nil {
		return err
	}
	defer database.Close()

	version, err := bootstrap.RunMigrations(c.Context, database, lgr)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Schema version: %d\n", version)
	return nil
}

func createAdmin(c *cli.Context) error {
	admin := seed.Admin{
		Username: c.String("username"),
		Email:    c.String("email"),
		Password: c.String("password"),
		FullName: c.String("name"),
	}

	return withServices(c, func(ctx context.Context, deps *bootstrap.Dependencies) error {
		created, err := seed.CreateAdmin(ctx, deps.AuthService, admin, deps.Logger)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(c.App.Writer, "Usuário %s criado com sucesso. Altere a senha após o primeiro login!\n", admin.Username)
		} else {
			fmt.Fprintf(c.App.Writer, "Usuário %s já existe.\n", admin.Username)
		}
		return nil
	})
}

func seedData(c *cli.Context) error {
	return withServices(c, func(ctx context.Context, deps *bootstrap.Dependencies) error {
		result, err := seed.SampleData(ctx, deps.Repos.StudentRepository, deps.Repos.PetRepository, deps.Logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%d alunos e %d pets criados.\n", result.Students, result.Pets)
		return nil
	})
}
