package main

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/brynnb/pokemon-online"
	"github.com/urfave/cli/v2"
)

const defaultDB = "pokemon.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newExporter(c *cli.Context) (*pokemon.Exporter, error) {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}

	cfg := pokemon.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = pokemon.LoadConfig(path); err != nil {
			return nil, err
		}
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("data") {
		cfg.DataDir = c.String("data")
	}

	return pokemon.New(cfg, logger)
}

func main() {
	app := cli.NewApp()

	app.Name = "pokemap"
	app.Usage = "Pokemon Red map data export utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"POKEMAP_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to database",
		},
		&cli.StringFlag{
			Name:    "data",
			EnvVars: []string{"POKEMAP_DATA"},
			Usage:   "path to game asset tree",
		},
		&cli.StringFlag{
			Name:    "config",
			EnvVars: []string{"POKEMAP_CONFIG"},
			Usage:   "path to configuration file",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "export",
			Usage:       "Ingest game assets and store resolved maps",
			Description: "",
			Action: func(c *cli.Context) error {
				e, err := newExporter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer e.Close()

				if err := e.Export(); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "stitch",
			Usage:       "Place stored overworld maps into one coordinate space",
			Description: "",
			Action: func(c *cli.Context) error {
				e, err := newExporter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer e.Close()

				if err := e.Stitch(); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "render",
			Usage:       "Render one stored map to a PNG",
			Description: "",
			ArgsUsage:   "NAME",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "output file",
				},
				&cli.IntFlag{
					Name:  "scale",
					Usage: "integer up-scaling factor",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				name := c.Args().First()

				output := c.String("output")
				if output == "" {
					output = name + ".png"
				}

				e, err := newExporter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer e.Close()

				f, err := os.Create(output)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer f.Close()

				if err := e.Render(name, f, c.Int("scale")); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "watch",
			Usage:       "Export, then re-export whenever the asset tree changes",
			Description: "",
			Action: func(c *cli.Context) error {
				e, err := newExporter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer e.Close()

				if err := e.Watch(context.Background()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
