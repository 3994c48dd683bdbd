// @title Emoji Cringe Chronicles API
// @version 1.0
// @description Post, browse and manage emoji combos with JWT cookie or bearer authentication.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token. The token cookie is accepted too.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug(".env file not loaded")
	}

	app := &cli.App{
		Name:   "emojicringe",
		Usage:  "Emoji Cringe Chronicles API server",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "apply migrations and start the HTTP server (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply pending schema migrations and exit",
				Action: migrateOnly,
			},
			{
				Name:   "seed",
				Usage:  "insert the demo users and combos",
				Action: seedDemo,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "bcrypt-cost", Value: 10, Usage: "bcrypt cost for the demo password"},
				},
			},
			{
				Name:      "promote",
				Usage:     "grant the admin role to a user",
				ArgsUsage: "<username>",
				Action:    promote,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "revoke", Usage: "set the role back to user"},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("command failed")
	}
}
