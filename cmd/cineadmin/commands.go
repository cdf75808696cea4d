package main

import "github.com/urfave/cli/v3"

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "cineadmin",
		Usage:   "Browse, like and administer the movie catalog",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to settings file",
				Sources: cli.EnvVars("CINEADMIN_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "API base URL (overrides settings)",
				Sources: cli.EnvVars("CINEADMIN_URL"),
			},
			&cli.IntFlag{
				Name:  "timeout",
				Usage: "Per-call timeout in seconds",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Debug logging",
			},
		},
		Before:   r.connect,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	return []*cli.Command{
		signupCommand(r),
		loginCommand(r),
		logoutCommand(r),
		whoamiCommand(r),
		moviesCommand(r),
		recommendCommand(r),
		recommendationsCommand(r),
	}
}

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "email",
			Aliases:  []string{"e"},
			Usage:    "Account email",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "password",
			Aliases:  []string{"p"},
			Usage:    "Account password",
			Sources:  cli.EnvVars("CINEADMIN_PASSWORD"),
			Required: true,
		},
	}
}

func signupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "signup",
		Usage: "Create an account and sign in",
		Flags: append(credentialFlags(),
			&cli.BoolFlag{
				Name:  "admin",
				Usage: "Register with the admin role",
			},
		),
		Action: r.Signup,
	}
}

func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "login",
		Usage:  "Sign in and remember the session",
		Flags:  credentialFlags(),
		Action: r.Login,
	}
}

func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Forget the stored session",
		Action: r.Logout,
	}
}

func whoamiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Show the signed-in user and what they may do",
		Flags:  []cli.Flag{jsonFlag()},
		Action: r.Whoami,
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output raw JSON",
	}
}

func movieFieldFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "titulo", Aliases: []string{"title"}, Usage: "Title", Required: required},
		&cli.StringFlag{Name: "genero", Aliases: []string{"genre"}, Usage: "Genre"},
		&cli.IntFlag{Name: "ano", Aliases: []string{"year"}, Usage: "Release year", Required: required},
		&cli.StringFlag{Name: "descricao", Aliases: []string{"description"}, Usage: "Synopsis"},
		&cli.StringFlag{Name: "imagem", Aliases: []string{"image"}, Usage: "Poster URL"},
	}
}

func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Catalog operations",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List the catalog, marking movies you like",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.MoviesList,
			},
			{
				Name:      "like",
				Usage:     "Like a movie, or unlike it if already liked",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.MoviesLike,
			},
			{
				Name:   "add",
				Usage:  "Add a movie (admin)",
				Flags:  movieFieldFlags(true),
				Action: r.MoviesAdd,
			},
			{
				Name:      "edit",
				Usage:     "Edit a movie; unset flags keep their current value (admin)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     movieFieldFlags(false),
				Action:    r.MoviesEdit,
			},
			{
				Name:      "delete",
				Usage:     "Delete a movie and every like on it (admin)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.MoviesDelete,
			},
			{
				Name:  "import",
				Usage: "Create every movie listed in a JSON file (admin)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSON array of {titulo, genero, ano, descricao, imagem}",
						Required: true,
					},
				},
				Action: r.MoviesImport,
			},
		},
	}
}

func recommendCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "recommend",
		Usage: "Send a movie suggestion to the curators",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "nome", Aliases: []string{"name"}, Usage: "Your name", Required: true},
			&cli.StringFlag{Name: "indicacao", Aliases: []string{"text"}, Usage: "Your suggestion", Required: true},
		},
		Action: r.Recommend,
	}
}

func recommendationsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "recommendations",
		Usage: "List visitor suggestions (admin)",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "Maximum number to show", Value: 50},
			jsonFlag(),
		},
		Action: r.Recommendations,
	}
}
