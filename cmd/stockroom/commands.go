package main

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/five82/stockroom/internal/api"
	"github.com/five82/stockroom/internal/app"
	"github.com/five82/stockroom/internal/logging"
	"github.com/five82/stockroom/internal/mockapi"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// prompt asks for missing values interactively. Tests replace it.
var prompt = survey.Ask

func newRootCmd() *cobra.Command {
	var opts app.Options

	root := &cobra.Command{
		Use:   "stockroom",
		Short: "Terminal client for the stockroom inventory API",
		Long: `stockroom manages categories, products, sales and purchases held by an
inventory HTTP API. Without a subcommand it starts the interactive TUI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/stockroom/config.toml)")
	flags.StringVar(&opts.APIBase, "api", "", "API base URL (overrides config and STOCKROOM_API_BASE)")
	flags.BoolVar(&opts.Ephemeral, "ephemeral", false, "keep the session in memory only")
	flags.BoolVar(&opts.Debug, "debug", false, "log at debug level")
	root.Flags().StringVar(&opts.PrefsPath, "prefs", "", "preferences file (default ~/.config/stockroom/prefs.toml)")
	root.Flags().IntVar(&opts.PollEvery, "poll", 0, "refresh interval in seconds (default from config, 30s)")

	root.AddCommand(
		newLoginCmd(&opts),
		newRegisterCmd(&opts),
		newLogoutCmd(&opts),
		newWhoAmICmd(&opts),
		newMockServerCmd(&opts),
		newVersionCmd(),
	)
	return root
}

func newLoginCmd(opts *app.Options) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := askCredentials(&username, &password); err != nil {
				return err
			}
			cred, err := app.Login(cmd.Context(), *opts, username, password)
			if err != nil {
				return fmt.Errorf("login: %s", describe(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", username, displayRole(cred.Role))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newRegisterCmd(opts *app.Options) *cobra.Command {
	var req api.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a company account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := askCredentials(&req.Username, &req.Password); err != nil {
				return err
			}
			if strings.TrimSpace(req.CompanyName) == "" {
				qs := []*survey.Question{{
					Name:   "company",
					Prompt: &survey.Input{Message: "Company name:"},
				}}
				var answers struct{ Company string }
				if err := prompt(qs, &answers); err != nil {
					return err
				}
				req.CompanyName = strings.TrimSpace(answers.Company)
			}
			if err := app.Register(cmd.Context(), *opts, req); err != nil {
				return fmt.Errorf("register: %s", describe(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %s created. Run `stockroom login` to sign in.\n", req.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&req.CompanyName, "company", "", "company name")
	return cmd
}

func newLogoutCmd(opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			had, err := app.Logout(*opts)
			if err != nil {
				return err
			}
			if had {
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
			}
			return nil
		},
	}
}

func newWhoAmICmd(opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cred, err := app.WhoAmI(*opts)
			if errors.Is(err, app.ErrNoSession) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in, role %s\n", displayRole(cred.Role))
			return nil
		},
	}
}

func newMockServerCmd(opts *app.Options) *cobra.Command {
	var addr, seedPath string
	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run an in-memory inventory API for local development",
		Long: `mock-server serves the inventory API from memory. Unless --seed points at
a YAML file it is seeded with the accounts admin/admin and acme/acme, the
disabled company hooli, and a few records.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			seed := mockapi.DefaultSeed()
			if seedPath != "" {
				loaded, err := mockapi.LoadSeed(seedPath)
				if err != nil {
					return err
				}
				seed = loaded
			}

			logger := logging.Console(opts.Debug)
			defer func() { _ = logger.Sync() }()

			srv := mockapi.New(seed, mockapi.WithLogger(logger))
			return srv.Serve(cmd.Context(), addr, func(a net.Addr) {
				fmt.Fprintf(cmd.OutOrStdout(), "Serving http://%s/api\n", a)
				logger.Debug("ready", zap.String("addr", a.String()))
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:5050", "listen address")
	cmd.Flags().StringVar(&seedPath, "seed", "", "YAML seed file")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show stockroom version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stockroom %s\n", version)
		},
	}
}

// askCredentials prompts for whichever of username and password is empty.
func askCredentials(username, password *string) error {
	var qs []*survey.Question
	if strings.TrimSpace(*username) == "" {
		qs = append(qs, &survey.Question{
			Name:     "username",
			Prompt:   &survey.Input{Message: "Username:"},
			Validate: survey.Required,
		})
	}
	if *password == "" {
		qs = append(qs, &survey.Question{
			Name:     "password",
			Prompt:   &survey.Password{Message: "Password:"},
			Validate: survey.Required,
		})
	}
	if len(qs) == 0 {
		return nil
	}

	answers := struct {
		Username string
		Password string
	}{Username: *username, Password: *password}
	if err := prompt(qs, &answers); err != nil {
		return err
	}
	*username = strings.TrimSpace(answers.Username)
	*password = answers.Password
	return nil
}

func describe(err error) string {
	if api.IsHTTP(err) {
		if msg := api.Message(err); msg != "" {
			return msg
		}
	}
	return err.Error()
}

func displayRole(role string) string {
	if strings.TrimSpace(role) == "" {
		return "unknown"
	}
	return role
}
