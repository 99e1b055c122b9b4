package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/docdesk/internal/api"
	"github.com/five82/docdesk/internal/app"
	"github.com/five82/docdesk/internal/logging"
	"github.com/five82/docdesk/internal/logtail"
	"github.com/five82/docdesk/internal/prefs"
)

// cli holds the flags shared by every command.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	prefsPath  string
	verbose    bool
	noColor    bool

	now func() time.Time
}

func newCLI(stdout, stderr io.Writer) *cli {
	return &cli{stdout: stdout, stderr: stderr, noColor: noColorEnv(), now: time.Now}
}

func (c *cli) options() app.Options {
	opts := app.Options{ConfigPath: c.configPath, PrefsPath: c.prefsPath}
	if c.verbose {
		opts.LogWriter = c.stderr
		opts.Color = !c.noColor
	}
	return opts
}

// withServices builds the client stack for one command. API failures are
// reported with the message the shared error record shows.
func (c *cli) withServices(cmd *cobra.Command, fn func(ctx context.Context, svc *app.Services) error) error {
	svc, err := app.Build(c.options())
	if err != nil {
		return err
	}
	defer svc.Close()

	err = fn(cmd.Context(), svc)
	if err == nil {
		return nil
	}
	if rec := svc.Notices.Current(); rec.Visible {
		return &reportedError{message: rec.Message, err: err}
	}
	return err
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "docdesk",
		Short: "Search and read documents from the terminal",
		Long: `docdesk talks to the document search service.

Run without arguments for the interactive terminal UI, or use a subcommand
for one-shot queries.

Examples:
  docdesk
  docdesk search 合同 --tags 法规,合同
  docdesk search "flood control" --mode related --page 2
  docdesk detail 42
  docdesk login --username alice`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The TUI owns the terminal, so it always logs to the log file.
			if c.verbose {
				return fmt.Errorf("--verbose only applies to subcommands; the TUI logs to the log file (see docdesk logs)")
			}
			return app.Run(cmd.Context(), app.Options{ConfigPath: c.configPath, PrefsPath: c.prefsPath})
		},
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/docdesk/config.toml)")
	root.PersistentFlags().StringVar(&c.prefsPath, "prefs", "", "preferences file (default ~/.config/docdesk/prefs.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log to stderr instead of the log file (subcommands only)")
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", c.noColor, "disable colored output (subcommand output and -v logs)")

	root.AddCommand(
		newSearchCmd(c),
		newDetailCmd(c),
		newTagsCmd(c),
		newLoginCmd(c),
		newLogoutCmd(c),
		newLogsCmd(c),
	)
	return root
}

// --- search ---

func newSearchCmd(c *cli) *cobra.Command {
	var (
		tags     string
		from     string
		to       string
		page     int
		pageSize int
		mode     string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "search [keyword]",
		Short: "Search documents",
		Long: `Search documents.

Modes:
  list     keyword + tag + date filtered listing (default)
  related  full-text related-content search over titles, bodies and fragments
  default  the service's default ranking`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyword := ""
			if len(args) == 1 {
				keyword = args[0]
			}
			mode = strings.ToLower(strings.TrimSpace(mode))
			switch mode {
			case prefs.ModeList, prefs.ModeRelated, prefs.ModeDefault:
			default:
				return fmt.Errorf("unknown --mode %q (want list, related or default)", mode)
			}

			return c.withServices(cmd, func(ctx context.Context, svc *app.Services) error {
				if pageSize <= 0 {
					pageSize = svc.Config.PageSize
				}
				var (
					resp *api.Response
					err  error
				)
				switch mode {
				case prefs.ModeRelated:
					resp, err = svc.Endpoints.SearchRelated(ctx, api.RelatedQuery{Query: keyword, PageSize: pageSize, PageNumber: page})
				case prefs.ModeDefault:
					resp, err = svc.Endpoints.DefaultSearch(ctx, keyword, page, pageSize)
				default:
					resp, err = svc.Endpoints.SearchDocList(ctx, api.SearchParams{
						Keyword:   keyword,
						Tags:      splitList(tags),
						StartDate: from,
						EndDate:   to,
						Page:      page,
						PageSize:  pageSize,
					})
				}
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(c.stdout, resp.Body)
				}
				docs, err := api.DecodeDocumentPage(resp)
				if err != nil {
					return err
				}
				printDocuments(c.stdout, c.noColor, docs, page, pageSize, c.now())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags (list mode)")
	cmd.Flags().StringVar(&from, "from", "", "start date, e.g. 2025-01-01 (list mode)")
	cmd.Flags().StringVar(&to, "to", "", "end date (list mode)")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "results per page (default from config)")
	cmd.Flags().StringVar(&mode, "mode", prefs.ModeList, "list, related or default")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw response")
	return cmd
}

// --- detail ---

func newDetailCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "detail <id>",
		Short: "Show one document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withServices(cmd, func(ctx context.Context, svc *app.Services) error {
				resp, err := svc.Endpoints.GetPdfDetail(ctx, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(c.stdout, resp.Body)
				}
				doc, err := api.DecodeDocument(resp)
				if err != nil {
					return err
				}
				printDocument(c.stdout, c.noColor, doc, c.now())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw response")
	return cmd
}

// --- tags ---

func newTagsCmd(c *cli) *cobra.Command {
	var (
		alt    bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List document tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withServices(cmd, func(ctx context.Context, svc *app.Services) error {
				fetch := svc.Endpoints.GetNewsTags
				if alt {
					fetch = svc.Endpoints.GetTags
				}
				resp, err := fetch(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(c.stdout, resp.Body)
				}
				tags, err := api.DecodeTags(resp)
				if err != nil {
					return err
				}
				printTags(c.stdout, tags)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&alt, "alt", false, "use the tag service instead of the document tag list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw response")
	return cmd
}

// --- login / logout ---

func newLoginCmd(c *cli) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password are required")
			}
			return c.withServices(cmd, func(ctx context.Context, svc *app.Services) error {
				resp, err := svc.Endpoints.Login(ctx, username, password)
				if err != nil {
					return err
				}
				tok, err := api.DecodeAccessToken(resp)
				if err != nil {
					return err
				}
				if err := svc.Credentials.Save(tok.AccessToken); err != nil {
					return err
				}
				svc.Logger.Info("login succeeded", slog.String("credentials", svc.Credentials.Path()))
				printSuccess(c.stderr, c.noColor, "Signed in as %s", username)
				if svc.Config.Token != "" {
					printWarning(c.stderr, c.noColor, "DOCDESK_TOKEN is set and takes precedence over the stored token")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withServices(cmd, func(_ context.Context, svc *app.Services) error {
				if err := svc.Credentials.Clear(); err != nil {
					return err
				}
				printSuccess(c.stderr, c.noColor, "Signed out")
				return nil
			})
		},
	}
}

// --- logs ---

func newLogsCmd(c *cli) *cobra.Command {
	var (
		lines int
		level string
		grep  string
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the end of the docdesk log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.Build(app.Options{ConfigPath: c.configPath, LogWriter: io.Discard})
			if err != nil {
				return err
			}
			defer svc.Close()

			out, err := logtail.Read(svc.Config.LogPath, lines, logtail.Filter{
				MinLevel: logging.ParseLevel(level),
				Contains: grep,
			})
			if err != nil {
				return err
			}
			for _, line := range out {
				fmt.Fprintln(c.stdout, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines")
	cmd.Flags().StringVar(&level, "level", "debug", "minimum level: debug, info, warn, error")
	cmd.Flags().StringVar(&grep, "grep", "", "only lines containing this text")
	return cmd
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
