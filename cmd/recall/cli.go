package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/halcyard/recall/internal/errors"
	"github.com/halcyard/recall/internal/retriever"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(engine *retriever.Engine) *cli.App {
	app := &cli.App{
		Name:    "recall",
		Usage:   "Vault and capsule retrieval engine",
		Version: Version,
		Commands: []*cli.Command{
			queryCmd(engine),
			categoryCmd(engine),
			byDateCmd(engine),
			byTypeCmd(engine),
			foldersCmd(engine),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// queryCmd creates the query command.
func queryCmd(engine *retriever.Engine) *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "Answer a free-text query with ranked results",
		ArgsUsage: "<query text>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Usage: "Project scope (inferred when omitted)"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum result count"},
			&cli.BoolFlag{Name: "force-specific", Usage: "Treat the query as literal text, skipping intent classification"},
			&cli.Float64Flag{Name: "min-relevance", Usage: "Debug-only relevance floor applied after selection"},
		},
		Action: func(c *cli.Context) error {
			query := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(query) == "" {
				return outputError(errors.NewInvalidRequest("query text is required"))
			}

			out, err := engine.Retrieve(c.Context, retriever.RetrieveInput{
				Query:         query,
				Project:       c.String("project"),
				Limit:         c.Int("limit"),
				ForceSpecific: c.Bool("force-specific"),
				MinRelevance:  c.Float64("min-relevance"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(out)
		},
	}
}

// categoryCmd creates the category command.
func categoryCmd(engine *retriever.Engine) *cli.Command {
	return &cli.Command{
		Name:      "category",
		Usage:     "List every record of a category, most recent first",
		ArgsUsage: "<category>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Usage: "Project scope"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum result count"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("category is required"))
			}

			out, err := engine.RetrieveByCategory(c.Context, retriever.ByCategoryInput{
				Category: c.Args().First(),
				Project:  c.String("project"),
				Limit:    c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(out)
		},
	}
}

// byDateCmd creates the bydate command.
func byDateCmd(engine *retriever.Engine) *cli.Command {
	return &cli.Command{
		Name:  "bydate",
		Usage: "List capsules inside a date window, oldest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "after", Usage: "Inclusive lower bound (RFC 3339 or YYYY-MM-DD)"},
			&cli.StringFlag{Name: "before", Usage: "Inclusive upper bound (RFC 3339 or YYYY-MM-DD)"},
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Usage: "Project scope"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum result count"},
		},
		Action: func(c *cli.Context) error {
			in := retriever.ByDateRangeInput{
				Project: c.String("project"),
				Limit:   c.Int("limit"),
			}
			if v := c.String("after"); v != "" {
				ts, err := parseTimeFlag(v)
				if err != nil {
					return outputError(errors.NewInvalidRequest("after: " + err.Error()))
				}
				in.After = ts
			}
			if v := c.String("before"); v != "" {
				ts, err := parseTimeFlag(v)
				if err != nil {
					return outputError(errors.NewInvalidRequest("before: " + err.Error()))
				}
				in.Before = ts
			}

			out, err := engine.RetrieveByDateRange(c.Context, in)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(out)
		},
	}
}

// byTypeCmd creates the bytype command.
func byTypeCmd(engine *retriever.Engine) *cli.Command {
	return &cli.Command{
		Name:      "bytype",
		Usage:     "List capsules of one record type, most recent first",
		ArgsUsage: "<type>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Usage: "Project scope"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum result count"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("type is required"))
			}

			out, err := engine.RetrieveByType(c.Context, retriever.ByTypeInput{
				Type:    c.Args().First(),
				Project: c.String("project"),
				Limit:   c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(out)
		},
	}
}

// foldersCmd creates the folders command.
func foldersCmd(engine *retriever.Engine) *cli.Command {
	return &cli.Command{
		Name:  "folders",
		Usage: "List the vault's topic folders",
		Action: func(c *cli.Context) error {
			folders, err := engine.VaultFolders()
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"folders": folders})
		},
	}
}

// parseTimeFlag accepts RFC 3339 or a bare date.
func parseTimeFlag(v string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, v); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", v)
}

// outputJSON prints v as indented JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if rErr, ok := err.(*errors.RecallError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", rErr.Code, rErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
