package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"scribe/internal/config"
	"scribe/internal/dedupe"
	"scribe/internal/errors"
	"scribe/internal/event"
	"scribe/internal/ops"
	"scribe/internal/schedule"
	"scribe/internal/transcript"
	"scribe/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, bus *event.Bus, baseDir string) *cli.App {
	app := &cli.App{
		Name:    "scribe",
		Usage:   "Transcript library and duplicate cleanup",
		Version: Version,
		Commands: []*cli.Command{
			addCmd(db, bus),
			completeCmd(db, bus),
			failCmd(db, bus),
			fetchCmd(db),
			listCmd(db),
			tagCmd(db),
			protectCmd(db, bus),
			deleteCmd(db, bus),
			duplicatesCmd(db),
			cleanupCmd(db, bus),
			policyCmd(db, bus),
			reportCmd(db),
			exportCmd(db, cfg, baseDir),
			statsCmd(db),
			activityCmd(db),
			purgeCmd(db),
			serveCmd(db, cfg, bus),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// addCmd creates the add command.
func addCmd(db *sql.DB, bus *event.Bus) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Register a new media entry as a pending transcript",
		ArgsUsage: "<title>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "library", Aliases: []string{"l"}, Value: "default", Usage: "Library name"},
			&cli.StringFlag{Name: "source-kind", Aliases: []string{"k"}, Usage: "Source kind: upload|url|youtube"},
			&cli.StringFlag{Name: "source-ref", Aliases: []string{"r"}, Usage: "Original filename or URL"},
			&cli.IntFlag{Name: "duration", Aliases: []string{"d"}, Usage: "Media duration in seconds"},
			&cli.StringFlag{Name: "tags", Usage: "Comma-separated tag names"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("title argument is required"))
			}

			input := ops.AddInput{
				Library:    c.String("library"),
				Title:      strings.Join(c.Args().Slice(), " "),
				SourceKind: transcript.SourceKind(c.String("source-kind")),
			}
			if ref := c.String("source-ref"); ref != "" {
				input.SourceRef = &ref
			}
			if c.IsSet("duration") {
				d := c.Int("duration")
				input.DurationSeconds = &d
			}
			if tags := c.String("tags"); tags != "" {
				input.Tags = parseTags(tags)
			}

			output, err := ops.Add(c.Context, db, bus, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// completeCmd creates the complete command. The transcript body is read from
// stdin so large texts never hit argv limits.
func completeCmd(db *sql.DB, bus *event.Bus) *cli.Command {
	return &cli.Command{
		Name:      "complete",
		Usage:     "Record a finished transcription (reads text from stdin)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "checksum", Usage: "SHA-256 hex digest of the source media"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id argument is required"))
			}
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("transcript text must be piped via stdin"))
			}

			text, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if text == "" {
				return outputError(errors.NewInvalidRequest("transcript text is required"))
			}

			output, err := ops.Complete(c.Context, db, bus, ops.CompleteInput{
				ID:       c.Args().First(),
				Text:     text,
				Checksum: c.String("checksum"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// failCmd creates the fail command.
func failCmd(db *sql.DB, bus *event.Bus) *cli.Command {
	return &cli.Command{
		Name:      "fail",
		Usage:     "Mark a pending or processing transcript as failed",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "reason", Aliases: []string{"r"}, Usage: "Failure reason for the activity log"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id argument is required"))
			}

			output, err := ops.Fail(c.Context, db, bus, ops.FailInput{
				ID:     c.Args().First(),
				Reason: c.String("reason"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// fetchCmd creates the fetch command.
func fetchCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch a transcript by ID",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "include-deleted", Usage: "Also match soft-deleted records"},
			&cli.BoolFlag{Name: "no-text", Usage: "Exclude the transcript body from output"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id argument is required"))
			}

			input := ops.FetchInput{
				ID:             c.Args().First(),
				IncludeDeleted: c.Bool("include-deleted"),
			}
			if c.Bool("no-text") {
				includeText := false
				input.IncludeText = &includeText
			}

			output, err := ops.Fetch(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List transcripts in a library, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "library", Aliases: []string{"l"}, Value: "default", Usage: "Library name"},
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "Filter by status: pending|processing|completed|failed"},
			&cli.StringFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Filter by tag name"},
			&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Value: 0, Usage: "Items to skip"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted records"},
			&cli.BoolFlag{Name: "json", Usage: "Emit JSON instead of a table"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ListInput{
				Library:        c.String("library"),
				Limit:          c.Int("limit"),
				Offset:         c.Int("offset"),
				IncludeDeleted: c.Bool("include-deleted"),
			}
			if status := c.String("status"); status != "" {
				input.Status = &status
			}
			if tag := c.String("tag"); tag != "" {
				input.Tag = &tag
			}

			output, err := ops.List(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}
			if c.Bool("json") {
				return outputJSON(output)
			}
			renderListTable(output.Items)
			return nil
		},
	}
}

// tagCmd creates the tag command with attach/detach subcommands.
func tagCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "tag",
		Usage: "Manage tags",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the tags of a library",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "library", Aliases: []string{"l"}, Value: "default", Usage: "Library name"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.TagList(c.Context, db, c.String("library"))
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "save",
				Usage:     "Create a tag, or update its color if it exists",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "library", Aliases: []string{"l"}, Value: "default", Usage: "Library name"},
					&cli.StringFlag{Name: "color", Aliases: []string{"c"}, Usage: "Hex color, e.g. #0ea5e9"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("usage: scribe tag save <name>"))
					}
					output, err := ops.TagSave(c.Context, db, ops.TagSaveInput{
						Library: c.String("library"),
						Name:    c.Args().First(),
						Color:   c.String("color"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "attach",
				Usage:     "Attach a tag (created on demand) to a transcript",
				ArgsUsage: "<id> <name>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 2 {
						return outputError(errors.NewInvalidRequest("usage: scribe tag attach <id> <name>"))
					}
					output, err := ops.TagAttach(c.Context, db, ops.TagAttachInput{
						ID:   c.Args().Get(0),
						Name: c.Args().Get(1),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "detach",
				Usage:     "Detach a tag from a transcript",
				ArgsUsage: "<id> <name>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 2 {
						return outputError(errors.NewInvalidRequest("usage: scribe tag detach <id> <name>"))
					}
					output, err := ops.TagDetach(c.Context, db, ops.TagAttachInput{
						ID:   c.Args().Get(0),
						Name: c.Args().Get(1),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// protectCmd creates the protect command.
func protectCmd(db *sql.DB, bus *event.Bus) *cli.Command {
	return &cli.Command{
		Name:      "protect",
		Usage:     "Protect transcripts from automatic cleanup",
		ArgsUsage: "<id>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "library", Aliases: []string{"l"}, Value: "default", Usage: "Library name"},
			&cli.BoolFlag{Name: "clear", Usage: "Clear the protection flag instead of setting it"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("at least one id argument is required"))
			}

			output, err := ops.Protect(c.Context, db, bus, ops.ProtectInput{
				Library:   c.String("library"),
				IDs:       c.Args().Slice(),
				Protected: !c.Bool("clear"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command. A single ID is a plain delete;
// multiple IDs go through the idempotent bulk path.
func deleteCmd(db *sql.DB, bus *event.Bus) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Soft-delete one or more transcripts",
		ArgsUsage: "<id>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "library", Aliases: []string{"l"}, Value: "default", Usage: "Library name (bulk deletes only)"},
		},
		Action: func(c *cli.Context) error {
			switch c.NArg() {
			case 0:
				return outputError(errors.NewInvalidRequest("at least one id argument is required"))
			case 1:
				output, err := ops.Delete(c.Context, db, bus, ops.DeleteInput{ID: c.Args().First()})
				if err != nil {
					return outputError(err)
				}
				return outputJSON(output)
			default:
				output, err := ops.BulkDelete(c.Context, db, bus, ops.BulkDeleteInput{
					Library: c.String("library"),
					IDs:     c.Args().Slice(),
				})
				if err != nil {
					return outputError(err)
				}
				return outputJSON(output)
			}
		},
	}
}

// duplicatesCmd creates the duplicates command.
func duplicatesCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "duplicates",
		Usage: "Scan a library for duplicate groups",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "library", Aliases: []string{"l"}, Value: "default", Usage: "Library name"},
			&cli.BoolFlag{Name: "json", Usage: "Emit JSON instead of a table"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Duplicates(c.Context, db, ops.DuplicatesInput{
				Library: c.String("library"),
			})
			if err != nil {
				return outputError(err)
			}
			if c.Bool("json") {
				return outputJSON(output)
			}
			fmt.Printf("%d checksummed transcripts scanned, %d duplicate groups\n",
				output.Scanned, len(output.Groups))
			renderDuplicatesTable(output.Groups)
			return nil
		},
	}
}

// cleanupCmd creates the cleanup command with preview/apply subcommands.
func cleanupCmd(db *sql.DB, bus *event.Bus) *cli.Command {
	libraryFlag := &cli.StringFlag{Name: "library", Aliases: []string{"l"}, Value: "default", Usage: "Library name"}
	return &cli.Command{
		Name:  "cleanup",
		Usage: "Preview or apply retention cleanup",
		Subcommands: []*cli.Command{
			{
				Name:  "preview",
				Usage: "Classify duplicate groups under the retention policy without deleting",
				Flags: []cli.Flag{libraryFlag},
				Action: func(c *cli.Context) error {
					output, err := ops.CleanupPreview(c.Context, db, ops.CleanupInput{
						Library: c.String("library"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "apply",
				Usage: "Soft-delete every deletable duplicate copy",
				Flags: []cli.Flag{libraryFlag},
				Action: func(c *cli.Context) error {
					output, err := ops.CleanupApply(c.Context, db, bus, ops.CleanupInput{
						Library: c.String("library"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// policyCmd creates the policy command with get/save subcommands.
func policyCmd(db *sql.DB, bus *event.Bus) *cli.Command {
	return &cli.Command{
		Name:  "policy",
		Usage: "Show or save a library's retention policy",
		Subcommands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Show the retention policy, or the defaults when none is saved",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "library", Aliases: []string{"l"}, Value: "default", Usage: "Library name"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.PolicyGet(c.Context, db, ops.PolicyGetInput{
						Library: c.String("library"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "save",
				Usage: "Validate and save the retention policy",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "library", Aliases: []string{"l"}, Value: "default", Usage: "Library name"},
					&cli.BoolFlag{Name: "enabled", Usage: "Run cleanup on the saved schedule"},
					&cli.BoolFlag{Name: "keep-latest", Value: true, Usage: "Always keep the newest copy of each group"},
					&cli.IntFlag{Name: "age-threshold", Required: true, Usage: "Only delete copies older than this many days"},
					&cli.StringFlag{Name: "schedule", Usage: "Cron schedule (default: daily at 3 AM)"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.PolicySave(c.Context, db, bus, ops.PolicySaveInput{
						Library:          c.String("library"),
						Enabled:          c.Bool("enabled"),
						KeepLatest:       c.Bool("keep-latest"),
						AgeThresholdDays: c.Int("age-threshold"),
						Schedule:         c.String("schedule"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// reportCmd creates the report command.
func reportCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Build the aggregate duplicate report",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "library", Aliases: []string{"l"}, Value: "default", Usage: "Library name"},
			&cli.BoolFlag{Name: "json", Usage: "Emit JSON instead of a table"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Report(c.Context, db, ops.ReportInput{
				Library: c.String("library"),
			})
			if err != nil {
				return outputError(err)
			}
			if c.Bool("json") {
				return outputJSON(output)
			}
			fmt.Printf("Library %q: %d duplicate groups, %d deletable copies, %s reclaimable\n",
				output.Library, output.Summary.GroupCount, output.Summary.DeletableCount,
				dedupe.FormatBytes(output.Summary.ReclaimableBytes))
			renderReportTable(output.Summary.Groups)
			return nil
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the duplicate report to disk",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "library", Aliases: []string{"l"}, Value: "default", Usage: "Library name"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "archive", Usage: "Format: csv|json|markdown|archive"},
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "Destination directory (default: the exports directory)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, db, cfg, ops.ExportInput{
				Library: c.String("library"),
				Format:  ops.ExportFormat(c.String("format")),
				Dir:     c.String("dir"),
				BaseDir: baseDir,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// statsCmd creates the stats command.
func statsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show library statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "library", Aliases: []string{"l"}, Value: "default", Usage: "Library name"},
			&cli.IntFlag{Name: "months", Aliases: []string{"m"}, Value: 12, Usage: "Growth window in months"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Stats(c.Context, db, ops.StatsInput{
				Library: c.String("library"),
				Months:  c.Int("months"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// activityCmd creates the activity command.
func activityCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "activity",
		Usage: "Show the recent mutation history of a library",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "library", Aliases: []string{"l"}, Value: "default", Usage: "Library name"},
			&cli.IntFlag{Name: "limit", Value: 50, Usage: "Number of entries"},
			&cli.BoolFlag{Name: "json", Usage: "Emit JSON instead of a table"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Activity(c.Context, db, ops.ActivityInput{
				Library: c.String("library"),
				Limit:   c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			if c.Bool("json") {
				return outputJSON(output)
			}
			renderActivityTable(output)
			return nil
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Permanently delete soft-deleted transcripts",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "library", Aliases: []string{"l"}, Usage: "Filter by library"},
			&cli.StringFlag{Name: "older-than", Usage: "Only purge if deleted more than N days ago (e.g., 7d)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.PurgeInput{}

			if library := c.String("library"); library != "" {
				input.Library = &library
			}
			if olderThan := c.String("older-than"); olderThan != "" {
				days, err := parseDuration(olderThan)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.OlderThanDays = &days
			}

			output, err := ops.Purge(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command: web dashboard plus the cron scheduler.
func serveCmd(db *sql.DB, cfg *config.Config, bus *event.Bus) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web dashboard and retention scheduler",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8321, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(c.Context)
			defer cancel()

			sched := schedule.NewScheduler(db, bus)
			if err := sched.Start(ctx); err != nil {
				return outputError(err)
			}

			srv := web.NewServer(db, cfg, bus, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Table rendering

func renderListTable(items []transcript.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Title", "Status", "Words", "Prot", "Created", "Tags"})
	for _, item := range items {
		prot := ""
		if item.Protected {
			prot = "yes"
		}
		names := make([]string, 0, len(item.Tags))
		for _, tag := range item.Tags {
			names = append(names, tag.Name)
		}
		t.AppendRow(table.Row{
			item.ID, item.Title, item.Status, item.WordCount, prot,
			formatEpoch(item.CreatedAt), strings.Join(names, ","),
		})
	}
	t.Render()
}

func renderDuplicatesTable(groups []ops.DuplicateGroupView) {
	if len(groups) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Checksum", "Title", "Copies", "Wasted", "Priority"})
	for _, g := range groups {
		t.AppendRow(table.Row{
			shortSum(g.Checksum), g.Title, g.Count,
			dedupe.FormatBytes(g.WastedBytes), g.Priority,
		})
	}
	t.Render()
}

func renderReportTable(groups []dedupe.GroupReport) {
	if len(groups) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Title", "Copies", "Deletable", "Wasted", "Priority"})
	for _, g := range groups {
		t.AppendRow(table.Row{
			g.Title, g.VersionCount, g.DeletableCount,
			dedupe.FormatBytes(g.WastedBytes), g.Priority,
		})
	}
	t.Render()
}

func renderActivityTable(output *ops.ActivityOutput) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Time", "Action", "Records", "Detail"})
	for _, e := range output.Entries {
		t.AppendRow(table.Row{formatEpoch(e.CreatedAt), e.Action, e.RecordCount, e.Detail})
	}
	t.Render()
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if scribeErr, ok := err.(*errors.ScribeError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", scribeErr.Code, scribeErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseTags splits a comma-separated string into a slice of tags.
func parseTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be non-negative")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}

// shortSum abbreviates a checksum for table display.
func shortSum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}

// formatEpoch renders a unix timestamp for table display.
func formatEpoch(ts int64) string {
	if ts == 0 {
		return ""
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04")
}
