package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/studydeck/internal/api"
	"github.com/jask/studydeck/internal/database"
	"github.com/jask/studydeck/internal/database/repository"
)

var offline bool

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently viewed study sets and folders",
	Long: `List recently viewed study sets and folders, newest first.

When the service cannot be reached, or with --offline, the last snapshot
saved by a successful fetch is shown instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		items, fetchedAt, err := loadRecent(cmd.Context())
		if err != nil {
			return err
		}
		printRecent(cmd, items, fetchedAt)
		return nil
	},
}

func init() {
	recentCmd.Flags().BoolVar(&offline, "offline", false, "show the cached snapshot without calling the service")
}

func loadRecent(ctx context.Context) (api.RecentItems, time.Time, error) {
	repo := repository.NewRecentRepo(db)
	if !offline {
		items, err := client.Recent(ctx)
		if err == nil {
			now := database.Now()
			if err := repo.Replace(ctx, repository.SnapshotFromAPI(items, now)); err != nil {
				logger.Warn("cache recent items", zap.Error(err))
			}
			return items, time.Time{}, nil
		}
		logger.Warn("recent items fetch failed, using snapshot", zap.Error(err))
		color.New(color.FgYellow).Fprintf(color.Error, "service unavailable (%v); showing cached items\n", err)
	}
	rows, err := repo.List(ctx)
	if err != nil {
		return api.RecentItems{}, time.Time{}, fmt.Errorf("read snapshot: %w", err)
	}
	var fetchedAt time.Time
	if len(rows) > 0 {
		fetchedAt = rows[0].FetchedAt
	}
	return repository.ToAPI(rows), fetchedAt, nil
}

type recentRow struct {
	kind, title, owner, path string
	viewedAt                 time.Time
}

func printRecent(cmd *cobra.Command, items api.RecentItems, fetchedAt time.Time) {
	var rows []recentRow
	for _, s := range items.Sets {
		owner := ""
		if s.User != nil {
			owner = "@" + s.User.Username
		}
		rows = append(rows, recentRow{"set", s.Title, owner, "/" + s.ID, s.ViewedAt})
	}
	for _, f := range items.Folders {
		owner, path := "", ""
		if f.User != nil {
			owner = "@" + f.User.Username
			path = fmt.Sprintf("/@%s/folders/%s", f.User.Username, f.SlugOrID())
		}
		rows = append(rows, recentRow{"folder", f.Title, owner, path, f.ViewedAt})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].viewedAt.After(rows[j].viewedAt) })

	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, "nothing viewed yet")
		return
	}
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	tbl.AddRow(bold.Sprint("KIND"), bold.Sprint("TITLE"), bold.Sprint("OWNER"), bold.Sprint("VIEWED"), bold.Sprint("PATH"))
	for _, r := range rows {
		tbl.AddRow(r.kind, r.title, r.owner, humanize.Time(r.viewedAt), faint.Sprint(r.path))
	}
	fmt.Fprintln(out, tbl)
	if !fetchedAt.IsZero() {
		fmt.Fprintln(out, faint.Sprintf("cached %s", humanize.Time(fetchedAt)))
	}
}
