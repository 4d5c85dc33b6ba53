package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/jask/studydeck/internal/database/repository"
	"github.com/jask/studydeck/internal/location"
	"github.com/jask/studydeck/internal/share"
)

var (
	printOnly  bool
	linksLimit int
)

var shareCmd = &cobra.Command{
	Use:   "share <route>",
	Short: "Copy the share link of a study set or folder",
	Example: `  studydeck share /sets/abc123
  studydeck share /@ana/folders/biology`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		route := location.Match(args[0])
		svc := share.New(client, cfg.API.PublicURL,
			share.WithStore(repository.NewShareLinkRepo(db)),
			share.WithLogger(logger),
		)
		if printOnly {
			url, err := svc.Link(cmd.Context(), route)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		}
		url, err := svc.Copy(cmd.Context(), route)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("copied"), url)
		return nil
	},
}

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "List share links copied from this machine",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		links, err := repository.NewShareLinkRepo(db).Latest(cmd.Context(), linksLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(links) == 0 {
			fmt.Fprintln(out, "no links copied yet")
			return nil
		}
		bold := color.New(color.Bold)
		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.AddRow(bold.Sprint("KIND"), bold.Sprint("TARGET"), bold.Sprint("URL"), bold.Sprint("COPIED"))
		for _, l := range links {
			tbl.AddRow(string(l.TargetKind), l.Target, l.URL, humanize.Time(l.CreatedAt))
		}
		fmt.Fprintln(out, tbl)
		return nil
	},
}

func init() {
	shareCmd.Flags().BoolVar(&printOnly, "print", false, "print the link instead of copying it")
	linksCmd.Flags().IntVarP(&linksLimit, "limit", "n", 20, "number of links to show")
}
