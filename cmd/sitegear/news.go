package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sitegear/sitegear/modules/news"
)

func newNewsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "news",
		Short: "Manage news items",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Create a news item",
		Long: `Create a news item in the site database. Items with a future --publish-at
stay unpublished until the news:publish task reaches them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			item, err := newsItem(v)
			if err != nil {
				return err
			}

			s, err := openSite(v)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := s.close(ctx); err == nil {
					err = cerr
				}
			}()
			pool, err := s.database(ctx)
			if err != nil {
				return err
			}
			if err := news.NewPostgresStore(pool).Create(ctx, item); err != nil {
				return err
			}

			state := "published"
			if !item.Published {
				state = "scheduled for " + item.PublishAt.Format(time.RFC3339)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", item.Slug, state)
			return nil
		},
	}

	f := add.Flags()
	f.String("title", "", "item title")
	f.String("slug", "", "URL slug; derived from the title when empty")
	f.String("summary", "", "short summary shown in lists")
	f.String("body", "", "item body (markdown)")
	f.String("body-file", "", "read the body from a file")
	f.String("publish-at", "", "publication time, RFC 3339 or YYYY-MM-DD; default now")
	_ = add.MarkFlagRequired("title")
	add.MarkFlagsMutuallyExclusive("body", "body-file")

	cmd.AddCommand(add)
	return cmd
}

// newsItem reads the add flags into an item.
func newsItem(v *viper.Viper) (*news.Item, error) {
	item := &news.Item{
		Title:   v.GetString("title"),
		Slug:    v.GetString("slug"),
		Summary: v.GetString("summary"),
		Body:    v.GetString("body"),
	}
	if file := v.GetString("body-file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		item.Body = string(data)
	}
	if at := v.GetString("publish-at"); at != "" {
		t, err := parseTime(at)
		if err != nil {
			return nil, fmt.Errorf("--publish-at: %w", err)
		}
		item.PublishAt = t
	}
	return item, nil
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, s, time.Local)
}
