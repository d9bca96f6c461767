package main

import (
	"fmt"
	"strconv"

	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/model"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/service"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/store"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func newLessonsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lessons",
		Short: "List lessons with their card counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := openDB(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			resp, err := service.NewLessonService(store.NewSQLStore(db)).ListLessons(ctx, service.ListLessonsRequest{})
			if err != nil {
				return err
			}

			lessons := lo.Map(resp.Lessons, func(s service.LessonSummary, _ int) model.Lesson {
				return s.Lesson
			})
			fmt.Fprintln(cmd.OutOrStdout(), renderLessons(lessons))
			return nil
		},
	}
}

func renderLessons(lessons []model.Lesson) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Title", "Cards", "Cover"})

	for _, l := range lessons {
		cover := "-"
		if l.CoverImage != "" {
			cover = l.CoverImage
		}
		tw.AppendRow(table.Row{strconv.FormatInt(l.ID, 10), l.Title, strconv.Itoa(l.TotalCards), cover})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}
