package main

import (
	"fmt"

	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/importer"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/service"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/store"
	"github.com/spf13/cobra"
)

func newImportCommand(a *app) *cobra.Command {
	var opts importer.Options

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Create cards in a lesson from an .xlsx or .csv file",
		Long: "Reads english_text, translation and an optional order from the first three columns.\n" +
			"Cards without an order are appended after the existing ones.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := openDB(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			im := importer.New(service.NewCardService(store.NewSQLStore(db)))
			res, err := im.ImportFile(ctx, args[0], opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "created %d cards, skipped %d empty rows\n", res.Created, res.Skipped)
			for _, rowErr := range res.Errors {
				fmt.Fprintln(out, rowErr.Error())
			}

			if len(res.Errors) > 0 {
				return fmt.Errorf("%d of %d rows were not imported", len(res.Errors), res.Processed)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&opts.LessonID, "lesson", 0, "Lesson to add the cards to")
	cmd.Flags().StringVar(&opts.Sheet, "sheet", "", "Workbook sheet name (default: first sheet)")
	cmd.Flags().BoolVar(&opts.SkipHeader, "skip-header", false, "Ignore the first row")
	_ = cmd.MarkFlagRequired("lesson")

	return cmd
}
