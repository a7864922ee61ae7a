package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/handbook-cli/internal/docnum"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Rendered site maintenance",
}

var docsRenumberCmd = &cobra.Command{
	Use:   "renumber",
	Short: "Fix chapter numbers in the rendered site",
	Long: `Rewrites every chapter page in the docs directory in place: section-header
numbers follow each page's position in file-name order (starting at 0), the
table of contents gets chapter numbers, and the index redirect points at the
landing chapter.

Run once per render. The rewrite is not idempotent.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = cfg.Docs.Dir
		}

		res, err := docnum.Renumber(dir)
		if err != nil {
			return eris.Wrap(err, "docs renumber")
		}

		fmt.Printf("Renumbered %d chapter pages in %s\n", len(res.Files), dir)
		return nil
	},
}

func init() {
	docsRenumberCmd.Flags().String("dir", "", "rendered site directory (default: from config or docs)")
	docsCmd.AddCommand(docsRenumberCmd)
	rootCmd.AddCommand(docsCmd)
}
