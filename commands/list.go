package commands

import (
	"github.com/spf13/cobra"

	"github.com/penwyp/go-virus-feed/internal/presentation/formatter"
	"github.com/penwyp/go-virus-feed/internal/util"
)

var (
	listQuery  string
	listOutput string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the virus feed",
	Long: `Prints one row per virus matching the query, in dataset order, with the
opacity its tile is drawn with. The first match is selected.`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listQuery, "query", "q", "",
		"Case-insensitive title substring")
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "table",
		"Output format (table, csv, json)")
}

func runList(cmd *cobra.Command, args []string) error {
	if err := initLogging(true); err != nil {
		return err
	}
	defer util.CloseLogger()

	f, err := formatter.NewFeedFormatter(listOutput)
	if err != nil {
		return err
	}

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p, _, err := loadPipeline(config)
	if err != nil {
		return err
	}
	if listQuery != "" {
		p.QueryChanged(listQuery)
	}

	return f.Format(cmd.OutOrStdout(), p.Snapshot().Tiles)
}
