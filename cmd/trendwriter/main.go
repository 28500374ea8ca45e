package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "trendwriter",
		Short: "Scan tech sources for viral trends and turn the best into articles",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(scanCmd())
	root.AddCommand(processCmd())
	root.AddCommand(trendsCmd())
	root.AddCommand(statsCmd())
	root.AddCommand(sweepCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(runCmd())

	return root
}

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run one scan cycle across all enabled sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan()
		},
	}
}

func processCmd() *cobra.Command {
	var id int64

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Generate an article from the best eligible trend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(id)
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "process a specific trend instead of the best one")
	return cmd
}

func trendsCmd() *cobra.Command {
	var (
		jsonOutput bool
		minScore   int
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Show stored trends ranked by viral score",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrends(jsonOutput, minScore, limit)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().IntVar(&minScore, "min-score", 0, "minimum viral score")
	cmd.Flags().IntVar(&limit, "limit", 20, "max trends to show")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show pipeline statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats()
		},
	}
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete old processed low-tier trends",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep()
		},
	}
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func runCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start daemon with scheduler and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
