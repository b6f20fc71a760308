package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wellsite-tools/mudwatch/internal/analysis"
	"github.com/wellsite-tools/mudwatch/internal/config"
	"github.com/wellsite-tools/mudwatch/internal/database"
	"github.com/wellsite-tools/mudwatch/internal/report"
	"github.com/wellsite-tools/mudwatch/internal/server"
	"github.com/wellsite-tools/mudwatch/internal/timeline"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "mudwatch",
	Short:   "Drilling fluids analytics for shift handover",
	Long:    "Mudwatch turns daily drilling-fluids records into anomaly events, causal links, and plain-English handover insights.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("mudwatch", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/mudwatch/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to point source.database_path at your records database.")
		return nil
	},
}

// --- jobs command ---

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List jobs in the records database",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, closeDB, err := openEngine()
		if err != nil {
			return err
		}
		defer closeDB()

		jobs, err := engine.ListJobs()
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			fmt.Printf("No jobs with at least %d reports.\n", cfg.Analysis.MinReports)
			return nil
		}

		fmt.Printf("%-12s %-12s %-12s %8s %8s %8s\n",
			"JOB", "FIRST", "LAST", "REPORTS", "SAMPLES", "CHEMS")
		for _, j := range jobs {
			fmt.Printf("%-12s %-12s %-12s %8d %8d %8d\n",
				j.JobID, j.FirstDate, j.LastDate,
				j.ReportCount, j.SampleCount, j.ChemicalTxnCount)
		}
		return nil
	},
}

// --- summary command ---

var summaryCmd = &cobra.Command{
	Use:   "summary [job]",
	Short: "Show aggregate stats for a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, closeDB, err := openEngine()
		if err != nil {
			return err
		}
		defer closeDB()

		s, err := engine.Summary(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Job %s\n\n", s.JobID)
		fmt.Printf("  Dates: %s to %s (%d report days)\n", s.FirstDate, s.LastDate, s.TotalDays)
		fmt.Printf("  Max depth: %s m MD / %s m TVD\n", floatStr(s.MaxDepthMD), floatStr(s.MaxDepthTVD))
		fmt.Printf("  Mud type: %s\n", strStr(s.MudType))
		fmt.Printf("  Samples: %d\n", s.TotalSamples)
		fmt.Printf("  Equipment days: %d\n", s.EquipmentDays)
		fmt.Printf("  Chemical transactions: %d (%d unique items)\n", s.ChemicalTxns, s.UniqueChemicals)
		if len(s.Engineers) > 0 {
			fmt.Printf("  Engineers: %s\n", strings.Join(s.Engineers, ", "))
		}
		return nil
	},
}

// --- events command ---

var (
	eventsStart    string
	eventsEnd      string
	eventsSeverity string
)

var eventsCmd = &cobra.Command{
	Use:   "events [job]",
	Short: "Detect anomaly events for a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, closeDB, err := openEngine()
		if err != nil {
			return err
		}
		defer closeDB()

		result, err := engine.Events(args[0], eventsStart, eventsEnd, strings.ToLower(eventsSeverity))
		if err != nil {
			return err
		}

		if result.Total == 0 {
			fmt.Println("No events detected.")
			return nil
		}

		for _, ev := range result.Events {
			fmt.Printf("%s  %-6s  %-22s  %s\n", ev.Date, strings.ToUpper(string(ev.Severity)), ev.Type, ev.Title)
			fmt.Printf("            %s\n", ev.Description)
		}
		fmt.Printf("\n%d event(s), %d causal link(s)\n", result.Total, len(result.Links))
		return nil
	},
}

func init() {
	eventsCmd.Flags().StringVar(&eventsStart, "start", "", "Start date (ISO, inclusive)")
	eventsCmd.Flags().StringVar(&eventsEnd, "end", "", "End date (ISO, inclusive)")
	eventsCmd.Flags().StringVar(&eventsSeverity, "severity", "", "Filter by severity: high, medium, low")
}

// --- insights command ---

var insightsCmd = &cobra.Command{
	Use:   "insights [job] [date]",
	Short: "Narrate one day of a job",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, closeDB, err := openEngine()
		if err != nil {
			return err
		}
		defer closeDB()

		result, err := engine.Insights(args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Printf("%s — %s\n\n", result.Date, result.Summary)
		for _, ins := range result.Insights {
			fmt.Printf("[%s] %s\n", strings.ToUpper(string(ins.Severity)), ins.Title)
			fmt.Printf("  %s\n", ins.Narrative)
			if ins.Cause != nil {
				fmt.Printf("  %s\n", *ins.Cause)
			}
		}
		if len(result.Insights) > 0 {
			fmt.Println()
		}

		for _, shift := range []string{timeline.ShiftDay, timeline.ShiftEvening, timeline.ShiftNight} {
			fmt.Printf("  %s\n", result.ShiftNotes[shift])
		}

		if len(result.Recommendations) > 0 {
			fmt.Println("\nRecommendations:")
			for i, rec := range result.Recommendations {
				fmt.Printf("  %d. %s\n", i+1, rec)
			}
		}
		return nil
	},
}

// --- report command ---

var (
	reportShift  string
	reportOutput string
)

var reportCmd = &cobra.Command{
	Use:   "report [job] [date]",
	Short: "Generate a shift handover report (Markdown)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, closeDB, err := openEngine()
		if err != nil {
			return err
		}
		defer closeDB()

		data, err := engine.Report(args[0], args[1], strings.ToLower(reportShift))
		if err != nil {
			return err
		}

		md := report.Markdown(data)
		if reportOutput == "" || reportOutput == "-" {
			fmt.Print(md)
			return nil
		}
		if err := os.WriteFile(reportOutput, []byte(md), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Printf("Wrote %s\n", reportOutput)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportShift, "shift", "day", "Shift: day, evening, or night")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Write to file instead of stdout")
}

// --- analyze command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [job...]",
	Short: "Run detection across jobs and print event counts",
	Long:  "Runs the full detection pipeline for the given jobs (or every cataloged job) and prints per-job event totals.",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, closeDB, err := openEngine()
		if err != nil {
			return err
		}
		defer closeDB()

		jobs := args
		if len(jobs) == 0 {
			listings, err := engine.ListJobs()
			if err != nil {
				return err
			}
			for _, l := range listings {
				jobs = append(jobs, l.JobID)
			}
		}
		if len(jobs) == 0 {
			fmt.Println("No jobs to analyze.")
			return nil
		}

		results, err := engine.AnalyzeAll(context.Background(), jobs)
		if err != nil {
			return err
		}

		sorted := make([]string, 0, len(results))
		for job := range results {
			sorted = append(sorted, job)
		}
		sort.Strings(sorted)

		fmt.Printf("%-12s %8s %8s %8s %8s %8s\n", "JOB", "EVENTS", "HIGH", "MEDIUM", "LOW", "LINKS")
		for _, job := range sorted {
			res := results[job]
			var high, medium, low int
			for _, ev := range res.Events {
				switch ev.Severity {
				case "high":
					high++
				case "medium":
					medium++
				case "low":
					low++
				}
			}
			fmt.Printf("%-12s %8d %8d %8d %8d %8d\n", job, res.Total, high, medium, low, len(res.Links))
		}
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, closeDB, err := openEngine()
		if err != nil {
			return err
		}
		defer closeDB()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(engine, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (overrides config)")
}

// --- helpers ---

func openEngine() (*analysis.Engine, func(), error) {
	dbPath := cfg.DatabasePath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating data directory: %w", err)
	}
	db, err := database.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}

	precedence := timeline.LastWins
	if cfg.Analysis.DuplicatePrecedence == "first" {
		precedence = timeline.FirstWins
	}
	engine := analysis.New(db, precedence, cfg.Analysis.MinReports)
	return engine, func() { db.Close() }, nil
}

func floatStr(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

func strStr(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}
