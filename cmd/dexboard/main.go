// Package main provides the CLI entrypoint for dexboard.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/dexboard/internal/config"
	"github.com/verte-zerg/dexboard/internal/dashboard"
	"github.com/verte-zerg/dexboard/internal/dataset"
	"github.com/verte-zerg/dexboard/internal/engine"
	"github.com/verte-zerg/dexboard/internal/model"
	"github.com/verte-zerg/dexboard/internal/stats"
	"github.com/verte-zerg/dexboard/internal/store"
)

const (
	defaultView   = "combat"
	defaultFormat = "text"
)

var (
	dataPath     string
	filterRegion string
	filterCat    string
	minTotal     int
	maxTotal     int
	topN         int
	bins         int
	focusRegion  string

	dashboardView string

	summaryFormat string

	importOut   string
	importForce bool
)

var (
	headingColor = color.New(color.FgYellow, color.Bold)
	warnColor    = color.New(color.FgYellow)
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dexboard",
		Short:         "Terminal dashboard for creature stats",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDashboardCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dataPath, "data", "", "dataset path (.csv, .db, .sqlite, .sqlite3)")
	flags.StringVar(&filterRegion, "region", "", "comma-separated regions to keep, or 'all'")
	flags.StringVar(&filterCat, "category", "", "comma-separated categories to keep, or 'all'")
	flags.IntVar(&minTotal, "min-total", 0, "minimum total_stat (default: dataset minimum)")
	flags.IntVar(&maxTotal, "max-total", 0, "maximum total_stat (default: dataset maximum)")
	flags.IntVar(&topN, "top", stats.DefaultTop, "records listed for the focused region")
	flags.IntVar(&bins, "bins", stats.DefaultBins, "health histogram bins")
	flags.StringVar(&focusRegion, "focus", "", "region for the top records list (default: first region)")

	rootCmd.Flags().StringVar(&dashboardView, "view", defaultView, "initial tab: "+strings.Join(dashboard.TabNames, ", "))

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newValuesCmd())
	rootCmd.AddCommand(newImportCmd())

	return rootCmd
}

// session is the loaded dataset plus the resolved filter settings shared by
// every command.
type session struct {
	path     string
	table    *model.Table
	criteria engine.Criteria
	opts     stats.Options
}

func loadSession(cmd *cobra.Command, fileCfg config.FileConfig) (session, error) {
	path := dataPath
	applyStringConfig(cmd, "data", &path, fileCfg.Dataset.Path)
	if path == "" {
		path = config.DefaultDatasetPath()
	}
	columns, err := dataset.ColumnsFrom(fileCfg.Dataset.Columns.Headers())
	if err != nil {
		return session{}, fmt.Errorf("invalid [dataset.columns] config: %w", err)
	}
	table, err := dataset.NewProvider(path, columns).Load(cmd.Context())
	if err != nil {
		return session{}, err
	}
	if table.Len() == 0 {
		warnf("dataset %s has no records\n", path)
	}

	criteria, err := resolveCriteria(cmd, fileCfg.Dashboard, table.TotalBounds())
	if err != nil {
		return session{}, err
	}

	opts := stats.Options{Top: topN, Bins: bins, Region: focusRegion}
	applyIntConfig(cmd, "top", &opts.Top, fileCfg.Dashboard.Top)
	applyIntConfig(cmd, "bins", &opts.Bins, fileCfg.Dashboard.Bins)
	if opts.Top <= 0 {
		return session{}, fmt.Errorf("--top must be > 0")
	}
	if opts.Bins <= 0 {
		return session{}, fmt.Errorf("--bins must be > 0")
	}
	return session{path: path, table: table, criteria: criteria, opts: opts}, nil
}

func resolveCriteria(cmd *cobra.Command, cfg config.DashboardConfig, bounds model.Range) (engine.Criteria, error) {
	criteria := engine.Criteria{
		Regions:    engine.ParseSelection(filterRegion),
		Categories: engine.ParseSelection(filterCat),
		Total:      bounds,
	}
	applyListConfig(cmd, "region", &criteria.Regions, cfg.Regions)
	applyListConfig(cmd, "category", &criteria.Categories, cfg.Categories)
	applyIntConfig(cmd, "min-total", &criteria.Total.Min, cfg.MinTotal)
	applyIntConfig(cmd, "max-total", &criteria.Total.Max, cfg.MaxTotal)
	if cmd.Flags().Changed("min-total") {
		criteria.Total.Min = minTotal
	}
	if cmd.Flags().Changed("max-total") {
		criteria.Total.Max = maxTotal
	}
	if criteria.Total.Min > criteria.Total.Max {
		return engine.Criteria{}, fmt.Errorf("--min-total (%d) must not exceed --max-total (%d)", criteria.Total.Min, criteria.Total.Max)
	}
	criteria.Total = criteria.Total.Clamp(bounds)
	return criteria, nil
}

func loadFileConfig() (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return fileCfg, nil
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "view", &dashboardView, fileCfg.Dashboard.View)
	if err := validateView(dashboardView); err != nil {
		return err
	}
	s, err := loadSession(cmd, fileCfg)
	if err != nil {
		return err
	}

	m := dashboard.NewModel(s.table, dashboard.Config{
		Criteria: s.criteria,
		Top:      s.opts.Top,
		Bins:     s.opts.Bins,
		Region:   s.opts.Region,
		View:     dashboardView,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func validateView(view string) error {
	for _, name := range dashboard.TabNames {
		if strings.EqualFold(view, name) {
			return nil
		}
	}
	return fmt.Errorf("--view must be one of: %s", strings.Join(dashboard.TabNames, ", "))
}

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the dashboard report",
		Args:  cobra.NoArgs,
		RunE:  runSummaryCmd,
	}
	cmd.Flags().StringVar(&summaryFormat, "format", defaultFormat, "output format: text, json, yaml")
	return cmd
}

func runSummaryCmd(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(strings.TrimSpace(summaryFormat))
	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("--format must be one of: text, json, yaml")
	}
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	s, err := loadSession(cmd, fileCfg)
	if err != nil {
		return err
	}
	report, err := stats.BuildReport(s.table, s.criteria, s.opts)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	return writeReport(cmd.OutOrStdout(), format, s.path, report)
}

func writeReport(w io.Writer, format, path string, report stats.Report) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return nil
	}

	if _, err := headingColor.Fprintf(w, "dexboard: %s\n", path); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	filters := fmt.Sprintf("Filters: regions=%s categories=%s total=%d..%d",
		selectionLabel(report.Criteria.Regions),
		selectionLabel(report.Criteria.Categories),
		report.Criteria.Total.Min,
		report.Criteria.Total.Max,
	)
	if _, err := fmt.Fprintf(w, "%s\n\n", filters); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderReport(w, report); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func selectionLabel(values []string) string {
	if len(values) == 0 {
		return "all"
	}
	return strings.Join(values, ",")
}

func newValuesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "values <field>",
		Short: "List distinct values of a categorical field",
		Args:  cobra.ExactArgs(1),
		RunE:  runValuesCmd,
	}
}

func runValuesCmd(cmd *cobra.Command, args []string) error {
	field, err := model.ParseField(strings.TrimSpace(args[0]))
	if err != nil {
		return err
	}
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	s, err := loadSession(cmd, fileCfg)
	if err != nil {
		return err
	}
	values, err := engine.Values(engine.Filter(s.table, s.criteria), field)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		logErrln("No values match the current filters.")
		return nil
	}
	for _, v := range values {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), v); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <csv>",
		Short: "Convert a CSV dataset into a SQLite dataset",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
	cmd.Flags().StringVar(&importOut, "out", "", "output SQLite path (default: <csv> with .db extension)")
	cmd.Flags().BoolVar(&importForce, "force", false, "overwrite an existing output file")
	return cmd
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	src := args[0]
	if dataset.IsSQLitePath(src) {
		return fmt.Errorf("import expects a CSV file, got %s", src)
	}
	out := importOut
	if out == "" {
		out = strings.TrimSuffix(src, filepath.Ext(src)) + ".db"
	}
	if !dataset.IsSQLitePath(out) {
		return fmt.Errorf("--out must end in .db, .sqlite or .sqlite3")
	}
	if !importForce {
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("output already exists: %s (use --force to overwrite)", out)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat output: %w", err)
		}
	}

	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	columns, err := dataset.ColumnsFrom(fileCfg.Dataset.Columns.Headers())
	if err != nil {
		return fmt.Errorf("invalid [dataset.columns] config: %w", err)
	}
	n, err := importDataset(cmd.Context(), src, out, columns)
	if err != nil {
		return err
	}
	logErrf("Imported %d records into %s\n", n, out)
	return nil
}

func importDataset(ctx context.Context, src, out string, columns dataset.ColumnMap) (int, error) {
	table, err := dataset.NewProvider(src, columns).Load(ctx)
	if err != nil {
		return 0, err
	}
	st, err := store.Open(out)
	if err != nil {
		return 0, fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	if err := st.ReplaceRecords(ctx, table.Records()); err != nil {
		return 0, fmt.Errorf("failed to write records: %w", err)
	}
	return table.Len(), nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyListConfig(cmd *cobra.Command, name string, target *[]string, value []string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = engine.NormalizeSelection(value)
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# dexboard configuration
# Uncomment a value to enable it. CLI flags override config values.

[dataset]
# path = %q

# Header names used in the CSV file, keyed by field.
[dataset.columns]
# name = "Nombre"
# category_primary = "Tipo"
# region = "País"
# attack = "Ataque"
# defense = "Defensa"
# speed = "Velocidad"
# health = "HP"
# total_stat = "Total"

[dashboard]
# view = %q            # Initial tab: %s
# regions = []                # Regions to keep (empty keeps all)
# categories = []             # Categories to keep (empty keeps all)
# min-total = 0               # Minimum total_stat
# max-total = 800             # Maximum total_stat
# top = %d                    # Records listed for the focused region
# bins = %d                   # Health histogram bins
`,
		config.DefaultDatasetPath(),
		defaultView,
		strings.Join(dashboard.TabNames, ", "),
		stats.DefaultTop,
		stats.DefaultBins,
	)
}

func warnf(format string, args ...any) {
	if _, err := warnColor.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
