package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	readOnly   bool
	zoomFlag   float64
	logFile    string
	sqlitePath string
	dbURL      string
	mysqlURL   string
	schemaName string
	tables     string
	pngOut     string
	svgOut     string
)

var rootCmd = &cobra.Command{
	Use:   "erdraw",
	Short: "Draw and edit entity-relationship diagrams in the terminal",
	Long: `erdraw is a terminal ER diagram editor. It can import a schema from
PostgreSQL, MySQL, or SQLite, lets you resize, move and link tables with the
mouse or keyboard, and exports the diagram as PNG or SVG.`,
	Args: cobra.MaximumNArgs(1),
	RunE: run,
}

func init() {
	rootCmd.Flags().BoolVar(&readOnly, "read-only", false, "Open the diagram without editing")
	rootCmd.Flags().Float64Var(&zoomFlag, "zoom", 0, "Initial zoom level (default from ~/.erdrawrc or 1)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Write debug logs to this file")
	rootCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Import schema from a SQLite database file")
	rootCmd.Flags().StringVar(&dbURL, "db-url", "", "Import schema from a PostgreSQL connection string")
	rootCmd.Flags().StringVar(&mysqlURL, "mysql-url", "", "Import schema from a MySQL connection string")
	rootCmd.Flags().StringVarP(&schemaName, "schema", "s", "public", "Database schema name")
	rootCmd.Flags().StringVarP(&tables, "tables", "t", "", "Specific tables to import (comma-separated)")
	rootCmd.Flags().StringVar(&pngOut, "png", "", "Export the diagram to this PNG file and exit")
	rootCmd.Flags().StringVar(&svgOut, "svg", "", "Export the diagram to this SVG file and exit")
}

func run(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if cmd.Flags().Changed("read-only") {
		cfg.ReadOnly = readOnly
	}
	if zoomFlag != 0 {
		if zoomFlag < minZoom || zoomFlag > maxZoom {
			return fmt.Errorf("--zoom must be between %g and %g", minZoom, maxZoom)
		}
		cfg.Zoom = zoomFlag
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}

	name := "diagram"
	if len(args) == 1 {
		name = args[0]
	}

	opts := importOptions{
		sqlitePath: sqlitePath,
		dbURL:      dbURL,
		mysqlURL:   mysqlURL,
		schemaName: schemaName,
		tables:     splitList(tables),
	}
	if opts.sources() > 1 {
		return fmt.Errorf("only one of --db-url, --mysql-url, or --sqlite can be specified")
	}

	var d *Diagram
	if opts.sources() == 1 {
		var err error
		d, err = importDiagram(context.Background(), name, opts)
		if err != nil {
			return err
		}
	} else {
		d = demoDiagram(name)
	}

	if pngOut != "" || svgOut != "" {
		return exportAndExit(d)
	}

	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "erdraw")
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	p := tea.NewProgram(
		newModel(d, cfg),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	_, err := p.Run()
	return err
}

func exportAndExit(d *Diagram) error {
	if pngOut != "" {
		if err := ExportPNG(d, pngOut, defaultZoom); err != nil {
			return fmt.Errorf("failed to export PNG: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Exported to %s\n", pngOut)
	}
	if svgOut != "" {
		if err := ExportSVGFile(d, svgOut, defaultZoom); err != nil {
			return fmt.Errorf("failed to export SVG: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Exported to %s\n", svgOut)
	}
	return nil
}

// demoDiagram is shown when no database is given.
func demoDiagram(name string) *Diagram {
	return DiagramFromSchema(name, &Schema{Tables: []SchemaTable{
		{
			Name:       "users",
			PrimaryKey: []string{"id"},
			Columns: []SchemaColumn{
				{Name: "id", Type: "int"},
				{Name: "email", Type: "varchar", IsUnique: true},
				{Name: "name", Type: "varchar", Nullable: true},
			},
		},
		{
			Name:       "posts",
			PrimaryKey: []string{"id"},
			Columns: []SchemaColumn{
				{Name: "id", Type: "int"},
				{Name: "author_id", Type: "int"},
				{Name: "title", Type: "varchar"},
				{Name: "body", Type: "text", Nullable: true},
			},
			Relations: []SchemaRelation{
				{SourceColumn: "author_id", TargetTable: "users", TargetColumn: "id", Cardinality: "N:1"},
			},
		},
		{
			Name:       "comments",
			PrimaryKey: []string{"id"},
			Columns: []SchemaColumn{
				{Name: "id", Type: "int"},
				{Name: "post_id", Type: "int"},
				{Name: "user_id", Type: "int"},
				{Name: "body", Type: "text"},
			},
			Relations: []SchemaRelation{
				{SourceColumn: "post_id", TargetTable: "posts", TargetColumn: "id", Cardinality: "N:1"},
				{SourceColumn: "user_id", TargetTable: "users", TargetColumn: "id", Cardinality: "N:1"},
			},
		},
	}})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
