// Package cli is the command-line front end: generate invoices to disk,
// inspect generated PDFs and list the available spreadsheets.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drh-piracicaba/fatura-coparticipacao/internal/application/service"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/config"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/container"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/report"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/storage"
	"github.com/drh-piracicaba/fatura-coparticipacao/pkg/utils"
)

// CLIApp represents the command-line interface application
type CLIApp struct {
	rootCmd *cobra.Command
	version string

	configFile string
	baseDir    string
	verbose    bool
}

// NewCLIApp creates the command tree
func NewCLIApp(version string) *CLIApp {
	app := &CLIApp{version: version}

	rootCmd := &cobra.Command{
		Use:           "fatura",
		Short:         "Faturas de coparticipação do DRH",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate(`{{printf "fatura version: %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVarP(&app.configFile, "config-file", "C", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&app.baseDir, "base-dir", "b", "", "Directory holding one subdirectory per year (overrides invoices.base_dir)")
	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Log pipeline details to stderr")

	rootCmd.AddCommand(
		app.generateCommand(),
		app.inspectCommand(),
		app.monthsCommand(),
		app.yearsCommand(),
	)

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// ExecuteContext runs the CLI application with ctx
func (app *CLIApp) ExecuteContext(ctx context.Context) error {
	return app.rootCmd.ExecuteContext(ctx)
}

// SetOutput redirects command output (for testing)
func (app *CLIApp) SetOutput(w io.Writer) {
	app.rootCmd.SetOut(w)
	app.rootCmd.SetErr(w)
}

// SetArgs overrides os.Args (for testing)
func (app *CLIApp) SetArgs(args []string) {
	app.rootCmd.SetArgs(args)
}

// start loads configuration and starts a container without metrics
func (app *CLIApp) start(ctx context.Context) (*container.Container, error) {
	cfg, err := config.Load(app.configFile)
	if err != nil {
		return nil, err
	}
	if app.baseDir != "" {
		cfg.Invoices.BaseDir = app.baseDir
	}
	cfg.Metrics.Enabled = false

	logger, err := utils.NewCLILogger(app.verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	c, err := container.NewContainer(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (app *CLIApp) generateCommand() *cobra.Command {
	var (
		req    service.InvoiceRequest
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the invoice of one functional identifier",
		Example: "  fatura generate --year 2026 --month janeiro --id 500 --out ./faturas",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.start(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			result, err := c.Invoices().Generate(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("%s", service.UserMessage(req.Year, err))
			}

			content, err := io.ReadAll(result.Document)
			if err != nil {
				return fmt.Errorf("failed to read document: %w", err)
			}

			path, err := storage.NewLocalFileStorage(outDir, c.Logger()).SaveDocument(result.FileName, content)
			if err != nil {
				return err
			}

			st := result.Statement
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Fatura gerada: %s\n", path)
			fmt.Fprintf(out, "Funcional: %s | Titular: %s | Mês: %s\n", st.FunctionalID, st.Holder, st.MonthName)
			fmt.Fprintf(out, "Linhas: %d | Total: R$ %s\n", len(st.Lines), st.Total.StringFixed(2))
			for _, w := range st.Warnings {
				fmt.Fprintf(out, "Aviso: %s\n", w)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Year, "year", "y", "", "Four digit year")
	cmd.Flags().StringVarP(&req.Month, "month", "m", "", "Month name as in the file name (janeiro, marco, ...)")
	cmd.Flags().StringVarP(&req.FunctionalID, "id", "i", "", "Functional identifier (nr_funcional)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory to save the PDF")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("month")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func (app *CLIApp) inspectCommand() *cobra.Command {
	var showText bool

	cmd := &cobra.Command{
		Use:   "inspect <file.pdf>",
		Short: "Show the page count and text of a generated invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ins, err := report.InspectFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Páginas: %d\n", ins.Pages)
			if title := ins.Metadata["title"]; title != "" {
				fmt.Fprintf(out, "Título: %s\n", title)
			}
			if showText {
				for i, text := range ins.Text {
					fmt.Fprintf(out, "--- página %d ---\n%s\n", i+1, strings.TrimSpace(text))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showText, "text", "t", false, "Print the extracted text of every page")
	return cmd
}

func (app *CLIApp) monthsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "months <year>",
		Short: "List the months of a year that have a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.start(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			months, err := c.Invoices().Months(args[0])
			if err != nil {
				return fmt.Errorf("%s", service.UserMessage(args[0], err))
			}
			for _, m := range months {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}
}

func (app *CLIApp) yearsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "years",
		Short: "List the selectable years",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.start(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			years, err := c.Invoices().Years()
			if err != nil {
				return err
			}
			for _, y := range years {
				fmt.Fprintln(cmd.OutOrStdout(), y)
			}
			return nil
		},
	}
}
