package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/solutyics/loanform/internal/discovery"
	"github.com/solutyics/loanform/internal/form"
	"github.com/solutyics/loanform/internal/logging"
	"github.com/solutyics/loanform/internal/predict"
	"github.com/solutyics/loanform/internal/server"
	"github.com/solutyics/loanform/internal/session"
	"github.com/solutyics/loanform/internal/ui"
)

// Serve command flags
var (
	serveHost      string
	servePort      int
	serveAdvertise bool
	serveName      string
	serveOrigins   []string
)

// Predict and validate command flags
var (
	applicantFile string
	outputFormat  string
	fieldFlags    = make(map[form.Field]*string)
)

// Discover command flags
var scanTimeout time.Duration

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(discoverCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen address (default from config, 127.0.0.1)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (default from config, 8080)")
	serveCmd.Flags().BoolVar(&serveAdvertise, "advertise", false, "Announce the form on the local network over mDNS")
	serveCmd.Flags().StringVar(&serveName, "name", discovery.DefaultInstanceName, "mDNS instance name")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "allowed-origin", nil, "Cross-origin caller allowed to use the API (repeatable, * for any)")

	for _, cmd := range []*cobra.Command{predictCmd, validateCmd} {
		cmd.Flags().StringVarP(&applicantFile, "file", "f", "", "Applicant file (YAML or JSON, - for stdin)")
		cmd.Flags().StringVar(&outputFormat, "format", formatText, "Output format (text, json, yaml)")
	}
	for _, f := range form.AllFields {
		fieldFlags[f] = new(string)
		usage := fmt.Sprintf("%s (overrides the file)", f.Label())
		predictCmd.Flags().StringVar(fieldFlags[f], string(f), "", usage)
		validateCmd.Flags().StringVar(fieldFlags[f], string(f), "", usage)
	}

	discoverCmd.Flags().DurationVar(&scanTimeout, "wait", discovery.DefaultScanTimeout, "How long to listen for servers")
}

// serveCmd hosts the form as a web page
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the form as a web page and JSON API",
	Long: `Start the web server. The form page validates fields live over a
WebSocket, POST /api/predict accepts a JSON object of field values,
and /metrics exposes Prometheus metrics.`,
	Example: `  # Serve on the default address (127.0.0.1:8080)
  loanform serve

  # Listen on every interface and announce over mDNS
  loanform serve --host 0.0.0.0 --advertise

  # Allow a separate front end to call the API
  loanform serve --allowed-origin https://apply.example.com`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host = serveHost
	}
	if flags.Changed("port") {
		cfg.Server.Port = servePort
	}
	if flags.Changed("advertise") {
		cfg.Server.Advertise = serveAdvertise
	}
	if flags.Changed("allowed-origin") {
		cfg.Server.AllowedOrigins = serveOrigins
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	predictor, release := newPredictor(ctx, cfg)
	defer release()

	srv, err := server.New(&server.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Advertise:      cfg.Server.Advertise,
		InstanceName:   serveName,
		RequestTimeout: cfg.Predict.Timeout,
	}, predictor)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving the loan form on http://%s (Ctrl+C to stop)\n", cfg.Server.Address())
	return srv.Start(ctx)
}

// predictCmd submits an applicant without the interactive form
var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Validate and submit an applicant",
	Long: `Validate an applicant and submit it to the prediction service.

Values come from an applicant file, from per-field flags, or both; flags win.
The command exits non-zero when a field is invalid or the submission fails.`,
	Example: `  # Submit an applicant file
  loanform predict -f applicant.yaml

  # Override one value and print JSON
  loanform predict -f applicant.yaml --age 42 --format json

  # Everything on the command line
  loanform predict --age 30 --incomeSource Salary --dependents 2 \
    --annualIncome 50000 --creditScore 720 --dti 35.5 --purpose "Home Renovation"`,
	RunE: runPredict,
}

func runPredict(cmd *cobra.Command, args []string) error {
	values, err := collectApplicant(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	predictor, release := newPredictor(ctx, cfg)
	defer release()

	out := cmd.OutOrStdout()
	var printer *ui.Printer
	if outputFormat == formatText && isTerminal(out) {
		printer = ui.NewPrinter(out)
		params := []ui.Param{{Key: "Endpoint", Value: cfg.Predict.Endpoint}}
		if applicantFile != "" {
			params = append(params, ui.Param{Key: "Applicant", Value: applicantFile})
		}
		printer.PrintHeader(ui.NewHeader("Loan Prediction", "loanform predict", params...))
	}

	st, lastErr := submitApplicant(ctx, predictor, values)
	if printer != nil {
		printer.PrintResult(resultBox(st, lastErr))
	} else if err := writeState(out, outputFormat, st); err != nil {
		return err
	}

	if st.Result != nil {
		return nil
	}
	if lastErr != nil {
		logging.Debug("Prediction failed", zap.Error(lastErr))
		return errors.New(predict.ShortMessage(lastErr))
	}
	return errors.New("applicant has invalid fields")
}

// submitApplicant runs values through the same form workflow as the
// interactive surfaces and waits for the outcome
func submitApplicant(ctx context.Context, predictor predict.Predictor, values form.Fields) (form.State, error) {
	sess := session.New("cli", predictor, nil)
	defer sess.Close()

	sess.Fill(ctx, values)
	st := sess.Submit(ctx)
	return st, sess.LastError()
}

// validateCmd checks an applicant without submitting it
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an applicant without submitting it",
	Long: `Run the field rules over an applicant and print the request body that
would be sent. Nothing is submitted. Exits non-zero when a field is invalid.`,
	Example: `  loanform validate -f applicant.yaml
  loanform validate -f applicant.yaml --format json`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	values, err := collectApplicant(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	errs := form.ValidateAll(values)
	if len(errs) > 0 {
		switch {
		case outputFormat != formatText:
			if err := writeFormatted(out, outputFormat, report{Phase: "invalid", Values: values, Errors: errs}); err != nil {
				return err
			}
		case isTerminal(out):
			ui.NewPrinter(out).PrintResult(ui.NewWarningResult("Applicant has invalid fields", errorDetails(errs)...))
		default:
			fmt.Fprintln(out, "Applicant is invalid:")
			writeErrors(out, errs)
		}
		return fmt.Errorf("%d invalid field(s)", len(errs))
	}

	payload, err := form.BuildPayload(values)
	if err != nil {
		return err
	}
	if err := predict.ValidatePayload(payload); err != nil {
		return err
	}

	if outputFormat == formatText {
		fmt.Fprintln(out, "Applicant is valid. Request body:")
		return writeFormatted(out, formatJSON, payload)
	}
	return writeFormatted(out, outputFormat, payload)
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// collectApplicant merges the applicant file with per-field flags
func collectApplicant(cmd *cobra.Command) (form.Fields, error) {
	if err := checkFormat(outputFormat); err != nil {
		return form.Fields{}, err
	}

	var values form.Fields
	if applicantFile != "" {
		loaded, err := loadApplicant(applicantFile)
		if err != nil {
			return form.Fields{}, err
		}
		values = loaded
	}

	for _, f := range form.AllFields {
		if cmd.Flags().Changed(string(f)) {
			values = values.With(f, *fieldFlags[f])
		}
	}
	return values, nil
}

// discoverCmd finds servers started with --advertise
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find loanform servers on the local network",
	Long: `Listen for loanform web servers announced over mDNS and print their
addresses. Servers announce themselves when started with 'serve --advertise'.`,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scanning for loanform servers (timeout: %s)...\n\n", scanTimeout)

	instances, err := discovery.QuickScan(cmd.Context(), scanTimeout)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(instances) == 0 {
		fmt.Fprintln(out, "No servers found.")
		fmt.Fprintln(out, "\nTroubleshooting:")
		fmt.Fprintln(out, "  - Start the server with 'loanform serve --host 0.0.0.0 --advertise'")
		fmt.Fprintln(out, "  - Check that both machines are on the same network segment")
		fmt.Fprintln(out, "  - Try increasing --wait for slower networks")
		return nil
	}

	fmt.Fprintf(out, "Found %d server(s):\n\n", len(instances))
	for i, inst := range instances {
		fmt.Fprintf(out, "%d. %s\n", i+1, inst.Name)
		fmt.Fprintf(out, "   URL:     %s\n", inst.BaseURL())
		fmt.Fprintf(out, "   Host:    %s\n", inst.Hostname)
		if inst.Version != "" {
			fmt.Fprintf(out, "   Version: %s\n", inst.Version)
		}
		fmt.Fprintln(out)
	}
	return nil
}
