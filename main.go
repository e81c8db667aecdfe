package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"
)

var (
	configFileFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "TOML configuration file",
		EnvVars: []string{"QGRIDSIM_CONFIG"},
	}
	httpAddrFlag = &cli.StringFlag{
		Name:    "http.addr",
		Usage:   "HTTP listen address",
		Value:   DefaultConfig.Server.Addr,
		EnvVars: []string{"QGRIDSIM_HTTP_ADDR"},
	}
	httpOriginsFlag = &cli.StringSliceFlag{
		Name:    "http.origins",
		Usage:   "Allowed CORS origins",
		EnvVars: []string{"QGRIDSIM_HTTP_ORIGINS"},
	}
	maxQubitsFlag = &cli.IntFlag{
		Name:    "engine.max-qubits",
		Usage:   "Largest register a circuit may use",
		Value:   DefaultConfig.Engine.MaxQubits,
		EnvVars: []string{"QGRIDSIM_MAX_QUBITS"},
	}
	logLevelFlag = &cli.StringFlag{
		Name:    "log.level",
		Usage:   "Log level (debug, info, warn, error)",
		Value:   DefaultConfig.Log.Level,
		EnvVars: []string{"QGRIDSIM_LOG_LEVEL"},
	}
	logFormatFlag = &cli.StringFlag{
		Name:    "log.format",
		Usage:   "Log format (text, json)",
		Value:   DefaultConfig.Log.Format,
		EnvVars: []string{"QGRIDSIM_LOG_FORMAT"},
	}
	logFileFlag = &cli.StringFlag{
		Name:    "log.file",
		Usage:   "Write logs to a rotated file instead of stderr",
		EnvVars: []string{"QGRIDSIM_LOG_FILE"},
	}

	fullFlag = &cli.BoolFlag{
		Name:  "full",
		Usage: "Include zero-amplitude basis states",
	}
	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "Report format (text, table, styled)",
		Value: "text",
	}
	columnFlag = &cli.IntFlag{
		Name:  "column",
		Usage: "Stop after this column (-1 runs the whole circuit)",
		Value: -1,
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "qgridsim",
		Usage: "state-vector simulator for grid-drawn quantum circuits",
		Flags: []cli.Flag{
			configFileFlag,
			maxQubitsFlag,
			logLevelFlag,
			logFormatFlag,
			logFileFlag,
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the /evaluate endpoint",
				Flags:  []cli.Flag{httpAddrFlag, httpOriginsFlag},
				Action: serveCmd,
			},
			{
				Name:      "run",
				Usage:     "Simulate a circuit and print its probabilities report",
				ArgsUsage: "<circuit.json|circuit.qasm>",
				Flags:     []cli.Flag{fullFlag, formatFlag, columnFlag},
				Action:    runCmd,
			},
			{
				Name:      "view",
				Usage:     "Step through a circuit interactively",
				ArgsUsage: "<circuit.json|circuit.qasm>",
				Action:    viewCmd,
			},
			{
				Name:      "export",
				Usage:     "Print a circuit as OpenQASM 2.0",
				ArgsUsage: "<circuit.json|circuit.qasm>",
				Action:    exportCmd,
			},
			{
				Name:   "gates",
				Usage:  "List the supported gates",
				Action: gatesCmd,
			},
			{
				Name:   "dumpconfig",
				Usage:  "Print the effective configuration as TOML",
				Flags:  []cli.Flag{httpAddrFlag, httpOriginsFlag},
				Action: dumpConfigCmd,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig builds the configuration from defaults, the config file and flags, in
// that order.
func loadConfig(cCtx *cli.Context) (Config, error) {
	cfg := DefaultConfig
	cfg.Server.AllowedOrigins = slices.Clone(cfg.Server.AllowedOrigins)
	if file := cCtx.String(configFileFlag.Name); file != "" {
		if err := LoadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	if cCtx.IsSet(httpAddrFlag.Name) {
		cfg.Server.Addr = cCtx.String(httpAddrFlag.Name)
	}
	if cCtx.IsSet(httpOriginsFlag.Name) {
		cfg.Server.AllowedOrigins = cCtx.StringSlice(httpOriginsFlag.Name)
	}
	if cCtx.IsSet(maxQubitsFlag.Name) {
		cfg.Engine.MaxQubits = cCtx.Int(maxQubitsFlag.Name)
	}
	if cCtx.IsSet(logLevelFlag.Name) {
		cfg.Log.Level = cCtx.String(logLevelFlag.Name)
	}
	if cCtx.IsSet(logFormatFlag.Name) {
		cfg.Log.Format = cCtx.String(logFormatFlag.Name)
	}
	if cCtx.IsSet(logFileFlag.Name) {
		cfg.Log.File = cCtx.String(logFileFlag.Name)
	}
	return cfg, cfg.Validate()
}

func setup(cCtx *cli.Context) (Config, *Logger, error) {
	cfg, err := loadConfig(cCtx)
	if err != nil {
		return cfg, nil, err
	}
	log, err := NewLoggerFromConfig(cfg.Log)
	return cfg, log, err
}

func serveCmd(cCtx *cli.Context) error {
	cfg, log, err := setup(cCtx)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := NewServer(cfg, log, NewMetrics())
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// readCircuit loads a circuit from a .qasm file or from the editor's JSON format.
func readCircuit(cCtx *cli.Context, maxQubits int) (*Circuit, string, error) {
	path := cCtx.Args().First()
	if path == "" {
		return nil, "", errors.New("missing circuit file")
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cCtx.App.Reader)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, "", err
	}

	var c *Circuit
	if strings.EqualFold(filepath.Ext(path), ".qasm") {
		c, err = ParseQASM(string(data))
	} else {
		c, err = ParseCircuitJSON(data)
	}
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(maxQubits); err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return c, filepath.Base(path), nil
}

func runCmd(cCtx *cli.Context) error {
	cfg, log, err := setup(cCtx)
	if err != nil {
		return err
	}
	c, _, err := readCircuit(cCtx, cfg.Engine.MaxQubits)
	if err != nil {
		return err
	}

	qs, issues, err := SimulateCircuit(c, cCtx.Int(columnFlag.Name), log)
	if err != nil {
		return err
	}

	reduced := !cCtx.Bool(fullFlag.Name)
	w := cCtx.App.Writer
	switch cCtx.String(formatFlag.Name) {
	case "text":
		fmt.Fprint(w, qs.ProbabilitiesReport(reduced))
	case "table":
		qs.ReportTable(w, reduced)
	case "styled":
		fmt.Fprint(w, qs.StyledReport(reduced, barW))
	default:
		return fmt.Errorf("unknown report format %q", cCtx.String(formatFlag.Name))
	}

	for _, issue := range issues {
		fmt.Fprintf(cCtx.App.ErrWriter, "warning: %s\n", issue)
	}
	return nil
}

func viewCmd(cCtx *cli.Context) error {
	cfg, log, err := setup(cCtx)
	if err != nil {
		return err
	}
	c, name, err := readCircuit(cCtx, cfg.Engine.MaxQubits)
	if err != nil {
		return err
	}
	// Stderr records would draw over the alternate screen.
	if cfg.Log.File == "" {
		log = NoopLogger()
	}
	return RunViewer(c, name, log)
}

func exportCmd(cCtx *cli.Context) error {
	cfg, _, err := setup(cCtx)
	if err != nil {
		return err
	}
	c, _, err := readCircuit(cCtx, cfg.Engine.MaxQubits)
	if err != nil {
		return err
	}
	qasm, issues := c.ToQASM()
	fmt.Fprint(cCtx.App.Writer, qasm)
	for _, issue := range issues {
		fmt.Fprintf(cCtx.App.ErrWriter, "warning: %s\n", issue)
	}
	return nil
}

func gatesCmd(cCtx *cli.Context) error {
	WriteGateCatalog(cCtx.App.Writer)
	return nil
}

func dumpConfigCmd(cCtx *cli.Context) error {
	cfg, err := loadConfig(cCtx)
	if err != nil {
		return err
	}
	out, err := DumpConfig(&cfg)
	if err != nil {
		return err
	}
	_, err = cCtx.App.Writer.Write(out)
	return err
}
