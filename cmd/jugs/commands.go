package main

import (
	"log/slog"
	"os"

	"github.com/danielpatrickdp/jugs/internal/archive"
	"github.com/danielpatrickdp/jugs/internal/config"
	"github.com/danielpatrickdp/jugs/internal/logging"
	"github.com/danielpatrickdp/jugs/internal/session"
	"github.com/danielpatrickdp/jugs/internal/solver"
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath string
	logLevel   string
	dbPath     string

	// puzzle selection, shared by play, solve and serve
	presetName    string
	capacitiesArg string
	targetArg     int
	strictMode    bool

	solveJSON   bool
	solveStart  string
	solveExport string

	rejectSelfPour bool

	replayFixture string
	replaySession string

	inspectLast    int
	inspectSession string
	inspectEvents  bool
	inspectJSON    bool

	exportSession     string
	exportOut         string
	exportDescription string

	remoteAddr string
	remotePace int

	appConfig config.Config
	logger    = slog.Default()
)

var (
	rootCmd = &cobra.Command{
		Use:               "jugs",
		Short:             "Water-jug puzzle engine, solver and server",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupRuntime,
	}

	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Play a puzzle interactively",
		Args:  cobra.NoArgs,
		RunE:  runPlay, // Defined in cmd_play.go
	}

	solveCmd = &cobra.Command{
		Use:   "solve",
		Short: "Print the shortest pour sequence for a puzzle",
		Args:  cobra.NoArgs,
		RunE:  runSolve, // Defined in cmd_solve.go
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve a puzzle session over gRPC, with JSON views and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe, // Defined in cmd_serve.go
	}

	replayCmd = &cobra.Command{
		Use:   "replay",
		Short: "Replay a fixture or archived session and compare outcomes",
		Args:  cobra.NoArgs,
		RunE:  runReplay, // Defined in cmd_replay.go
	}

	inspectCmd = &cobra.Command{
		Use:   "inspect",
		Short: "List archived sessions or show one session's history",
		Args:  cobra.NoArgs,
		RunE:  runInspect, // Defined in cmd_inspect.go
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export an archived session as a replay fixture",
		Args:  cobra.NoArgs,
		RunE:  runExport, // Defined in cmd_export.go
	}

	remoteCmd = &cobra.Command{
		Use:   "remote",
		Short: "Drive a running jugs server over gRPC",
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to YAML config (default: built-in)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&dbPath, "db", "", "SQLite archive path (overrides config and JUGS_DB)")

	for _, cmd := range []*cobra.Command{playCmd, solveCmd, serveCmd} {
		cmd.Flags().StringVar(&presetName, "preset", "", "named puzzle from config presets")
		cmd.Flags().StringVar(&capacitiesArg, "capacities", "", "comma-separated jar capacities, e.g. 8,5,3")
		cmd.Flags().IntVar(&targetArg, "target", 0, "quantity to measure")
	}
	playCmd.Flags().BoolVar(&strictMode, "strict", false, "check every pour against the physical invariants")
	serveCmd.Flags().BoolVar(&strictMode, "strict", false, "check every pour against the physical invariants")
	serveCmd.Flags().BoolVar(&rejectSelfPour, "reject-self-pour", false, "reject pours from a jar into itself")

	solveCmd.Flags().BoolVar(&solveJSON, "json", false, "output as JSON instead of text")
	solveCmd.Flags().StringVar(&solveStart, "start", "", "comma-separated start amounts (default: initial fill)")
	solveCmd.Flags().StringVar(&solveExport, "export", "", "also write the solution as a replay fixture")

	replayCmd.Flags().StringVar(&replayFixture, "fixture", "", "path to fixture JSON (fixture mode)")
	replayCmd.Flags().StringVar(&replaySession, "session", "", "archived session ID (DB mode)")

	inspectCmd.Flags().IntVar(&inspectLast, "last", 20, "show N most recent sessions")
	inspectCmd.Flags().StringVar(&inspectSession, "session", "", "show single session detail")
	inspectCmd.Flags().BoolVar(&inspectEvents, "events", false, "include provenance events in session detail")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "output as JSON instead of table")

	exportCmd.Flags().StringVar(&exportSession, "session", "", "archived session ID")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "fixture output path")
	exportCmd.Flags().StringVar(&exportDescription, "description", "", "fixture description")
	_ = exportCmd.MarkFlagRequired("session")
	_ = exportCmd.MarkFlagRequired("out")

	remoteCmd.PersistentFlags().StringVar(&remoteAddr, "addr", "", "server address (default: config grpc_addr)")
	remoteApplyCmd.Flags().IntVar(&remotePace, "pace-ms", -1, "delay between replayed pours (default: server setting)")
	remoteCmd.AddCommand(remoteSetupCmd, remotePourCmd, remoteResetCmd, remoteSolveCmd,
		remoteApplyCmd, remoteRollbackCmd, remoteStateCmd, remoteHistoryCmd)

	rootCmd.AddCommand(playCmd, solveCmd, serveCmd, replayCmd, inspectCmd, exportCmd, remoteCmd)
}

// setupRuntime loads configuration and builds the logger for every command.
func setupRuntime(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = dbPath
	}

	l, err := logging.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	appConfig = cfg
	logger = l
	slog.SetDefault(l)
	return nil
}

// openSession builds a session from the runtime config. When an archive is
// configured every event is recorded to it; store is nil otherwise.
func openSession(strict bool) (*session.Session, *archive.Store, func(), error) {
	opts := []session.Option{
		session.WithLogger(logger),
		session.WithSolverOptions(solver.Options{MaxStates: appConfig.MaxStates}),
	}
	if strict {
		opts = append(opts, session.WithStrict())
	}
	sess := session.New(opts...)

	if appConfig.DBPath == "" {
		return sess, nil, func() {}, nil
	}
	store, err := archive.NewStore(appConfig.DBPath)
	if err != nil {
		return nil, nil, nil, err
	}
	sess.Observe(archive.NewRecorder(store, sess, logger).Observe)
	logger.Debug("archiving session", "db", appConfig.DBPath)
	return sess, store, func() { store.Close() }, nil
}

// openStore opens the configured archive, failing when none is set.
func openStore() (*archive.Store, error) {
	if appConfig.DBPath == "" {
		return nil, &exitError{code: 2, msg: "no archive configured: pass --db or set JUGS_DB"}
	}
	return archive.NewStore(appConfig.DBPath)
}
