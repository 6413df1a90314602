package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/daemon"
	"github.com/theirongolddev/payoff/internal/logging"
	"github.com/theirongolddev/payoff/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run a local progress status service with HTTP/SSE endpoints",
	Long: "Serves the current progress on a loopback address:\n" +
		"  /healthz, /v1/status, /v1/history/{day|week|month}, /v1/events, /v1/stream",
	RunE: runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	daemonCmd.PersistentFlags().DurationVar(&flagDaemonInterval, "interval", 0, "Polling interval (default from config)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonPIDFile, "pid-file", "", "PID file path (default in the data directory)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", "", "Log file path for detached mode")
	daemonCmd.PersistentFlags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 200, "Max in-memory events retained")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.PersistentPreRunE = resolveDaemonFlags
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

// resolveDaemonFlags fills unset daemon flags from config and the data directory.
func resolveDaemonFlags(cmd *cobra.Command, args []string) error {
	if err := loadRuntime(cmd, args); err != nil {
		return err
	}
	if flagDaemonAddr == "" {
		flagDaemonAddr = cfg.Daemon.Addr
	}
	if flagDaemonInterval <= 0 {
		flagDaemonInterval = time.Duration(cfg.Daemon.IntervalSec) * time.Second
	}
	if flagDaemonPIDFile == "" {
		flagDaemonPIDFile = filepath.Join(flagDataDir, "payoffd.pid")
	}
	if flagDaemonLogFile == "" {
		flagDaemonLogFile = filepath.Join(flagDataDir, "payoffd.log")
	}
	return nil
}

// pidFile records the running daemon. The file holds a JSON state object
// whose pid field identifies the process.
type pidFile struct {
	path string
}

type daemonState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DBPath    string    `json:"db_path"`
}

func (p pidFile) read() (daemonState, error) {
	var st daemonState
	//nolint:gosec // pid path is configured by the local user
	data, err := os.ReadFile(p.path)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		// Plain pid files from older runs.
		pid, perr := strconv.Atoi(strings.TrimSpace(string(data)))
		if perr != nil {
			return st, fmt.Errorf("invalid pid file %s: %w", p.path, err)
		}
		st.PID = pid
	}
	if st.PID <= 0 {
		return st, fmt.Errorf("invalid pid in %s", p.path)
	}
	return st, nil
}

// live returns the state of a daemon that is still running. Stale files
// are removed.
func (p pidFile) live() (daemonState, bool) {
	st, err := p.read()
	if err != nil {
		return st, false
	}
	if processAlive(st.PID) {
		return st, true
	}
	_ = os.Remove(p.path)
	return st, false
}

func (p pidFile) claim(st daemonState) error {
	if running, ok := p.live(); ok {
		return fmt.Errorf("daemon already running (pid %d)", running.PID)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p.path, append(data, '\n'), 0o600)
}

func (p pidFile) release() {
	_ = os.Remove(p.path)
}

func runDaemon(_ *cobra.Command, _ []string) error {
	switch {
	case flagDaemonDetach && flagDaemonChild:
		return errors.New("invalid daemon launch mode")
	case flagDaemonDetach:
		return startDaemonDetached()
	default:
		return runDaemonForeground()
	}
}

func startDaemonDetached() error {
	pf := pidFile{path: flagDaemonPIDFile}
	if st, ok := pf.live(); ok {
		return fmt.Errorf("daemon already running (pid %d)", st.PID)
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}

	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	args := make([]string, 0, len(os.Args))
	for _, a := range os.Args[1:] {
		if a != "--detach" && !strings.HasPrefix(a, "--detach=") {
			args = append(args, a)
		}
	}
	args = append(args, "--child")

	child := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Print(cli.RenderKV([][2]string{
		{"Started daemon", fmt.Sprintf("pid %d", child.Process.Pid)},
		{"PID file", flagDaemonPIDFile},
		{"API", "http://" + flagDaemonAddr + "/v1/status"},
		{"Log", flagDaemonLogFile},
	}))
	return nil
}

func runDaemonForeground() error {
	path := dbPath()
	pf := pidFile{path: flagDaemonPIDFile}
	if err := pf.claim(daemonState{
		PID:       os.Getpid(),
		Addr:      flagDaemonAddr,
		StartedAt: time.Now(),
		DBPath:    path,
	}); err != nil {
		return err
	}
	defer pf.release()

	level := "info"
	if flagVerbose {
		level = "debug"
	}
	svc := daemon.New(daemon.Config{
		DBPath: path,
		Open: func() (daemon.Ledger, error) {
			return store.Open(path)
		},
		WindowDays:     flagWindow,
		Interval:       flagDaemonInterval,
		Addr:           flagDaemonAddr,
		EventsBuffer:   flagDaemonEventsBuffer,
		Logger:         logging.Setup(logging.Options{Level: level, JSON: true}),
		AllowedOrigins: cfg.Daemon.AllowedOrigins,
	})

	fmt.Printf("  payoff daemon listening on http://%s\n", flagDaemonAddr)
	fmt.Printf("  Polling %s every %s\n", path, flagDaemonInterval)
	fmt.Printf("  Stop with: payoff daemon stop --pid-file %s\n", flagDaemonPIDFile)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	pf := pidFile{path: flagDaemonPIDFile}
	st, ok := pf.live()
	if !ok {
		if st.PID > 0 {
			fmt.Printf("  Daemon: stale pid file removed (pid %d not alive)\n", st.PID)
		} else {
			fmt.Println("  Daemon: not running")
		}
		return nil
	}

	addr := flagDaemonAddr
	if st.Addr != "" {
		addr = st.Addr
	}
	rows := [][2]string{
		{"Daemon PID", strconv.Itoa(st.PID)},
		{"Address", "http://" + addr},
	}
	if !st.StartedAt.IsZero() {
		rows = append(rows, [2]string{"Started", st.StartedAt.Local().Format(time.RFC3339)})
	}

	api, err := fetchDaemonStatus(addr)
	if err != nil {
		rows = append(rows, [2]string{"API status", err.Error()})
		fmt.Print(cli.RenderKV(rows))
		return nil
	}

	lastPoll := "pending"
	if !api.LastPollAt.IsZero() {
		lastPoll = api.LastPollAt.Local().Format(time.RFC3339)
	}
	rows = append(rows,
		[2]string{"Last poll", lastPoll},
		[2]string{"Poll count", strconv.FormatInt(api.PollCount, 10)},
		[2]string{"Subscribers", strconv.Itoa(api.SubscriberCount)},
	)
	if p := api.Progress; p.HasSettings {
		estimate := "cannot be determined"
		if p.Determinable {
			estimate = p.EstimatedDate
		}
		rows = append(rows,
			[2]string{"Progress", cli.FormatPercent(p.Percentage)},
			[2]string{"Remaining", cli.FormatMoney(p.RemainingAmount)},
			[2]string{"Estimated finish", estimate},
		)
	} else {
		rows = append(rows, [2]string{"Progress", "no goal configured"})
	}
	if api.LastError != "" {
		rows = append(rows, [2]string{"Last error", api.LastError})
	}
	fmt.Print(cli.RenderKV(rows))
	return nil
}

func fetchDaemonStatus(addr string) (daemon.Status, error) {
	var st daemon.Status
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/status") //nolint:noctx // short status probe
	if err != nil {
		return st, fmt.Errorf("unreachable (%w)", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("malformed response (%w)", err)
	}
	return st, nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	pf := pidFile{path: flagDaemonPIDFile}
	st, ok := pf.live()
	if !ok {
		return errors.New("daemon is not running")
	}

	proc, err := os.FindProcess(st.PID)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	ticker := time.NewTicker(150 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.After(8 * time.Second)
	for {
		select {
		case <-ticker.C:
			if !processAlive(st.PID) {
				pf.release()
				fmt.Printf("  Stopped daemon (pid %d)\n", st.PID)
				return nil
			}
		case <-timeout:
			return fmt.Errorf("daemon (pid %d) did not exit in time", st.PID)
		}
	}
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
