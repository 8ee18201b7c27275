package cli

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/tessro/herd/internal/config"
	"github.com/tessro/herd/internal/id"
	"github.com/tessro/herd/internal/logging"
	"github.com/tessro/herd/internal/prompt"
	"github.com/tessro/herd/internal/session"
)

// promptPollInterval is how often the watcher re-scans buffered output.
const promptPollInterval = 500 * time.Millisecond

// noticeWidth is the wrap width for prompt context in CLI notices.
const noticeWidth = 76

var (
	runID  string
	runDir string
)

var runCmd = &cobra.Command{
	Use:   "run [-- agent args...]",
	Short: "Run one supervised agent session in the foreground",
	Long: `Run spawns a single agent session wired to this terminal: output is
echoed as it arrives, stdin lines are forwarded to the agent, and Ctrl+C
is delivered as the agent's interrupt. Detected permission prompts and the
bypass-permissions warning are announced on stderr.`,
	RunE: runSession,
}

func init() {
	runCmd.Flags().StringVar(&runID, "id", "", "session id (random when omitted)")
	runCmd.Flags().StringVarP(&runDir, "dir", "d", ".", "working directory for the agent")
	rootCmd.AddCommand(runCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadGlobal()
	if err != nil {
		return err
	}

	cleanup, err := logging.Setup(cfg.LogPath(), logging.ParseLevel(cfg.LogLevel()))
	if err != nil {
		return err
	}
	defer cleanup()

	mgr := session.NewManager(cfg.AgentCommand())
	defer mgr.Shutdown()

	sessionID := runID
	if sessionID == "" {
		sessionID = id.Generate()
	}
	agentArgs := append(cfg.AgentArgs(), args...)

	exitCh := make(chan *int, 1)
	_, err = mgr.Create(sessionID, runDir, agentArgs,
		func(chunk string) { fmt.Fprint(os.Stdout, chunk) },
		func(code *int) { exitCh <- code },
	)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)

	// Forward terminal input line by line; EOF becomes end-of-input.
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if err := mgr.SendText(sessionID, scanner.Text()); err != nil {
				return
			}
		}
		_ = mgr.SendControl(sessionID, session.ControlEndOfInput)
	}()

	go watchPrompts(mgr, sessionID, done)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case code := <-exitCh:
			if code != nil && *code != 0 {
				return fmt.Errorf("agent exited with code %d", *code)
			}
			return nil
		case sig := <-sigCh:
			if sig == syscall.SIGTERM {
				mgr.Kill(sessionID)
				return nil
			}
			// Ctrl+C goes to the agent, not to herd.
			_ = mgr.SendControl(sessionID, session.ControlInterrupt)
		}
	}
}

// watchPrompts polls the session buffer for permission prompts and the
// bypass warning, announcing each on stderr. Detection always re-reads the
// buffer; the watcher dedupes on prompt context to avoid repeats.
func watchPrompts(mgr *session.Manager, sessionID string, done <-chan struct{}) {
	ticker := time.NewTicker(promptPollInterval)
	defer ticker.Stop()

	var lastContext string
	warned := false

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if !warned {
				if ok, err := mgr.DetectBypassWarning(sessionID); err == nil && ok {
					warned = true
					fmt.Fprintln(os.Stderr, warningBannerStyle.Render("agent is running in bypass permissions mode"))
				}
			}

			p, err := mgr.DetectPermissionPrompt(sessionID)
			if err != nil || p == nil {
				continue
			}
			if p.Context == lastContext {
				continue
			}
			lastContext = p.Context
			printPromptNotice(p)
		}
	}
}

// printPromptNotice renders a detected permission prompt on stderr.
func printPromptNotice(p *prompt.Prompt) {
	fmt.Fprintln(os.Stderr, promptTitleStyle.Render(fmt.Sprintf("permission requested: %s", p.Tool)))
	for _, opt := range p.Options {
		fmt.Fprintln(os.Stderr, promptOptionStyle.Render(fmt.Sprintf("%s. %s", opt.Number, opt.Label)))
	}
	fmt.Fprintln(os.Stderr, promptContextStyle.Render(wordwrap.String(p.Context, noticeWidth)))
}
