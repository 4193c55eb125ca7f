package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/typerank/internal/client"
	"github.com/verte-zerg/typerank/internal/config"
	"github.com/verte-zerg/typerank/internal/stats"
	"github.com/verte-zerg/typerank/internal/statsui"
	"github.com/verte-zerg/typerank/internal/store"
)

const (
	defaultLeaderboardLimit = 100
	defaultHistoryRecent    = 10
	defaultHistoryWindow    = 1
	terminalWidthFallback   = 80
)

var (
	leaderboardLimit int
	historyRecent    int
	historyWindow    int
)

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

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typerank configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# time-limit = %d          # Seconds, 0 = untimed (max 3600)
# words = %d               # Generated words per text, 0 = passages
# caps = %.2f              # Probability of capitalized first letter (0-1)
# punct = %.2f             # Punctuation probability per word (0-1)
# punct-set = %q       # Punctuation set
# texts-dir = %q
# words-file = "/path/to/words.txt"  # One word per line, used with words > 0

[ranking]
# server-url = "https://typerank.example.com"
# username = "your-name"   # 1-20 characters
# timeout = %d             # Request timeout in seconds
`,
		defaultTimeLimit,
		defaultWords,
		defaultCaps,
		defaultPunct,
		defaultPunctSet,
		config.DefaultTextsDir(),
		defaultTimeout,
	)
}

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top ranked players",
		Args:  cobra.NoArgs,
		RunE:  runLeaderboardCmd,
	}
	cmd.Flags().IntVar(&leaderboardLimit, "limit", defaultLeaderboardLimit, "number of entries (max 100)")
	addRankingFlags(cmd)
	return cmd
}

func runLeaderboardCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyRankingConfig(cmd, fileCfg)
	if leaderboardLimit <= 0 || leaderboardLimit > defaultLeaderboardLimit {
		return fmt.Errorf("--limit must be between 1 and %d", defaultLeaderboardLimit)
	}

	c, err := client.New(playServerURL, time.Duration(playTimeout)*time.Second)
	if err != nil {
		return err
	}
	entries, err := c.Leaderboard(cmd.Context(), leaderboardLimit)
	if err != nil {
		return fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	return stats.RenderLeaderboard(cmd.OutOrStdout(), entries)
}

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Browse the leaderboard and your history interactively",
		Args:  cobra.NoArgs,
		RunE:  runBoardCmd,
	}
	cmd.Flags().IntVar(&leaderboardLimit, "limit", defaultLeaderboardLimit, "number of entries (max 100)")
	cmd.Flags().IntVar(&historyWindow, "window", defaultHistoryWindow, "moving average window for the score trend")
	addRankingFlags(cmd)
	return cmd
}

func runBoardCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyRankingConfig(cmd, fileCfg)
	if leaderboardLimit <= 0 || leaderboardLimit > defaultLeaderboardLimit {
		return fmt.Errorf("--limit must be between 1 and %d", defaultLeaderboardLimit)
	}

	// Without a server the history tab still works.
	var board statsui.LeaderboardSource
	c, err := client.New(playServerURL, time.Duration(playTimeout)*time.Second)
	switch {
	case err == nil:
		board = c
	case !errors.Is(err, client.ErrNotConfigured):
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	m := statsui.NewModel(board, st, leaderboardLimit, historyWindow)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run board TUI: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show your ranked results on this device",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyRecent, "last", defaultHistoryRecent, "number of recent results to list")
	cmd.Flags().IntVar(&historyWindow, "window", defaultHistoryWindow, "moving average window for the score trend")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	entries, err := st.ListHistory(cmd.Context(), 0)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	return stats.RenderHistory(cmd.OutOrStdout(), entries, stats.HistoryOptions{
		Width:  terminalWidth(),
		Window: historyWindow,
		Recent: historyRecent,
	})
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthFallback
	}
	return width
}

func newUsernameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "username [name]",
		Short: "Show or set the remembered ranking username",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runUsernameCmd,
	}
}

func runUsernameCmd(cmd *cobra.Command, args []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	if len(args) == 0 {
		name, err := st.Username(ctx)
		if err != nil {
			return fmt.Errorf("failed to load username: %w", err)
		}
		if name == "" {
			name = "(not set)"
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), name)
		return err
	}

	name := strings.TrimSpace(args[0])
	if n := len([]rune(name)); n == 0 || n > 20 {
		return fmt.Errorf("username must be 1-20 characters")
	}
	if err := st.SetUsername(ctx, name); err != nil {
		return fmt.Errorf("failed to save username: %w", err)
	}
	return nil
}
