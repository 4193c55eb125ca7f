// Package main provides the CLI entrypoint for typerank.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typerank/internal/client"
	"github.com/verte-zerg/typerank/internal/config"
	"github.com/verte-zerg/typerank/internal/generator"
	"github.com/verte-zerg/typerank/internal/model"
	"github.com/verte-zerg/typerank/internal/store"
	"github.com/verte-zerg/typerank/internal/texts"
	"github.com/verte-zerg/typerank/internal/tui"
)

const (
	defaultMode      = string(model.ModePractice)
	defaultTimeLimit = 0
	defaultWords     = 0
	defaultCaps      = 0.0
	defaultPunct     = 0.0
	defaultTimeout   = 15
)

const defaultPunctSet = ".,!?;:"

var (
	playMode      string
	playTimeLimit int
	playWords     int
	playCaps      float64
	playPunct     float64
	playPunctSet  string
	playTextsDir  string
	playWordsFile string
	playServerURL string
	playUsername  string
	playTimeout   int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typerank",
		Short:         "Timed typing practice with a shared leaderboard",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&playMode, "mode", defaultMode, "game mode: practice or ranking")
	rootCmd.Flags().IntVar(&playTimeLimit, "time-limit", defaultTimeLimit, "practice time limit in seconds (0 = untimed, max 3600)")
	rootCmd.Flags().IntVar(&playWords, "words", defaultWords, "practice on N generated words instead of passages (0 = passages)")
	rootCmd.Flags().Float64Var(&playCaps, "caps", defaultCaps, "probability of capitalized first letter for generated words (0-1)")
	rootCmd.Flags().Float64Var(&playPunct, "punct", defaultPunct, "punctuation probability per generated word (0-1)")
	rootCmd.Flags().StringVar(&playPunctSet, "punct-set", defaultPunctSet, "punctuation set for generated words")
	rootCmd.Flags().StringVar(&playTextsDir, "texts-dir", "", "directory of *.txt passages (default: XDG config texts dir)")
	rootCmd.Flags().StringVar(&playWordsFile, "words-file", "", "word list for generated words, one per line (default: embedded list)")
	addRankingFlags(rootCmd)

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newBoardCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newUsernameCmd())

	return rootCmd
}

func addRankingFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&playServerURL, "server", "", "ranking server base URL")
	cmd.Flags().StringVar(&playUsername, "username", "", "username for ranking submissions")
	cmd.Flags().IntVar(&playTimeout, "timeout", defaultTimeout, "ranking server request timeout in seconds")
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadPlayConfig(cmd)
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	var submitter tui.Submitter
	if cfg.Mode == model.ModeRanking {
		c, err := client.New(cfg.ServerURL, cfg.Timeout)
		if err != nil {
			if errors.Is(err, client.ErrNotConfigured) {
				return fmt.Errorf("ranking mode unavailable: %w", err)
			}
			return err
		}
		submitter = c
	}

	source, err := newTextSource(cfg)
	if err != nil {
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

	m := tui.NewModel(tui.Options{
		Mode:      cfg.Mode,
		TimeLimit: cfg.TimeLimit,
		Username:  cfg.Username,
		Texts:     source,
		Profile:   st,
		Submitter: submitter,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func loadPlayConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "time-limit", &playTimeLimit, fileCfg.Practice.TimeLimit)
	applyIntConfig(cmd, "words", &playWords, fileCfg.Practice.Words)
	applyFloatConfig(cmd, "caps", &playCaps, fileCfg.Practice.CapsPct)
	applyFloatConfig(cmd, "punct", &playPunct, fileCfg.Practice.PunctPct)
	applyStringConfig(cmd, "punct-set", &playPunctSet, fileCfg.Practice.PunctSet)
	applyStringConfig(cmd, "texts-dir", &playTextsDir, fileCfg.Practice.TextsDir)
	applyStringConfig(cmd, "words-file", &playWordsFile, fileCfg.Practice.WordsFile)
	applyRankingConfig(cmd, fileCfg)

	textsDir := playTextsDir
	if textsDir == "" {
		textsDir = config.DefaultTextsDir()
	}
	return model.Config{
		Mode:      model.Mode(strings.ToLower(strings.TrimSpace(playMode))),
		TimeLimit: time.Duration(playTimeLimit) * time.Second,
		Words:     playWords,
		CapsPct:   playCaps,
		PunctPct:  playPunct,
		PunctSet:  playPunctSet,
		TextsDir:  textsDir,
		WordsFile: strings.TrimSpace(playWordsFile),
		ServerURL: playServerURL,
		Username:  playUsername,
		Timeout:   time.Duration(playTimeout) * time.Second,
	}, nil
}

func applyRankingConfig(cmd *cobra.Command, fileCfg config.FileConfig) {
	applyStringConfig(cmd, "server", &playServerURL, fileCfg.Ranking.ServerURL)
	applyStringConfig(cmd, "username", &playUsername, fileCfg.Ranking.Username)
	applyIntConfig(cmd, "timeout", &playTimeout, fileCfg.Ranking.Timeout)
}

// newTextSource picks passages for ranking and for default practice, or
// generated words when practice asks for a word count.
func newTextSource(cfg model.Config) (tui.TextSource, error) {
	gen := generator.New()
	if cfg.Mode == model.ModePractice && cfg.Words > 0 {
		words, err := practiceWords(cfg.WordsFile)
		if err != nil {
			return nil, err
		}
		punct := []rune(cfg.PunctSet)
		return func(string) string {
			return gen.Text(words, cfg.Words, cfg.CapsPct, cfg.PunctPct, punct)
		}, nil
	}
	passages, err := texts.LoadPassages(cfg.TextsDir)
	if err != nil {
		return nil, err
	}
	if len(passages) == 0 {
		return nil, fmt.Errorf("no passages found in %s", cfg.TextsDir)
	}
	return func(prev string) string {
		return gen.Pick(passages, prev)
	}, nil
}

func practiceWords(path string) ([]string, error) {
	if path == "" {
		words := texts.DefaultWords()
		if len(words) == 0 {
			return nil, fmt.Errorf("embedded word list is empty")
		}
		return words, nil
	}
	words, err := texts.LoadWords(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load words from %s: %w", path, err)
	}
	return words, nil
}

func validateConfig(cfg model.Config) error {
	switch cfg.Mode {
	case model.ModePractice, model.ModeRanking:
	default:
		return fmt.Errorf("--mode must be %q or %q", model.ModePractice, model.ModeRanking)
	}
	if cfg.TimeLimit < 0 || cfg.TimeLimit > model.MaxPracticeTimeLimit {
		return fmt.Errorf("--time-limit must be between 0 and %d seconds", int(model.MaxPracticeTimeLimit/time.Second))
	}
	if cfg.Words < 0 {
		return fmt.Errorf("--words must be >= 0")
	}
	if cfg.CapsPct < 0 || cfg.CapsPct > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if cfg.PunctPct < 0 || cfg.PunctPct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	if cfg.PunctPct > 0 && cfg.PunctSet == "" {
		return fmt.Errorf("--punct-set must not be empty")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("--timeout must be > 0")
	}
	if n := len([]rune(strings.TrimSpace(cfg.Username))); cfg.Username != "" && (n == 0 || n > 20) {
		return fmt.Errorf("--username must be 1-20 characters")
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

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
