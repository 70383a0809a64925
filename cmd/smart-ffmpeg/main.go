package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/atotto/clipboard"
	"github.com/inclinedadarsh/smart-ffmpeg/internal/config"
	"github.com/inclinedadarsh/smart-ffmpeg/internal/executor"
	"github.com/inclinedadarsh/smart-ffmpeg/internal/history"
	"github.com/inclinedadarsh/smart-ffmpeg/internal/llm"
	"github.com/inclinedadarsh/smart-ffmpeg/internal/prompt"
	"github.com/inclinedadarsh/smart-ffmpeg/internal/ui"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	// version is set by goreleaser at build time
	version = "dev"

	// CLI flags
	flagModel string
	flagYes   bool
	debug     bool
)

// Exit codes. Execution failures mirror the child's own exit code.
const (
	exitOK           = 0
	exitGeneric      = 1
	exitConfig       = 2
	exitInvalidInput = 3
	exitAuth         = 4
	exitRateLimit    = 5
	exitUpstream     = 6
	exitNetwork      = 7
	exitToolNotFound = 8
	exitInterrupted  = 130
)

// errCancelled marks a user abort at the confirmation gate.
var errCancelled = errors.New("cancelled")

func main() {
	rootCmd := &cobra.Command{
		Use:     "smart-ffmpeg [request...]",
		Short:   "Natural language interface for FFmpeg",
		Long:    "smart-ffmpeg translates natural language into FFmpeg commands using an LLM, and runs them after confirmation",
		Version: version,
		Args:    cobra.ArbitraryArgs,
		RunE:    runRoot,

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	rootCmd.Flags().StringVarP(&flagModel, "model", "m", "", "Override the configured model")
	rootCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Run the generated command without confirmation")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or manage configuration",
	}

	configInitCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		RunE:  runConfigInit,
	}

	configShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE:  runConfigShow,
	}

	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		reportAndExit(err)
	}
}

// reportAndExit prints a human-readable message for the failure and
// exits with its distinguishing code.
func reportAndExit(err error) {
	if errors.Is(err, errCancelled) {
		ui.ShowInfo("Cancelled.")
		os.Exit(exitGeneric)
	}

	ui.ShowError(err.Error())

	var toolErr *executor.ToolNotFoundError
	if errors.As(err, &toolErr) {
		ui.ShowInfo("Install the required media tool and try again (for FFmpeg: https://ffmpeg.org/download.html).")
	}

	os.Exit(exitCodeFor(err))
}

func exitCodeFor(err error) int {
	var (
		authErr     *llm.AuthenticationError
		rateErr     *llm.RateLimitError
		upstreamErr *llm.UpstreamError
		netErr      *llm.NetworkError
		toolErr     *executor.ToolNotFoundError
		execErr     *executor.ExecutionError
	)

	switch {
	// Checked before the taxonomy: an interrupt during the API call
	// arrives wrapped in a NetworkError.
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case errors.Is(err, config.ErrMissingAPIKey):
		return exitConfig
	case errors.Is(err, prompt.ErrEmptyInstruction):
		return exitInvalidInput
	case errors.As(err, &authErr):
		return exitAuth
	case errors.As(err, &rateErr):
		return exitRateLimit
	case errors.As(err, &upstreamErr):
		return exitUpstream
	case errors.As(err, &netErr):
		return exitNetwork
	case errors.As(err, &toolErr):
		return exitToolNotFound
	case errors.As(err, &execErr):
		if execErr.ExitCode > 0 {
			return execErr.ExitCode
		}
		// Negative means the child died to a signal, not its own exit.
		return exitInterrupted
	}

	return exitGeneric
}

func runRoot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagModel != "" {
		cfg.Model = flagModel
	}

	if debug {
		fmt.Fprintf(os.Stderr, "[DEBUG] Config: model=%s base_url=%s timeout=%ds\n",
			cfg.Model, cfg.BaseURL, cfg.TimeoutSeconds)
	}

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	})

	prompter := ui.NewSurveyPrompter()

	run := func(ctx context.Context, command string) error {
		return executor.ExecuteWithDebug(ctx, command, debug)
	}

	hist, err := history.Load()
	if err != nil {
		ui.ShowWarning(fmt.Sprintf("Failed to load history: %v", err))
		hist = &history.History{}
	}

	// One-shot mode: the request came in as arguments.
	if len(args) > 0 {
		return processRequest(ctx, client, prompter, run, hist, strings.Join(args, " "))
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("no request given and stdin is not a terminal")
	}

	// Interactive mode: keep asking until the user quits.
	ui.ShowInfo("smart-ffmpeg: describe the media transformation you want ('exit' to quit)")
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		instruction, err := ui.ReadInstruction(prompter)
		if err != nil {
			// Ctrl-C at the prompt reads as a quit, not a failure.
			if errors.Is(err, terminal.InterruptErr) {
				ui.ShowInfo("Goodbye!")
				return nil
			}
			return err
		}

		switch strings.ToLower(strings.TrimSpace(instruction)) {
		case "exit", "quit", "q":
			ui.ShowInfo("Goodbye!")
			return nil
		case "":
			continue
		}

		if err := processRequest(ctx, client, prompter, run, hist, instruction); err != nil {
			if errors.Is(err, errCancelled) {
				ui.ShowInfo("Cancelled.")
				continue
			}
			if ctx.Err() != nil {
				return err
			}
			ui.ShowError(err.Error())
		}
	}
}

// generator abstracts the completion client for tests.
type generator interface {
	Generate(ctx context.Context, req *prompt.Request) (*llm.GeneratedCommand, error)
}

// runner abstracts command execution for tests.
type runner func(ctx context.Context, command string) error

// processRequest drives one request through the pipeline: build the
// prompt, generate a command, confirm (or edit) it, execute it.
func processRequest(ctx context.Context, gen generator, p ui.Prompter, run runner, hist *history.History, instruction string) error {
	req, err := prompt.Build(instruction, prompt.DirContext("."))
	if err != nil {
		return err
	}

	ui.ShowInfo("Generating command...")
	generated, err := gen.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to generate command: %w", err)
	}
	if debug {
		fmt.Fprintf(os.Stderr, "[DEBUG] Main: generated command: %q\n", generated.Command)
	}

	currentCommand := generated.Command
	edited := false

	if flagYes {
		ui.ShowCommand(currentCommand, generated.Explanation)
		return runAndRecord(ctx, run, hist, instruction, currentCommand, edited)
	}

	for {
		action, err := ui.ConfirmCommand(p, currentCommand, generated.Explanation)
		if err != nil {
			return fmt.Errorf("failed to get user confirmation: %w", err)
		}

		switch action {
		case ui.ActionRun:
			return runAndRecord(ctx, run, hist, instruction, currentCommand, edited)

		case ui.ActionEdit:
			editedCommand, err := ui.PromptForEdit(p, currentCommand)
			if err != nil {
				return fmt.Errorf("failed to get edited command: %w", err)
			}
			if strings.TrimSpace(editedCommand) != "" {
				currentCommand = editedCommand
				edited = true
			}
			// Loop continues to re-confirm the edited command

		case ui.ActionCopy:
			if err := clipboard.WriteAll(currentCommand); err != nil {
				ui.ShowError(fmt.Sprintf("Failed to copy to clipboard: %v", err))
			} else {
				ui.ShowSuccess("Command copied to clipboard!")
			}
			// Loop continues to show the command again

		case ui.ActionCancel:
			saveHistory(hist, instruction, currentCommand, false, edited)
			return errCancelled
		}
	}
}

// runAndRecord executes the confirmed command and appends the outcome
// to history. History write failures are warnings, never fatal.
func runAndRecord(ctx context.Context, run runner, hist *history.History, instruction, command string, edited bool) error {
	runErr := run(ctx, command)
	saveHistory(hist, instruction, command, true, edited)

	if runErr != nil {
		return runErr
	}

	ui.ShowSuccess("Command executed successfully.")
	return nil
}

func saveHistory(hist *history.History, instruction, command string, executed, edited bool) {
	hist.AddEntry(history.NewEntry(instruction, command, executed, edited))
	if err := hist.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save history: %v\n", err)
	}
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	exists, err := config.Exists()
	if err != nil {
		return err
	}
	if exists {
		path, _ := config.GetConfigPath()
		ui.ShowWarning(fmt.Sprintf("Config file already exists: %s", path))
		return nil
	}

	if err := config.Save(config.Default()); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	path, _ := config.GetConfigPath()
	ui.ShowSuccess(fmt.Sprintf("Default config created at %s", path))
	ui.ShowInfo("Set your API key there, in a .env file, or export " + config.EnvAPIKey + ".")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	output, err := config.Show()
	if err != nil {
		return err
	}
	fmt.Println(output)
	return nil
}
