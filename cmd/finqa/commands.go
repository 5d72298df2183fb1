package main

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"finqa/internal/controller"
	"finqa/internal/domain"
	"finqa/internal/tui"
)

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "finqa",
		Short: "Terminal client for the financial news question-answering service",
		Long: `finqa uploads news corpora, runs the ingestion pipeline and asks
questions against a financial news QA backend.

Without a subcommand it starts the interactive terminal UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, flags)
		},
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to config file (default ./config.yaml or ~/.config/finqa/config.yaml)")
	root.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "backend base URL, overrides the config file")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newUploadCmd(flags),
		newRunCmd(flags),
		newResetCmd(flags),
		newAskCmd(flags),
		newThemeCmd(flags),
	)
	return root
}

func runTUI(cmd *cobra.Command, flags *globalFlags) error {
	bridge := tui.NewBridge()
	a, err := newApp(cmd, flags, true, bridge)
	if err != nil {
		return err
	}
	defer a.Close()

	initial, err := a.themes.Init(lipgloss.HasDarkBackground)
	if err != nil {
		a.log.Warn().Err(err).Str("state_file", a.cfg.StateFile).Msg("theme preference unavailable, following terminal")
	}

	d := controller.NewDispatcher(controller.Controllers{
		Upload:   controller.NewUpload(a.backend, bridge.Surface(tui.SurfaceUploadStatus), bridge, a.log),
		Pipeline: controller.NewPipelineRun(a.backend, bridge.Surface(tui.SurfaceOutput), a.log),
		Reset:    controller.NewIndexReset(a.backend, bridge.Surface(tui.SurfaceOutput), a.log),
		Query:    controller.NewQuery(a.backend, tuiRenderer(a), bridge.Surface(tui.SurfaceAnswer), bridge, a.log),
		Theme:    controller.NewThemeToggle(a.themes, bridge, a.log),
	})

	a.log.Info().Str("base_url", a.cfg.Backend.BaseURL).Str("theme", string(initial)).Msg("starting terminal UI")

	p := tea.NewProgram(tui.New(d, initial), tea.WithAltScreen())
	bridge.Attach(p)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal UI: %w", err)
	}
	return nil
}

// initTheme loads the stored preference for one-shot commands.
func initTheme(a *app) domain.Theme {
	t, err := a.themes.Init(lipgloss.HasDarkBackground)
	if err != nil {
		a.log.Warn().Err(err).Msg("theme preference unavailable, following terminal")
	}
	return t
}

func newUploadCmd(flags *globalFlags) *cobra.Command {
	var quiet, noProgress bool
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a .jsonl or .txt news corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags, false, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			d := a.cliDispatcher(cliOptions{quiet: quiet, progress: !noProgress && !quiet})
			return reported(d.Dispatch(cmd.Context(), controller.ActionUpload, args[0]))
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the final result")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "do not show a progress bar")
	return cmd
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the ingestion pipeline and print its report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags, false, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			d := a.cliDispatcher(cliOptions{quiet: quiet})
			return reported(d.Dispatch(cmd.Context(), controller.ActionRunPipeline, ""))
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the final result")
	return cmd
}

func newResetCmd(flags *globalFlags) *cobra.Command {
	var quiet, yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the backend search index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				prompt := promptui.Prompt{
					Label:     "Reset the search index",
					IsConfirm: true,
				}
				if _, err := prompt.Run(); err != nil {
					if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) {
						fmt.Fprintln(cmd.ErrOrStderr(), "reset cancelled")
						return nil
					}
					return fmt.Errorf("confirmation prompt: %w", err)
				}
			}

			a, err := newApp(cmd, flags, false, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			d := a.cliDispatcher(cliOptions{quiet: quiet})
			return reported(d.Dispatch(cmd.Context(), controller.ActionResetIndex, ""))
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the final result")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newAskCmd(flags *globalFlags) *cobra.Command {
	var quiet, html bool
	cmd := &cobra.Command{
		Use:   "ask QUESTION...",
		Short: "Ask a question and print the structured answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags, false, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if !html {
				initTheme(a)
			}
			d := a.cliDispatcher(cliOptions{quiet: quiet, html: html})
			return reported(d.Dispatch(cmd.Context(), controller.ActionQuery, strings.Join(args, " ")))
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the final result")
	cmd.Flags().BoolVar(&html, "html", false, "print the answer as an HTML fragment")
	return cmd
}

func newThemeCmd(flags *globalFlags) *cobra.Command {
	show := func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, flags, false, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Fprintln(cmd.OutOrStdout(), initTheme(a))
		return nil
	}

	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or toggle the stored color theme",
		Args:  cobra.NoArgs,
		RunE:  show,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the active theme",
			Args:  cobra.NoArgs,
			RunE:  show,
		},
		&cobra.Command{
			Use:   "toggle",
			Short: "Switch between light and dark and save the choice",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp(cmd, flags, false, nil)
				if err != nil {
					return err
				}
				defer a.Close()

				initTheme(a)
				d := a.cliDispatcher(cliOptions{})
				if err := d.Dispatch(cmd.Context(), controller.ActionToggleTheme, ""); err != nil {
					return reported(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), a.themes.Current())
				return nil
			},
		},
	)
	return cmd
}
