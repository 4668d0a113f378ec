package cli

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/pokedex-client/internal/tui"
	"github.com/Sternrassler/pokedex-client/pkg/pagestate"
)

var errNoTerminal = errors.New("browse needs an interactive terminal; use 'pokedex list' for scripted output")

func newBrowseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:         "browse",
		Short:       "Browse the Pokémon list interactively",
		Long:        "Open a full-screen browser with paging, live search on the current page and per-entry details.",
		Annotations: map[string]string{annotationTUI: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTerminal(os.Stdout) || !isTerminal(os.Stdin) {
				return errNoTerminal
			}
			return runBrowse(cmd, opts)
		},
	}
}

func runBrowse(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()

	pokeapi, err := newClient(opts.cfg)
	if err != nil {
		return err
	}
	defer pokeapi.Close()

	store, closeStore, err := newStore(ctx, opts.cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	controller, err := pagestate.New(pokeapi, store, opts.cfg.PageStateConfig())
	if err != nil {
		return err
	}

	model := tui.New(ctx, controller, pokeapi, opts.cfg.MaxButtons)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run interactive browser: %w", err)
	}
	return nil
}
