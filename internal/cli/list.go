package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sternrassler/pokedex-client/pkg/catalog"
	"github.com/Sternrassler/pokedex-client/pkg/pagestate"
)

// Output formats for list.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

type listFlags struct {
	page    int
	search  string
	output  string
	details bool
}

// listOutput is the structured form of one listed page.
type listOutput struct {
	Page       int        `json:"page" yaml:"page"`
	TotalPages int        `json:"total_pages" yaml:"total_pages"`
	Search     string     `json:"search,omitempty" yaml:"search,omitempty"`
	Pagination []int      `json:"pagination" yaml:"pagination"`
	Results    []listItem `json:"results" yaml:"results"`
}

type listItem struct {
	Name      string `json:"name" yaml:"name"`
	URL       string `json:"url" yaml:"url"`
	ID        int    `json:"id,omitempty" yaml:"id,omitempty"`
	SpriteURL string `json:"sprite_url,omitempty" yaml:"sprite_url,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of the Pokémon list",
		Long:  "Print one page of the Pokémon list, optionally filtered by a case-insensitive search on the page's names.",
		Example: `  # First page as a table
  pokedex list

  # Page 12, names containing "saur", with detail documents
  pokedex list --page 12 --search saur --details

  # Machine-readable output
  pokedex list --page 2 --output yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts, flags)
		},
	}

	cmd.Flags().IntVarP(&flags.page, "page", "p", 1, "page number (1-based)")
	cmd.Flags().StringVarP(&flags.search, "search", "s", "", "only show entries whose name contains this text")
	cmd.Flags().StringVarP(&flags.output, "output", "o", outputTable, "output format: table, json or yaml")
	cmd.Flags().BoolVar(&flags.details, "details", false, "fetch the detail document of every listed entry")

	return cmd
}

func runList(cmd *cobra.Command, opts *rootOptions, flags listFlags) error {
	switch flags.output {
	case outputTable, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unsupported output format: %s", flags.output)
	}
	if flags.page < 1 {
		return fmt.Errorf("page must be >= 1 (got %d)", flags.page)
	}

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

	if _, err := controller.LoadPage(ctx, 1); err != nil {
		return err
	}
	if flags.page != 1 {
		result, err := controller.SetPage(ctx, flags.page)
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("page %d is out of range (1-%d)", flags.page, controller.TotalPages())
		}
	}

	controller.SetSearchTerm(flags.search)
	entries := controller.VisibleEntries()
	state := controller.Snapshot()

	out := listOutput{
		Page:       state.CurrentPage,
		TotalPages: state.TotalPages,
		Search:     state.SearchTerm,
		Pagination: controller.PaginationWindow(opts.cfg.MaxButtons),
		Results:    make([]listItem, len(entries)),
	}
	for i, e := range entries {
		out.Results[i] = listItem{Name: e.Name, URL: e.URL}
	}

	if flags.details {
		for i, r := range catalog.FetchDetails(ctx, pokeapi, entries, opts.cfg.DetailConcurrency) {
			if r.Err != nil {
				out.Results[i].Error = r.Err.Error()
				continue
			}
			out.Results[i].ID = r.Detail.ID
			out.Results[i].SpriteURL = r.Detail.SpriteURL
		}
	}

	return renderList(cmd.OutOrStdout(), flags.output, out, flags.details)
}

func renderList(w io.Writer, format string, out listOutput, details bool) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(out)
	default:
		return renderTable(w, out, details)
	}
}

func renderTable(w io.Writer, out listOutput, details bool) error {
	const tabPadding = 2
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)

	if details {
		fmt.Fprintln(tw, "ID\tName\tSprite")
		fmt.Fprintln(tw, "--\t----\t------")
		for _, item := range out.Results {
			if item.Error != "" {
				fmt.Fprintf(tw, "-\t%s\terror: %s\n", item.Name, item.Error)
				continue
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\n", item.ID, item.Name, item.SpriteURL)
		}
	} else {
		fmt.Fprintln(tw, "Name\tURL")
		fmt.Fprintln(tw, "----\t---")
		for _, item := range out.Results {
			fmt.Fprintf(tw, "%s\t%s\n", item.Name, item.URL)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(out.Results) == 0 && out.Search != "" {
		fmt.Fprintf(w, "No Pokémon on page %d match %q\n", out.Page, out.Search)
	}
	fmt.Fprintf(w, "\nPage %d of %d  pages: %s\n", out.Page, out.TotalPages, formatWindow(out.Pagination, out.Page))
	return nil
}

// formatWindow renders the page window with the current page bracketed,
// e.g. "1 [2] 3".
func formatWindow(window []int, current int) string {
	parts := make([]string, len(window))
	for i, p := range window {
		if p == current {
			parts[i] = fmt.Sprintf("[%d]", p)
		} else {
			parts[i] = fmt.Sprint(p)
		}
	}
	return strings.Join(parts, " ")
}
