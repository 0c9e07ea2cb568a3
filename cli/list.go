package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/yhkl-dev/zencli/domain"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the meditation tracks",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

var (
	listHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	listIDStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	listLengthStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Align(lipgloss.Right)
)

func runList(cmd *cobra.Command, args []string) error {
	rt, err := setup("", io.Discard)
	if err != nil {
		return err
	}
	defer rt.Close()

	printTracks(cmd.OutOrStdout(), rt.catalog.Tracks())
	return nil
}

func printTracks(w io.Writer, tracks []domain.Track) {
	idWidth, nameWidth := len("ID"), len("TRACK")
	for _, t := range tracks {
		idWidth = max(idWidth, lipgloss.Width(t.ID))
		nameWidth = max(nameWidth, lipgloss.Width(t.DisplayName()))
	}

	row := func(id, name, length string, idStyle lipgloss.Style) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			idStyle.Width(idWidth+2).Render(id),
			lipgloss.NewStyle().Width(nameWidth+2).Render(name),
			listLengthStyle.Width(8).Render(length),
		)
	}

	fmt.Fprintln(w, row("ID", "TRACK", "LENGTH", listHeaderStyle))
	for _, t := range tracks {
		length := strconv.FormatFloat(t.Minutes(), 'f', -1, 64) + " min"
		fmt.Fprintln(w, row(t.ID, t.DisplayName(), length, listIDStyle))
	}
}
