package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/chabad360/touchosc2midi/internal/midiport"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	numberStyle = lipgloss.NewStyle().Width(4).Align(lipgloss.Right).Foreground(lipgloss.Color("#888"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555"))
)

func newListCommand(drv drivers.Driver) *cobra.Command {
	list := &cobra.Command{
		Use:   "list",
		Short: "List MIDI backends or ports",
	}

	list.AddCommand(&cobra.Command{
		Use:   "backends",
		Short: "List the MIDI backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printBackends(cmd.OutOrStdout(), drv)
			return nil
		},
	})

	list.AddCommand(&cobra.Command{
		Use:   "ports",
		Short: "List MIDI input and output ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ins, outs, err := midiport.ListPorts(drv)
			if err != nil {
				return err
			}
			printPorts(cmd.OutOrStdout(), "Inputs", ins)
			printPorts(cmd.OutOrStdout(), "Outputs", outs)
			return nil
		},
	})

	return list
}

func printBackends(w io.Writer, drv drivers.Driver) {
	fmt.Fprintln(w, headerStyle.Render("Backends"))

	virtual := "no virtual ports"
	if _, ok := drv.(midiport.VirtualOpener); ok {
		virtual = "virtual ports"
	}
	fmt.Fprintf(w, "%s %s %s\n", numberStyle.Render("*"), drv.String(), dimStyle.Render("("+virtual+")"))
}

func printPorts(w io.Writer, title string, ports []midiport.PortInfo) {
	fmt.Fprintln(w, headerStyle.Render(title))
	if len(ports) == 0 {
		fmt.Fprintln(w, dimStyle.Render("    none"))
		return
	}
	for _, p := range ports {
		fmt.Fprintf(w, "%s %s\n", numberStyle.Render(fmt.Sprint(p.Number)), p.Name)
	}
}
