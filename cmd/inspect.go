package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"desfondo/internal/batch"
	"desfondo/internal/inspect"
	"desfondo/internal/tui"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <folder>",
	Short: "List the images a run would pick up, with format and metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]

		names, err := batch.Candidates(dir)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(os.Stdout, "No candidate images found.")
			fmt.Fprintln(os.Stdout, "Supported extensions: .jpg .jpeg .png .webp .bmp .tiff")
			return nil
		}

		tasks := batch.BuildTasks(dir, "", names)
		for _, task := range tasks {
			report, err := inspect.File(dir, task.Filename)

			line := inspectFileStyle.Render(task.Filename)
			if err != nil {
				fmt.Fprintf(os.Stdout, "%s  %s\n", line, inspectDimStyle.Render("unreadable: "+err.Error()))
				continue
			}

			flags := metadataFlags(report)
			fmt.Fprintf(os.Stdout, "%s  %s%s\n", line, inspectKindStyle.Render(report.Kind.String()), flags)
			fmt.Fprintf(os.Stdout, "  %s %s\n", inspectDimStyle.Render("->"), inspectDimStyle.Render(task.OutputName))
		}

		return nil
	},
}

func metadataFlags(report inspect.Report) string {
	var flags []string
	if report.HasGPS {
		flags = append(flags, "gps")
	}
	if report.HasModel {
		flags = append(flags, "device")
	}
	if report.HasTimestamp {
		flags = append(flags, "timestamp")
	}
	if len(flags) == 0 {
		return ""
	}
	return inspectDimStyle.Render("  [" + strings.Join(flags, " ") + "]")
}

var (
	inspectFileStyle = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	inspectKindStyle = lipgloss.NewStyle().Foreground(tui.ColorInk)
	inspectDimStyle  = lipgloss.NewStyle().Foreground(tui.ColorDim)
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}
