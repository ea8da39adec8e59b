package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"desfondo/internal/batch"
	"desfondo/internal/config"
	"desfondo/internal/segment"
	"desfondo/internal/tui"
)

var (
	runWorkers   int
	runOutputDir string
	runModelDir  string
	runEngineCmd string
)

var runCmd = &cobra.Command{
	Use:   "run [folder]",
	Short: "Remove the background from every image in a folder",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()

		inputDir := ""
		if len(args) == 1 {
			inputDir = args[0]
		} else {
			prompted, err := promptInputDir()
			if err != nil {
				return err
			}
			inputDir = prompted
		}
		inputDir = strings.Trim(strings.TrimSpace(inputDir), `"`)
		if inputDir == "" {
			return fmt.Errorf("an input folder is required")
		}

		info, err := os.Stat(inputDir)
		if err != nil {
			return fmt.Errorf("cannot access %s: %w", inputDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a folder", inputDir)
		}

		outputDir := runOutputDir
		if outputDir == "" {
			outputDir = filepath.Join(inputDir, batch.OutputDirName)
		}

		modelDir, err := config.ModelDir(runModelDir)
		if err != nil {
			// Missing model dir is not fatal; the engine may still find
			// its assets through its own defaults.
			log.Warn().Err(err).Msg("could not prepare model directory")
		} else {
			log.Debug().Str("dir", modelDir).Msg("model directory")
		}

		engine, err := buildEngine(modelDir)
		if err != nil {
			return err
		}
		processor := batch.NewProcessor(engine, log)

		updates := make(chan batch.ProgressUpdate, 64)
		program := tea.NewProgram(tui.NewModel(updates))

		uiDone := make(chan struct{})
		go func() {
			_, _ = program.Run()
			close(uiDone)
		}()

		summary, err := batch.Run(context.Background(), batch.Options{
			InputDir:  inputDir,
			OutputDir: outputDir,
			Workers:   runWorkers,
		}, processor.Process, log, updates)

		close(updates)
		<-uiDone
		if err != nil {
			return err
		}

		for _, res := range summary.Results {
			fmt.Fprintln(os.Stdout, tui.RenderResult(res))
		}

		fmt.Fprintln(os.Stdout)
		rows := []tui.SummaryRow{
			{Label: "Succeeded", Value: fmt.Sprintf("%d", summary.Succeeded)},
			{Label: "Failed", Value: fmt.Sprintf("%d", summary.Failed)},
		}
		fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))

		outPath := summary.OutputDir
		if abs, absErr := filepath.Abs(outPath); absErr == nil {
			outPath = abs
		}
		fmt.Fprintf(os.Stdout, "Images written to: %s\n", outPath)
		if summary.Sequential {
			fmt.Fprintln(os.Stdout, "Note: the worker pool failed mid-run; images were reprocessed sequentially.")
		}

		return nil
	},
}

func promptInputDir() (string, error) {
	fmt.Fprint(os.Stdout, "Folder with images: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input folder: %w", err)
	}
	return line, nil
}

// buildEngine resolves the segmentation collaborator: either the stock
// rembg invocation or the command named by --engine.
func buildEngine(modelDir string) (segment.Engine, error) {
	if runEngineCmd == "" {
		return segment.DefaultCommand(modelDir), nil
	}
	fields := strings.Fields(runEngineCmd)
	if len(fields) == 0 {
		return nil, fmt.Errorf("--engine must name a command")
	}
	return &segment.Command{Path: fields[0], Args: fields[1:], ModelDir: modelDir}, nil
}

func init() {
	runCmd.Flags().IntVarP(&runWorkers, "workers", "w", batch.DefaultWorkers, "maximum concurrent images")
	runCmd.Flags().StringVarP(&runOutputDir, "output", "o", "", "destination folder (default <folder>/"+batch.OutputDirName+")")
	runCmd.Flags().StringVar(&runModelDir, "model-dir", "", "segmentation model asset directory (default $"+config.ModelDirEnv+" or u2net next to the executable)")
	runCmd.Flags().StringVar(&runEngineCmd, "engine", "", `segmentation command reading stdin and writing stdout (default "rembg i")`)

	rootCmd.AddCommand(runCmd)
}
