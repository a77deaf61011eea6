package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-virus-feed/internal/application/browser"
	"github.com/penwyp/go-virus-feed/internal/data/scanner"
	"github.com/penwyp/go-virus-feed/internal/presentation/formatter"
	"github.com/penwyp/go-virus-feed/internal/util"
)

var (
	renderEntity string
	renderQuery  string
	renderFormat string
	renderOut    string
	renderWidth  float64
	renderHeight float64
	renderFont   string
	renderWatch  bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Export the timeline of one virus",
	Long: `Renders the timeline of the selected virus to SVG, PNG or JSON.

The virus is picked with --entity, or as the first match of --query, or the
first virus of the dataset. With --watch the file is rendered again every
time the dataset changes.`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVar(&renderEntity, "entity", "",
		"Virus id to render")
	renderCmd.Flags().StringVarP(&renderQuery, "query", "q", "",
		"Render the first virus whose title matches")
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "",
		"Output format (svg, png, json); defaults to the --out extension")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "timeline.svg",
		"Output file, - for stdout")
	renderCmd.Flags().Float64Var(&renderWidth, "width", 0,
		"Image width (0 = config export width)")
	renderCmd.Flags().Float64Var(&renderHeight, "height", 0,
		"Image height (0 = config export height)")
	renderCmd.Flags().StringVar(&renderFont, "font", "",
		"TrueType font for PNG labels")
	renderCmd.Flags().BoolVarP(&renderWatch, "watch", "w", false,
		"Render again when the dataset changes")
}

func runRender(cmd *cobra.Command, args []string) error {
	if err := initLogging(true); err != nil {
		return err
	}
	defer util.CloseLogger()

	if renderEntity != "" && renderQuery != "" {
		return fmt.Errorf("--entity and --query are mutually exclusive")
	}

	format, err := renderFormatFor(renderFormat, renderOut)
	if err != nil {
		return err
	}

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if renderWidth > 0 {
		config.ExportWidth = renderWidth
	}
	if renderHeight > 0 {
		config.ExportHeight = renderHeight
	}
	if err := formatter.CheckExportSize(config.ExportWidth, config.ExportHeight); err != nil {
		return err
	}

	exporter := formatter.Exporter{Format: format, Theme: config.Theme}
	if renderFont != "" {
		face, err := formatter.LoadFontFace(renderFont, config.Theme.Label.FontSize)
		if err != nil {
			return err
		}
		exporter.Face = face
	}

	p, loader, err := loadPipeline(config)
	if err != nil {
		return err
	}
	if err := renderOnce(cmd, p, exporter, config); err != nil {
		return err
	}
	if !renderWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	refresh := browser.NewRefreshController(loader, browser.OptionsFromConfig(config, nil, nil))
	return watchAndRender(ctx, cmd, p, refresh, exporter, config)
}

// renderFormatFor picks the explicit format or the one named by the
// output extension
func renderFormatFor(explicit, out string) (formatter.Format, error) {
	if explicit != "" {
		return formatter.ParseFormat(explicit)
	}
	ext := strings.TrimPrefix(filepath.Ext(out), ".")
	if ext == "" {
		return formatter.FormatSVG, nil
	}
	return formatter.ParseFormat(ext)
}

// renderOnce selects the requested virus and writes its timeline
func renderOnce(cmd *cobra.Command, p *browser.Pipeline, exporter formatter.Exporter, config *browser.Config) error {
	switch {
	case renderEntity != "":
		id, err := parseEntityID(renderEntity)
		if err != nil {
			return err
		}
		if err := p.TileClicked(id); err != nil {
			return err
		}
	case renderQuery != "":
		p.QueryChanged(renderQuery)
		if len(p.View()) == 0 {
			return fmt.Errorf("no virus matches %q", renderQuery)
		}
	}

	scene, err := p.Layout(config.ExportWidth, config.ExportHeight)
	if err != nil {
		return err
	}

	if renderOut == "-" {
		return exporter.Write(cmd.OutOrStdout(), scene)
	}
	if err := exporter.WriteFile(renderOut, scene); err != nil {
		return err
	}
	util.LogInfof("Rendered virus %d to %s", scene.EntityID, renderOut)
	fmt.Fprintf(cmd.ErrOrStderr(), "Rendered virus %d to %s\n", scene.EntityID, renderOut)
	return nil
}

// watchAndRender renders again from a freshly loaded pipeline on every
// dataset change until ctx is done
func watchAndRender(ctx context.Context, cmd *cobra.Command, p *browser.Pipeline, refresh *browser.RefreshController, exporter formatter.Exporter, config *browser.Config) error {
	watcher, err := scanner.NewFileWatcher(config.DataPath)
	if err != nil {
		return fmt.Errorf("watch %s: %w", config.DataPath, err)
	}
	defer watcher.Close()

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s, press Ctrl+C to stop\n", config.DataPath)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			next, err := refresh.Refresh(p, event.Path)
			if err != nil {
				util.LogError(err.Error())
				continue
			}
			p = next
			if err := renderOnce(cmd, p, exporter, config); err != nil {
				util.LogErrorf("Render after change of %s failed: %v", event.Path, err)
			}
		}
	}
}
