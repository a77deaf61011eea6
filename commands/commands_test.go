package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-virus-feed/internal/application/browser"
	"github.com/penwyp/go-virus-feed/internal/presentation/formatter"
	"github.com/penwyp/go-virus-feed/internal/testing/fixtures"
)

// writeSampleDataset writes the sample rows as CSV and points HOME at a
// temp dir so logs stay out of the real home
func writeSampleDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	path, err := fixtures.NewDatasetGenerator(dir).WriteCSV("viruses.csv", fixtures.SampleRows())
	require.NoError(t, err)
	return path
}

func resetFlags() {
	dataPath = defaultDataPath
	configPath = ""
	debug = false
	listQuery, listOutput = "", "table"
	renderEntity, renderQuery, renderFormat, renderFont = "", "", "", ""
	renderOut = "timeline.svg"
	renderWidth, renderHeight = 0, 0
	renderWatch = false
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommandStructure(t *testing.T) {
	assert.Equal(t, "go-virus-feed [flags]", rootCmd.Use)

	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"browse", "list", "render", "shell", "serve"} {
		assert.True(t, names[want], want)
	}

	for flag, def := range map[string]string{"data": defaultDataPath, "config": "", "debug": "false"} {
		f := rootCmd.PersistentFlags().Lookup(flag)
		require.NotNil(t, f, flag)
		assert.Equal(t, def, f.DefValue)
	}
	assert.Equal(t, ":8080", serveCmd.Flags().Lookup("addr").DefValue)
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, "test/path"), expandPath("~/test/path"))
	assert.Equal(t, "/absolute/path", expandPath("/absolute/path"))

	abs, err := filepath.Abs("relative/path")
	require.NoError(t, err)
	assert.Equal(t, abs, expandPath("relative/path"))
}

func TestParseEntityID(t *testing.T) {
	id, err := parseEntityID(" 42 ")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	for _, bad := range []string{"", "7abc", "1.5"} {
		_, err := parseEntityID(bad)
		assert.Error(t, err, bad)
	}
}

func TestRenderFormatFor(t *testing.T) {
	tests := []struct {
		explicit, out string
		want          formatter.Format
		wantErr       bool
	}{
		{"", "timeline.svg", formatter.FormatSVG, false},
		{"", "timeline.PNG", formatter.FormatPNG, false},
		{"", "-", formatter.FormatSVG, false},
		{"json", "timeline.svg", formatter.FormatJSON, false},
		{"", "timeline.gif", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.explicit+"/"+tt.out, func(t *testing.T) {
			got, err := renderFormatFor(tt.explicit, tt.out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadConfigDataFlagWins(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("data: "+filepath.Join(dir, "from-file.csv")+"\nexport_width: 640\n"), 0644))

	resetFlags()
	configPath = cfgFile
	t.Cleanup(resetFlags)

	config, err := loadConfig(&cobra.Command{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "from-file.csv"), config.DataPath)
	assert.Equal(t, 640.0, config.ExportWidth)
	assert.Equal(t, 600.0, config.ExportHeight)

	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&dataPath, "data", defaultDataPath, "")
	require.NoError(t, cmd.Flags().Set("data", filepath.Join(dir, "flag.csv")))

	config, err = loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "flag.csv"), config.DataPath)
}

func TestListCommand(t *testing.T) {
	path := writeSampleDataset(t)

	out, err := executeCommand(t, "list", "--data", path, "--output", "csv", "--query", "co")
	require.NoError(t, err)
	assert.Equal(t,
		"virus_id,title,num_rep,opacity,selected,image\n"+
			"2,Cold,2,1.0,true,images_2/cold.png\n",
		out)

	out, err = executeCommand(t, "list", "--data", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Fever")
	assert.Contains(t, out, "3 viruses")

	_, err = executeCommand(t, "list", "--data", path, "--output", "xml")
	assert.Error(t, err)
}

func TestRenderCommand(t *testing.T) {
	path := writeSampleDataset(t)
	out := filepath.Join(filepath.Dir(path), "fever.svg")

	_, err := executeCommand(t, "render", "--data", path, "--entity", "3", "--out", out, "--width", "400", "--height", "200")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `width="400" height="200"`)
	assert.Contains(t, string(data), ">12:00 tv</text>")

	stdout, err := executeCommand(t, "render", "--data", path, "--query", "cold", "--out", "-", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"entity_id": 2`)

	_, err = executeCommand(t, "render", "--data", path, "--query", "zzz", "--out", out)
	assert.ErrorContains(t, err, "no virus matches")

	_, err = executeCommand(t, "render", "--data", path, "--entity", "42", "--out", out)
	assert.ErrorIs(t, err, browser.ErrUnknownEntity)

	_, err = executeCommand(t, "render", "--data", path, "--entity", "1", "--query", "flu")
	assert.Error(t, err)
}

func TestRenderRejectsOversizedImage(t *testing.T) {
	path := writeSampleDataset(t)
	out := filepath.Join(filepath.Dir(path), "huge.png")

	_, err := executeCommand(t, "render", "--data", path, "--out", out, "--width", "100000", "--height", "100000")
	assert.ErrorContains(t, err, "export width must be in 0..8000")
	assert.NoFileExists(t, out)

	_, err = executeCommand(t, "render", "--data", path, "--out", out, "--height", "8001")
	assert.ErrorContains(t, err, "export height")
	assert.NoFileExists(t, out)
}

func TestShellCommands(t *testing.T) {
	config := &browser.Config{}
	require.NoError(t, config.Validate())
	p := browser.NewPipeline(browser.OptionsFromConfig(config, nil, nil))
	p.Load(fixtures.SampleRecords())

	var out bytes.Buffer
	s := newShell(p, config, &out)
	run := func(line string) string {
		out.Reset()
		assert.False(t, s.exec(line), line)
		return out.String()
	}

	assert.Equal(t, "1 matches, selected 2\n", run("search co"))
	assert.Contains(t, run("search zzz"), `No virus matches "zzz"`)
	id, err := p.Selected()
	require.NoError(t, err)
	assert.EqualValues(t, 2, id)

	assert.Contains(t, run("click 2"), "Error:")
	assert.Equal(t, "3 matches, selected 1\n", run("search"))
	assert.Equal(t, "Selected 3\n", run("click 3"))

	shown := run("show")
	assert.Contains(t, shown, "Virus 3: Fever")
	assert.Contains(t, shown, "first seen Wed 12:00")
	assert.Contains(t, shown, "image images_2/fever.png")

	tiles := run("tiles")
	assert.Contains(t, tiles, "3 viruses")

	file := filepath.Join(t.TempDir(), "fever.png")
	assert.Equal(t, "Wrote "+file+"\n", run("export "+file+" 320 200"))
	_, err = os.Stat(file)
	assert.NoError(t, err)

	assert.Contains(t, run("export"), "usage: export")
	assert.Contains(t, run("export a.svg 0 10"), "positive integers")
	assert.Contains(t, run("bogus"), "unknown command")
	assert.True(t, strings.HasPrefix(run("help"), "Commands:"))

	assert.True(t, s.exec("quit"))
}

func TestCompleteShell(t *testing.T) {
	assert.Equal(t, []string{"search", "show"}, completeShell("s"))
	assert.Equal(t, []string{"export", "exit"}, completeShell("EX"))
	assert.Empty(t, completeShell("zz"))
}
