package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/testhtml/pkg/htmlutil"
)

func intPtr(n int) *int { return &n }

func TestResolveConfig_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := ResolveConfig(CliFlags{})
	require.NoError(t, err)
	assert.Equal(t, DefaultReportPath, cfg.ReportPath)
	assert.Equal(t, SourceDefault, cfg.ReportPathSource)
	assert.False(t, cfg.SelfContained)
	assert.Equal(t, DefaultMaxAssetFilenameLength, cfg.MaxAssetFilenameLength)
	assert.Equal(t, htmlutil.ANSIHTML, cfg.ANSI)
	assert.Equal(t, DefaultThemeName, cfg.ThemeName)
	assert.Empty(t, cfg.ConfigPath)
	assert.NotNil(t, cfg.Metadata)
}

func TestResolveConfig_PriorityOrder(t *testing.T) {
	file := &AppConfig{ReportPath: "file.html", SelfContainedHTML: true}

	tests := []struct {
		name              string
		cliFlags          CliFlags
		envVars           map[string]string
		wantReport        string
		wantReportSource  string
		wantSelfContained bool
		wantSCSource      string
	}{
		{
			name:              "file beats defaults",
			wantReport:        "file.html",
			wantReportSource:  SourceFile,
			wantSelfContained: true,
			wantSCSource:      SourceFile,
		},
		{
			name:              "env beats file",
			envVars:           map[string]string{"TESTHTML_REPORT": "env.html", "TESTHTML_SELF_CONTAINED": "false"},
			wantReport:        "env.html",
			wantReportSource:  SourceEnv,
			wantSelfContained: false,
			wantSCSource:      SourceEnv,
		},
		{
			name:              "CLI beats env",
			cliFlags:          CliFlags{ReportPath: "cli.html", ReportPathSet: true, SelfContained: true, SelfContainedSet: true},
			envVars:           map[string]string{"TESTHTML_REPORT": "env.html", "TESTHTML_SELF_CONTAINED": "0"},
			wantReport:        "cli.html",
			wantReportSource:  SourceCLI,
			wantSelfContained: true,
			wantSCSource:      SourceCLI,
		},
		{
			name:              "unparseable env bool is ignored",
			envVars:           map[string]string{"TESTHTML_SELF_CONTAINED": "maybe"},
			wantReport:        "file.html",
			wantReportSource:  SourceFile,
			wantSelfContained: true,
			wantSCSource:      SourceFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := resolve(tt.cliFlags, file, FileName)
			require.NoError(t, err)
			assert.Equal(t, tt.wantReport, cfg.ReportPath)
			assert.Equal(t, tt.wantReportSource, cfg.ReportPathSource)
			assert.Equal(t, tt.wantSelfContained, cfg.SelfContained)
			assert.Equal(t, tt.wantSCSource, cfg.SelfContainedSource)
		})
	}
}

func TestResolveConfig_CLIOverridesFileValues(t *testing.T) {
	isolate(t)
	file := &AppConfig{
		CSS:             []string{"file.css"},
		Title:           "File title",
		RenderCollapsed: "all",
		ANSI:            "strip",
		Theme:           "orca",
	}
	cli := CliFlags{
		CSS:          []string{"cli.css"},
		Title:        "CLI title",
		TitleSet:     true,
		Collapsed:    "none",
		CollapsedSet: true,
		ANSI:         "html",
		ANSISet:      true,
		ThemeName:    "mono",
	}

	cfg, err := resolve(cli, file, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"cli.css"}, cfg.CSS)
	assert.Equal(t, "CLI title", cfg.Title)
	assert.Equal(t, "none", cfg.RenderCollapsed)
	assert.Equal(t, htmlutil.ANSIHTML, cfg.ANSI)
	assert.Equal(t, "mono", cfg.ThemeName)
}

func TestResolveConfig_NoColorForcesMono(t *testing.T) {
	isolate(t)
	t.Setenv("NO_COLOR", "1")

	cfg, err := resolve(CliFlags{ThemeName: "orca"}, &AppConfig{}, "")
	require.NoError(t, err)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "mono", cfg.ThemeName)
}

func TestResolveConfig_Debug(t *testing.T) {
	isolate(t)
	t.Setenv("TESTHTML_DEBUG", "yes")

	cfg, err := resolve(CliFlags{}, &AppConfig{}, "")
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
}

func TestResolveConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		file    *AppConfig
		cli     CliFlags
		wantErr string
	}{
		{"negative max length", &AppConfig{MaxAssetFilenameLength: intPtr(-1)}, CliFlags{}, "max_asset_filename_length"},
		{"zero max length", &AppConfig{MaxAssetFilenameLength: intPtr(0)}, CliFlags{}, "max_asset_filename_length"},
		{"bad regex", &AppConfig{RedactList: []string{"("}}, CliFlags{}, "environment_table_redact_list"},
		{"unknown ansi", &AppConfig{ANSI: "rainbow"}, CliFlags{}, "unknown ansi mode"},
		{"unknown theme", &AppConfig{}, CliFlags{ThemeName: "neon"}, "invalid theme"},
		{"empty report path", &AppConfig{}, CliFlags{ReportPathSet: true}, "report path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := resolve(tt.cli, tt.file, "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, err.Error(), "config validation failed")
		})
	}
}

func TestResolveConfig_ReadsFileFromWorkingDirectory(t *testing.T) {
	dir := isolate(t)
	yml := "report_path: from-file.html\nmetadata:\n  Branch: main\nmax_asset_filename_length: 64\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(yml), 0o600))

	cfg, err := ResolveConfig(CliFlags{})
	require.NoError(t, err)
	assert.Equal(t, "from-file.html", cfg.ReportPath)
	assert.Equal(t, FileName, cfg.ConfigPath)
	assert.Equal(t, 64, cfg.MaxAssetFilenameLength)
	assert.Equal(t, "main", cfg.Metadata["Branch"])
}
