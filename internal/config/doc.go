// Package config handles configuration loading and merging for testhtml.
//
// # Configuration Precedence
//
// Configuration values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--report, --self-contained, --css, --title, --collapsed, --ansi, --theme)
//  2. Environment variables (TESTHTML_REPORT, TESTHTML_SELF_CONTAINED, TESTHTML_DEBUG, NO_COLOR)
//  3. YAML config file (.testhtml.yaml in the working directory or ~/.config/testhtml/.testhtml.yaml)
//  4. Hardcoded defaults
//
// When a higher-priority source sets a value, it overrides any lower-priority values.
//
// # Key Configuration Options
//
//   - report_path: where the HTML report is written (default report.html)
//   - self_contained_html: inline the stylesheet and every extra into the report
//   - css: additional stylesheets appended to the default one
//   - environment_table_redact_list: regexes; matching environment keys are masked
//   - max_asset_filename_length: cap on generated asset file names (default 255)
//   - render_collapsed: outcomes whose rows start collapsed ("all", "none", or a list)
//   - title: report title, defaults to the report file name
//   - ansi: how escape sequences in logs are rendered (html or strip)
//   - metadata: extra rows for the environment table
//   - theme: terminal theme (default, orca, mono)
//
// # Environment Variables
//
//   - TESTHTML_REPORT: report path
//   - TESTHTML_SELF_CONTAINED: "true" or "1" to produce a self-contained report
//   - TESTHTML_DEBUG: any non-empty value enables debug logging
//   - NO_COLOR: any non-empty value forces the monochrome terminal theme
package config
