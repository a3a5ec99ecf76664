package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/diagfmt"
	"tern/internal/driver"
	"tern/internal/project"
	"tern/internal/schema"
	"tern/internal/source"
)

// ArtifactExt is the extension of encoded syntax-tree artifacts the analyzer
// consumes. Producing them is the front end's job.
const ArtifactExt = ".ternt"

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file" + ArtifactExt + "|directory>",
	Short: "Analyze tern syntax-tree artifacts",
	Long:  `Analyze one artifact or every *` + ArtifactExt + ` artifact in a directory: binding, dependency cycles, type checking. The exit status is non-zero when errors are found.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("no-source", false, "omit source context lines in pretty output")
	checkCmd.Flags().String("schemas", "", "resource schema directory (overrides tern.toml)")
	checkCmd.SilenceUsage = true
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "pretty", "json", "short":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty, json or short)", format)
	}
	jobs, _ := cmd.Flags().GetInt("jobs")
	withNotes, _ := cmd.Flags().GetBool("with-notes")
	noSource, _ := cmd.Flags().GetBool("no-source")
	schemaDir, _ := cmd.Flags().GetString("schemas")
	maxDiagnostics, _ := cmd.Flags().GetInt("max-diagnostics")

	paths, err := collectArtifacts(args[0])
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no %s artifacts under %s", ArtifactExt, args[0])
	}

	manifest, haveManifest, err := loadManifestFor(paths[0])
	if err != nil {
		return err
	}
	if haveManifest {
		if schemaDir == "" {
			schemaDir = manifest.Analysis.SchemaDir
		}
		if maxDiagnostics == 0 {
			maxDiagnostics = manifest.Analysis.MaxDiagnostics
		}
		if jobs == 0 {
			jobs = manifest.Analysis.Jobs
		}
	}

	var provider schema.Provider
	if schemaDir != "" {
		registry, err := schema.LoadDir(schemaDir)
		if err != nil {
			return fmt.Errorf("loading schemas: %w", err)
		}
		provider = registry
	}

	units := make([]driver.Unit, 0, len(paths))
	for _, path := range paths {
		unit, err := loadArtifact(path)
		if err != nil {
			return err
		}
		units = append(units, unit)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snaps, err := driver.AnalyzeProgram(ctx, units, driver.Options{
		Schemas:        provider,
		MaxDiagnostics: maxDiagnostics,
		Jobs:           jobs,
	})
	if err != nil {
		return err
	}

	if err := renderSnapshots(cmd, snaps, format, withNotes, !noSource); err != nil {
		return err
	}

	errors := 0
	for _, snap := range snaps {
		for _, d := range snap.Diagnostics {
			if d.Severity >= diag.SevError {
				errors++
			}
		}
	}
	if errors > 0 {
		return fmt.Errorf("found %d error(s)", errors)
	}
	return nil
}

func collectArtifacts(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var out []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ArtifactExt) {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func loadManifestFor(path string) (project.Manifest, bool, error) {
	manifestPath, ok, err := project.FindManifest(filepath.Dir(path))
	if err != nil || !ok {
		return project.Manifest{}, false, err
	}
	m, err := project.Load(manifestPath)
	if err != nil {
		return project.Manifest{}, false, err
	}
	return m, true, nil
}

// loadArtifact decodes one artifact into a self-contained unit so parallel
// analysis shares nothing.
func loadArtifact(path string) (driver.Unit, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the CLI argument
	if err != nil {
		return driver.Unit{}, err
	}
	fs := source.NewFileSet()
	strs := source.NewInterner()
	tree, err := ast.DecodeTree(data, fs, strs)
	if err != nil {
		return driver.Unit{}, fmt.Errorf("%s: %w", path, err)
	}
	name := path
	if f := fs.Get(tree.File); f != nil {
		name = f.Path
	}
	return driver.Unit{Name: name, Tree: tree, Files: fs, Strings: strs}, nil
}

type unitReport struct {
	Unit        string                   `json:"unit"`
	Diagnostics []diagfmt.DiagnosticJSON `json:"diagnostics"`
	Count       int                      `json:"count"`
}

func renderSnapshots(cmd *cobra.Command, snaps []*driver.Snapshot, format string, withNotes, withSource bool) error {
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		reports := make([]unitReport, 0, len(snaps))
		for _, snap := range snaps {
			doc := diagfmt.BuildDiagnosticsOutput(snapshotBag(snap), snap.Files, diagfmt.JSONOpts{
				IncludePositions: true,
				IncludeNotes:     withNotes,
			})
			reports = append(reports, unitReport{
				Unit:        snap.Unit,
				Diagnostics: doc.Diagnostics,
				Count:       doc.Count,
			})
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(reports)
	case "short":
		for _, snap := range snaps {
			fmt.Fprint(out, diag.FormatDiagnostics(snap.Diagnostics, snap.Files, withNotes))
		}
		return nil
	default:
		for _, snap := range snaps {
			diagfmt.Pretty(out, snapshotBag(snap), snap.Files, diagfmt.PrettyOpts{
				Color:      shouldColor(),
				ShowSource: withSource,
				ShowNotes:  withNotes,
			})
		}
		return nil
	}
}

func snapshotBag(snap *driver.Snapshot) *diag.Bag {
	bag := diag.NewBag(max(len(snap.Diagnostics), 1))
	for _, d := range snap.Diagnostics {
		bag.Add(d)
	}
	return bag
}
