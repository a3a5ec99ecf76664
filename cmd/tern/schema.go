package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tern/internal/project"
	"tern/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect resource schemas",
}

var schemaListCmd = &cobra.Command{
	Use:   "list [directory]",
	Short: "List resource types available to the analyzer",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSchemaList,
}

func init() {
	schemaListCmd.Flags().Bool("properties", false, "list properties per resource type")
	schemaListCmd.SilenceUsage = true
	schemaCmd.AddCommand(schemaListCmd)
}

func runSchemaList(cmd *cobra.Command, args []string) error {
	dir := ""
	if len(args) == 1 {
		dir = args[0]
	} else if manifestPath, ok, err := project.FindManifest("."); err != nil {
		return err
	} else if ok {
		m, err := project.Load(manifestPath)
		if err != nil {
			return err
		}
		dir = m.Analysis.SchemaDir
	}
	if dir == "" {
		return fmt.Errorf("no schema directory: pass one or set [analysis].schema_dir in %s", project.ManifestName)
	}

	registry, err := schema.LoadDir(dir)
	if err != nil {
		return err
	}

	showProps, _ := cmd.Flags().GetBool("properties")
	out := cmd.OutOrStdout()
	for _, s := range registry.All() {
		fmt.Fprintf(out, "%s (%d properties)\n", s.ID(), len(s.Properties))
		if !showProps {
			continue
		}
		for _, p := range s.Properties {
			marks := ""
			if p.Required {
				marks += " required"
			}
			if p.ReadOnly {
				marks += " read-only"
			}
			fmt.Fprintf(out, "  %s: %s%s\n", p.Name, p.Type, marks)
		}
	}
	return nil
}
