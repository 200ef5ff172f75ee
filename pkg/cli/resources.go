package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anthonypate54/familynest/pkg/types"
)

var (
	listKind     string
	listSource   string
	listMaxBytes int64

	resolveKind string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List photos or videos from a source",
	Example: `  familynest list --kind photo --source catalog
  familynest list --kind video --source cloud --max-size 104857600 -o json`,
	RunE: runList,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Resolve a listed resource to a local file path",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	listCmd.Flags().StringVarP(&listKind, "kind", "k", string(types.KindPhoto), "Media kind: photo or video")
	listCmd.Flags().StringVarP(&listSource, "source", "s", string(types.SourceCatalog), "Source: catalog or cloud")
	listCmd.Flags().Int64Var(&listMaxBytes, "max-size", 0, "Maximum size in bytes (default: gateway ceiling)")

	resolveCmd.Flags().StringVar(&resolveKind, "identity-kind", "", "Identity kind: catalog, handle or path (default: inferred)")
}

func runList(cmd *cobra.Command, args []string) error {
	kind, err := types.ParseKind(listKind)
	if err != nil {
		return err
	}
	source, err := types.ParseSourceName(listSource)
	if err != nil {
		return err
	}

	var maxSize *int64
	if cmd.Flags().Changed("max-size") {
		maxSize = &listMaxBytes
	}

	resources, err := getClient().ListResources(context.Background(), kind, source, maxSize)
	if err != nil {
		return err
	}

	if PrintStructured(resources) {
		return nil
	}

	if len(resources) == 0 {
		PrintInfo(fmt.Sprintf("No %ss found in %s", kind, source))
		return nil
	}

	PrintResources(resources)
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	path, err := getClient().ResolvePath(context.Background(), args[0], types.IdentityKind(resolveKind))
	if err != nil {
		return err
	}

	if PrintStructured(map[string]string{"id": args[0], "path": path}) {
		return nil
	}

	PrintSuccess(path)
	return nil
}

// PrintResources renders descriptors as a table
func PrintResources(resources []types.Resource) {
	PrintNewline()
	table := NewTable("ID", "NAME", "SIZE", "TYPE", "PATH")
	for _, r := range resources {
		name := r.DisplayName
		if r.IsDirectory {
			name += "/"
		}
		path := r.LocalPath
		if path == "" {
			path = "-"
		}
		table.AddRow(Truncate(r.Identity, 48), Truncate(name, 32), FormatBytes(r.SizeBytes), r.MimeType, Truncate(path, 60))
	}
	table.Print()
	PrintNewline()
}
