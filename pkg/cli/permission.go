package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/anthonypate54/familynest/pkg/types"
)

var permissionCmd = &cobra.Command{
	Use:   "permission",
	Short: "Show or record media library permission",
}

var permissionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show permission state per media kind",
	RunE: func(cmd *cobra.Command, args []string) error {
		perms, err := getClient().Permissions(context.Background())
		if err != nil {
			return err
		}
		printPermissions(perms)
		return nil
	},
}

var permissionGrantCmd = &cobra.Command{
	Use:   "grant <photo|video>",
	Short: "Record that library access was granted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPermission(args[0], types.PermissionGranted)
	},
}

var permissionDenyCmd = &cobra.Command{
	Use:   "deny <photo|video>",
	Short: "Record that library access was denied",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPermission(args[0], types.PermissionDenied)
	},
}

func init() {
	permissionCmd.AddCommand(permissionShowCmd)
	permissionCmd.AddCommand(permissionGrantCmd)
	permissionCmd.AddCommand(permissionDenyCmd)
}

func setPermission(rawKind string, status types.PermissionStatus) error {
	kind, err := types.ParseKind(rawKind)
	if err != nil {
		return err
	}

	perms, err := getClient().SetPermission(context.Background(), kind, status)
	if err != nil {
		return err
	}
	printPermissions(perms)
	return nil
}

func printPermissions(perms map[types.Kind]types.PermissionStatus) {
	if PrintStructured(perms) {
		return
	}

	PrintNewline()
	for _, kind := range []types.Kind{types.KindPhoto, types.KindVideo} {
		status := string(perms[kind])
		if status == "" {
			status = string(types.PermissionUndetermined)
		}
		PrintKeyValue(string(kind), StatusStyle(status).Render(status))
	}
	PrintNewline()
}
