package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/anthonypate54/familynest/pkg/types"
)

type StatusInfo struct {
	Gateway     string                                `json:"gateway" yaml:"gateway"`
	Healthy     bool                                  `json:"healthy" yaml:"healthy"`
	Error       string                                `json:"error,omitempty" yaml:"error,omitempty"`
	Permissions map[types.Kind]types.PermissionStatus `json:"permissions,omitempty" yaml:"permissions,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show gateway status",
	Long:  `Check that the gateway is reachable and show the recorded library permissions.`,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := getClient()
	ctx := context.Background()

	info := StatusInfo{Gateway: gatewayAddr}
	if err := client.Health(ctx); err != nil {
		info.Error = err.Error()
	} else {
		info.Healthy = true
		perms, err := client.Permissions(ctx)
		if err != nil {
			info.Error = err.Error()
		}
		info.Permissions = perms
	}

	if PrintStructured(info) {
		return nil
	}

	PrintNewline()
	PrintHeader("FamilyNest")
	PrintKeyValue("Gateway", gatewayAddr)
	if info.Healthy {
		PrintKeyValue("Status", SuccessStyle.Render("healthy"))
	} else {
		PrintKeyValue("Status", ErrorStyle.Render("unreachable"))
	}
	if info.Error != "" {
		PrintKeyValue("Error", DimStyle.Render(cleanErrorMessage(info.Error)))
	}
	if info.Permissions != nil {
		PrintNewline()
		printPermissions(info.Permissions)
		return nil
	}
	PrintNewline()
	return nil
}
