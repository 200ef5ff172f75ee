package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anthonypate54/familynest/pkg/gateway"
)

// Build information (injected at compile time via ldflags)
var (
	Version = "dev"
)

const (
	localGatewayHTTP = "http://127.0.0.1:1994"
)

var (
	gatewayAddr  string
	authToken    string
	outputFormat string
)

// Custom help template with styled output
var helpTemplate = `{{with .Long}}{{. | trim}}

{{end}}{{if .HasAvailableSubCommands}}` + `{{.CommandPath}}` + ` ` + `<command>` + `

{{end}}{{if .HasAvailableSubCommands}}Commands:
{{range .Commands}}{{if .IsAvailableCommand}}  {{rpad .Name .NamePadding }}  {{.Short}}
{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}
Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}
`

var rootCmd = &cobra.Command{
	Use:   "familynest",
	Short: "Browse and resolve family photos, videos and documents",
	Long: BrandStyle.Render("familynest") + ` - media bridge for the family app

List photos and videos from the media catalog or the synced cloud folder,
pick documents through the external picker, and resolve any listed item to
a local file path.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return SetOutputFormat(outputFormat)
	},
}

func init() {
	// Set custom templates
	rootCmd.SetHelpTemplate(helpTemplate)

	// Version template
	rootCmd.SetVersionTemplate(fmt.Sprintf("  %s version %s\n", BrandStyle.Render("familynest"), Version))

	rootCmd.PersistentFlags().StringVar(&gatewayAddr, "gateway", getEnv("FAMILYNEST_GATEWAY", localGatewayHTTP), "Gateway HTTP address")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", getEnv("FAMILYNEST_TOKEN", ""), "Gateway admin token")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", OutputTable, "Output format: table, json or yaml")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(pickerCmd)
	rootCmd.AddCommand(permissionCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(statusCmd)
}

// Execute runs the CLI
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		PrintFormattedError("Command failed", err)
	}
	return err
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getClient() *gateway.GatewayClient {
	return gateway.NewGatewayClient(gatewayAddr, authToken)
}
