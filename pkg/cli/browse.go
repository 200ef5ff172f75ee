package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var browseSingle bool

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the document picker and wait for a selection",
	Long: `Open a document picker session on the gateway and wait until the external
picker completes or cancels it. Interrupting the command abandons the session.`,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().BoolVar(&browseSingle, "single", false, "Allow selecting only one document")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !IsStructuredOutput() {
		PrintInfo("Waiting for the picker selection...")
		PrintHint("Complete it with 'familynest picker complete <session-id> <handle>...'")
	}

	resources, err := getClient().Browse(ctx, browseSingle)
	if err != nil {
		return err
	}

	if PrintStructured(resources) {
		return nil
	}

	if len(resources) == 0 {
		PrintWarning("Picker cancelled, nothing selected")
		return nil
	}

	PrintResources(resources)
	return nil
}
