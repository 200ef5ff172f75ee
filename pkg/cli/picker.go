package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var pickerCmd = &cobra.Command{
	Use:   "picker",
	Short: "Act as the external document picker",
}

var pickerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the pending picker session",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := getClient().CurrentSession(context.Background())
		if err != nil {
			return err
		}

		if PrintStructured(session) {
			return nil
		}

		PrintNewline()
		PrintKeyValue("Session", CodeStyle.Render(session.ID))
		PrintKeyValue("Mode", string(session.Mode))
		PrintKeyValue("Opened", session.CreatedAt.Local().Format("15:04:05"))
		PrintKeyValue("Types", strings.Join(session.DocumentTypes, ", "))
		PrintNewline()
		return nil
	},
}

var pickerCompleteCmd = &cobra.Command{
	Use:   "complete <session-id> [handle...]",
	Short: "Report the selected handles for a session",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := getClient().CompleteSession(context.Background(), args[0], args[1:]); err != nil {
			return err
		}
		if PrintStructured(map[string]interface{}{"session_id": args[0], "handles": args[1:]}) {
			return nil
		}
		PrintSuccess(fmt.Sprintf("Session %s completed with %d handle(s)", args[0], len(args)-1))
		return nil
	},
}

var pickerCancelCmd = &cobra.Command{
	Use:   "cancel <session-id>",
	Short: "Cancel a pending session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := getClient().CancelSession(context.Background(), args[0]); err != nil {
			return err
		}
		if PrintStructured(map[string]interface{}{"session_id": args[0], "cancelled": true}) {
			return nil
		}
		PrintSuccess(fmt.Sprintf("Session %s cancelled", args[0]))
		return nil
	},
}

func init() {
	pickerCmd.AddCommand(pickerShowCmd)
	pickerCmd.AddCommand(pickerCompleteCmd)
	pickerCmd.AddCommand(pickerCancelCmd)
}
