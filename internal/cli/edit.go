package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/apiconf/internal/session"
)

func newCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <table> <json>",
		Short: "Create a record",
		Long: `Create adds a new record to a table. A missing id is generated.
Attributes must reference an existing entity through entity_id.`,
		Example: `  apiconf create entities '{"name":"orders","read_only":false}'
  apiconf create deployment '{"environment":"prod","host":"api.example.com","port":443,"replicas":3}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := lookupKind(args[0])
			if err != nil {
				return classify(err)
			}
			return a.withSession(func(s *session.Session) error {
				res, err := k.create(s, []byte(args[1]), !a.dryRun)
				if err != nil {
					return err
				}
				return a.printResult(cmd.OutOrStdout(), res)
			})
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <table> <id> <op>...",
		Short: "Apply change-tracked edits to a record",
		Long: `Edit loads a record and applies operations to it in order:

  set <path>=<value>   set a field; dotted paths reach into nested objects
  delete               mark the record deleted
  restore              undo a deletion and return to the baseline status
  undo                 step back one change
  redo                 step forward one change

Values that parse as JSON are stored as JSON, anything else as a string.
The resulting status and the diff against the stored record are printed,
then the record is saved unless --dry-run is given.`,
		Example: `  apiconf edit deployment 0192... set port=8443 set env.LOG_LEVEL=debug
  apiconf edit entities 0192... set name=orders undo redo
  apiconf edit security 0192... delete restore --dry-run`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := lookupKind(args[0])
			if err != nil {
				return classify(err)
			}
			ops, err := parseOps(args[2:])
			if err != nil {
				return classify(err)
			}
			return a.withSession(func(s *session.Session) error {
				res, err := k.edit(s, args[1], ops, !a.dryRun)
				if err != nil {
					return err
				}
				return a.printResult(cmd.OutOrStdout(), res)
			})
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <id>",
		Short: "Delete a record",
		Long:  "Delete removes a record. Deleting an entity also removes its attributes and security rules.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := lookupKind(args[0])
			if err != nil {
				return classify(err)
			}
			return a.withSession(func(s *session.Session) error {
				res, err := k.remove(s, args[1], !a.dryRun)
				if err != nil {
					return err
				}
				return a.printResult(cmd.OutOrStdout(), res)
			})
		},
	}
}

func (a *app) printResult(w io.Writer, res editResult) error {
	if a.jsonMode {
		return printJSON(w, res)
	}

	fmt.Fprintf(w, "id:       %s\n", res.ID)
	fmt.Fprintf(w, "status:   %s\n", res.Status)
	fmt.Fprintf(w, "can undo: %t\n", res.CanUndo)
	fmt.Fprintf(w, "can redo: %t\n", res.CanRedo)
	if res.Diff != "" {
		fmt.Fprintf(w, "\n%s", res.Diff)
	}
	if !res.Saved {
		fmt.Fprintln(w, "\nnot saved (dry run)")
		return nil
	}
	fmt.Fprintf(w, "\nsaved: %d written, %d deleted\n", res.Report.Written, res.Report.Deleted)
	return nil
}
