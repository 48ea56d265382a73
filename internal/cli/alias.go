package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

type putAliasRequest struct {
	UUID string `json:"uuid"`
	Note string `json:"note,omitempty"`
}

func newAliasCmd() *cobra.Command {
	aliasCmd := &cobra.Command{
		Use:   "alias",
		Short: "Manage curated nickname mappings",
	}

	var note string
	setCmd := &cobra.Command{
		Use:   "set <alias> <uuid>",
		Short: "Map an alias to a player uuid",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result AliasEntry
			req := putAliasRequest{UUID: args[1], Note: note}
			if err := client.Put("/api/aliases/"+url.PathEscape(args[0]), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
	setCmd.Flags().StringVar(&note, "note", "", "Free-form note for the mapping")
	aliasCmd.AddCommand(setCmd)

	aliasCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all alias mappings",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []AliasEntry
			if err := client.Get("/api/aliases", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	})

	aliasCmd.AddCommand(&cobra.Command{
		Use:   "rm <alias>",
		Short: "Remove an alias mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/aliases/" + url.PathEscape(args[0])); err != nil {
				return err
			}
			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Removed alias %s", args[0]))
			return nil
		},
	})

	return aliasCmd
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <name>",
		Short: "Resolve a username or nickname to an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Resolution
			if err := client.Get("/api/resolve/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
