package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/healthchat/internal/models"
)

func newTopicsCmd(deps *Dependencies) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "topics",
		Short: "List the starter health topics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				data, err := json.MarshalIndent(models.HealthTopics, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(deps.Stdout, string(data))
				return nil
			}

			for i, topic := range models.HealthTopics {
				fmt.Fprintf(deps.Stdout, "%d. %s: %s\n", i+1, topic.Label, topic.Prompt)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print topics as JSON")
	return cmd
}
