package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inodb/intact-bridges/internal/blast"
)

func newBlastConfigCmd() *cobra.Command {
	var (
		email  string
		create bool
	)

	cmd := &cobra.Command{
		Use:   "blast-config",
		Short: "Show the resolved BLAST job settings",
		Long:  "Show the BLAST job settings after applying BLAST_* environment variables.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := blast.Load(email)
			if err != nil {
				return err
			}
			if err := c.Validate(); err != nil {
				return fmt.Errorf("%w: %v", errUsage, err)
			}
			if create {
				if err := c.EnsureDirs(); err != nil {
					return err
				}
			}

			out, err := yaml.Marshal(c)
			if err != nil {
				return fmt.Errorf("marshaling blast config: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address submitted with the jobs")
	cmd.Flags().BoolVar(&create, "create-dirs", false, "Create the archive and database directories")

	return cmd
}
