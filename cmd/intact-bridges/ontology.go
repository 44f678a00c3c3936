package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inodb/intact-bridges/internal/ontology"
)

func newOntologyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ontology <dir> <file> [term]",
		Short: "Load an OBO ontology and show a term",
		Example: `  intact-bridges ontology ./ontologies psi-mi.obo
  intact-bridges ontology ./ontologies psi-mi.obo MI:0004`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			o, err := ontology.NewLocalOntology(ontology.DefaultTermBuilder{})
			if err != nil {
				return err
			}
			o.SetLogger(logger)
			if err := o.Load(args[0], args[1]); err != nil {
				return err
			}

			if len(args) == 2 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d terms\n", o.Len())
				return nil
			}
			return writeTerm(cmd.OutOrStdout(), o, args[2])
		},
	}
}

func writeTerm(w io.Writer, o *ontology.LocalOntology, id string) error {
	t, ok := o.Term(id)
	if !ok {
		return fmt.Errorf("term %s not found", id)
	}

	fmt.Fprintf(w, "id: %s\n", t.ID)
	fmt.Fprintf(w, "name: %s\n", t.Name)
	if t.Namespace != "" {
		fmt.Fprintf(w, "namespace: %s\n", t.Namespace)
	}
	if t.Definition != "" {
		fmt.Fprintf(w, "def: %s\n", t.Definition)
	}
	for _, s := range t.Synonyms {
		fmt.Fprintf(w, "synonym: %s\n", s)
	}
	fmt.Fprintf(w, "parents: %s\n", termList(o.Parents(id)))
	fmt.Fprintf(w, "children: %s\n", termList(o.Children(id)))
	fmt.Fprintf(w, "obsolete: %t\n", t.Obsolete)
	return nil
}

func termList(terms []*ontology.Term) string {
	if len(terms) == 0 {
		return "-"
	}
	ids := make([]string, len(terms))
	for i, t := range terms {
		ids[i] = t.ID
	}
	return strings.Join(ids, ", ")
}
