package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pscheid92/socialsent/internal/sentiment"
)

func newLexiconCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lexicon",
		Short: "Inspect heuristic lexicons",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check [file]",
		Short: "Validate a lexicon file and list the rules it produces",
		Long:  "Validate a YAML lexicon file, or the built-in lexicon when no file is given, and print the rules in evaluation order.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lexicon := sentiment.DefaultLexicon()
			if len(args) == 1 {
				var err error
				lexicon, err = sentiment.LoadLexicon(args[0])
				if err != nil {
					return err
				}
			}

			scorer, err := sentiment.NewScorer(lexicon)
			if err != nil {
				return err
			}

			for _, name := range scorer.RuleNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	})

	return cmd
}
