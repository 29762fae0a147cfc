package cmd

import (
	"fmt"

	"github.com/milden6/datrie"
	"github.com/spf13/cobra"
)

func newDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME KEY...",
		Short: "Delete keys from the trie",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withTrie(args[0], func(tt *datrie.TextTrie) error {
				missing := 0
				for _, key := range args[1:] {
					if tt.Delete(key) != nil {
						missing++
						fmt.Fprintf(cmd.ErrOrStderr(), "No entry '%s'. Not deleted.\n", key)
					}
				}
				return missingError(missing)
			})
		},
	}
}

func newDeleteListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-list NAME LISTFILE",
		Short: "Delete the keys listed in LISTFILE, one per line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withTrie(args[0], func(tt *datrie.TextTrie) error {
				missing := 0
				err := e.readList(args[1], func(key string) {
					if tt.Delete(key) != nil {
						missing++
						fmt.Fprintf(cmd.ErrOrStderr(), "No entry '%s'. Not deleted.\n", key)
					}
				})
				if err != nil {
					return err
				}
				return missingError(missing)
			})
		},
	}
}

func missingError(n int) error {
	if n == 0 {
		return nil
	}
	return fmt.Errorf("%d keys not found", n)
}
