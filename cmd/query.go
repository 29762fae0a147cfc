package cmd

import (
	"fmt"

	"github.com/milden6/datrie"
	"github.com/spf13/cobra"
)

func newQueryCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "query NAME KEY",
		Short: "Print the data stored for KEY",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withTrie(args[0], func(tt *datrie.TextTrie) error {
				data, ok := tt.Retrieve(args[1])
				if !ok {
					return fmt.Errorf("query: key '%s' not found", args[1])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\n", data)
				return nil
			})
		},
	}
}

func newListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list NAME",
		Short: "List all keys and their data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withTrie(args[0], func(tt *datrie.TextTrie) error {
				out := cmd.OutOrStdout()
				for key, data := range tt.All() {
					fmt.Fprintf(out, "%s\t%d\n", key, data)
				}
				return nil
			})
		},
	}
}

func newDumpCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "dump NAME",
		Short: "Print the cells and tail blocks of the trie and check its free list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withTrie(args[0], func(tt *datrie.TextTrie) error {
				if err := tt.Trie().Dump(cmd.OutOrStdout()); err != nil {
					return err
				}
				return tt.Trie().CheckIntegrity()
			})
		},
	}
}
