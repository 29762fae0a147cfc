package cmd

import (
	"fmt"

	"github.com/milden6/datrie"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAddCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME KEY [DATA] [KEY [DATA]]...",
		Short: "Add keys with optional data to the trie",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withTrie(args[0], func(tt *datrie.TextTrie) error {
				var failed int
				rest := args[1:]
				for len(rest) > 0 {
					key := rest[0]
					data := datrie.DataError
					var err error
					if len(rest) > 1 {
						data, err = parseData(rest[1])
						rest = rest[2:]
					} else {
						rest = rest[1:]
					}
					if err == nil {
						err = tt.Store(key, data)
					}
					if err != nil {
						failed++
						fmt.Fprintf(cmd.ErrOrStderr(), "Failed to add entry '%s' with data %d: %v\n", key, data, err)
					}
				}
				if failed > 0 {
					return fmt.Errorf("%d entries not added", failed)
				}
				return nil
			})
		},
	}
}

func newAddListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "add-list NAME LISTFILE",
		Short: "Add the keys and data listed in LISTFILE",
		Long: `Each line of LISTFILE holds a key, optionally followed by a tab or a
comma and its data. Blank lines are skipped. With --encoding the file is
decoded from that character set.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withTrie(args[0], func(tt *datrie.TextTrie) error {
				var added, failed int
				err := e.readList(args[1], func(line string) {
					key, data, err := parseEntry(line)
					if err == nil {
						err = tt.Store(key, data)
					}
					if err != nil {
						failed++
						fmt.Fprintf(cmd.ErrOrStderr(), "Failed to add key '%s' with data %d: %v\n", key, data, err)
						return
					}
					added++
				})
				if err != nil {
					return err
				}
				e.logger.Info("added list",
					zap.String("file", args[1]),
					zap.Int("added", added),
					zap.Int("failed", failed))
				if failed > 0 {
					return fmt.Errorf("%d entries not added", failed)
				}
				return nil
			})
		},
	}
}
