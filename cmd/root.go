package cmd

import (
	"errors"
	"fmt"

	"github.com/milden6/datrie"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// env is shared by the subcommands of one invocation.
type env struct {
	cfgFile  string
	path     string
	encoding string
	verbose  bool

	config Config
	logger *zap.Logger
}

// NewRootCmd builds the trietool command tree.
func NewRootCmd() *cobra.Command {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:   "trietool",
		Short: "trietool - double-array trie manipulator",
		Long: `trietool edits a double-array trie kept in a directory as NAME.br,
NAME.tl and NAME.sbm. The trie is created when it does not exist yet.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&e.path, "path", "p", ".", "Directory holding the trie files")
	flags.StringVar(&e.cfgFile, "config", "", "Configuration file (default "+defaultConfigFile+")")
	flags.StringVar(&e.encoding, "encoding", "", "Character encoding of list files (default UTF-8)")
	flags.BoolVarP(&e.verbose, "verbose", "v", false, "Log debug output")

	rootCmd.AddCommand(newInitCmd(e))
	rootCmd.AddCommand(newAddCmd(e))
	rootCmd.AddCommand(newAddListCmd(e))
	rootCmd.AddCommand(newDeleteCmd(e))
	rootCmd.AddCommand(newDeleteListCmd(e))
	rootCmd.AddCommand(newQueryCmd(e))
	rootCmd.AddCommand(newListCmd(e))
	rootCmd.AddCommand(newDumpCmd(e))
	return rootCmd
}

func Execute() error {
	return NewRootCmd().Execute()
}

// setup loads the configuration file and lets explicit flags override it.
func (e *env) setup(cmd *cobra.Command) error {
	config, err := loadConfig(e.cfgFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("path") || config.Path == "" {
		config.Path = e.path
	}
	if flags.Changed("encoding") {
		config.Encoding = e.encoding
	}
	if flags.Changed("verbose") {
		config.Verbose = e.verbose
	}
	e.config = config

	if config.Verbose {
		e.logger, err = zap.NewDevelopment()
	} else {
		e.logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	return nil
}

// openTrie opens NAME for reading and writing, creating its files and
// alphabet from the configuration when they are missing.
func (e *env) openTrie(name string) (*datrie.TextTrie, error) {
	dir := e.config.Path
	if !datrie.AlphaMapFileExists(dir, name) {
		am, err := e.config.AlphaMap()
		if err != nil {
			return nil, err
		}
		if err := datrie.WriteAlphaMapFile(dir, name, am); err != nil {
			return nil, err
		}
		e.logger.Info("created alphabet file",
			zap.String("file", datrie.FilePath(dir, name, ".sbm")),
			zap.Int("size", am.Size()))
	}

	tt, err := datrie.OpenText(dir, name, datrie.ModeRead|datrie.ModeWrite|datrie.ModeCreate,
		datrie.WithLogger(e.logger))
	if err != nil {
		return nil, fmt.Errorf("cannot open trie '%s' at '%s': %w", name, dir, err)
	}
	return tt, nil
}

// withTrie runs fn on the opened trie and saves it afterwards.
func (e *env) withTrie(name string, fn func(*datrie.TextTrie) error) error {
	tt, err := e.openTrie(name)
	if err != nil {
		return err
	}
	err = fn(tt)
	return errors.Join(err, tt.Close())
}
