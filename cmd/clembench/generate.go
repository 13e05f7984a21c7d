package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/paulutsch/clembench/pkg/config"
	"github.com/paulutsch/clembench/pkg/games"
	"github.com/paulutsch/clembench/pkg/logger"
)

func newGenerateCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "generate [game]",
		Short: "Generate experiment instance files",
		Long:  "Generate the experiment yaml for one game, or for every registered game when no game is named.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := games.Names()
			if len(args) == 1 {
				names = args[:1]
			}
			for _, name := range names {
				if err := generateGame(name, outDir); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "instances", "directory for generated experiment files")
	return cmd
}

func generateGame(name, outDir string) error {
	entry, err := games.Lookup(name)
	if err != nil {
		return err
	}
	exp, err := entry.Generate()
	if err != nil {
		return fmt.Errorf("generate %s: %w", name, err)
	}

	path := filepath.Join(outDir, name+".yaml")
	if err := config.Save(path, exp); err != nil {
		return err
	}
	logger.Named("generate").Infof("wrote %s (%d instances)", path, len(exp.Instances))
	return nil
}
