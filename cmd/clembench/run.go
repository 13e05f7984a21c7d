package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/paulutsch/clembench/internal/store"
	"github.com/paulutsch/clembench/pkg/backends"
	"github.com/paulutsch/clembench/pkg/config"
	"github.com/paulutsch/clembench/pkg/game"
	"github.com/paulutsch/clembench/pkg/games"
	"github.com/paulutsch/clembench/pkg/logger"
	"github.com/paulutsch/clembench/pkg/recorder"
	"github.com/paulutsch/clembench/pkg/scoring"
)

type runOptions struct {
	experimentPath string
	models         []string
	outDir         string
	verbose        bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every instance of an experiment and store the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExperiment(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.experimentPath, "experiment", "e", "", "path to the experiment yaml (required)")
	cmd.Flags().StringSliceVarP(&opts.models, "model", "m", nil, "player model as provider:name, repeat for multi-player games (required)")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "results", "directory for the results index and transcript archive")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "mirror every transcript event to the process log")
	_ = cmd.MarkFlagRequired("experiment")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func runExperiment(ctx context.Context, opts *runOptions) error {
	log := logger.Named("run")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		cancel()
	}()

	exp, err := config.Load(opts.experimentPath)
	if err != nil {
		return err
	}
	entry, err := games.Lookup(exp.Game)
	if err != nil {
		return err
	}
	if len(opts.models) != entry.NumPlayers {
		return fmt.Errorf("%s needs %d player model(s), got %d", exp.Game, entry.NumPlayers, len(opts.models))
	}

	models := make([]game.Model, 0, len(opts.models))
	for _, spec := range opts.models {
		model, err := buildModel(ctx, spec)
		if err != nil {
			return err
		}
		models = append(models, model)
	}

	runID := uuid.NewString()
	index, err := store.OpenIndex(filepath.Join(opts.outDir, "results.db"))
	if err != nil {
		return err
	}
	defer index.Close()
	archive, err := store.OpenArchive(filepath.Join(opts.outDir, runID+".jsonl.zst"))
	if err != nil {
		return err
	}
	defer archive.Close()

	log.WithField("run_id", runID).Infof("running %s: %d instance(s)", exp.Name, len(exp.Instances))

	var failed int
	for _, inst := range exp.Instances {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := runInstance(ctx, opts, entry, exp, inst, models, runID, index, archive); err != nil {
			failed++
			log.WithError(err).Errorf("instance %d failed", inst.ID)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d instance(s) failed", failed, len(exp.Instances))
	}
	return nil
}

func runInstance(
	ctx context.Context,
	opts *runOptions,
	entry games.Entry,
	exp *config.Experiment,
	inst config.Instance,
	models []game.Model,
	runID string,
	index *store.Index,
	archive *store.Archive,
) error {
	rec := recorder.New(exp.Game)
	if opts.verbose {
		rec.Attach(recorder.NewLogSink())
	}

	dm, err := entry.New(models, inst, rec)
	if err != nil {
		return err
	}
	if err := dm.Play(ctx); err != nil {
		return err
	}

	trace := rec.Trace()
	scores, err := entry.Scorer.ComputeScores(trace)
	if err != nil {
		return err
	}

	if err := archive.WriteTrace(trace); err != nil {
		return err
	}

	outcome, err := scoring.ReadOutcome(trace)
	if err != nil {
		return err
	}
	moves, err := scoring.IntKey(trace, scoring.MetricMoves)
	if err != nil {
		return err
	}

	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name()
	}
	return index.InsertEpisode(store.EpisodeRow{
		EpisodeID:  rec.EpisodeID(),
		RunID:      runID,
		Game:       exp.Game,
		Experiment: exp.Name,
		InstanceID: inst.ID,
		Model:      strings.Join(names, ","),
		Success:    outcome.Success,
		Aborted:    outcome.Aborted,
		Moves:      moves,
		BenchScore: scores[scoring.BenchScore],
	})
}

// buildModel parses a provider:name flag value into a backend model.
func buildModel(ctx context.Context, spec string) (game.Model, error) {
	provider, name, ok := strings.Cut(spec, ":")
	if !ok {
		return nil, fmt.Errorf("model %q: want provider:name, e.g. openai:gpt-4o-mini", spec)
	}
	return backends.New(ctx, provider, name)
}
