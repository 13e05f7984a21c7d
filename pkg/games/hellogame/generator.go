package hellogame

import (
	"fmt"
	"math/rand"

	"github.com/paulutsch/clembench/pkg/config"
)

const promptTemplate = "You are playing the Hello Game. Your task is to greet another player by name. " +
	"The player you must greet is called %s. " +
	"Your greeting must include the words \"Hello\", \"welcome\", and the target's name. " +
	"Respond with exactly one line of the form:\n\n" +
	"GREET: <your greeting>\n\n" +
	"Anything that does not start with GREET: ends the game immediately."

var targetNames = []string{
	"Alice", "Bob", "Charlie", "Diana", "Erik",
	"Fatima", "Giovanni", "Hannah", "Igor", "Yuki",
}

// GeneratorOptions parameterizes greeting instance generation.
type GeneratorOptions struct {
	NumInstances int
	Seed         int64
}

// DefaultGeneratorOptions matches the shipped experiment setup.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{NumInstances: 10, Seed: 7}
}

// GenerateExperiment builds the greeting experiment, one target name per
// instance.
func GenerateExperiment(opts GeneratorOptions) (*config.Experiment, error) {
	rng := rand.New(rand.NewSource(opts.Seed))

	exp := &config.Experiment{
		Name: "hellogame_standard",
		Game: Name,
	}
	for id := 0; id < opts.NumInstances; id++ {
		target := targetNames[rng.Intn(len(targetNames))]
		exp.Instances = append(exp.Instances, config.Instance{
			ID:     id,
			Prompt: fmt.Sprintf(promptTemplate, target),
			Params: map[string]any{
				"target_name": target,
				"language":    "en",
			},
		})
	}
	return exp, nil
}
