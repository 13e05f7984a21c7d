package portalgame

import (
	"fmt"
	"math/rand"

	"github.com/paulutsch/clembench/pkg/config"
	"github.com/paulutsch/clembench/pkg/environment"
)

const promptText = "You are playing the Portal Game, a maze navigation challenge where your goal is to reach the portal.\n\n" +
	"Game Elements:\n\n" +
	"- Player (P): You. You can move around the grid.\n" +
	"- Portal (O): Your goal. Reach it to win.\n" +
	"- Door (D): A door that can be opened or closed.\n" +
	"- Switch (S): Opens and closes the door.\n" +
	"- Walls (W): You can't pass through them.\n" +
	"- Empty cells (' '): You can pass through them.\n\n" +
	"Response Format: Write one sentence of reasoning above your move. End your response with a line of the form:\n\n" +
	"DIRECTION: <letter>\n\n" +
	"where <letter> is one of n (to move north/up), s (to move south/down), e (to move east/right), or w (to move west/left)."

// GeneratorOptions parameterizes maze instance generation.
type GeneratorOptions struct {
	NumInstances      int
	Width             int
	Height            int
	WallFraction      float64
	LimitedVisibility bool
	Seed              int64
}

// DefaultGeneratorOptions matches the shipped experiment setup.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{
		NumInstances:      6,
		Width:             5,
		Height:            5,
		WallFraction:      0.2,
		LimitedVisibility: true,
		Seed:              1,
	}
}

// GenerateExperiment builds a maze experiment. Per instance: random player
// start within the borders, a portal with a viable shortest path, a door on
// the last step before the portal with the remaining portal neighbors
// walled off, a switch adjacent to the path, and random filler walls on the
// remaining interior. The recorded shortest_path includes the two-move
// detour to the switch when the switch sits off the path.
func GenerateExperiment(opts GeneratorOptions) (*config.Experiment, error) {
	if opts.Width < 4 || opts.Height < 4 {
		return nil, fmt.Errorf("portalgame: grid must be at least 4x4, got %dx%d", opts.Height, opts.Width)
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	exp := &config.Experiment{
		Name: fmt.Sprintf("portalgame_%dx%d", opts.Height, opts.Width),
		Game: Name,
	}
	for id := 0; id < opts.NumInstances; id++ {
		inst, err := generateInstance(rng, opts, id)
		if err != nil {
			return nil, err
		}
		exp.Instances = append(exp.Instances, inst)
	}
	return exp, nil
}

func generateInstance(rng *rand.Rand, opts GeneratorOptions, id int) (config.Instance, error) {
	h, w := opts.Height, opts.Width
	border := borderWalls(h, w)

	start := environment.Position{
		Row: 1 + rng.Intn(h-2),
		Col: 1 + rng.Intn(w-2),
	}

	// Portal placement retries until an empty-grid path of length >= 2 moves
	// exists; on these small interiors that always happens quickly.
	var portal environment.Position
	var path []environment.Position
	for attempt := 0; ; attempt++ {
		if attempt > 1000 {
			return config.Instance{}, fmt.Errorf("portalgame: no viable portal placement for %dx%d", h, w)
		}
		candidate := environment.Position{
			Row: 1 + rng.Intn(h-2),
			Col: 1 + rng.Intn(w-2),
		}
		if candidate == start {
			continue
		}
		if p := bfsPath(start, candidate, border, h, w); len(p) >= 3 {
			portal = candidate
			path = p
			break
		}
	}
	baseShortest := len(path) - 1
	door := path[len(path)-2]

	// Wall off the portal except for the door, so the switch is mandatory.
	surround := map[environment.Position]bool{}
	for _, nb := range neighbors(portal) {
		if withinBorders(nb, h, w) && nb != door {
			surround[nb] = true
		}
	}

	reserved := map[environment.Position]bool{start: true, portal: true, door: true}
	for _, c := range path {
		reserved[c] = true
	}
	for c := range surround {
		reserved[c] = true
	}

	var switchCandidates []environment.Position
	for _, c := range path {
		for _, nb := range neighbors(c) {
			if withinBorders(nb, h, w) && !reserved[nb] {
				switchCandidates = append(switchCandidates, nb)
			}
		}
	}
	if len(switchCandidates) == 0 {
		return config.Instance{}, fmt.Errorf("portalgame: no switch placement for %dx%d", h, w)
	}
	sw := switchCandidates[rng.Intn(len(switchCandidates))]
	reserved[sw] = true
	for _, c := range bfsPath(start, sw, border, h, w) {
		reserved[c] = true
	}

	var available []environment.Position
	for r := 1; r < h-1; r++ {
		for c := 1; c < w-1; c++ {
			if pos := (environment.Position{Row: r, Col: c}); !reserved[pos] {
				available = append(available, pos)
			}
		}
	}
	rng.Shuffle(len(available), func(i, j int) {
		available[i], available[j] = available[j], available[i]
	})
	numWalls := int(opts.WallFraction * float64(len(available)))

	walls := make([][]int, 0, len(border)+len(surround)+numWalls)
	for pos := range border {
		walls = append(walls, []int{pos.Row, pos.Col})
	}
	for pos := range surround {
		walls = append(walls, []int{pos.Row, pos.Col})
	}
	for _, pos := range available[:numWalls] {
		walls = append(walls, []int{pos.Row, pos.Col})
	}

	shortest := baseShortest + 2
	if onPath(sw, path) {
		shortest = baseShortest
	}
	maxMoves := shortest + 10
	if limit := w * h / 2; limit < maxMoves {
		maxMoves = limit
	}

	return config.Instance{
		ID:     id,
		Prompt: promptText,
		Params: map[string]any{
			"height":             h,
			"width":              w,
			"max_moves":          maxMoves,
			"shortest_path":      shortest,
			"limited_visibility": opts.LimitedVisibility,
			"player_start":       []int{start.Row, start.Col},
			"walls":              walls,
			"portal":             []int{portal.Row, portal.Col},
			"switch":             []int{sw.Row, sw.Col},
			"door":               []int{door.Row, door.Col},
		},
	}, nil
}

func borderWalls(h, w int) map[environment.Position]bool {
	walls := make(map[environment.Position]bool)
	for c := 0; c < w; c++ {
		walls[environment.Position{Row: 0, Col: c}] = true
		walls[environment.Position{Row: h - 1, Col: c}] = true
	}
	for r := 1; r < h-1; r++ {
		walls[environment.Position{Row: r, Col: 0}] = true
		walls[environment.Position{Row: r, Col: w - 1}] = true
	}
	return walls
}

func withinBorders(pos environment.Position, h, w int) bool {
	return pos.Row >= 1 && pos.Row < h-1 && pos.Col >= 1 && pos.Col < w-1
}

func neighbors(pos environment.Position) []environment.Position {
	return []environment.Position{
		{Row: pos.Row - 1, Col: pos.Col},
		{Row: pos.Row + 1, Col: pos.Col},
		{Row: pos.Row, Col: pos.Col - 1},
		{Row: pos.Row, Col: pos.Col + 1},
	}
}

func onPath(pos environment.Position, path []environment.Position) bool {
	for _, c := range path {
		if c == pos {
			return true
		}
	}
	return false
}

// bfsPath returns the shortest four-connected path from start to goal
// inclusive, or nil when the goal is unreachable.
func bfsPath(start, goal environment.Position, blocked map[environment.Position]bool, h, w int) []environment.Position {
	cameFrom := map[environment.Position]environment.Position{start: start}
	queue := []environment.Position{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == goal {
			break
		}
		for _, nb := range neighbors(cur) {
			if !withinBorders(nb, h, w) || blocked[nb] {
				continue
			}
			if _, seen := cameFrom[nb]; seen {
				continue
			}
			cameFrom[nb] = cur
			queue = append(queue, nb)
		}
	}
	if _, ok := cameFrom[goal]; !ok {
		return nil
	}
	var path []environment.Position
	for c := goal; ; c = cameFrom[c] {
		path = append(path, c)
		if c == start {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
