// Package experiments plays match-ups between search and baseline players
// and records games and moves as CSV.
package experiments

import (
	"blokus/agent"
	"blokus/engine"
	"blokus/experiments/metrics"
	"blokus/game"
	"blokus/meta"
	"blokus/player"
	"blokus/searcher"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	NumGames   = 30 // Per match up
	TimeBudget = 10 * time.Millisecond
)

type Experiment struct {
	Name      string
	Configs   []metrics.AgentConfig
	MatchUps  [][2]metrics.AgentConfig
	NumGames  int
	BoardSize int
}

var parallelConfigs = []metrics.AgentConfig{
	{ID: 1, Goroutines: 1, Duration: TimeBudget},
	{ID: 2, Goroutines: 2, Duration: TimeBudget},
	{ID: 3, Goroutines: 4, Duration: TimeBudget},
	{ID: 4, Goroutines: 8, Duration: TimeBudget},
	{ID: 5, Goroutines: 16, Duration: TimeBudget},
}

// ParallelizationToThroughput pits each configuration against itself, for the
// same playing strength and similar game length.
func ParallelizationToThroughput() Experiment {
	matchUps := [][2]metrics.AgentConfig{}
	for _, config := range parallelConfigs {
		matchUps = append(matchUps, [2]metrics.AgentConfig{config, config})
	}
	return Experiment{
		Name:      "parallelization_to_throughput",
		Configs:   parallelConfigs,
		MatchUps:  matchUps,
		NumGames:  1,
		BoardSize: meta.BOARD_SIZE,
	}
}

// ParallelizationToStrength pairs each configuration against the sequential
// baseline.
func ParallelizationToStrength() Experiment {
	baseline := metrics.AgentConfig{ID: 0, Goroutines: 1, Duration: TimeBudget}
	matchUps := [][2]metrics.AgentConfig{}
	for _, config := range parallelConfigs {
		matchUps = append(matchUps, [2]metrics.AgentConfig{baseline, config})
	}
	return Experiment{
		Name:      "parallelization_to_strength",
		Configs:   append([]metrics.AgentConfig{baseline}, parallelConfigs...),
		MatchUps:  matchUps,
		NumGames:  NumGames,
		BoardSize: meta.BOARD_SIZE,
	}
}

// Cutoff compares rollout cutoffs and evaluations against full playouts.
func Cutoff() Experiment {
	baseline := metrics.AgentConfig{ID: 0, Goroutines: meta.GO_ROUTINES, Duration: TimeBudget} // Without cutoff (full playout)
	cutoffConfigs := []metrics.AgentConfig{
		{ID: 1, Goroutines: baseline.Goroutines, Duration: baseline.Duration}, // Baseline equivalent
		{ID: 2, Goroutines: baseline.Goroutines, Duration: baseline.Duration, Cutoff: 4},
		{ID: 3, Goroutines: baseline.Goroutines, Duration: baseline.Duration, Cutoff: 10},
		{ID: 4, Goroutines: baseline.Goroutines, Duration: baseline.Duration, Cutoff: meta.WITH_CUTOFF},
		{ID: 5, Goroutines: baseline.Goroutines, Duration: baseline.Duration, Cutoff: 10, Evaluation: "mobility"},
		{ID: 6, Goroutines: baseline.Goroutines, Duration: baseline.Duration, Cutoff: 10, Evaluation: "placement"},
	}

	matchUps := [][2]metrics.AgentConfig{}
	for _, config := range cutoffConfigs {
		matchUps = append(matchUps, [2]metrics.AgentConfig{baseline, config})
	}
	return Experiment{
		Name:      "cutoff",
		Configs:   append([]metrics.AgentConfig{baseline}, cutoffConfigs...),
		MatchUps:  matchUps,
		NumGames:  NumGames,
		BoardSize: meta.BOARD_SIZE,
	}
}

// Baseline measures search against the uniform random player.
func Baseline() Experiment {
	random := metrics.AgentConfig{ID: 0, Random: true}
	search := metrics.AgentConfig{ID: 1, Goroutines: meta.GO_ROUTINES, Episodes: meta.EPISODES, Cutoff: meta.WITH_CUTOFF}
	return Experiment{
		Name:      "baseline",
		Configs:   []metrics.AgentConfig{random, search},
		MatchUps:  [][2]metrics.AgentConfig{{random, search}},
		NumGames:  NumGames,
		BoardSize: meta.BOARD_SIZE,
	}
}

// Run plays every match-up NumGames times, swapping seats between games, and
// stores the records under outDir.
func (x Experiment) Run(outDir string) ([]metrics.GameRecord, error) {
	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}

	log.Info().Msgf("starting %s experiment...", x.Name)

	for mi, matchup := range x.MatchUps {
		log.Info().Msgf("starting matchup %d of %d between agent1=%+v and agent2=%+v...", mi+1, len(x.MatchUps), matchup[0], matchup[1])

		for i := range x.NumGames {
			config1, config2 := matchup[0], matchup[1]
			if i%2 == 1 {
				config1, config2 = config2, config1
			}

			gameMetric, moveMetrics, err := runGame(x.BoardSize, config1, config2, uint64(count))
			if err != nil {
				return nil, err
			}
			count++
			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				Agent1:     config1.ID,
				Agent2:     config2.ID,
				GameMetric: gameMetric,
			})
			for _, mm := range moveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
			}

			log.Info().Msgf("completed matchup %d of %d game %d with winner: %d, scores: %v", mi+1, len(x.MatchUps), i+1, gameMetric.Winner, gameMetric.Scores)
		}
	}

	log.Info().Msgf("completed %s experiment", x.Name)

	writer, err := metrics.NewWriter(outDir, x.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteAgentConfigs(x.Configs); err != nil {
		return nil, fmt.Errorf("failed to store agent configs: %w", err)
	}
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return nil, fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return nil, fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msgf("stored experiment records in %s", writer.Dir())
	return gameRecords, nil
}

// runGame executes a single two-player game with config1 seated first.
func runGame(boardSize int, config1, config2 metrics.AgentConfig, seed uint64) (metrics.GameMetric, []metrics.MoveMetric, error) {
	state, err := game.NewDefaultGame(boardSize, 2)
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}
	players := make([]player.Player, 2)
	for i, config := range []metrics.AgentConfig{config1, config2} {
		players[i], err = createPlayer(config, seed*2+uint64(i))
		if err != nil {
			return metrics.GameMetric{}, nil, err
		}
	}

	gameMetric, moveMetrics := engine.NewLocalEngine(state, players).Run()
	return gameMetric, moveMetrics, nil
}

func createPlayer(config metrics.AgentConfig, seed uint64) (player.Player, error) {
	if config.Random {
		return player.NewAgentPlayer(agent.NewRandomAgent(seed), false), nil
	}
	mcts, err := createMCTS(config)
	if err != nil {
		return nil, err
	}
	return player.NewSearchPlayer(mcts, 0, seed), nil
}

func createMCTS(config metrics.AgentConfig) (*searcher.MCTS, error) {
	options := []searcher.Option{}

	if config.Episodes > 0 {
		options = append(options, searcher.WithEpisodes(config.Episodes))
	}
	if config.Duration > 0 {
		options = append(options, searcher.WithDuration(config.Duration))
	}
	if config.Cutoff > 0 {
		options = append(options, searcher.WithCutoff(config.Cutoff))
	}
	evaluate, ok := player.Evaluation(config.Evaluation)
	if !ok {
		return nil, fmt.Errorf("%w: unknown evaluation %q", game.ErrInvalidConfig, config.Evaluation)
	}
	options = append(options, searcher.WithEvaluationFn(evaluate))

	options = append(options, searcher.WithMetrics())
	return searcher.NewMCTS(config.Goroutines, options...), nil
}
