package main

import (
	"blokus/engine"
	"blokus/experiments"
	"blokus/game"
	"blokus/meta"
	"blokus/player"
	"blokus/training"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `usage: blokus <command> [flags]

commands:
  train       train a DQN agent from a YAML config
  eval        evaluate a saved checkpoint against the random baseline
  match       play registered agents against each other
  experiment  run a search experiment (baseline, throughput, strength, cutoff)
  agents      list the agents of a registry`

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "train":
		err = runTrain(os.Args[2:])
	case "eval":
		err = runEval(os.Args[2:])
	case "match":
		err = runMatch(os.Args[2:])
	case "experiment":
		err = runExperiment(os.Args[2:])
	case "agents":
		err = runAgents(os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("%s failed", os.Args[1])
	}
}

func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	level := fs.String("log-level", "info", "log level (debug, info, warn, error)")
	return fs, level
}

func setLevel(name string) error {
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

func loadTrainingConfig(path string) (training.Config, error) {
	if path == "" {
		return training.DefaultConfig(), nil
	}
	return training.LoadConfig(path)
}

func runTrain(args []string) error {
	fs, level := newFlagSet("train")
	configPath := fs.String("config", "", "training config (YAML); defaults when empty")
	resume := fs.Bool("resume", false, "resume from the latest checkpoint")
	episodes := fs.Int("episodes", 0, "override the total number of episodes")
	fs.Parse(args)
	if err := setLevel(*level); err != nil {
		return err
	}

	config, err := loadTrainingConfig(*configPath)
	if err != nil {
		return err
	}
	if *episodes > 0 {
		config.TotalEpisodes = *episodes
	}

	trainer, err := training.NewTrainer(config, *resume)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	state, err := trainer.Train(ctx)
	if err != nil {
		return err
	}
	log.Info().Msgf("Checkpoints in %s (best epoch %d, win rate %.2f)",
		trainer.Checkpoints().Dir(), state.BestEpoch, state.BestWinRate)
	return nil
}

func runEval(args []string) error {
	fs, level := newFlagSet("eval")
	configPath := fs.String("config", "", "training config (YAML) naming the experiment")
	which := fs.String("checkpoint", "best", "latest, best or an epoch number")
	games := fs.Int("games", 100, "number of evaluation games")
	fs.Parse(args)
	if err := setLevel(*level); err != nil {
		return err
	}

	config, err := loadTrainingConfig(*configPath)
	if err != nil {
		return err
	}
	checkpoints, err := training.NewCheckpointManager(config.ExperimentDir())
	if err != nil {
		return err
	}
	learner, err := checkpoints.Load(*which, config.Agent)
	if err != nil {
		return err
	}

	results, err := training.NewEvaluator(config.Env, *games, true).Evaluate(learner)
	if err != nil {
		return err
	}
	log.Info().Msgf("Win rate %.2f: %d wins, %d losses, %d draws, score diff %.2f, %.1f steps per game",
		results.WinRate, results.Wins, results.Losses, results.Draws, results.AvgScoreDiff, results.AvgSteps)
	return nil
}

func runMatch(args []string) error {
	fs, level := newFlagSet("match")
	registryPath := fs.String("registry", "configs/agents.yaml", "agent registry (YAML)")
	seats := fs.String("agents", "", "comma separated agent ids, one per seat")
	boardSize := fs.Int("board", meta.BOARD_SIZE, "board size")
	games := fs.Int("games", 1, "number of games; seats rotate between games")
	fs.Parse(args)
	if err := setLevel(*level); err != nil {
		return err
	}

	registry, err := player.LoadRegistry(*registryPath)
	if err != nil {
		return err
	}
	ids := strings.Split(*seats, ",")
	if len(ids) < game.MinPlayers {
		return fmt.Errorf("%w: need at least %d agents, got %q", game.ErrInvalidConfig, game.MinPlayers, *seats)
	}

	wins := make(map[string]int)
	for g := range *games {
		order := make([]string, len(ids))
		for i := range ids {
			order[i] = ids[(i+g)%len(ids)]
		}
		players := make([]player.Player, len(order))
		for i, id := range order {
			p, err := registry.Load(id, *boardSize)
			if err != nil {
				return err
			}
			players[i] = p
		}
		state, err := game.NewDefaultGame(*boardSize, len(order))
		if err != nil {
			return err
		}

		gameMetric, _ := engine.NewLocalEngine(state, players).Run()
		winner := "draw"
		if gameMetric.Winner >= 0 {
			winner = order[gameMetric.Winner]
		}
		wins[winner]++
		log.Info().Msgf("Game %d: seats %v, scores %v, winner %s", g+1, order, gameMetric.Scores, winner)
	}
	log.Info().Msgf("Results: %v", wins)
	return nil
}

func runExperiment(args []string) error {
	fs, level := newFlagSet("experiment")
	name := fs.String("name", "baseline", "baseline, throughput, strength or cutoff")
	out := fs.String("out", meta.OUTPUT_DIR, "output directory")
	boardSize := fs.Int("board", meta.BOARD_SIZE, "board size")
	games := fs.Int("games", 0, "override the number of games per match-up")
	fs.Parse(args)
	if err := setLevel(*level); err != nil {
		return err
	}

	var x experiments.Experiment
	switch *name {
	case "baseline":
		x = experiments.Baseline()
	case "throughput":
		x = experiments.ParallelizationToThroughput()
	case "strength":
		x = experiments.ParallelizationToStrength()
	case "cutoff":
		x = experiments.Cutoff()
	default:
		return fmt.Errorf("unknown experiment %q", *name)
	}
	x.BoardSize = *boardSize
	if *games > 0 {
		x.NumGames = *games
	}

	records, err := x.Run(*out)
	if err != nil {
		return err
	}
	log.Info().Msgf("Experiment %s finished with %d games", x.Name, len(records))
	return nil
}

func runAgents(args []string) error {
	fs, level := newFlagSet("agents")
	registryPath := fs.String("registry", "configs/agents.yaml", "agent registry (YAML)")
	all := fs.Bool("all", false, "include disabled agents")
	fs.Parse(args)
	if err := setLevel(*level); err != nil {
		return err
	}

	registry, err := player.LoadRegistry(*registryPath)
	if err != nil {
		return err
	}
	for _, a := range registry.List(!*all) {
		fmt.Printf("%-16s %-7s %-12s %s\n", a.ID, a.Type, a.Level, a.Description)
	}
	return nil
}
