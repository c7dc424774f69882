// meta/meta.go
package meta

import "time"

// GO_ROUTINES defines the number of goroutines a search player uses.
const GO_ROUTINES = 8

// EPISODES defines the number of episodes for MCTS.
const EPISODES = 150

// WITH_CUTOFF defines the rollout cutoff for MCTS.
const WITH_CUTOFF = 20

// MAX_TURNS bounds the number of moves the match engine plays before stopping.
const MAX_TURNS = 4 * 21

// SEARCH_DURATION is the default time budget per search move.
const SEARCH_DURATION = 200 * time.Millisecond

// BOARD_SIZE and NUM_PLAYERS describe the default training game (Duo).
const BOARD_SIZE = 14
const NUM_PLAYERS = 2

// OUTPUT_DIR is where checkpoints, metrics and experiment records go.
const OUTPUT_DIR = "runs"
