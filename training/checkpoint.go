package training

import (
	"blokus/agent"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	metadataFile = "metadata.json"
	latestFile   = "checkpoint_latest.bin"
	bestFile     = "checkpoint_best.bin"
	epochPrefix  = "checkpoint_epoch_"
	blobSuffix   = ".bin"
)

// TrainingState is the resumable progress of a run, persisted as JSON next to
// the checkpoints.
type TrainingState struct {
	RunID          string    `json:"run_id"`
	ExperimentName string    `json:"experiment_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	TotalEpisodes  int       `json:"total_episodes"`
	TotalSteps     int       `json:"total_steps"`
	CurrentEpoch   int       `json:"current_epoch"`
	BestWinRate    float64   `json:"best_win_rate"`
	BestEpoch      int       `json:"best_epoch"`
	CurrentEpsilon float64   `json:"current_epsilon"`
	Config         Config    `json:"config"`
}

func NewTrainingState(config Config) TrainingState {
	now := time.Now().UTC()
	return TrainingState{
		RunID:          uuid.NewString(),
		ExperimentName: config.ExperimentName,
		CreatedAt:      now,
		UpdatedAt:      now,
		BestEpoch:      -1,
		Config:         config,
	}
}

// CheckpointManager owns one experiment directory: the latest and best
// learner blobs, optional per-epoch blobs and the training metadata.
type CheckpointManager struct {
	dir string
}

func NewCheckpointManager(dir string) (*CheckpointManager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	return &CheckpointManager{dir: dir}, nil
}

func (m *CheckpointManager) Dir() string { return m.dir }

func (m *CheckpointManager) LatestPath() string { return filepath.Join(m.dir, latestFile) }
func (m *CheckpointManager) BestPath() string   { return filepath.Join(m.dir, bestFile) }

func (m *CheckpointManager) EpochPath(epoch int) string {
	return filepath.Join(m.dir, epochPrefix+strconv.Itoa(epoch)+blobSuffix)
}

// Save writes the learner as the latest checkpoint, copies it to best and to
// the epoch slot when asked, then records state.
func (m *CheckpointManager) Save(state *TrainingState, learner *agent.DQN, isBest, periodic bool) error {
	if err := learner.SaveFile(m.LatestPath()); err != nil {
		return err
	}
	if isBest {
		if err := copyFile(m.LatestPath(), m.BestPath()); err != nil {
			return err
		}
	}
	if periodic {
		if err := copyFile(m.LatestPath(), m.EpochPath(state.CurrentEpoch)); err != nil {
			return err
		}
	}
	if err := m.SaveMetadata(state); err != nil {
		return err
	}
	log.Debug().
		Int("epoch", state.CurrentEpoch).
		Bool("best", isBest).
		Bool("periodic", periodic).
		Msg("checkpoint saved")
	return nil
}

func (m *CheckpointManager) SaveMetadata(state *TrainingState) error {
	state.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode training state: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.dir, metadataFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write training state: %w", err)
	}
	return nil
}

// LoadMetadata reports false when no run has been saved in the directory.
func (m *CheckpointManager) LoadMetadata() (TrainingState, bool, error) {
	var state TrainingState
	data, err := os.ReadFile(filepath.Join(m.dir, metadataFile))
	if errors.Is(err, os.ErrNotExist) {
		return state, false, nil
	}
	if err != nil {
		return state, false, fmt.Errorf("failed to read training state: %w", err)
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, false, fmt.Errorf("failed to decode training state: %w", err)
	}
	return state, true, nil
}

// Load restores a learner from "latest", "best" or an epoch number.
func (m *CheckpointManager) Load(which string, config agent.Config) (*agent.DQN, error) {
	switch which {
	case "latest":
		return agent.LoadDQNFile(m.LatestPath(), config)
	case "best":
		return agent.LoadDQNFile(m.BestPath(), config)
	}
	epoch, err := strconv.Atoi(which)
	if err != nil {
		return nil, fmt.Errorf("unknown checkpoint %q", which)
	}
	return agent.LoadDQNFile(m.EpochPath(epoch), config)
}

func (m *CheckpointManager) HasCheckpoint() bool {
	_, err := os.Stat(m.LatestPath())
	return err == nil
}

// PeriodicEpochs lists the epochs with a saved blob in ascending order.
func (m *CheckpointManager) PeriodicEpochs() ([]int, error) {
	paths, err := filepath.Glob(filepath.Join(m.dir, epochPrefix+"*"+blobSuffix))
	if err != nil {
		return nil, err
	}
	var epochs []int
	for _, p := range paths {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(p), epochPrefix), blobSuffix)
		if epoch, err := strconv.Atoi(name); err == nil {
			epochs = append(epochs, epoch)
		}
	}
	slices.Sort(epochs)
	return epochs, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy checkpoint: %w", err)
	}
	return out.Close()
}
