package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// AgentConfig describes a player taking part in an experiment. Random
// configurations ignore the search fields.
type AgentConfig struct {
	ID         int
	Random     bool
	Goroutines int
	Duration   time.Duration
	Episodes   int
	Cutoff     int
	Evaluation string
}

type GameRecord struct {
	ID     int
	Agent1 int // AgentConfig.ID seated as player 0
	Agent2 int // AgentConfig.ID seated as player 1
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

// EpisodeRecord is one training episode.
type EpisodeRecord struct {
	Episode int
	Steps   int
	Reward  float64
	Loss    float64
	QMean   float64
	Epsilon float64
	Outcome float64 // +1 win, 0 draw, -1 loss
	WinRate float64 // Rolling
}

// EvalRecord is one periodic evaluation during training.
type EvalRecord struct {
	Episode      int
	WinRate      float64
	AvgScoreDiff float64
	AvgSteps     float64
	Wins         int
	Losses       int
	Draws        int
}

type Writer struct {
	baseDir string
}

// NewWriter creates a subfolder of root/name named by the current timestamp.
func NewWriter(root, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405")
	return NewWriterAt(filepath.Join(root, name, timestamp))
}

// NewWriterAt writes into baseDir directly.
func NewWriterAt(baseDir string) (*Writer, error) {
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string { return w.baseDir }

func (w *Writer) write(file, what string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, file)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s file: %w", what, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", what, err)
	}
	err = writer.WriteAll(rows)
	if err != nil {
		return fmt.Errorf("failed to write %s rows: %w", what, err)
	}
	return f.Close()
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			strconv.FormatBool(config.Random),
			strconv.Itoa(config.Goroutines),
			config.Duration.String(),
			strconv.Itoa(config.Episodes),
			strconv.Itoa(config.Cutoff),
			config.Evaluation,
		})
	}
	header := []string{"id", "random", "goroutines", "duration", "episodes", "cutoff", "evaluation"}
	return w.write("agent_configs.csv", "agent configs", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		score1, score2 := "", ""
		if len(record.Scores) >= 2 {
			score1, score2 = strconv.Itoa(record.Scores[0]), strconv.Itoa(record.Scores[1])
		}
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Agent1),
			strconv.Itoa(record.Agent2),
			strconv.Itoa(record.StartingPlayer),
			strconv.Itoa(record.Winner),
			score1,
			score2,
			strconv.Itoa(record.TotalMoves),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		})
	}
	header := []string{"id", "agent1", "agent2", "starting_player", "winner", "score1", "score2", "total_moves", "start_time", "end_time", "duration"}
	return w.write("game_records.csv", "game records", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			strconv.Itoa(record.Player),
			record.Move.String(),
			record.Duration.String(),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.FullPlayouts),
			strconv.FormatBool(record.IsTreeReset),
			strconv.Itoa(record.RootMoves),
			strconv.Itoa(record.ReusedVisits),
			strconv.Itoa(record.MaxDepth),
		})
	}
	header := []string{"game", "step", "player", "move", "duration", "episodes", "full_playouts", "is_tree_reset", "root_moves", "reused_visits", "max_depth"}
	return w.write("move_records.csv", "move records", header, rows)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func (w *Writer) WriteEpisodeRecords(records []EpisodeRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(r.Episode),
			strconv.Itoa(r.Steps),
			formatFloat(r.Reward),
			formatFloat(r.Loss),
			formatFloat(r.QMean),
			formatFloat(r.Epsilon),
			formatFloat(r.Outcome),
			formatFloat(r.WinRate),
		})
	}
	header := []string{"episode", "steps", "reward", "loss", "q_mean", "epsilon", "outcome", "win_rate"}
	return w.write("episodes.csv", "episode records", header, rows)
}

func (w *Writer) WriteEvalRecords(records []EvalRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(r.Episode),
			formatFloat(r.WinRate),
			formatFloat(r.AvgScoreDiff),
			formatFloat(r.AvgSteps),
			strconv.Itoa(r.Wins),
			strconv.Itoa(r.Losses),
			strconv.Itoa(r.Draws),
		})
	}
	header := []string{"episode", "win_rate", "avg_score_diff", "avg_steps", "wins", "losses", "draws"}
	return w.write("evaluations.csv", "evaluation records", header, rows)
}
