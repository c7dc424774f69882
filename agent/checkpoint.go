package agent

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Checkpoint blobs start with a magic tag and a format version. Loading
// dispatches on the version; there is no guessing from array shapes.
const (
	checkpointMagic   = "BLKQ"
	CheckpointVersion = uint16(1)
)

var ErrCheckpointFormat = errors.New("unrecognized checkpoint format")

type checkpointHeader struct {
	BoardSize uint32
	Inputs    uint32
	Hidden    uint32
	Outputs   uint32
	Episodes  uint64
	Steps     uint64
	AdamSteps uint64
}

// Save writes the learner's networks, optimizer moments and schedule state.
func (d *DQN) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(checkpointMagic); err != nil {
		return fmt.Errorf("writing magic: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, CheckpointVersion); err != nil {
		return fmt.Errorf("writing version: %w", err)
	}
	header := checkpointHeader{
		BoardSize: uint32(d.boardSize),
		Inputs:    uint32(d.online.inputs),
		Hidden:    uint32(d.online.hidden),
		Outputs:   uint32(d.online.outputs),
		Episodes:  uint64(d.epsilon.episodes),
		Steps:     uint64(d.steps),
		AdamSteps: uint64(d.optimizer.t),
	}
	if err := binary.Write(bw, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, data := range d.arrays() {
		if err := binary.Write(bw, binary.LittleEndian, data); err != nil {
			return fmt.Errorf("writing %s: %w", arrayNames[i], err)
		}
	}
	return bw.Flush()
}

var arrayNames = []string{"online weights", "target weights", "optimizer first moment", "optimizer second moment"}

func (d *DQN) arrays() [][]float64 {
	return [][]float64{d.online.params, d.target.params, d.optimizer.m, d.optimizer.v}
}

// LoadDQN restores a learner saved with Save. Network shape and board size
// come from the blob; the remaining hyperparameters from config.
func LoadDQN(r io.Reader, config Config) (*DQN, error) {
	br := bufio.NewReader(r)
	magic := make([]byte, len(checkpointMagic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if string(magic) != checkpointMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCheckpointFormat, magic)
	}
	var version uint16
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}

	switch version {
	case 1:
		return loadV1(br, config)
	default:
		return nil, fmt.Errorf("%w: version %d", ErrCheckpointFormat, version)
	}
}

func loadV1(r io.Reader, config Config) (*DQN, error) {
	var header checkpointHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	config.HiddenSize = int(header.Hidden)
	d, err := NewDQN(int(header.BoardSize), config)
	if err != nil {
		return nil, err
	}
	if d.online.inputs != int(header.Inputs) || d.online.outputs != int(header.Outputs) {
		return nil, fmt.Errorf("%w: network shape %dx%d does not fit a %dx%d board",
			ErrCheckpointFormat, header.Inputs, header.Outputs, header.BoardSize, header.BoardSize)
	}

	for i, data := range d.arrays() {
		if err := binary.Read(r, binary.LittleEndian, data); err != nil {
			return nil, fmt.Errorf("reading %s: %w", arrayNames[i], err)
		}
	}
	d.epsilon.episodes = int(header.Episodes)
	d.steps = int(header.Steps)
	d.optimizer.t = int(header.AdamSteps)
	return d, nil
}

func (d *DQN) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating checkpoint file: %w", err)
	}
	defer f.Close()

	if err := d.Save(f); err != nil {
		return err
	}
	return f.Close()
}

func LoadDQNFile(path string, config Config) (*DQN, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening checkpoint file: %w", err)
	}
	defer f.Close()

	return LoadDQN(f, config)
}
