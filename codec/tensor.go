package codec

// Tensor is a float32 array laid out height x width x channels.
type Tensor struct {
	Height   int
	Width    int
	Channels int
	Data     []float32
}

func NewTensor(height, width, channels int) Tensor {
	return Tensor{
		Height:   height,
		Width:    width,
		Channels: channels,
		Data:     make([]float32, height*width*channels),
	}
}

func (t Tensor) Len() int { return len(t.Data) }

func (t Tensor) index(row, col, channel int) int {
	return (row*t.Width+col)*t.Channels + channel
}

func (t Tensor) At(row, col, channel int) float32 {
	return t.Data[t.index(row, col, channel)]
}

func (t Tensor) Set(row, col, channel int, v float32) {
	t.Data[t.index(row, col, channel)] = v
}

// Fill sets every cell of a channel to v.
func (t Tensor) Fill(channel int, v float32) {
	for i := channel; i < len(t.Data); i += t.Channels {
		t.Data[i] = v
	}
}

// Plane copies one channel out in row-major order.
func (t Tensor) Plane(channel int) []float32 {
	plane := make([]float32, 0, t.Height*t.Width)
	for i := channel; i < len(t.Data); i += t.Channels {
		plane = append(plane, t.Data[i])
	}
	return plane
}
