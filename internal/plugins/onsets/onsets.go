// Package onsets is a percussion onset detector after Barry, Fitzgerald,
// Coyle and Lawlor (2005). It counts spectral bins whose energy rose by more
// than a threshold since the previous block and reports a peak in that
// count as an onset.
package onsets

import (
	"math"
	"time"

	"github.com/felixgeelhaar/vamphost/pkg/vamp"
)

// Identifier is the plugin identifier within its library.
const Identifier = "percussiononsets"

// Output indexes.
const (
	OutputOnsets            = 0
	OutputDetectionFunction = 1
)

var parameters = []vamp.ParameterDescriptor{
	{
		Identifier:   "threshold",
		Name:         "Energy rise threshold",
		Description:  "Energy rise within a frequency bin necessary to count toward broadband total",
		Unit:         "dB",
		MinValue:     0,
		MaxValue:     20,
		DefaultValue: 3,
	},
	{
		Identifier:   "sensitivity",
		Name:         "Sensitivity",
		Description:  "Sensitivity of peak detector applied to broadband detection function",
		Unit:         "%",
		MinValue:     0,
		MaxValue:     100,
		DefaultValue: 40,
	},
}

// Detector implements vamp.Plugin.
type Detector struct {
	vamp.Base

	threshold   float32
	sensitivity float32

	stepSize  int
	blockSize int
	prior     []float32
	dfMinus1  float32
	dfMinus2  float32
}

// New creates a detector for audio at inputSampleRate.
func New(inputSampleRate float32) vamp.Plugin {
	return &Detector{
		Base:        vamp.NewBase(inputSampleRate),
		threshold:   parameters[0].DefaultValue,
		sensitivity: parameters[1].DefaultValue,
	}
}

// Descriptor describes the detector for library enumeration.
func Descriptor() *vamp.Descriptor {
	return &vamp.Descriptor{Identifier: Identifier, New: New}
}

func (d *Detector) Identifier() string { return Identifier }
func (d *Detector) Name() string       { return "Simple Percussion Onset Detector" }
func (d *Detector) Description() string {
	return "Detect percussive note onsets by identifying broadband energy rises"
}
func (d *Detector) Maker() string { return "Vamp SDK Example Plugins" }
func (d *Detector) Copyright() string {
	return "Code copyright 2006 Queen Mary, University of London, after Dan Barry et al 2005. Freely redistributable (BSD license)"
}
func (d *Detector) PluginVersion() int { return 2 }

func (d *Detector) InputDomain() vamp.InputDomain { return vamp.FrequencyDomain }
func (d *Detector) PreferredBlockSize() int       { return 1024 }

func (d *Detector) ParameterDescriptors() []vamp.ParameterDescriptor {
	return append([]vamp.ParameterDescriptor(nil), parameters...)
}

func (d *Detector) Parameter(id string) float32 {
	switch id {
	case "threshold":
		return d.threshold
	case "sensitivity":
		return d.sensitivity
	}
	return 0
}

func (d *Detector) SetParameter(id string, value float32) {
	p, ok := vamp.FindParameter(parameters, id)
	if !ok {
		return
	}
	switch id {
	case "threshold":
		d.threshold = p.Clamp(value)
	case "sensitivity":
		d.sensitivity = p.Clamp(value)
	}
}

func (d *Detector) OutputDescriptors() []vamp.OutputDescriptor {
	return []vamp.OutputDescriptor{
		{
			Identifier:       "onsets",
			Name:             "Onsets",
			Description:      "Percussive note onset locations",
			HasFixedBinCount: true,
			BinCount:         0,
			SampleType:       vamp.VariableSampleRate,
			SampleRate:       d.InputSampleRate,
		},
		{
			Identifier:       "detectionfunction",
			Name:             "Detection Function",
			Description:      "Broadband energy rise detection function",
			HasFixedBinCount: true,
			BinCount:         1,
			IsQuantized:      true,
			QuantizeStep:     1,
			SampleType:       vamp.OneSamplePerStep,
		},
	}
}

func (d *Detector) Initialise(channels, stepSize, blockSize int) error {
	if err := vamp.CheckChannels(d, channels); err != nil {
		return err
	}
	if blockSize < 2 {
		return vamp.ErrInvalidBlockSize
	}
	if stepSize < 1 {
		return vamp.ErrInvalidStepSize
	}
	d.stepSize = stepSize
	d.blockSize = blockSize
	d.prior = make([]float32, blockSize/2)
	d.dfMinus1, d.dfMinus2 = 0, 0
	return nil
}

func (d *Detector) Reset() {
	clear(d.prior)
	d.dfMinus1, d.dfMinus2 = 0, 0
}

// Process takes one packed spectrum. The detection function value for the
// block is emitted immediately; an onset is reported one step late, once
// the following block confirms the peak.
func (d *Detector) Process(inputs vamp.BufferSet, ts time.Duration) (vamp.FeatureSet, error) {
	if d.stepSize == 0 {
		return nil, vamp.ErrNotInitialised
	}
	if inputs.Channels() < 1 || inputs.Len() < d.blockSize {
		return nil, vamp.ErrInvalidBlockSize
	}

	spectrum := inputs.Channel(0)
	count := 0
	for i := 1; i < d.blockSize/2; i++ {
		re, im := spectrum[i*2], spectrum[i*2+1]
		sqrmag := re*re + im*im
		if d.prior[i] > 0 {
			diff := 10 * math.Log10(float64(sqrmag/d.prior[i]))
			if diff >= float64(d.threshold) {
				count++
			}
		}
		d.prior[i] = sqrmag
	}

	fs := vamp.FeatureSet{}
	fs.Add(OutputDetectionFunction, vamp.Feature{Values: []float32{float32(count)}})

	df := float32(count)
	floor := (100 - d.sensitivity) * float32(d.blockSize) / 200
	if d.dfMinus2 < d.dfMinus1 && d.dfMinus1 >= df && d.dfMinus1 > floor {
		step := vamp.FrameToRealTime(int64(d.stepSize), int(math.Round(float64(d.InputSampleRate))))
		fs.Add(OutputOnsets, vamp.Feature{HasTimestamp: true, Timestamp: ts - step})
	}

	d.dfMinus2 = d.dfMinus1
	d.dfMinus1 = df
	return fs, nil
}

var _ vamp.Plugin = (*Detector)(nil)
