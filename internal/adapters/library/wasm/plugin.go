package wasm

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/felixgeelhaar/vamphost/internal/adapters/library/static"
	"github.com/felixgeelhaar/vamphost/pkg/vamp"
	"github.com/tetratelabs/wazero/api"
)

// plugin is one guest-side plugin instance.
type plugin struct {
	static.Metadata

	lib    *handle
	id     int32
	params *static.Parameters

	channels  int
	blockSize int
	bufPtr    uint32
	scratch   []byte
	ready     bool
	closed    bool
}

func newPlugin(lib *handle, index int, rate float32, info vamp.Info) (*plugin, error) {
	fn, err := lib.export(exportInstantiate)
	if err != nil {
		return nil, err
	}
	res, err := lib.call(fn, api.EncodeI32(int32(index)), api.EncodeF32(rate))
	if err != nil {
		return nil, err
	}
	id := api.DecodeI32(res[0])
	if id <= 0 {
		return nil, fmt.Errorf("%s: guest refused to instantiate %q", lib.path, info.Identifier)
	}
	return &plugin{
		Metadata: static.New(info),
		lib:      lib,
		id:       id,
		params:   static.NewParameters(info),
	}, nil
}

func (p *plugin) handleArg() uint64 { return api.EncodeI32(p.id) }

// stringArg copies s into guest memory.
func (p *plugin) stringArg(s string) (ptr, length uint64, err error) {
	addr, err := p.lib.alloc(uint32(len(s)), []byte(s))
	if err != nil {
		return 0, 0, err
	}
	return api.EncodeU32(addr), api.EncodeU32(uint32(len(s))), nil
}

func (p *plugin) Parameter(id string) float32 {
	fn, err := p.lib.export(exportGetParam)
	if err != nil {
		return p.params.Get(id)
	}
	ptr, n, err := p.stringArg(id)
	if err != nil {
		return p.params.Get(id)
	}
	res, err := p.lib.call(fn, p.handleArg(), ptr, n)
	if err != nil || len(res) == 0 {
		return p.params.Get(id)
	}
	return api.DecodeF32(res[0])
}

func (p *plugin) SetParameter(id string, value float32) {
	v, ok := p.params.Set(id, value)
	if !ok {
		return
	}
	fn, err := p.lib.export(exportSetParam)
	if err != nil {
		return
	}
	ptr, n, err := p.stringArg(id)
	if err != nil {
		return
	}
	_, _ = p.lib.call(fn, p.handleArg(), ptr, n, api.EncodeF32(v))
}

func (p *plugin) CurrentProgram() string { return p.params.Program() }

func (p *plugin) SelectProgram(name string) {
	p.params.SelectProgram(name)
	fn, err := p.lib.export(exportSelectProg)
	if err != nil {
		return
	}
	ptr, n, err := p.stringArg(name)
	if err != nil {
		return
	}
	_, _ = p.lib.call(fn, p.handleArg(), ptr, n)
}

func (p *plugin) Initialise(channels, stepSize, blockSize int) error {
	p.ready = false
	if err := vamp.CheckChannels(p, channels); err != nil {
		return err
	}
	if blockSize < 1 {
		return fmt.Errorf("%w: %d", vamp.ErrInvalidBlockSize, blockSize)
	}

	fn, err := p.lib.export(exportInitialise)
	if err != nil {
		return err
	}
	res, err := p.lib.call(fn, p.handleArg(),
		api.EncodeI32(int32(channels)), api.EncodeI32(int32(stepSize)), api.EncodeI32(int32(blockSize)))
	if err != nil {
		return err
	}
	if len(res) == 0 || api.DecodeI32(res[0]) == 0 {
		return fmt.Errorf("%q rejected channels=%d step=%d block=%d",
			p.Identifier(), channels, stepSize, blockSize)
	}

	// Frequency-domain inputs carry two extra values per channel.
	length := blockSize
	if p.InputDomain() == vamp.FrequencyDomain {
		length = blockSize + 2
	}
	p.scratch = make([]byte, channels*length*4)
	ptr, err := p.lib.alloc(uint32(len(p.scratch)), nil)
	if err != nil {
		return err
	}

	p.channels = channels
	p.blockSize = length
	p.bufPtr = ptr
	p.ready = true
	return nil
}

func (p *plugin) Reset() {
	fn, err := p.lib.export(exportReset)
	if err != nil {
		return
	}
	_, _ = p.lib.call(fn, p.handleArg())
}

func (p *plugin) Process(inputs vamp.BufferSet, timestamp time.Duration) (vamp.FeatureSet, error) {
	if !p.ready {
		return nil, vamp.ErrNotInitialised
	}
	if inputs.Channels() != p.channels {
		return nil, fmt.Errorf("%w: got %d, initialised with %d",
			vamp.ErrInvalidChannelCount, inputs.Channels(), p.channels)
	}

	clear(p.scratch)
	for c := 0; c < p.channels; c++ {
		ch := inputs.Channel(c)
		n := min(len(ch), p.blockSize)
		base := c * p.blockSize * 4
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint32(p.scratch[base+i*4:], math.Float32bits(ch[i]))
		}
	}
	if !p.lib.module.Memory().Write(p.bufPtr, p.scratch) {
		return nil, fmt.Errorf("%w: input buffer outside guest memory", ErrMalformedPayload)
	}

	fn, err := p.lib.export(exportProcess)
	if err != nil {
		return nil, err
	}
	sec := timestamp / time.Second
	nsec := timestamp - sec*time.Second
	data, err := p.lib.callPacked(fn, p.handleArg(),
		api.EncodeU32(p.bufPtr), api.EncodeI32(int32(p.channels)), api.EncodeI32(int32(p.blockSize)),
		api.EncodeI32(int32(sec)), api.EncodeI32(int32(nsec)))
	if err != nil {
		return nil, err
	}
	return decodeFeatures(data)
}

func (p *plugin) RemainingFeatures() (vamp.FeatureSet, error) {
	if !p.ready {
		return nil, vamp.ErrNotInitialised
	}
	fn, err := p.lib.export(exportRemaining)
	if err != nil {
		return vamp.FeatureSet{}, nil
	}
	data, err := p.lib.callPacked(fn, p.handleArg())
	if err != nil {
		return nil, err
	}
	return decodeFeatures(data)
}

func (p *plugin) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	fn, err := p.lib.export(exportCleanup)
	if err != nil {
		return nil
	}
	_, err = p.lib.call(fn, p.handleArg())
	return err
}

var _ vamp.Plugin = (*plugin)(nil)
