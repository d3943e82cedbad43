package lua

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/felixgeelhaar/vamphost/internal/adapters/library/static"
	"github.com/felixgeelhaar/vamphost/pkg/vamp"
	lua "github.com/yuin/gopher-lua"
)

// ErrMalformedTable is returned when a script returns a table the host
// cannot interpret.
var ErrMalformedTable = errors.New("malformed script table")

type plugin struct {
	static.Metadata

	lib    *handle
	self   *lua.LTable
	params *static.Parameters

	channels int
	ready    bool
	closed   bool
}

func newPlugin(lib *handle, create lua.LValue, rate float32, info vamp.Info) (*plugin, error) {
	rets, err := lib.call(create, lua.LNumber(rate))
	if err != nil {
		return nil, err
	}
	if len(rets) == 0 {
		return nil, fmt.Errorf("%w: create returned nothing", ErrMalformedTable)
	}
	self, ok := rets[0].(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: create returned %s", ErrMalformedTable, rets[0].Type())
	}
	return &plugin{
		Metadata: static.New(info),
		lib:      lib,
		self:     self,
		params:   static.NewParameters(info),
	}, nil
}

// method looks name up on the instance, honouring metatables.
func (p *plugin) method(name string) (lua.LValue, bool) {
	p.lib.mu.Lock()
	defer p.lib.mu.Unlock()
	if p.lib.closed {
		return lua.LNil, false
	}
	fn := p.lib.L.GetField(p.self, name)
	return fn, fn.Type() == lua.LTFunction
}

// invoke calls an instance method. Missing optional methods are not an
// error: ok reports whether the method exists.
func (p *plugin) invoke(name string, args ...lua.LValue) (rets []lua.LValue, ok bool, err error) {
	fn, ok := p.method(name)
	if !ok {
		return nil, false, nil
	}
	rets, err = p.lib.call(fn, append([]lua.LValue{p.self}, args...)...)
	if err != nil {
		return nil, true, fmt.Errorf("%s.%s: %w", p.Identifier(), name, err)
	}
	return rets, true, nil
}

func (p *plugin) Parameter(id string) float32 {
	rets, ok, err := p.invoke("getParameter", lua.LString(id))
	if !ok || err != nil || len(rets) == 0 {
		return p.params.Get(id)
	}
	if n, isNum := rets[0].(lua.LNumber); isNum {
		return float32(n)
	}
	return p.params.Get(id)
}

func (p *plugin) SetParameter(id string, value float32) {
	v, ok := p.params.Set(id, value)
	if !ok {
		return
	}
	_, _, _ = p.invoke("setParameter", lua.LString(id), lua.LNumber(v))
}

func (p *plugin) CurrentProgram() string { return p.params.Program() }

func (p *plugin) SelectProgram(name string) {
	p.params.SelectProgram(name)
	_, _, _ = p.invoke("selectProgram", lua.LString(name))
}

func (p *plugin) Initialise(channels, stepSize, blockSize int) error {
	p.ready = false
	if err := vamp.CheckChannels(p, channels); err != nil {
		return err
	}

	rets, ok, err := p.invoke("initialise",
		lua.LNumber(channels), lua.LNumber(stepSize), lua.LNumber(blockSize))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s has no initialise method", ErrMalformedTable, p.Identifier())
	}
	if len(rets) > 0 && rets[0] == lua.LFalse {
		return fmt.Errorf("%q rejected channels=%d step=%d block=%d",
			p.Identifier(), channels, stepSize, blockSize)
	}

	p.channels = channels
	p.ready = true
	return nil
}

func (p *plugin) Reset() {
	_, _, _ = p.invoke("reset")
}

func (p *plugin) Process(inputs vamp.BufferSet, timestamp time.Duration) (vamp.FeatureSet, error) {
	if !p.ready {
		return nil, vamp.ErrNotInitialised
	}
	if inputs.Channels() != p.channels {
		return nil, fmt.Errorf("%w: got %d, initialised with %d",
			vamp.ErrInvalidChannelCount, inputs.Channels(), p.channels)
	}

	rets, ok, err := p.invoke("process", p.inputTable(inputs), lua.LNumber(timestamp.Seconds()))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s has no process method", ErrMalformedTable, p.Identifier())
	}
	return p.decodeResult(rets)
}

func (p *plugin) RemainingFeatures() (vamp.FeatureSet, error) {
	if !p.ready {
		return nil, vamp.ErrNotInitialised
	}
	rets, _, err := p.invoke("getRemainingFeatures")
	if err != nil {
		return nil, err
	}
	return p.decodeResult(rets)
}

func (p *plugin) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	_, _, err := p.invoke("cleanup")
	return err
}

func (p *plugin) inputTable(inputs vamp.BufferSet) *lua.LTable {
	p.lib.mu.Lock()
	defer p.lib.mu.Unlock()

	L := p.lib.L
	chans := L.CreateTable(inputs.Channels(), 0)
	for c := 0; c < inputs.Channels(); c++ {
		samples := inputs.Channel(c)
		ch := L.CreateTable(len(samples), 0)
		for i, v := range samples {
			ch.RawSetInt(i+1, lua.LNumber(v))
		}
		chans.RawSetInt(c+1, ch)
	}
	return chans
}

func (p *plugin) decodeResult(rets []lua.LValue) (vamp.FeatureSet, error) {
	fs := vamp.FeatureSet{}
	if len(rets) == 0 || rets[0] == lua.LNil {
		return fs, nil
	}
	tbl, ok := rets[0].(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: feature set is a %s", ErrMalformedTable, rets[0].Type())
	}

	info := p.Info()
	var err error
	tbl.ForEach(func(key, value lua.LValue) {
		if err != nil {
			return
		}
		output := -1
		switch k := key.(type) {
		case lua.LNumber:
			if float64(k) == math.Trunc(float64(k)) {
				output = int(k)
			}
		case lua.LString:
			output = info.OutputIndex(string(k))
		}
		if output < 0 || output >= len(info.Outputs) {
			err = fmt.Errorf("%w: unknown output %s", ErrMalformedTable, key.String())
			return
		}

		list, isTable := value.(*lua.LTable)
		if !isTable {
			err = fmt.Errorf("%w: features for output %d are a %s", ErrMalformedTable, output, value.Type())
			return
		}
		for i := 1; i <= list.Len(); i++ {
			f, isTable := list.RawGetInt(i).(*lua.LTable)
			if !isTable {
				err = fmt.Errorf("%w: feature %d of output %d", ErrMalformedTable, i, output)
				return
			}
			fs.Add(output, decodeFeature(f))
		}
	})
	if err != nil {
		return nil, err
	}
	return fs, nil
}

func decodeFeature(t *lua.LTable) vamp.Feature {
	f := vamp.Feature{Label: lua.LVAsString(t.RawGetString("label"))}
	if ts, ok := t.RawGetString("timestamp").(lua.LNumber); ok {
		f.HasTimestamp = true
		f.Timestamp = time.Duration(math.Round(float64(ts) * float64(time.Second)))
	}
	if vals, ok := t.RawGetString("values").(*lua.LTable); ok {
		for i := 1; i <= vals.Len(); i++ {
			f.Values = append(f.Values, float32(lua.LVAsNumber(vals.RawGetInt(i))))
		}
	}
	return f
}

var _ vamp.Plugin = (*plugin)(nil)
