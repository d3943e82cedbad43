package wasm

import (
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/vamphost/pkg/vamp"
	"github.com/tidwall/gjson"
)

// Guest exports beyond the descriptor entry point.
const (
	exportMemory      = "memory"
	exportAlloc       = "vamp_alloc"
	exportInstantiate = "vamp_instantiate"
	exportInitialise  = "vamp_initialise"
	exportReset       = "vamp_reset"
	exportSetParam    = "vamp_set_parameter"
	exportGetParam    = "vamp_get_parameter"
	exportSelectProg  = "vamp_select_program"
	exportProcess     = "vamp_process"
	exportRemaining   = "vamp_get_remaining_features"
	exportCleanup     = "vamp_cleanup"
)

// ErrMalformedPayload is returned when the guest hands back JSON the host
// cannot interpret.
var ErrMalformedPayload = errors.New("malformed guest payload")

// packed splits a guest pointer/length pair returned as ptr<<32 | len.
func packed(v uint64) (ptr, length uint32) {
	return uint32(v >> 32), uint32(v)
}

// decodeInfo parses a static descriptor document.
//
//	{"identifier": "gain", "name": "Gain", "inputDomain": "time",
//	 "parameters": [{"identifier": "db", "minValue": -12, ...}],
//	 "outputs": [{"identifier": "level", "sampleType": "OneSamplePerStep", ...}]}
func decodeInfo(data []byte) (vamp.Info, error) {
	if !gjson.ValidBytes(data) {
		return vamp.Info{}, fmt.Errorf("%w: descriptor is not valid JSON", ErrMalformedPayload)
	}
	doc := gjson.ParseBytes(data)

	info := vamp.Info{
		APIVersion:         int(doc.Get("apiVersion").Int()),
		Identifier:         doc.Get("identifier").String(),
		Name:               doc.Get("name").String(),
		Description:        doc.Get("description").String(),
		Maker:              doc.Get("maker").String(),
		Copyright:          doc.Get("copyright").String(),
		PluginVersion:      int(doc.Get("pluginVersion").Int()),
		PreferredBlockSize: int(doc.Get("preferredBlockSize").Int()),
		PreferredStepSize:  int(doc.Get("preferredStepSize").Int()),
		MinChannelCount:    int(doc.Get("minChannelCount").Int()),
		MaxChannelCount:    int(doc.Get("maxChannelCount").Int()),
	}
	if info.Identifier == "" {
		return vamp.Info{}, fmt.Errorf("%w: descriptor has no identifier", ErrMalformedPayload)
	}

	domain, ok := vamp.ParseInputDomain(doc.Get("inputDomain").String())
	if !ok {
		return vamp.Info{}, fmt.Errorf("%w: unknown input domain %q", ErrMalformedPayload, doc.Get("inputDomain").String())
	}
	info.InputDomain = domain

	for _, p := range doc.Get("parameters").Array() {
		info.Parameters = append(info.Parameters, vamp.ParameterDescriptor{
			Identifier:   p.Get("identifier").String(),
			Name:         p.Get("name").String(),
			Description:  p.Get("description").String(),
			Unit:         p.Get("unit").String(),
			MinValue:     float32(p.Get("minValue").Float()),
			MaxValue:     float32(p.Get("maxValue").Float()),
			DefaultValue: float32(p.Get("defaultValue").Float()),
			IsQuantized:  p.Get("isQuantized").Bool(),
			QuantizeStep: float32(p.Get("quantizeStep").Float()),
			ValueNames:   stringArray(p.Get("valueNames")),
		})
	}
	info.Programs = stringArray(doc.Get("programs"))

	for _, o := range doc.Get("outputs").Array() {
		st, ok := vamp.ParseSampleType(o.Get("sampleType").String())
		if !ok {
			return vamp.Info{}, fmt.Errorf("%w: output %q has unknown sample type %q",
				ErrMalformedPayload, o.Get("identifier").String(), o.Get("sampleType").String())
		}
		info.Outputs = append(info.Outputs, vamp.OutputDescriptor{
			Identifier:       o.Get("identifier").String(),
			Name:             o.Get("name").String(),
			Description:      o.Get("description").String(),
			Unit:             o.Get("unit").String(),
			HasFixedBinCount: o.Get("hasFixedBinCount").Bool(),
			BinCount:         int(o.Get("binCount").Int()),
			BinNames:         stringArray(o.Get("binNames")),
			HasKnownExtents:  o.Get("hasKnownExtents").Bool(),
			MinValue:         float32(o.Get("minValue").Float()),
			MaxValue:         float32(o.Get("maxValue").Float()),
			IsQuantized:      o.Get("isQuantized").Bool(),
			QuantizeStep:     float32(o.Get("quantizeStep").Float()),
			SampleType:       st,
			SampleRate:       float32(o.Get("sampleRate").Float()),
		})
	}

	return info, nil
}

// decodeFeatures parses a feature set document keyed by output index.
//
//	{"0": [{"hasTimestamp": true, "sec": 1, "nsec": 500000000,
//	        "values": [0.5], "label": "onset"}]}
func decodeFeatures(data []byte) (vamp.FeatureSet, error) {
	fs := vamp.FeatureSet{}
	if len(data) == 0 {
		return fs, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: feature set is not valid JSON", ErrMalformedPayload)
	}

	var err error
	gjson.ParseBytes(data).ForEach(func(key, list gjson.Result) bool {
		output := int(key.Int())
		if key.String() != fmt.Sprint(output) || output < 0 {
			err = fmt.Errorf("%w: output key %q", ErrMalformedPayload, key.String())
			return false
		}
		for _, f := range list.Array() {
			feature := vamp.Feature{
				HasTimestamp: f.Get("hasTimestamp").Bool(),
				Label:        f.Get("label").String(),
			}
			if feature.HasTimestamp {
				feature.Timestamp = time.Duration(f.Get("sec").Int())*time.Second +
					time.Duration(f.Get("nsec").Int())
			}
			for _, v := range f.Get("values").Array() {
				feature.Values = append(feature.Values, float32(v.Float()))
			}
			fs.Add(output, feature)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return fs, nil
}

func stringArray(r gjson.Result) []string {
	if !r.IsArray() {
		return nil
	}
	arr := r.Array()
	out := make([]string, len(arr))
	for i, v := range arr {
		out[i] = v.String()
	}
	return out
}
