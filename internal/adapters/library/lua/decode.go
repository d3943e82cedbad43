package lua

import (
	"fmt"

	"github.com/felixgeelhaar/vamphost/pkg/vamp"
	lua "github.com/yuin/gopher-lua"
)

// decodeInfo reads the static fields of a descriptor table.
func decodeInfo(t *lua.LTable) (vamp.Info, error) {
	info := vamp.Info{
		APIVersion:         intField(t, "apiVersion"),
		Identifier:         stringField(t, "identifier"),
		Name:               stringField(t, "name"),
		Description:        stringField(t, "description"),
		Maker:              stringField(t, "maker"),
		Copyright:          stringField(t, "copyright"),
		PluginVersion:      intField(t, "pluginVersion"),
		PreferredBlockSize: intField(t, "preferredBlockSize"),
		PreferredStepSize:  intField(t, "preferredStepSize"),
		MinChannelCount:    intField(t, "minChannelCount"),
		MaxChannelCount:    intField(t, "maxChannelCount"),
		Programs:           stringList(t, "programs"),
	}
	if info.Identifier == "" {
		return vamp.Info{}, fmt.Errorf("%w: descriptor has no identifier", ErrMalformedTable)
	}

	domain, ok := vamp.ParseInputDomain(stringField(t, "inputDomain"))
	if !ok {
		return vamp.Info{}, fmt.Errorf("%w: unknown input domain %q", ErrMalformedTable, stringField(t, "inputDomain"))
	}
	info.InputDomain = domain

	for _, pt := range tableList(t, "parameters") {
		info.Parameters = append(info.Parameters, vamp.ParameterDescriptor{
			Identifier:   stringField(pt, "identifier"),
			Name:         stringField(pt, "name"),
			Description:  stringField(pt, "description"),
			Unit:         stringField(pt, "unit"),
			MinValue:     floatField(pt, "minValue"),
			MaxValue:     floatField(pt, "maxValue"),
			DefaultValue: floatField(pt, "defaultValue"),
			IsQuantized:  boolField(pt, "isQuantized"),
			QuantizeStep: floatField(pt, "quantizeStep"),
			ValueNames:   stringList(pt, "valueNames"),
		})
	}

	for _, ot := range tableList(t, "outputs") {
		st, ok := vamp.ParseSampleType(stringField(ot, "sampleType"))
		if !ok {
			return vamp.Info{}, fmt.Errorf("%w: output %q has unknown sample type %q",
				ErrMalformedTable, stringField(ot, "identifier"), stringField(ot, "sampleType"))
		}
		info.Outputs = append(info.Outputs, vamp.OutputDescriptor{
			Identifier:       stringField(ot, "identifier"),
			Name:             stringField(ot, "name"),
			Description:      stringField(ot, "description"),
			Unit:             stringField(ot, "unit"),
			HasFixedBinCount: boolField(ot, "hasFixedBinCount"),
			BinCount:         intField(ot, "binCount"),
			BinNames:         stringList(ot, "binNames"),
			HasKnownExtents:  boolField(ot, "hasKnownExtents"),
			MinValue:         floatField(ot, "minValue"),
			MaxValue:         floatField(ot, "maxValue"),
			IsQuantized:      boolField(ot, "isQuantized"),
			QuantizeStep:     floatField(ot, "quantizeStep"),
			SampleType:       st,
			SampleRate:       floatField(ot, "sampleRate"),
		})
	}

	return info, nil
}

func stringField(t *lua.LTable, key string) string {
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

func floatField(t *lua.LTable, key string) float32 {
	if n, ok := t.RawGetString(key).(lua.LNumber); ok {
		return float32(n)
	}
	return 0
}

func intField(t *lua.LTable, key string) int {
	if n, ok := t.RawGetString(key).(lua.LNumber); ok {
		return int(n)
	}
	return 0
}

func boolField(t *lua.LTable, key string) bool {
	return lua.LVAsBool(t.RawGetString(key))
}

func stringList(t *lua.LTable, key string) []string {
	list, ok := t.RawGetString(key).(*lua.LTable)
	if !ok {
		return nil
	}
	out := make([]string, 0, list.Len())
	for i := 1; i <= list.Len(); i++ {
		out = append(out, lua.LVAsString(list.RawGetInt(i)))
	}
	return out
}

func tableList(t *lua.LTable, key string) []*lua.LTable {
	list, ok := t.RawGetString(key).(*lua.LTable)
	if !ok {
		return nil
	}
	var out []*lua.LTable
	for i := 1; i <= list.Len(); i++ {
		if item, ok := list.RawGetInt(i).(*lua.LTable); ok {
			out = append(out, item)
		}
	}
	return out
}
