package grabber

import "math"

// Convert performs a simple scalar unit conversion. An empty "from" or
// "to" (or from==to) is the identity; unrecognized units pass the value
// through unchanged rather than failing the whole grab — unit handling
// is advisory scaling, not a type system (spec.md §4.4).
func Convert(value float64, from, to string) float64 {
	if from == "" || to == "" || from == to {
		return value
	}
	f, fok := unitToBase[from]
	t, tok := unitToBase[to]
	if !fok || !tok || f.dim != t.dim {
		return value
	}
	return value * f.factor / t.factor
}

type unit struct {
	dim    string
	factor float64 // multiplier to convert this unit to the dimension's base unit
}

var unitToBase = map[string]unit{
	"pu":  {dim: "voltage", factor: 1},
	"kv":  {dim: "voltage", factor: 1},
	"v":   {dim: "voltage", factor: 0.001},
	"rad": {dim: "angle", factor: 1},
	"deg": {dim: "angle", factor: math.Pi / 180},
	"hz":  {dim: "frequency", factor: 1},
	"mw":  {dim: "power", factor: 1},
	"kw":  {dim: "power", factor: 0.001},
	"w":   {dim: "power", factor: 0.000001},
}
