package factor

import (
	"math"

	"QuantBench/pkg/series"
)

func paramInt(params map[string]float64, key string, def int) int {
	if v, ok := params[key]; ok && v > 0 {
		return int(v)
	}
	return def
}

// Momentum scores instruments by trailing return over a window of sessions.
type Momentum struct {
	params map[string]float64
}

func (f *Momentum) Compute(ctx *Context) series.Series {
	window := paramInt(f.params, "window", 60)
	closes, ok := ctx.Field("close")
	if !ok || closes.Rows() <= window {
		return series.Series{}
	}
	return closes.PctChange(window).DropNaN()
}

// Volatility scores instruments by the standard deviation of daily returns
// over a trailing window. Higher values mean riskier instruments.
type Volatility struct {
	params map[string]float64
}

func (f *Volatility) Compute(ctx *Context) series.Series {
	window := paramInt(f.params, "window", 30)
	closes, ok := ctx.Field("close")
	if !ok || closes.Rows() <= window {
		return series.Series{}
	}
	return closes.Returns().StdLast(window).DropNaN()
}

// LowVolatility inverts Volatility as a defensive factor: calm instruments
// score high.
type LowVolatility struct {
	params map[string]float64
}

func (f *LowVolatility) Compute(ctx *Context) series.Series {
	vol := (&Volatility{params: f.params}).Compute(ctx)
	out := series.New(vol.Len())
	for i := 0; i < vol.Len(); i++ {
		k, v := vol.At(i)
		out.Append(k, 1/(v+1e-9))
	}
	return out
}

// AverageTurnover scores instruments by mean traded amount over a trailing
// window, falling back to the latest row when history is shorter.
type AverageTurnover struct {
	params map[string]float64
}

func (f *AverageTurnover) Compute(ctx *Context) series.Series {
	amounts, ok := ctx.Field("amount")
	if !ok {
		return series.Series{}
	}
	window := paramInt(f.params, "window", 20)
	if amounts.Rows() < window {
		return amounts.LastRow()
	}
	return amounts.MeanLast(window).DropNaN()
}

// FloatMarketCap scores instruments by negated float market value, so smaller
// caps rank first.
type FloatMarketCap struct{}

func (f *FloatMarketCap) Compute(ctx *Context) series.Series {
	floats, ok := ctx.Field("float_mv")
	if !ok || floats.Rows() == 0 {
		return series.Series{}
	}
	latest := floats.LastRow()
	out := series.New(latest.Len())
	for i := 0; i < latest.Len(); i++ {
		k, v := latest.At(i)
		if math.IsInf(v, 0) {
			continue
		}
		out.Append(k, -v)
	}
	return out
}
