// Package expr computes derived data variables from Lua expressions
// evaluated per grid node.
package expr

import (
	"math"

	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"

	"github.com/fastscape-lem/topoviz/internal/dataset"
)

// Evaluator owns a Lua state used to evaluate derived-variable
// expressions. It is not safe for concurrent use.
type Evaluator struct {
	state *lua.LState
}

func NewEvaluator() *Evaluator {
	L := lua.NewState()
	registerHelpers(L)
	return &Evaluator{state: L}
}

func (e *Evaluator) Close() {
	if e.state != nil {
		e.state.Close()
	}
}

func registerHelpers(L *lua.LState) {
	helpers := map[string]func(float64) float64{
		"log":   math.Log,
		"log10": math.Log10,
		"sqrt":  math.Sqrt,
		"abs":   math.Abs,
		"exp":   math.Exp,
	}
	for name, fn := range helpers {
		fn := fn
		L.SetGlobal(name, L.NewFunction(func(ls *lua.LState) int {
			ls.Push(lua.LNumber(fn(float64(ls.CheckNumber(1)))))
			return 1
		}))
	}
	L.SetGlobal("min", L.NewFunction(func(ls *lua.LState) int {
		ls.Push(lua.LNumber(math.Min(float64(ls.CheckNumber(1)), float64(ls.CheckNumber(2)))))
		return 1
	}))
	L.SetGlobal("max", L.NewFunction(func(ls *lua.LState) int {
		ls.Push(lua.LNumber(math.Max(float64(ls.CheckNumber(1)), float64(ls.CheckNumber(2)))))
		return 1
	}))
}

// Derive evaluates expression once per node of the template variable and
// returns the resulting variable. Sibling variables sharing the template's
// dimensions are bound as Lua globals by name; the grid coordinates are
// bound as x and y.
func (e *Evaluator) Derive(ds *dataset.Dataset, template string, expression string) (*dataset.DataArray, error) {
	tpl, ok := ds.Vars[template]
	if !ok {
		return nil, errors.Errorf("variable %q not found in dataset", template)
	}
	if expression == "" {
		return nil, errors.New("empty expression")
	}

	fn, err := e.state.LoadString("return " + expression)
	if err != nil {
		return nil, errors.Wrapf(err, "compile expression %q", expression)
	}

	siblings := make(map[string]*dataset.DataArray)
	for varName, da := range ds.Vars {
		if len(da.Values) == len(tpl.Values) {
			siblings[varName] = da
		}
	}

	xPos, yPos := -1, -1
	for i, dim := range tpl.Dims {
		switch dim {
		case "x":
			xPos = i
		case "y":
			yPos = i
		}
	}
	xs := ds.CoordValues("x")
	ys := ds.CoordValues("y")

	values := make([]float64, len(tpl.Values))
	idx := make([]int, len(tpl.Shape))
	for i := range values {
		for varName, da := range siblings {
			e.state.SetGlobal(varName, lua.LNumber(da.Values[i]))
		}
		if xPos >= 0 {
			e.state.SetGlobal("x", lua.LNumber(xs[idx[xPos]]))
		}
		if yPos >= 0 {
			e.state.SetGlobal("y", lua.LNumber(ys[idx[yPos]]))
		}

		e.state.Push(fn)
		if err := e.state.PCall(0, 1, nil); err != nil {
			return nil, errors.Wrapf(err, "evaluate expression %q", expression)
		}
		ret := e.state.Get(-1)
		e.state.Pop(1)

		num, ok := ret.(lua.LNumber)
		if !ok {
			return nil, errors.Errorf("expression %q returned %s, want number", expression, ret.Type())
		}
		values[i] = float64(num)

		// advance the multi-dimensional index
		for d := len(idx) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < tpl.Shape[d] {
				break
			}
			idx[d] = 0
		}
	}

	return dataset.NewDataArray(append([]string(nil), tpl.Dims...), append([]int(nil), tpl.Shape...), values)
}

// DeriveInto computes the derived variable and registers it on the dataset.
func (e *Evaluator) DeriveInto(ds *dataset.Dataset, template, name, expression string) error {
	da, err := e.Derive(ds, template, expression)
	if err != nil {
		return err
	}
	return ds.AddVar(name, da)
}
