package main

import (
	"fmt"
	"strconv"

	"github.com/njchilds90/polynom"
	"github.com/njchilds90/polynom/internal/config"
)

func (a *app) loadInputs(paths []string) ([6]polynom.Poly, error) {
	var ps [6]polynom.Poly
	if len(paths) != len(ps) {
		return ps, fmt.Errorf("expected %d input files, got %d", len(ps), len(paths))
	}
	for i, path := range paths {
		p, err := polynom.ReadFile(path)
		if err != nil {
			return ps, err
		}
		a.log.Debug("polynomial loaded", "name", fmt.Sprintf("P%d", i+1), "path", path, "terms", p.Len())
		ps[i] = p
	}
	return ps, nil
}

// compose prints the composed polynomial followed by its value at
// cfg.Point. The value always goes through FormatFloat, so an empty
// composition prints "P(x):\n0\n\nP(2) = 0.0" rather than a bare 0.
func (a *app) compose(cfg config.Config) error {
	ps, err := a.loadInputs(cfg.Paths())
	if err != nil {
		return err
	}
	result := polynom.Compose(ps)
	fmt.Fprintln(a.stdout, "P(x):")
	fmt.Fprintln(a.stdout, result)
	fmt.Fprintf(a.stdout, "\nP(%s) = %s\n", formatPoint(cfg.Point), polynom.FormatFloat(result.Eval(cfg.Point)))
	return nil
}

func (a *app) show(path string) error {
	p, err := polynom.ReadFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "P(x)    = %s\n", p)
	fmt.Fprintf(a.stdout, "P'(x)   = %s\n", p.Derivative())
	fmt.Fprintf(a.stdout, "P''(x)  = %s\n", p.SecondDerivative())
	fmt.Fprintf(a.stdout, "∫P(x)dx = %s\n", p.Integral())
	return nil
}

func (a *app) eval(path string, xs []float64) error {
	p, err := polynom.ReadFile(path)
	if err != nil {
		return err
	}
	for _, x := range xs {
		fmt.Fprintf(a.stdout, "P(%s) = %s\n", formatPoint(x), polynom.FormatFloat(p.Eval(x)))
	}
	return nil
}

// formatPoint renders an evaluation point the way it is usually typed:
// "2" rather than "2.0".
func formatPoint(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }
