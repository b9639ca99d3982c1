package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/taberu/internal/manual"
	"github.com/hyperjump/taberu/internal/scan"
)

// prompter reads answers line by line from an interactive input.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// ask prints question and returns the trimmed answer, or def when the answer is blank.
func (p *prompter) ask(question, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	answer := strings.TrimSpace(p.in.Text())
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// choose asks for one of the not-found choices, accepting the first letter.
func (p *prompter) choose(barcode string) (scan.Choice, error) {
	fmt.Fprintf(p.out, "No product found for barcode %s.\n", barcode)
	for {
		answer, err := p.ask("[r]eset or [m]anual entry", string(scan.ChoiceManual))
		if err != nil {
			return "", err
		}
		for _, c := range scan.Choices {
			if strings.EqualFold(answer, string(c)) || strings.EqualFold(answer, string(c)[:1]) {
				return c, nil
			}
		}
		fmt.Fprintf(p.out, "Unknown choice %q.\n", answer)
	}
}

// fill asks for every field of e, offering the current values as defaults.
func (p *prompter) fill(e *manual.Entry) error {
	fields := []struct {
		label string
		dst   *string
	}{
		{"Name", &e.Name},
		{"Brand", &e.Brand},
		{"Amount", &e.Amount},
	}
	for _, f := range fields {
		v, err := p.ask(f.label, *f.dst)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	units := make([]string, len(manual.Units))
	for i, u := range manual.Units {
		units[i] = string(u)
	}
	for {
		v, err := p.ask("Unit ("+strings.Join(units, ", ")+")", string(e.Unit))
		if err != nil {
			return err
		}
		u, err := manual.ParseUnit(v)
		if err == nil {
			e.Unit = u
			break
		}
		fmt.Fprintln(p.out, err)
	}

	nutrients := []struct {
		label string
		dst   *string
	}{
		{"Calories (kcal)", &e.Calories},
		{"Protein (g)", &e.Protein},
		{"Carbs (g)", &e.Carbs},
		{"Fat (g)", &e.Fat},
		{"Fiber (g, optional)", &e.Fiber},
		{"Sugars (g, optional)", &e.Sugars},
		{"Saturated fat (g, optional)", &e.SaturatedFat},
		{"Sodium (mg, optional)", &e.Sodium},
		{"Potassium (mg, optional)", &e.Potassium},
		{"Cholesterol (mg, optional)", &e.Cholesterol},
	}
	for _, n := range nutrients {
		v, err := p.ask(n.label, *n.dst)
		if err != nil {
			return err
		}
		*n.dst = v
	}
	return nil
}
