package collector

import (
	"bufio"
	"fmt"
	"io"

	"gear-backend/internal/gearbox"
)

// Prompter asks an operator for each reading in turn and stops at the first
// invalid answer.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter reads answers from in and writes prompts to out. Answers are
// whitespace separated, so all five values may also be given on one line.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	sc := bufio.NewScanner(in)
	sc.Split(bufio.ScanWords)
	return &Prompter{in: sc, out: out}
}

// Collect runs the prompt sequence and returns the validated reading.
func (p *Prompter) Collect() (gearbox.Reading, error) {
	var (
		r   gearbox.Reading
		err error
	)

	if r.Speed, err = p.ask("Enter vehicle speed (km/h): ", ErrInvalidSpeed, ParseSpeed); err != nil {
		return gearbox.Reading{}, err
	}
	if r.RPM, err = p.ask("Enter engine RPM: ", ErrInvalidRPM, ParseRPM); err != nil {
		return gearbox.Reading{}, err
	}
	if r.Incline, err = p.ask("Enter ground angle (degrees): ", ErrInvalidIncline, ParseIncline); err != nil {
		return gearbox.Reading{}, err
	}
	if r.Throttle, err = p.ask("Enter throttle percentage (0-100): ", ErrInvalidThrottle, ParseThrottle); err != nil {
		return gearbox.Reading{}, err
	}

	answer, err := p.next("Select mode (0 for EcoDrive, 1 for Tow Mode): ", ErrInvalidMode)
	if err != nil {
		return gearbox.Reading{}, err
	}
	if r.Mode, err = ParseMode(answer); err != nil {
		return gearbox.Reading{}, err
	}
	return r, nil
}

func (p *Prompter) ask(prompt string, sentinel error, parse func(string) (float64, error)) (float64, error) {
	answer, err := p.next(prompt, sentinel)
	if err != nil {
		return 0, err
	}
	return parse(answer)
}

func (p *Prompter) next(prompt string, sentinel error) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("%w: reading input: %v", sentinel, err)
		}
		return "", fmt.Errorf("%w: no input", sentinel)
	}
	return p.in.Text(), nil
}
