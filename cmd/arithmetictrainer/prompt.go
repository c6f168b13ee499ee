package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/verte-zerg/arithmetictrainer/internal/model"
	"github.com/verte-zerg/arithmetictrainer/internal/practice"
)

// runPrompt drives a run over line-oriented input. It reports true when the
// user quit or input ended before the target was reached.
func runPrompt(in io.Reader, out io.Writer, run *practice.Run) (bool, error) {
	scanner := bufio.NewScanner(in)
	for !run.Done() {
		answer, ok, err := readAnswer(scanner, out, run.Session.Task())
		if err != nil {
			return true, err
		}
		if !ok {
			return true, nil
		}
		correct, err := run.Submit(answer)
		if err != nil {
			return false, err
		}
		if correct {
			if _, err := fmt.Fprintln(out, strings.Repeat("*", 3)); err != nil {
				return false, err
			}
		}
	}
	return false, nil
}

// readAnswer prompts until a decimal is entered. ok is false on a quit word
// or end of input.
func readAnswer(scanner *bufio.Scanner, out io.Writer, task model.Task) (string, bool, error) {
	if _, err := fmt.Fprintf(out, "Round to %d decimal points\n", task.ResultDecimalPoints); err != nil {
		return "", false, err
	}
	for {
		if _, err := fmt.Fprintf(out, "%s = ", task.Task); err != nil {
			return "", false, err
		}
		if !scanner.Scan() {
			return "", false, scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if practice.IsQuit(text) {
			return "", false, nil
		}
		if _, err := decimal.NewFromString(text); err != nil {
			continue
		}
		return text, true, nil
	}
}

func writeSummary(w io.Writer, state model.State) error {
	lines := []string{
		"",
		strings.Repeat("*", 10),
		fmt.Sprintf("Solved %d tasks", state.NumCorrectAnswers),
		fmt.Sprintf("in %.1f seconds.", state.SecondsSinceStarted),
		fmt.Sprintf("With %d incorrect answers", state.NumIncorrectAnswers),
		strings.Repeat("*", 10),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
