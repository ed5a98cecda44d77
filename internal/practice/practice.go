// Package practice runs an offline dictation drill over the challenges of one
// lesson, grading each typed line with the answer matcher.
package practice

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"example.com/dictation/internal/answer"
	"example.com/dictation/internal/api"
)

var ErrNoChallenges = errors.New("practice: lesson has no challenges")

type ChallengeSource interface {
	Challenges(ctx context.Context, lessonID int) ([]api.Challenge, error)
}

// Attempt is one graded line.
type Attempt struct {
	ChallengeID int
	Input       string
	Result      answer.Result
}

type Summary struct {
	Total    int
	Solved   int
	Skipped  int
	Attempts []Attempt
}

const (
	cmdSkip = ":skip"
	cmdHint = ":hint"
	cmdQuit = ":quit"
)

// Run drills every challenge of lessonID in order. A challenge ends when it
// is answered correctly or skipped; :quit or end of input stops early.
func Run(ctx context.Context, src ChallengeSource, lessonID int, in io.Reader, out io.Writer) (Summary, error) {
	challenges, err := src.Challenges(ctx, lessonID)
	if err != nil {
		return Summary{}, fmt.Errorf("practice: load lesson %d: %w", lessonID, err)
	}
	if len(challenges) == 0 {
		return Summary{}, ErrNoChallenges
	}

	sum := Summary{Total: len(challenges)}
	sc := bufio.NewScanner(in)

drill:
	for i, ch := range challenges {
		fmt.Fprintf(out, "\n[%d/%d] %s (%.1fs-%.1fs)\n", i+1, len(challenges), ch.AudioSrc, ch.TimeStart, ch.TimeEnd)
		if ch.Hint != nil && *ch.Hint != "" {
			fmt.Fprintf(out, "hint: %s\n", *ch.Hint)
		}

		hinted := 0
		for {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			fmt.Fprint(out, "> ")
			if !sc.Scan() {
				fmt.Fprintln(out)
				if err := sc.Err(); err != nil {
					return sum, err
				}
				break drill
			}
			line := sc.Text()

			switch strings.TrimSpace(line) {
			case "":
				continue
			case cmdQuit:
				break drill
			case cmdSkip:
				sum.Skipped++
				fmt.Fprintf(out, "answer: %s\n", answer.FormatCorrect(ch.Solution))
				continue drill
			case cmdHint:
				if hinted < len(ch.Solution) {
					hinted++
				}
				fmt.Fprintf(out, "hint: %s\n", answer.HintPrefix(ch.Solution, hinted))
				continue
			}

			res := answer.Check(line, ch.Solution)
			sum.Attempts = append(sum.Attempts, Attempt{ChallengeID: ch.ID, Input: line, Result: res})
			if res.IsCorrect {
				sum.Solved++
				fmt.Fprintf(out, "correct: %s\n", answer.FormatCorrect(ch.Solution))
				continue drill
			}

			writeResult(out, line, ch.Solution, res)
			if answer.IsClose(line, ch.Solution) {
				if next := answer.NextHintCount(res, hinted); next != hinted {
					hinted = next
					fmt.Fprintf(out, "hint: %s\n", answer.HintPrefix(ch.Solution, hinted))
				}
			}
		}
	}

	fmt.Fprintf(out, "\nsolved %d of %d", sum.Solved, sum.Total)
	if sum.Skipped > 0 {
		fmt.Fprintf(out, ", skipped %d", sum.Skipped)
	}
	fmt.Fprintln(out)
	return sum, nil
}

func writeResult(out io.Writer, input string, expected answer.Expected, res answer.Result) {
	words := make([]string, 0, len(res.Words))
	for i, w := range res.Words {
		switch {
		case w.IsCorrect:
			words = append(words, w.Word)
		case w.IsAlmostCorrect:
			words = append(words, "~"+w.Word)
		default:
			words = append(words, mask(answer.Variants(expected, i)))
		}
	}
	fmt.Fprintf(out, "%d/%d words: %s\n", res.CorrectWords, res.TotalWords, strings.Join(words, " "))

	if cur, ok := answer.ErrorPosition(expected, input); ok {
		fmt.Fprintf(out, "  %s\n  %s^ word %d\n", input, strings.Repeat(" ", cur.Offset), cur.WordIndex+1)
	}
}

// mask hides a word the learner has not found yet, keeping its length.
func mask(variants []string) string {
	if len(variants) == 0 {
		return "_"
	}
	return strings.Repeat("_", utf8.RuneCountInString(variants[0]))
}
