package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/lazylang/lazylang/pkg/lazylang/errors"
	"github.com/lazylang/lazylang/pkg/lazylang/lazylang"
)

const prompt = ">> "
const continuationPrompt = ".. "

// completionWords seeds tab completion with lazylang's keywords and the
// stdlib module names bound by evaluator.StdlibEnvironment.
var completionWords = []string{
	"let", "in", "where", "if", "then", "else", "when", "matches", "otherwise",
	"import",
	"crash", "print", "debug", "docstring",
	"Array", "String", "Math", "Object", "Json", "Yaml", "Type",
	"true", "false", "null",
}

// startRepl runs a read-eval-print loop: each complete input is its own
// standalone lazylang program, evaluated from a fresh stdlib environment —
// lazylang has no top-level statement sequencing to persist bindings across
// lines (spec §3's single top-level expression), so unlike a stateful
// language REPL there is no `:env` of accumulated let-bindings to show.
func startRepl(in io.Reader, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(l string) []string {
		return filterCompletions(l)
	})

	historyFile := filepath.Join(os.TempDir(), ".lazy_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintln(out, "lazylang REPL")
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit; Tab to complete, ↑↓ for history.")
	fmt.Fprintln(out, "")

	sources := errors.NewSourceRegistry()
	var inputBuffer strings.Builder
	exprNum := 0

	for {
		currentPrompt := prompt
		if inputBuffer.Len() > 0 {
			currentPrompt = continuationPrompt
		}
		input, err := line.Prompt(currentPrompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				if inputBuffer.Len() > 0 {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				inputBuffer.Reset()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		trimmed := strings.TrimSpace(input)
		if inputBuffer.Len() == 0 && (trimmed == "exit" || trimmed == "quit") {
			fmt.Fprintln(out, "Goodbye!")
			return
		}
		if inputBuffer.Len() == 0 && trimmed == "" {
			continue
		}

		if inputBuffer.Len() > 0 {
			inputBuffer.WriteString("\n")
		}
		inputBuffer.WriteString(input)

		full := inputBuffer.String()
		if needsMoreInput(full) {
			continue
		}
		if trimmed != "" {
			line.AppendHistory(full)
		}
		inputBuffer.Reset()

		exprNum++
		filename := fmt.Sprintf("<repl:%d>", exprNum)
		cwd, _ := os.Getwd()
		v, serr := lazylang.Evaluate(full, filename, cwd, lazylang.WithSourceRegistry(sources))
		if serr != nil {
			fmt.Fprintln(out, serr.Error())
			for _, hint := range serr.Hints {
				fmt.Fprintln(out, "  hint:", hint)
			}
			continue
		}
		formatted, serr := lazylang.Format(v, lazylang.StylePretty)
		if serr != nil {
			fmt.Fprintln(out, serr.Error())
			continue
		}
		fmt.Fprintln(out, formatted)
	}
}

func filterCompletions(line string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	if strings.HasSuffix(line, " ") || strings.HasSuffix(line, "\t") {
		return nil
	}
	words := strings.Fields(line)
	if len(words) == 0 {
		return nil
	}
	last := words[len(words)-1]
	var matches []string
	for _, w := range completionWords {
		if strings.HasPrefix(w, last) {
			matches = append(matches, w)
		}
	}
	return matches
}

// needsMoreInput reports whether input has unclosed braces, brackets, or
// parens outside of a string literal, meaning the REPL should keep reading
// continuation lines before parsing.
func needsMoreInput(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}

	braces, brackets, parens := 0, 0, 0
	inString := false
	escapeNext := false

	for i := 0; i < len(input); i++ {
		ch := input[i]
		if escapeNext {
			escapeNext = false
			continue
		}
		if ch == '\\' {
			escapeNext = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch ch {
		case '{':
			braces++
		case '}':
			braces--
		case '[':
			brackets++
		case ']':
			brackets--
		case '(':
			parens++
		case ')':
			parens--
		}
	}
	return braces > 0 || brackets > 0 || parens > 0
}
