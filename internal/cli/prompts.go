package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/mkocik/stocklens/internal/market"
)

// ErrExitRequested signals that the user asked to quit at a prompt.
var ErrExitRequested = errors.New("exit requested")

// IsExitKeyword reports whether the input is the quit keyword.
func IsExitKeyword(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "exit")
}

// ParseTickers splits user input on commas and whitespace and
// normalizes every symbol. Invalid symbols fail the whole input.
func ParseTickers(input string) ([]string, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("no ticker symbols given")
	}

	seen := make(map[string]bool, len(fields))
	tickers := make([]string, 0, len(fields))
	for _, f := range fields {
		sym := market.NormalizeSymbol(f)
		if err := market.ValidateSymbol(sym); err != nil {
			return nil, err
		}
		if seen[sym] {
			continue
		}
		seen[sym] = true
		tickers = append(tickers, sym)
	}
	return tickers, nil
}

// PromptForTickers prompts the user to enter one or more ticker symbols
func PromptForTickers() ([]string, error) {
	var input string
	prompt := &survey.Input{
		Message: "Enter ticker symbols separated by commas or spaces (e.g., AAPL, MSFT GOOGL):",
		Help:    "Symbols may contain letters, numbers, dots, carets and hyphens.",
	}

	err := survey.AskOne(prompt, &input, survey.WithValidator(func(val interface{}) error {
		str := val.(string)
		if IsExitKeyword(str) {
			return nil
		}
		_, err := ParseTickers(str)
		return err
	}))
	if err != nil {
		return nil, mapPromptErr(err)
	}

	if IsExitKeyword(input) {
		return nil, ErrExitRequested
	}
	return ParseTickers(input)
}

// PromptForCategories prompts for the data categories to download.
// The configured default selection is pre-checked.
func PromptForCategories(defaults []string) ([]market.Category, error) {
	all := market.AllCategories()
	options := make([]string, len(all))
	for i, c := range all {
		options[i] = categoryOption(c)
	}

	checked := make([]string, 0, len(defaults))
	for _, name := range defaults {
		if cat, err := market.ParseCategory(name); err == nil {
			checked = append(checked, categoryOption(cat))
		}
	}
	if len(checked) == 0 {
		checked = options
	}

	var selected []string
	prompt := &survey.MultiSelect{
		Message: "Select data categories to download:",
		Options: options,
		Help:    "Use space to toggle, enter to confirm.",
		Default: checked,
	}

	err := survey.AskOne(prompt, &selected, survey.WithValidator(func(val interface{}) error {
		chosen, ok := val.([]survey.OptionAnswer)
		if !ok {
			return fmt.Errorf("invalid selection type")
		}
		if len(chosen) == 0 {
			return fmt.Errorf("you must select at least one category")
		}
		return nil
	}))
	if err != nil {
		return nil, mapPromptErr(err)
	}

	var result []market.Category
	for _, s := range selected {
		result = append(result, categoryFromOption(s))
	}
	return result, nil
}

// PromptForPeriod prompts for the history period.
func PromptForPeriod(defaultPeriod string) (market.Period, error) {
	options := make([]string, 0)
	for _, p := range market.ValidPeriods() {
		options = append(options, string(p))
	}

	var selected string
	prompt := &survey.Select{
		Message: "Select the history period:",
		Options: options,
		Help:    "How far back to download daily price history.",
		Default: defaultPeriod,
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", mapPromptErr(err)
	}
	return market.ParsePeriod(selected)
}

// PromptForOutputDir prompts for the output directory.
func PromptForOutputDir(defaultDir string) (string, error) {
	var dir string
	prompt := &survey.Input{
		Message: "Output directory:",
		Default: defaultDir,
		Help:    "Workbooks and charts are written here, one folder per ticker.",
	}

	err := survey.AskOne(prompt, &dir, survey.WithValidator(func(val interface{}) error {
		if strings.TrimSpace(val.(string)) == "" {
			return fmt.Errorf("output directory cannot be empty")
		}
		return nil
	}))
	if err != nil {
		return "", mapPromptErr(err)
	}

	if IsExitKeyword(dir) {
		return "", ErrExitRequested
	}
	return strings.TrimSpace(dir), nil
}

// PromptForAnotherRun asks whether to start over after a finished run.
func PromptForAnotherRun() (bool, error) {
	var choice string
	prompt := &survey.Select{
		Message: "What would you like to do next?",
		Options: []string{
			"Analyze more tickers",
			"Exit",
		},
		Default: "Exit",
	}

	if err := survey.AskOne(prompt, &choice); err != nil {
		return false, mapPromptErr(err)
	}
	return choice == "Analyze more tickers", nil
}

func categoryOption(c market.Category) string {
	return fmt.Sprintf("%s - %s", c, c.Description())
}

func categoryFromOption(option string) market.Category {
	name := strings.SplitN(option, " -", 2)[0]
	cat, err := market.ParseCategory(name)
	if err != nil {
		return market.Category(name)
	}
	return cat
}

// mapPromptErr converts Ctrl-C at a prompt into an exit request.
func mapPromptErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrExitRequested
	}
	return err
}
