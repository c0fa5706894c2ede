// Command flexjson parses a JSON(-ish) document from a file argument,
// stdin, or -c, and prints the parsed value back out as JSON.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/flexjson/flexjson"
	"github.com/flexjson/flexjson/options"
	"github.com/flexjson/flexjson/value"
)

func main() {
	var pretty, noColor, showRepairs bool
	var indent int
	var repairEnabled = true
	var code string
	flag.BoolVar(&pretty, "pretty", false, "Pretty-print output with indentation")
	flag.IntVar(&indent, "indent", 2, "Indent width used with -pretty")
	flag.BoolVar(&repairEnabled, "repair", true, "Allow the repair tier when forgiving parsing fails")
	flag.BoolVar(&showRepairs, "show-repairs", false, "Print the repair audit to stderr when the repair tier ran")
	flag.BoolVar(&noColor, "no-color", false, "Disable color output")
	flag.StringVar(&code, "c", "", "Input text to parse, instead of a file argument or stdin")
	flag.Parse()

	if noColor {
		color.NoColor = true
	}
	red := color.New(color.FgRed).SprintfFunc()

	input, err := readInput(code, flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", red(err.Error()))
		os.Exit(1)
	}

	opts := options.Forgiving()
	if repairEnabled {
		opts = options.WithRepair(opts)
	}

	result := flexjson.ParseWithFallback(input, opts)
	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stderr, "%s\n", red(result.Errors[0].Error()))
		os.Exit(1)
	}

	if showRepairs && result.Tier == flexjson.TierRepair {
		for _, a := range result.Repairs {
			fmt.Fprintf(os.Stderr, "repaired: %s\n", a.Description)
		}
	}

	fmt.Println(render(result.Value, pretty, indent))
}

func readInput(code string, args []string) (string, error) {
	switch {
	case code != "":
		return code, nil
	case len(args) > 0:
		bytes, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(bytes), nil
	default:
		bytes, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(bytes), nil
	}
}

func render(v value.Value, pretty bool, indent int) string {
	opts := value.StringifyOptions{Pretty: pretty, Indent: indent, SortKeys: true}
	return value.Stringify(v, opts)
}
