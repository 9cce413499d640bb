// Command tomlctl is a small CLI over the toml package's query and
// mutation facade: get a value at a path, list a container's children, or
// set a scalar value and print the result.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alecthomas/repr"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	toml "github.com/dottoml/toml"
)

var (
	log     = logrus.New()
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:   "tomlctl",
		Short: "Inspect and edit TOML documents without losing formatting",
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log parse diagnostics to stderr")

	root.AddCommand(newGetCmd(), newChildrenCmd(), newSetCmd(), newInspectCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newGetCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Print the value at a dotted path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFacade(file)
			if err != nil {
				return err
			}
			v, err := f.GetValue(args[0])
			if err != nil {
				return err
			}
			fmt.Println(v.Text())
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "TOML file to read (default: stdin)")
	return cmd
}

func newChildrenCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "children [path]",
		Short: "List the immediate children of a table, array, or the document root",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFacade(file)
			if err != nil {
				return err
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			children, err := f.GetChildren(path)
			if err != nil {
				return err
			}
			for _, c := range children {
				if c.Key != "" {
					fmt.Printf("%s = %s\n", c.Key, c.Value.Text())
				} else {
					fmt.Printf("[%d] = %s\n", c.Index, c.Value.Text())
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "TOML file to read (default: stdin)")
	return cmd
}

func newSetCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "set <path> <value>",
		Short: "Set a scalar value at a dotted path and print the whole document",
		Long: "Set a scalar value at a dotted path and print the whole document.\n" +
			"value is read as a bool, integer or float; anything else becomes a string\n" +
			"(surrounding double quotes are stripped; escapes inside are not decoded).",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFacade(file)
			if err != nil {
				return err
			}
			node, err := literalNode(args[1])
			if err != nil {
				return err
			}
			if err := f.SetValue(args[0], node); err != nil {
				return err
			}
			fmt.Print(f.Document().String())
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "TOML file to read (default: stdin)")
	return cmd
}

func newInspectCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "inspect [path]",
		Short: "Dump the parsed node tree at a path (debug aid)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFacade(file)
			if err != nil {
				return err
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			v, err := f.GetValue(path)
			if err != nil {
				return err
			}
			repr.Println(v)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "TOML file to read (default: stdin)")
	return cmd
}

func loadFacade(file string) (*toml.Facade, error) {
	var data []byte
	var err error
	if file == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("tomlctl: %w", err)
	}

	f, result := toml.Parse(string(data))
	for _, e := range result.Errors() {
		if verbose {
			log.Warnf("%v", e)
		}
	}
	if remainder := result.Remainder(); remainder != "" {
		return nil, fmt.Errorf("tomlctl: unparseable input starting at: %.40q", remainder)
	}
	return f, nil
}

// literalNode builds a scalar node from a value given on the command line,
// trying, in order, bool, integer, float, then falling back to a new basic
// string. If the text is double-quoted the quotes are stripped first and
// the text between them is taken verbatim: escapes in it are not decoded.
func literalNode(text string) (toml.Node, error) {
	switch text {
	case "true":
		return toml.NewBool(true), nil
	case "false":
		return toml.NewBool(false), nil
	}
	if n, err := parseAsInteger(text); err == nil {
		return toml.NewInteger(n), nil
	}
	if f, err := parseAsFloat(text); err == nil {
		return toml.NewFloat(f), nil
	}
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		return toml.NewString(text[1 : len(text)-1]), nil
	}
	return toml.NewString(text), nil
}

func parseAsInteger(text string) (int64, error) { return strconv.ParseInt(text, 10, 64) }

func parseAsFloat(text string) (float64, error) { return strconv.ParseFloat(text, 64) }
