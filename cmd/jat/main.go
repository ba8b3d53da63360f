package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/jallib/jat/pkg/jal"
	"github.com/jallib/jat/pkg/jatgen"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var version = "0.1.0"

// Debug flags for dumping intermediate results
var (
	dParse   bool
	dSymbols bool
)

// Output options
var (
	outputPath    string
	noPreamble    bool
	omitEmptyMain bool
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// debugFlagNames lists the debug flags that also accept a single dash
var debugFlagNames = []string{"dparse", "dsymbols"}

// normalizeFlags converts single-dash debug flags like -dparse to --dparse
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		for _, flagName := range debugFlagNames {
			if arg == "-"+flagName {
				result[i] = "--" + flagName
				break
			}
		}
		if result[i] == "" {
			result[i] = arg
		}
	}
	return result
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jat [file]",
		Short: "jat translates JAL programs to C",
		Long: `jat translates a JAL program, given as the YAML syntax tree produced
by the front end, into a single C99 translation unit. The output goes
to the input name with a .c extension unless -o is given.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.Help()
				return nil
			}
			filename := args[0]

			prog, err := readProgram(filename)
			if err != nil {
				reportError(errOut, err)
				return err
			}

			// Handle -dparse: print the syntax tree back as JAL
			if dParse {
				jal.NewPrinter(out).PrintProgram(prog)
				return nil
			}

			return doTranslate(filename, prog, out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().BoolVarP(&dParse, "dparse", "", false, "Print the decoded program as JAL and stop")
	rootCmd.Flags().BoolVarP(&dSymbols, "dsymbols", "", false, "Dump the global symbol table after translation")

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write C to this file (- for stdout)")
	rootCmd.Flags().BoolVar(&noPreamble, "no-preamble", false, "Omit the #include lines")
	rootCmd.Flags().BoolVar(&omitEmptyMain, "omit-empty-main", false, "Omit main when the program has no top-level statements")

	return rootCmd
}

// readProgram decodes the syntax tree in filename; "-" reads stdin.
func readProgram(filename string) (*jal.Program, error) {
	var r io.Reader = os.Stdin
	if filename != "-" {
		f, err := os.Open(filename)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	prog, err := jal.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return prog, nil
}

// doTranslate generates C for prog. Nothing is written when generation
// fails.
func doTranslate(filename string, prog *jal.Program, out, errOut io.Writer) error {
	var buf bytes.Buffer
	g := jatgen.New(&buf, jatgen.Options{
		NoPreamble:    noPreamble,
		OmitEmptyMain: omitEmptyMain,
	})
	if err := g.Generate(prog); err != nil {
		err = fmt.Errorf("%s: %w", filename, err)
		reportError(errOut, err)
		return err
	}

	if dSymbols {
		g.Symbols().Dump(out)
	}

	target := outputPath
	if target == "" {
		target = outputFilename(filename)
	}
	if target == "-" {
		_, err := out.Write(buf.Bytes())
		return err
	}
	if _, err := writeIfChanged(target, buf.Bytes()); err != nil {
		reportError(errOut, err)
		return err
	}
	return nil
}

// outputFilename returns the C file for an input file:
// blink.jal.yaml -> blink.c, blink.yaml -> blink.c. Stdin goes to stdout.
func outputFilename(filename string) string {
	if filename == "-" {
		return "-"
	}
	for _, ext := range []string{".yaml", ".yml"} {
		if strings.HasSuffix(filename, ext) {
			filename = filename[:len(filename)-len(ext)]
			break
		}
	}
	filename = strings.TrimSuffix(filename, ".jal")
	return filename + ".c"
}

// hashFile computes the xxhash of a file's content
func hashFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// writeIfChanged writes data to path unless the file already holds it,
// so an unchanged translation keeps its timestamp.
func writeIfChanged(path string, data []byte) (bool, error) {
	if sum, err := hashFile(path); err == nil && sum == xxhash.Sum64(data) {
		return false, nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, err
	}
	return true, nil
}

func reportError(w io.Writer, err error) {
	label := "error:"
	if isTerminal(w) {
		label = "\033[31merror:\033[0m"
	}
	fmt.Fprintf(w, "jat: %s %v\n", label, err)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
