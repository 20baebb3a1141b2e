package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	mx "github.com/njchilds90/gomx"
	"github.com/njchilds90/gomx/internal/server"
)

var (
	evalCmd = &cobra.Command{
		Use:   "eval EXPR",
		Short: "Evaluate an expression under variable bindings",
		Long: `Evaluates EXPR under --bind. With --points, evaluates it once per line of
a JSON-lines file of bindings, concurrently, printing one result per line.`,
		Args: cobra.ExactArgs(1),
		RunE: runEval,
	}
	diffCmd = &cobra.Command{
		Use:   "diff EXPR VAR",
		Short: "Differentiate an expression with respect to a variable",
		Args:  cobra.ExactArgs(2),
		RunE:  runDiff,
	}
	equalCmd = &cobra.Command{
		Use:   "equal A B",
		Short: "Check two expressions for numerical equivalence by random sampling",
		Args:  cobra.ExactArgs(2),
		RunE:  runEqual,
	}
	freeCmd = &cobra.Command{
		Use:   "free EXPR",
		Short: "List the free variables of an expression",
		Args:  cobra.ExactArgs(1),
		RunE:  runFree,
	}
	schemaCmd = &cobra.Command{
		Use:   "schema",
		Short: "Print the tool schema served at /schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), mx.MCPToolSpec())
			return err
		},
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	bindings   map[string]string
	pointsPath string
	diffOrder  int
	asJSON     bool
	samples    int
	tolerance  float64
	seed       uint64
	serveAddr  string
)

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringToStringVarP(&bindings, "bind", "b", nil, "Variable bindings, e.g. x=1,y=2")
	evalCmd.Flags().StringVar(&pointsPath, "points", "", "JSON-lines file of bindings to evaluate in batch (- for stdin)")

	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().IntVarP(&diffOrder, "order", "n", 1, "Derivative order")
	diffCmd.Flags().BoolVar(&asJSON, "json", false, "Print the result in JSON form")

	rootCmd.AddCommand(equalCmd)
	equalCmd.Flags().IntVar(&samples, "samples", 0, "Number of sample points (default from config)")
	equalCmd.Flags().Float64Var(&tolerance, "tolerance", 0, "Relative tolerance (default from config)")
	equalCmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed for reproducible sampling")

	rootCmd.AddCommand(freeCmd)
	rootCmd.AddCommand(schemaCmd)

	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address, overrides the config")
}

// parseExpr reads an expression argument: JSON, or else a bare number or
// variable name.
func parseExpr(arg string) (mx.Expr, error) {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "{") || strings.HasPrefix(arg, `"`) {
		return mx.ParseJSON([]byte(arg))
	}
	return mx.Coerce(arg)
}

func parseBindings(raw map[string]string) (mx.Bindings, error) {
	b := make(mx.Bindings, len(raw))
	for name, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("binding %s: %w", name, err)
		}
		b[name] = v
	}
	return b, nil
}

func formatValue(v float64, ok bool) string {
	if !ok {
		return "undetermined"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func runEval(cmd *cobra.Command, args []string) error {
	e, err := parseExpr(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if pointsPath != "" {
		points, err := readPoints(cmd.InOrStdin(), pointsPath)
		if err != nil {
			return err
		}
		results, err := mx.EvaluateBatch(cmd.Context(), e, points)
		if err != nil {
			return err
		}
		for _, r := range results {
			fmt.Fprintln(out, formatValue(r.Value, r.OK))
		}
		return nil
	}

	b, err := parseBindings(bindings)
	if err != nil {
		return err
	}
	v, ok, err := e.Value(b)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, formatValue(v, ok))
	return err
}

func readPoints(stdin io.Reader, path string) ([]mx.Bindings, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var points []mx.Bindings
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var b mx.Bindings
		if err := json.Unmarshal([]byte(text), &b); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		points = append(points, b)
	}
	return points, sc.Err()
}

func runDiff(cmd *cobra.Command, args []string) error {
	e, err := parseExpr(args[0])
	if err != nil {
		return err
	}
	d, err := mx.DiffN(e, args[1], diffOrder)
	if err != nil {
		return err
	}
	if asJSON {
		s, err := mx.ToJSON(d)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), d)
	return err
}

func runEqual(cmd *cobra.Command, args []string) error {
	a, err := parseExpr(args[0])
	if err != nil {
		return err
	}
	b, err := parseExpr(args[1])
	if err != nil {
		return err
	}
	engine := cfg.Engine
	if samples > 0 {
		engine.Samples = samples
	}
	if tolerance > 0 {
		engine.Tolerance = tolerance
	}
	if seed != 0 {
		engine.Seed = seed
	}
	eq, err := mx.Equal(a, b, engine.Options()...)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), eq)
	return err
}

func runFree(cmd *cobra.Command, args []string) error {
	e, err := parseExpr(args[0])
	if err != nil {
		return err
	}
	for _, name := range mx.FreeNames(e) {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	return server.Serve(cmd.Context(), cfg, cfg.Log.NewLogger(os.Stdout), version)
}
