package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/code4policy/dataviz-with-chatgpt-realseanz/fonts"
	"github.com/code4policy/dataviz-with-chatgpt-realseanz/layout"
)

var wrapWidth float64
var wrapFont string
var wrapSize float64
var wrapMeasurer string

func init() {
	wrapCmd.Flags().Float64Var(&wrapWidth, "width", 180, "maximum line width in px (0 disables wrapping)")
	wrapCmd.Flags().StringVar(&wrapFont, "font", fonts.DefaultSrc, "font source: embed:<name> or a font file path")
	wrapCmd.Flags().Float64Var(&wrapSize, "size", 14, "font size in px")
	wrapCmd.Flags().StringVar(&wrapMeasurer, "measurer", measurerOpentype, "text measuring backend: canvas or opentype")

	rootCmd.AddCommand(wrapCmd)
}

var wrapCmd = &cobra.Command{
	Use:          "wrap <label>...",
	Short:        "Print how a label is broken into lines at the given width.",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		l := newLogger(cmd)
		ts, err := newTypesetter(wrapMeasurer, nil, ".", l)
		if err != nil {
			return err
		}
		m, err := ts.Measurer(layout.FontResource{Name: "wrap", Src: wrapFont}, wrapSize)
		if err != nil {
			return errors.Wrap(err, "loading font")
		}

		limit := wrapWidth
		if limit <= 0 {
			limit = math.Inf(1)
		}
		out := cmd.OutOrStdout()
		for _, label := range args {
			for _, line := range layout.WrapLabel(label, limit, m) {
				fmt.Fprintf(out, "%s\t%.1f\n", line.Text(), line.Width)
			}
			if len(args) > 1 {
				fmt.Fprintln(out, strings.Repeat("-", 8))
			}
		}
		return nil
	},
}
