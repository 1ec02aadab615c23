package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	log "github.com/vine-io/vine/lib/logger"

	"github.com/vine-io/fpdaml"
	"github.com/vine-io/fpdaml/builder"
	"github.com/vine-io/fpdaml/config"
	"github.com/vine-io/fpdaml/fpd"
	"github.com/vine-io/fpdaml/parser"
	"github.com/vine-io/fpdaml/render"
	"github.com/vine-io/fpdaml/server"
)

// stdout as an output path writes to standard output.
const stdout = "-"

type app struct {
	configPath string
	verbose    bool
	cfg        *config.Config
	out        io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:          "fpdaml",
		Short:        "Convert formalized process descriptions between VDI 3682 JSON and AutomationML",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.verbose {
				cfg.Log.Level = "debug"
			}
			if err := cfg.ApplyLogging(); err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultPath, "configuration file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(a.newToAMLCmd())
	root.AddCommand(a.newToFPDCmd())
	root.AddCommand(a.newBatchCmd())
	root.AddCommand(a.newRenderCmd())
	root.AddCommand(a.newServeCmd())

	return root
}

func (a *app) builderOptions() []builder.Option {
	return []builder.Option{builder.WithMaxDepth(a.cfg.Convert.MaxDepth)}
}

func (a *app) parserOptions() []parser.Option {
	return []parser.Option{
		parser.WithMaxDepth(a.cfg.Convert.MaxDepth),
		parser.WithTargetNamespace(a.cfg.Convert.TargetNamespace),
		parser.WithWarnings(func(w parser.Warning) {
			log.Warnf("skipped: %s", w)
		}),
	}
}

// write stores data at path, or prints it when path is stdout.
func (a *app) write(path string, data []byte) error {
	if path == stdout {
		_, err := a.out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	log.Infof("wrote %s", path)
	return nil
}

func outputOf(input, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	out, _, err := fpdaml.OutputPath(input, "")
	return out, err
}

func (a *app) newToAMLCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "to-aml <in.json>",
		Short: "Convert a VDI 3682 JSON document to AutomationML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := outputOf(args[0], output)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			opts := a.builderOptions()
			if out != stdout {
				opts = append(opts, builder.WithFileName(filepath.Base(out)))
			}
			converted, err := fpdaml.ConvertFPD(data, opts...)
			if err != nil {
				return err
			}
			return a.write(out, converted)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: input with .aml)")
	return cmd
}

func (a *app) newToFPDCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "to-fpd <in.aml>",
		Short: "Convert an AutomationML document to VDI 3682 JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := outputOf(args[0], output)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			converted, err := fpdaml.ConvertAML(data, a.parserOptions()...)
			if err != nil {
				return err
			}
			return a.write(out, converted)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: input with .json)")
	return cmd
}

func (a *app) newBatchCmd() *cobra.Command {
	var (
		dir     string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "batch <file>...",
		Short: "Convert many files concurrently, the direction following each extension",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if workers <= 0 {
				workers = a.cfg.Batch.Workers
			}
			report, err := fpdaml.Batch(cmd.Context(), args,
				fpdaml.WithWorkers(workers),
				fpdaml.WithOutputDir(dir),
				fpdaml.WithBuilderOptions(a.builderOptions()...),
				fpdaml.WithParserOptions(a.parserOptions()...),
			)
			if err != nil {
				return err
			}

			for _, r := range report.Results {
				if r.Err != nil {
					fmt.Fprintf(a.out, "FAIL %s: %v\n", r.Input, r.Err)
					continue
				}
				fmt.Fprintf(a.out, "ok   %s -> %s\n", r.Input, r.Output)
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d conversions failed", report.Failed, len(report.Results))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "output", "o", "", "output directory (default: next to each input)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent conversions (default from config)")
	return cmd
}

func (a *app) newRenderCmd() *cobra.Command {
	var output, format string
	cmd := &cobra.Command{
		Use:   "render <in.json|in.aml>",
		Short: "Draw a process description with Graphviz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			doc, err := a.load(args[0])
			if err != nil {
				return err
			}

			data, err := render.Render(cmd.Context(), render.ToDOT(doc), f)
			if err != nil {
				return err
			}
			return a.write(output, data)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", stdout, "output file, - for stdout")
	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatDOT), "dot, svg or png")
	return cmd
}

// load reads a graph form document, converting tree form input first.
func (a *app) load(path string) (*fpd.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	_, direction, err := fpdaml.OutputPath(path, "")
	if err != nil {
		return nil, err
	}
	if direction == fpdaml.DirectionToFPD {
		data, err = fpdaml.ConvertAML(data, a.parserOptions()...)
		if err != nil {
			return nil, err
		}
	}
	return fpd.Unmarshal(data)
}

func (a *app) newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Address
			}
			s := server.New(
				server.WithAddress(addr),
				server.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout),
				server.WithMaxBodyBytes(a.cfg.Server.MaxBodyBytes),
				server.WithMaxConns(a.cfg.Server.MaxConns),
				server.WithBuilderOptions(a.builderOptions()...),
				server.WithParserOptions(a.parserOptions()...),
			)
			return s.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
