package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgallion1/pdfoutline/internal/doctree"
	"github.com/dgallion1/pdfoutline/internal/export"
	"github.com/dgallion1/pdfoutline/internal/outline"
	"github.com/dgallion1/pdfoutline/internal/parser"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "outline",
		Short:         "Infer headings and paragraphs from document typography",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "log pipeline debug events to stderr")

	root.AddCommand(newExtractCmd(), newVersionCmd())
	return root
}

func newExtractCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("OUTLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract the outline of a .pdf or glyph-stream .json file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			return runExtract(cmd, args[0], extractOptions{
				format:         v.GetString("format"),
				name:           v.GetString("name"),
				normalizeFonts: v.GetBool("normalize-fonts"),
				workers:        v.GetInt("workers"),
				verbose:        verbose,
			})
		},
	}
	cmd.Flags().StringP("format", "f", "json", "output format: json, markdown, html or tree")
	cmd.Flags().StringP("name", "n", "", "file name recorded on each record (default: base name of <file>)")
	cmd.Flags().Bool("normalize-fonts", false, "relabel stray fonts inside each line before segmentation")
	cmd.Flags().IntP("workers", "w", runtime.NumCPU(), "pages processed in parallel")
	cobra.CheckErr(v.BindPFlags(cmd.Flags()))
	return cmd
}

type extractOptions struct {
	format         string
	name           string
	normalizeFonts bool
	workers        int
	verbose        bool
}

func runExtract(cmd *cobra.Command, path string, opts extractOptions) error {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	name := opts.name
	if name == "" {
		name = filepath.Base(path)
	}

	p, err := parser.ForFile(path, log)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	pages, err := p.Parse(f, path)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	res, err := outline.Process(cmd.Context(), pages, name, outline.Options{
		Workers:            opts.workers,
		NormalizeLineFonts: opts.normalizeFonts,
		Logger:             log,
	})
	if err != nil {
		return err
	}
	log.Debug("outline complete", "pages", len(pages), "records", len(res.Records))

	out := cmd.OutOrStdout()
	title := parser.Title(name)
	switch opts.format {
	case "json":
		return export.JSON(out, res.Records)
	case "markdown":
		_, err = fmt.Fprint(out, export.Markdown(title, res.Records))
		return err
	case "html":
		html, err := export.HTML(title, res.Records)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, html)
		return err
	case "tree":
		return writeTree(out, doctree.FromRecords(title, res.Records))
	default:
		return fmt.Errorf("unsupported format %q (want json, markdown, html or tree)", opts.format)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "outline %s (%s)\n", version, runtime.Version())
		},
	}
}
