package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baxromumarov/wordwise/internal/app"
	"github.com/baxromumarov/wordwise/internal/config"
	"github.com/baxromumarov/wordwise/internal/logger"
	"github.com/baxromumarov/wordwise/internal/textutil"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "wordwise-tools",
		Short:         "Offline and one-shot helpers for the wordwise service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML or TOML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level for diagnostics on stderr")

	root.AddCommand(
		newNormalizeCmd(),
		newSanitizeCmd(),
		newLookupCmd(opts),
		newFetchCmd(opts),
	)
	return root
}

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <word>...",
		Short: "Print the dictionary key for each word",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, arg := range args {
				word, ok := textutil.NormalizeWord(arg)
				if !ok {
					return fmt.Errorf("%q normalizes to nothing", arg)
				}
				fmt.Fprintln(out, word)
			}
			return nil
		},
	}
}

func newSanitizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sanitize [file]",
		Short: "Strip links, URLs and punctuation noise from markdown (stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			data, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), textutil.SanitizeMarkdown(string(data)))
			return nil
		},
	}
}

func newLookupCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <word>",
		Short: "Look a word up in the configured dictionary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd, opts)
			if err != nil {
				return err
			}
			_, entries, err := a.Services.Lookup.Lookup(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), entries)
		},
	}
}

func newFetchCmd(opts *rootOptions) *cobra.Command {
	var markdownOnly bool
	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Fetch a page and print its extracted content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd, opts)
			if err != nil {
				return err
			}
			result, err := a.Services.Fetch.Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if markdownOnly {
				fmt.Fprintln(cmd.OutOrStdout(), result.ProcessedMarkdown)
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().BoolVar(&markdownOnly, "markdown", false, "print only the sanitized markdown")
	return cmd
}

func buildApp(cmd *cobra.Command, opts *rootOptions) (*app.App, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	log := logger.New(cmd.ErrOrStderr(), opts.logLevel, "text")
	slog.SetDefault(log)
	return app.New(cfg, log)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
