package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"layout-proxy/internal/config"
	"layout-proxy/internal/layout"
	"layout-proxy/internal/rules"
	"layout-proxy/internal/service"
)

// PatchCmd applies a rules file to a layout document on disk.
func PatchCmd() *cobra.Command {
	var (
		rulesFile string
		itemID    string
		in        string
		out       string
	)
	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Apply rules to a layout JSON file",
		Long:  "Reads a layout service response, applies the rules that target its route and writes the result.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if rulesFile == "" {
				rulesFile = cfg.RulesFile
			}
			set, err := rules.Load(rulesFile)
			if err != nil {
				return err
			}

			data, err := readInput(cmd.InOrStdin(), in)
			if err != nil {
				return err
			}
			doc, err := layout.Decode(data)
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", in, err)
			}
			if doc.Sitecore.Route == nil {
				return errors.New("layout has no route")
			}
			if itemID == "" {
				itemID = doc.Sitecore.Route.ItemID
			}

			plan, err := set.Resolve(itemID, service.ContextVars(doc.Sitecore.Context, time.Now()))
			if err != nil {
				return err
			}
			body := data
			if plan != nil {
				patcher := layout.NewPatcher(layout.WithFieldPolicy(cfg.FieldPolicy), layout.WithSkipApplied(cfg.SkipApplied))
				if err := service.ApplyPlan(patcher, doc, plan); err != nil {
					return err
				}
				if body, err = layout.Encode(doc); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "no rule targets item %s\n", itemID)
			}
			return writeOutput(cmd.OutOrStdout(), out, body)
		},
	}
	cmd.Flags().StringVar(&rulesFile, "rules", "", "rules file (defaults to RULES_FILE)")
	cmd.Flags().StringVar(&itemID, "item", "", "route item ID (defaults to the layout's itemId)")
	cmd.Flags().StringVar(&in, "in", "-", "layout JSON file, - for stdin")
	cmd.Flags().StringVar(&out, "out", "-", "output file, - for stdout")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(stdout io.Writer, path string, body []byte) error {
	if path == "-" {
		_, err := stdout.Write(body)
		return err
	}
	return os.WriteFile(path, body, 0o644)
}
