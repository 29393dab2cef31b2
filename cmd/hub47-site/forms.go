package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"hub47-site/internal/backend"
	"hub47-site/internal/common/config"
	"hub47-site/internal/common/logger"
	"hub47-site/internal/forms"
	"hub47-site/internal/forms/builtin"
	"hub47-site/pkg/registry"
)

const defaultRegistryPath = "configs/form-registry.json"

func newFormsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "Inspect the forms this build serves",
	}
	cmd.AddCommand(
		newFormsCheckCmd(root),
		newFormsSchemaCmd(root),
		newFormsRegistryCmd(root),
	)
	return cmd
}

// loadForms builds the registry without touching the network.
func loadForms(root *rootOptions) (*config.Config, *forms.Registry, error) {
	cfg, err := root.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	client := backend.NewClient(backend.Options{BaseURL: cfg.Backend.BaseURL})
	reg, err := builtin.Registry(cfg, client, logger.NewNoOpLogger())
	if err != nil {
		return nil, nil, err
	}
	return cfg, reg, nil
}

func newFormsCheckCmd(root *rootOptions) *cobra.Command {
	var registryPath string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate every form definition and, optionally, compare with the registry file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, reg, err := loadForms(root)
			if err != nil {
				return err
			}
			if err := reg.Check(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if registryPath != "" {
				if err := compareRegistry(cfg, reg, registryPath); err != nil {
					return err
				}
				fmt.Fprintf(out, "Registry %s is up to date.\n", registryPath)
			}
			fmt.Fprintf(out, "%d forms passed validation.\n", len(reg.List()))
			return nil
		},
	}
	cmd.Flags().StringVar(&registryPath, "registry", "", "registry file to compare against")
	return cmd
}

func compareRegistry(cfg *config.Config, reg *forms.Registry, path string) error {
	want, err := registry.LoadRegistry(path)
	if err != nil {
		return err
	}
	got, err := registry.Build(cfg.App.Version, reg.Descriptors())
	if err != nil {
		return err
	}
	if diff := registry.Diff(want, got); diff != "" {
		return fmt.Errorf("registry %s is stale (-file +served):\n%s", path, diff)
	}
	return nil
}

func newFormsSchemaCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema [form-id]",
		Short: "Print form descriptors as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, err := loadForms(root)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				f, err := reg.Get(args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), f.Descriptor())
			}
			return writeJSON(cmd.OutOrStdout(), reg.Descriptors())
		},
	}
}

func newFormsRegistryCmd(root *rootOptions) *cobra.Command {
	var registryPath string
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Regenerate the registry file from the served forms",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, reg, err := loadForms(root)
			if err != nil {
				return err
			}
			out, err := registry.Build(cfg.App.Version, reg.Descriptors())
			if err != nil {
				return err
			}
			if err := registry.SaveRegistry(registryPath, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d forms to %s\n", len(out.Forms), registryPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&registryPath, "registry", defaultRegistryPath, "registry file to write")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
