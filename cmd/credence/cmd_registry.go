package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"credence/internal/registry"
)

var registryCmd = &cobra.Command{
	Use:   "registry <domain>",
	Short: "Look up a domain in the source registry",
	Long: `Print the registry flags for a domain. Accepts a bare domain or a
full URL; either way the registrable domain (eTLD+1) is looked up.

Usage:
  credence registry example.com
  credence registry https://sub.example.com/some/article`,
	Args: cobra.ExactArgs(1),
	RunE: runRegistry,
}

func runRegistry(_ *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	raw := args[0]
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	domain := registry.RegistrableDomain(raw)
	if domain == "" {
		return fmt.Errorf("cannot parse domain %q", args[0])
	}

	entry, known := reg.Entry(domain)
	out := struct {
		Domain   string         `json:"domain"`
		Known    bool           `json:"known"`
		Official bool           `json:"official_domain"`
		Entry    registry.Entry `json:"entry"`
	}{
		Domain:   domain,
		Known:    known,
		Official: registry.OfficialDomain(domain),
		Entry:    entry,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
