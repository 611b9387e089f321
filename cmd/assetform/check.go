package main

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-assetform/pkg/assembler"
	"github.com/goliatone/go-assetform/pkg/model"
	"github.com/goliatone/go-assetform/pkg/store/memory"
)

// finding is one configuration issue located in a catalog file.
type finding struct {
	file  string
	owner string
	issue model.ConfigIssue
}

func (f finding) String() string {
	key := f.issue.FieldKey
	if key == "" {
		key = "-"
	}
	return fmt.Sprintf("%s: %s/%s: %s: %s", f.file, f.owner, key, f.issue.Code, f.issue.Message)
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check [catalog.yaml...]",
		Short: "Lint catalog fixtures for configuration issues",
		Long: `Report descriptor problems (invalid keys, labels, spans, unknown types,
dropdown options), duplicate keys within a set and keys shared by an asset
type's core fields and one of its forms. Exits non-zero when anything is
found. Without arguments the configured fixtures file is checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 && a.cfg.Fixtures != "" {
				paths = []string{a.cfg.Fixtures}
			}
			if len(paths) == 0 {
				return errors.New("assetform: no catalog to check")
			}

			var findings []finding
			for _, path := range paths {
				found, err := checkCatalog(path)
				if err != nil {
					return err
				}
				findings = append(findings, found...)
			}
			return report(cmd.OutOrStdout(), findings)
		},
	}
}

func checkCatalog(path string) ([]finding, error) {
	fixture, err := memory.LoadFixture(path)
	if err != nil {
		return nil, err
	}
	if _, err := memory.NewFromFixture(fixture); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	core, custom, err := fixture.FieldSets()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var findings []finding
	add := func(owner string, issues []model.ConfigIssue) {
		for _, issue := range issues {
			findings = append(findings, finding{file: path, owner: owner, issue: issue})
		}
	}
	for _, at := range fixture.AssetTypes {
		add("asset_type:"+at.ID, model.ValidateFieldSet(core[at.ID]))
	}
	collisions := assembler.New(assembler.WithDescriptorChecks(false))
	for _, form := range fixture.Forms {
		set := custom[form.ID]
		add("form:"+form.ID, model.ValidateFieldSet(set))
		if form.AssetTypeID == "" {
			continue
		}
		coreSet := core[form.AssetTypeID]
		add("form:"+form.ID, collisions.Assemble(&coreSet, &set).Issues)
	}
	return findings, nil
}

func report(w io.Writer, findings []finding) error {
	if len(findings) == 0 {
		_, err := fmt.Fprintln(w, "no configuration issues found")
		return err
	}
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].file != findings[j].file {
			return findings[i].file < findings[j].file
		}
		return findings[i].owner < findings[j].owner
	})
	for _, f := range findings {
		if _, err := fmt.Fprintln(w, f.String()); err != nil {
			return err
		}
	}
	return fmt.Errorf("assetform: %d configuration issues", len(findings))
}
