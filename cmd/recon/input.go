package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/recon/internal/core"
	"github.com/JonMunkholm/recon/internal/recon"
)

// inputs is everything one reconciliation needs from disk.
type inputs struct {
	master     []recon.Row
	comparison []recon.Row
	mapping    recon.MappingConfig
}

// loadInputs reads both datasets and the mapping concurrently.
func loadInputs(masterPath, comparisonPath, mappingPath string) (*inputs, error) {
	var in inputs
	var g errgroup.Group

	g.Go(func() error {
		rows, err := readRows(masterPath)
		if err != nil {
			return eris.Wrap(err, "master dataset")
		}
		in.master = rows
		return nil
	})
	g.Go(func() error {
		rows, err := readRows(comparisonPath)
		if err != nil {
			return eris.Wrap(err, "comparison dataset")
		}
		in.comparison = rows
		return nil
	})
	g.Go(func() error {
		m, err := readMapping(mappingPath)
		if err != nil {
			return eris.Wrap(err, "mapping")
		}
		in.mapping = m
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &in, nil
}

func readRows(path string) ([]recon.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	rows, err := core.DecodeRows(f)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	return rows, nil
}

func readMapping(path string) (recon.MappingConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return recon.MappingConfig{}, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	m, err := core.DecodeMapping(f)
	if err != nil {
		return recon.MappingConfig{}, eris.Wrapf(err, "read %s", path)
	}
	return m, nil
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
