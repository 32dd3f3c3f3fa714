/*
Copyright © 2026 the tetode authors.
This file is part of tetode.

tetode is free software: you can redistribute it and/or modify it
under the terms of the MIT license: a short, permissive license
granting free use, copying, modification, and distribution, provided
this copyright notice is preserved. tetode is distributed WITHOUT ANY
WARRANTY, express or implied.
*/

package checkpoint

import (
	"os"

	"github.com/ctessum/cdf"

	"tetode/errs"
)

// WriteNetCDF archives a full recorded run — not just its last state,
// unlike the mandatory binary checkpoint — as a NetCDF file with a
// "time" x "state" matrix of y, for offline analysis. This format is
// additive: it never replaces the binary layout Engine.Checkpoint uses.
func WriteNetCDF(path string, sig Signature, times []float64, ys [][]float64) error {
	const op = "checkpoint.WriteNetCDF"
	if len(times) != len(ys) {
		return errs.New(op, errs.ArgumentOutOfRange, "have %d times but %d recorded states", len(times), len(ys))
	}
	for i, y := range ys {
		if len(y) != sig.Len {
			return errs.New(op, errs.ArgumentOutOfRange, "recorded state %d has length %d, want %d", i, len(y), sig.Len)
		}
	}

	h := cdf.NewHeader([]string{"time", "state"}, []int{len(times), sig.Len})
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddAttribute("time", "units", "s")
	h.AddVariable("y", []string{"time", "state"}, []float64{0})
	h.AddAttribute("y", "description", "global state vector recorded at each reported time")
	h.Define()
	for _, err := range h.Check() {
		return errs.Wrap(op, errs.CheckpointMismatch, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(op, errs.CheckpointMismatch, err)
	}
	defer f.Close()

	nc, err := cdf.Create(f, h)
	if err != nil {
		return errs.Wrap(op, errs.CheckpointMismatch, err)
	}

	tw := nc.Writer("time", []int{0}, []int{len(times)})
	if _, err := tw.Write(times); err != nil {
		return errs.Wrap(op, errs.CheckpointMismatch, err)
	}

	flat := make([]float64, 0, len(times)*sig.Len)
	for _, y := range ys {
		flat = append(flat, y...)
	}
	yw := nc.Writer("y", []int{0, 0}, []int{len(times), sig.Len})
	if _, err := yw.Write(flat); err != nil {
		return errs.Wrap(op, errs.CheckpointMismatch, err)
	}

	return cdf.UpdateNumRecs(f)
}

// ReadNetCDF reads back a run archived by WriteNetCDF.
func ReadNetCDF(path string) (times []float64, ys [][]float64, err error) {
	const op = "checkpoint.ReadNetCDF"
	f, ferr := os.Open(path)
	if ferr != nil {
		return nil, nil, errs.Wrap(op, errs.CheckpointMismatch, ferr)
	}
	defer f.Close()

	nc, cerr := cdf.Open(f)
	if cerr != nil {
		return nil, nil, errs.Wrap(op, errs.CheckpointMismatch, cerr)
	}

	nTime := nc.Header.Lengths("time")[0]
	nState := nc.Header.Lengths("state")[0]

	tr := nc.Reader("time", nil, nil)
	tbuf := tr.Zero(-1)
	if _, err := tr.Read(tbuf); err != nil {
		return nil, nil, errs.Wrap(op, errs.CheckpointMismatch, err)
	}
	times = tbuf.([]float64)

	yr := nc.Reader("y", nil, nil)
	ybuf := yr.Zero(-1)
	if _, err := yr.Read(ybuf); err != nil {
		return nil, nil, errs.Wrap(op, errs.CheckpointMismatch, err)
	}
	flat := ybuf.([]float64)

	ys = make([][]float64, nTime)
	for i := 0; i < nTime; i++ {
		ys[i] = flat[i*nState : (i+1)*nState]
	}
	return times, ys, nil
}
