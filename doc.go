/*
Package biocompute describes liquid-handling experiments as ordinary Go code and
turns them into operation logs for a lab robot and step-by-step slides for
people.

# Concept

A protocol is a function that drives well handles. Every Fill, Mix and Image
call on a handle is recorded, in call order, into the Trace bound to the
capture session. The recorded log is then regrouped per well ("experiments"),
which is the form the job server accepts and the form slide synthesis replays.

Replay is lockstep: slide i shows every plate after the i-th operation of every
well has been applied, with each well colored by the volume-weighted blend of
the reagents it holds.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/biocompute"
		"github.com/aretw0/biocompute/pkg/protocol"
		"github.com/aretw0/biocompute/pkg/reagent"
	)

	func main() {
		ctx := context.Background()
		p, err := biocompute.Capture(ctx, func(ctx context.Context) error {
			wells, err := protocol.Wells(ctx, 4)
			if err != nil {
				return err
			}
			for i, w := range wells {
				w.Fill(100, reagent.Water).Fill(float64(10*(i+1)), reagent.RedDye).Mix()
			}
			return nil
		})
		if err != nil {
			log.Fatal(err)
		}

		if err := biocompute.Show(ctx, p, "dilution"); err != nil {
			log.Fatal(err)
		}
	}

Only one capture session may be active per process; a nested or concurrent
Capture fails with trace.ErrDoubleCapture.

# Packages

  - pkg/ops: operation variants and the wire codec.
  - pkg/trace, pkg/protocol: capture sessions, well handles and YAML protocol files.
  - pkg/experiment: per-well grouping.
  - pkg/slides, pkg/color, pkg/plate: lockstep synthesis and display colors.
  - pkg/client, pkg/cache, pkg/config: job server submission and caching.
  - pkg/adapters/http, pkg/adapters/mcp: preview surfaces.
*/
package biocompute
