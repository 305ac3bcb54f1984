// Package algorithms contains the step producers the playback engine drives.
//
// A producer is stateless apart from its options: Initialize builds a fresh
// snapshot, MapToVisual lays it out as scene entities and Execute returns a
// lazy step.Sequence over it. Execute never mutates the snapshot, so the
// engine can drain one sequence to count steps and play another.
package algorithms

import (
	"math/rand/v2"
	"strings"

	"github.com/jdharms/algoviz/internal/scene"
	"github.com/jdharms/algoviz/internal/step"
)

// Producer is one algorithm variant
type Producer interface {
	// Info returns display metadata
	Info() Info
	// Initialize returns a new input snapshot
	Initialize() Snapshot
	// MapToVisual lays out the snapshot as scene entities
	MapToVisual(Snapshot) []scene.Entity
	// Execute returns the steps that animate the algorithm over the snapshot
	Execute(Snapshot) step.Sequence
}

// Info describes an algorithm
type Info struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Tier        int    `json:"tier"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Code        string `json:"code"`
}

// Lines returns the source listing split into lines
func (i Info) Lines() []string {
	if i.Code == "" {
		return nil
	}
	return strings.Split(i.Code, "\n")
}

// Snapshot is the opaque input of a single run
type Snapshot interface {
	// Describe returns a short summary for logs
	Describe() string
}

// Options tune a producer's input
type Options struct {
	// Seed makes Initialize deterministic. Zero means fresh randomness on
	// every call.
	Seed uint64
	// Size overrides the default input length where the producer supports it
	Size int
	// Values replaces the generated input where the producer supports it
	Values []int
}

func (o Options) size(def int) int {
	if o.Size > 0 {
		return o.Size
	}
	return def
}

// rng returns a generator for one Initialize call. A fixed seed yields the
// same sequence every call.
func (o Options) rng() *rand.Rand {
	if o.Seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(o.Seed, o.Seed^0x9e3779b97f4a7c15))
}

// randomValues returns n values in [lo, hi]
func (o Options) randomValues(n, lo, hi int) []int {
	if len(o.Values) > 0 {
		return append([]int(nil), o.Values...)
	}
	r := o.rng()
	values := make([]int, n)
	for i := range values {
		values[i] = lo + r.IntN(hi-lo+1)
	}
	return values
}
