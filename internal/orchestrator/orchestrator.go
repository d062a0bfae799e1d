// Package orchestrator drives an Algorithm through the discrete tick loop
// spec's execution model describes: admit newly released tasks, advance the
// algorithm by one tick, and stop once the algorithm reports a makespan and
// every task has been released.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/elektrokombinacija/mapf-het-research/internal/algo"
	"github.com/elektrokombinacija/mapf-het-research/internal/core"
)

// Config configures a single orchestrator run.
type Config struct {
	Instance *core.Instance

	// Algorithm drives one simulated agent-tick per Run iteration.
	Algorithm algo.Algorithm

	// MaxTicks bounds how long Run will spin before giving up on an
	// algorithm that never reports a makespan. Zero means unlimited.
	MaxTicks int

	Logger zerolog.Logger
}

// Metrics summarizes a completed run, mirroring the fields the source
// simulator tracked for paper validation, trimmed to what a discrete
// tick-based MAPD run can actually measure.
type Metrics struct {
	Ticks          int
	Makespan       int
	TasksReleased  int
	ConflictsFound int
}

// Orchestrator runs one Algorithm against one Instance, releasing tasks at
// their recorded tick and logging progress through the configured logger.
type Orchestrator struct {
	cfg     Config
	metrics Metrics

	pending []core.Task // tasks not yet released, in instance order
}

// New builds an Orchestrator. Tasks are consumed from cfg.Instance.Tasks and
// released as the tick reaches their R field; cfg.Instance.Tasks is not
// mutated.
func New(cfg Config) *Orchestrator {
	pending := make([]core.Task, len(cfg.Instance.Tasks))
	copy(pending, cfg.Instance.Tasks)
	return &Orchestrator{cfg: cfg, pending: pending}
}

// Run drives the tick loop to completion (Algorithm.Makespan() >= 0 with no
// task left to release) or until ctx is cancelled or MaxTicks is exhausted,
// whichever comes first.
func (o *Orchestrator) Run(ctx context.Context) (Metrics, error) {
	alg := o.cfg.Algorithm
	log := o.cfg.Logger.With().Str("algorithm", alg.Name()).Logger()

	for {
		select {
		case <-ctx.Done():
			return o.metrics, fmt.Errorf("orchestrator: %w", ctx.Err())
		default:
		}

		released := o.releaseDueTasks(alg.Timestep())
		if len(released) > 0 {
			alg.AddTasks(released)
			o.metrics.TasksReleased += len(released)
			log.Debug().Int("tick", alg.Timestep()).Int("count", len(released)).Msg("released tasks")
		}

		alg.Update()
		o.metrics.Ticks++

		// An algorithm judges itself done once it is idle with an empty task
		// pool, but it has no visibility into tasks the orchestrator hasn't
		// released yet. Only trust Makespan() once every instance task has
		// actually been handed to the algorithm.
		if ms := alg.Makespan(); ms >= 0 && len(o.pending) == 0 {
			o.metrics.Makespan = ms
			log.Info().Int("makespan", ms).Int("ticks", o.metrics.Ticks).Msg("run complete")
			return o.metrics, nil
		}

		if o.cfg.MaxTicks > 0 && o.metrics.Ticks >= o.cfg.MaxTicks {
			return o.metrics, fmt.Errorf("orchestrator: exceeded max ticks %d without reaching a makespan", o.cfg.MaxTicks)
		}
	}
}

// releaseDueTasks pops every pending task whose release tick is <= now.
func (o *Orchestrator) releaseDueTasks(now int) []core.Task {
	var due []core.Task
	var keep []core.Task
	for _, t := range o.pending {
		if t.R <= now {
			due = append(due, t)
		} else {
			keep = append(keep, t)
		}
	}
	o.pending = keep
	return due
}
