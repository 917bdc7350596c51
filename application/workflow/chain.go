package workflow

import (
	"context"

	"ipo_automation/domain/entities"

	"github.com/sirupsen/logrus"
)

// Step is a named unit of a chain. Run receives the previous outcome (the
// zero value for the first step).
type Step struct {
	Name string
	Run  func(ctx context.Context, prev entities.StepOutcome) entities.StepOutcome
}

// ChainResult reports how far a chain got
type ChainResult struct {
	Executed []string
	Last     entities.StepOutcome
}

// Succeeded reports whether every step ran and succeeded
func (r ChainResult) Succeeded() bool {
	return r.Last.Success
}

// Chain runs steps strictly in sequence and stops at the first failure.
// Failed steps are never retried.
type Chain struct {
	steps  []Step
	logger logrus.FieldLogger
}

// NewChain - creates a chain over steps
func NewChain(logger logrus.FieldLogger, steps ...Step) *Chain {
	return &Chain{steps: steps, logger: logger}
}

// Run executes the chain
func (c *Chain) Run(ctx context.Context) ChainResult {
	result := ChainResult{Last: entities.Succeeded("", nil)}
	prev := entities.StepOutcome{}

	for _, step := range c.steps {
		if err := ctx.Err(); err != nil {
			result.Last = entities.Failed(step.Name, entities.FailureActionFailed, "run cancelled: "+err.Error())
			return result
		}

		c.logger.WithField("step", step.Name).Info("running step")
		out := step.Run(ctx, prev)
		if out.Step == "" {
			out.Step = step.Name
		}
		result.Executed = append(result.Executed, step.Name)
		result.Last = out

		if !out.Success {
			c.logger.WithFields(logrus.Fields{
				"step":   step.Name,
				"kind":   out.Kind,
				"reason": out.Reason,
			}).Warn("step failed, halting chain")
			return result
		}
		prev = out
	}
	return result
}
