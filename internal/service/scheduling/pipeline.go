package scheduling

import (
	"context"
)

// Rule is a single independent business check over a request. A rule either
// fails with a validation error or passes with no observable effect.
type Rule[R any] interface {
	Name() string
	Validate(ctx context.Context, req R) error
}

// Pipeline runs rules in registration order and stops at the first failure,
// which is propagated to the caller unchanged. Order matters: when several
// rules would reject the same request, the first registered one decides the
// reported reason.
type Pipeline[R any] struct {
	rules    []Rule[R]
	onReject func(rule string)
}

func NewPipeline[R any](rules ...Rule[R]) *Pipeline[R] {
	return &Pipeline[R]{rules: rules}
}

// OnReject installs an observer invoked with the failing rule's name. Used
// for metrics; it never alters the propagated error.
func (p *Pipeline[R]) OnReject(fn func(rule string)) *Pipeline[R] {
	p.onReject = fn
	return p
}

func (p *Pipeline[R]) Run(ctx context.Context, req R) error {
	for _, rule := range p.rules {
		if err := rule.Validate(ctx, req); err != nil {
			if p.onReject != nil {
				p.onReject(rule.Name())
			}
			return err
		}
	}
	return nil
}
