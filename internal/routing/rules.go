package routing

import (
	"sort"

	"github.com/lumensuite/lumen-core/internal/capability"
	"github.com/lumensuite/lumen-core/internal/visual"
)

// Rule adjusts a routing computation. Rules run in descending Priority
// order; each sees the mutations of the rules before it.
//
// Rules encode domain policy (active module wins ties, ambient effects
// are overlay-only, and so on) so the matrix itself stays mechanical.
// New policies are added by registering another Rule; the engine never
// needs modification.
type Rule interface {
	// Name identifies the rule in logs and debug output.
	Name() string

	// Priority orders execution. Higher runs first.
	Priority() int

	// Apply mutates the computation in place.
	Apply(c *Computation)
}

// Score adjustments applied by the built-in rules.
const (
	activeModuleBoost       = 25
	dimensionFallbackMalus  = 15
	rulePriorityActiveBoost = 50
	rulePriorityDimFallback = 40
	rulePriorityOverlayOnly = 30
	rulePriorityExclusive   = 20
	rulePriorityFallback    = 10
)

// Engine holds the ordered rule list and applies it to computations.
//
// Rules are registered at startup; Register keeps the list sorted so
// Apply is a plain iteration. The engine itself carries no routing
// state and is safe to share across computations.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine preloaded with the built-in policy rules.
func NewEngine() *Engine {
	e := &Engine{}
	e.Register(ActiveModuleBoost{})
	e.Register(DimensionFallback{})
	e.Register(OverlayOnlyGuard{})
	e.Register(ExclusiveGridSuppression{})
	e.Register(FallbackKind{})
	return e
}

// Register adds a rule, keeping descending priority order. Equal
// priorities keep registration order.
func (e *Engine) Register(r Rule) {
	e.rules = append(e.rules, r)
	sort.SliceStable(e.rules, func(i, j int) bool {
		return e.rules[i].Priority() > e.rules[j].Priority()
	})
}

// Rules returns the rules in execution order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Apply runs all rules over the computation in priority order.
func (e *Engine) Apply(c *Computation) {
	for _, r := range e.rules {
		r.Apply(c)
	}
}

// ActiveModuleBoost raises the scores of the module the surrounding
// application marked as currently active, so it wins ties against
// backgrounded modules.
type ActiveModuleBoost struct{}

func (ActiveModuleBoost) Name() string  { return "active-module-boost" }
func (ActiveModuleBoost) Priority() int { return rulePriorityActiveBoost }

func (ActiveModuleBoost) Apply(c *Computation) {
	if c.ActiveModule == "" {
		return
	}
	for _, candidates := range c.Candidates {
		for _, cand := range candidates {
			if cand.ModuleID == c.ActiveModule {
				cand.Score += activeModuleBoost
			}
		}
	}
}

// DimensionFallback revives dimension-mismatched candidates, at a
// penalty, on devices that would otherwise have no primary candidate.
// A module preferring 2D can then fall back to a 1D device and vice
// versa, instead of leaving the device to the generic fallback.
type DimensionFallback struct{}

func (DimensionFallback) Name() string  { return "dimension-fallback" }
func (DimensionFallback) Priority() int { return rulePriorityDimFallback }

func (DimensionFallback) Apply(c *Computation) {
	for _, candidates := range c.Candidates {
		hasQualified := false
		for _, cand := range candidates {
			if !cand.Disqualified && !cand.Descriptor.OverlayCompatible {
				hasQualified = true
				break
			}
		}
		if hasQualified {
			continue
		}
		for _, cand := range candidates {
			if cand.Disqualified && !cand.Descriptor.OverlayCompatible {
				cand.Disqualified = false
				cand.Score -= dimensionFallbackMalus
			}
		}
	}
}

// ExclusiveGridSuppression suppresses all overlay assignment on a grid
// device whose leading primary candidate claims exclusive 2D use.
//
// Runs after OverlayOnlyGuard, so the leader is always a candidate
// that can actually become the primary.
type ExclusiveGridSuppression struct{}

func (ExclusiveGridSuppression) Name() string  { return "exclusive-grid-suppression" }
func (ExclusiveGridSuppression) Priority() int { return rulePriorityExclusive }

func (ExclusiveGridSuppression) Apply(c *Computation) {
	for deviceID, candidates := range c.Candidates {
		dev := c.DeviceByID(deviceID)
		if dev == nil || dev.Geometry.Dimensionality != visual.TwoD {
			continue
		}
		leader := bestPrimary(candidates)
		if leader != nil && leader.Descriptor.Exclusive {
			c.SuppressOverlays[deviceID] = true
		}
	}
}

// OverlayOnlyGuard makes overlay-compatible descriptors ineligible as
// primaries. Ambient and reactive effects composite on top of a base
// image; they never become one, even when no other candidate exists.
type OverlayOnlyGuard struct{}

func (OverlayOnlyGuard) Name() string  { return "overlay-only-guard" }
func (OverlayOnlyGuard) Priority() int { return rulePriorityOverlayOnly }

func (OverlayOnlyGuard) Apply(c *Computation) {
	for _, candidates := range c.Candidates {
		for _, cand := range candidates {
			if cand.Descriptor.OverlayCompatible {
				cand.PrimaryEligible = false
			}
		}
	}
}

// FallbackKind is the catch-all: any device still without a qualified,
// primary-eligible candidate gets the generic fallback kind, so every
// enabled device always lights up with something.
type FallbackKind struct{}

func (FallbackKind) Name() string  { return "fallback-kind" }
func (FallbackKind) Priority() int { return rulePriorityFallback }

func (FallbackKind) Apply(c *Computation) {
	for deviceID, candidates := range c.Candidates {
		if bestPrimary(candidates) != nil {
			continue
		}
		c.Candidates[deviceID] = append(candidates, &Candidate{
			ModuleID: FallbackModuleID,
			Descriptor: capability.Descriptor{
				Kind:                visual.KindFallback,
				DimensionPreference: visual.PreferEither,
			},
			Score:           0,
			PrimaryEligible: true,
		})
	}
}

// bestPrimary returns the highest-scoring qualified primary-eligible
// candidate, breaking score ties by lower module ID then kind for
// determinism. Returns nil if none qualifies.
func bestPrimary(candidates []*Candidate) *Candidate {
	var best *Candidate
	for _, cand := range candidates {
		if cand.Disqualified || !cand.PrimaryEligible {
			continue
		}
		if best == nil || cand.Score > best.Score {
			best = cand
			continue
		}
		if cand.Score == best.Score {
			if cand.ModuleID < best.ModuleID ||
				(cand.ModuleID == best.ModuleID && cand.Descriptor.Kind < best.Descriptor.Kind) {
				best = cand
			}
		}
	}
	return best
}
