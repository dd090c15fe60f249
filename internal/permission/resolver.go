package permission

import (
	"credence/internal/gate"
	"credence/internal/rubric"
	"credence/internal/source"
)

// Input is everything the resolver may look at. It is a pure decision
// procedure: same input, same label, no side effects.
type Input struct {
	Use          source.IntendedUse
	Gate         gate.Decision
	Completeness source.Completeness
	HSUS         int
	Criteria     rubric.Set
	MultiSource  bool // batch contained >= 2 sources
	Tertiary     bool // registry tertiary_reference flag (encyclopedias etc.)
}

type strength int

const (
	strengthWeak strength = iota
	strengthMedium
	strengthStrong
)

func evidenceStrength(set rubric.Set) strength {
	c := set[rubric.EvidenceStrength]
	if !c.Assessed {
		return strengthWeak
	}
	switch c.Score {
	case 2:
		return strengthStrong
	case 1:
		return strengthMedium
	default:
		return strengthWeak
	}
}

// rank orders labels for the weaker-of comparison between the numeric
// band and the categorical outcome. Higher is more permissive.
func rank(p source.UsePermission) int {
	switch p {
	case source.PermissionBPreferred:
		return 3
	case source.PermissionBSafeguards:
		return 2
	case source.PermissionCContext:
		return 1
	default:
		return 0
	}
}

func weaker(a, b source.UsePermission) source.UsePermission {
	if rank(b) < rank(a) {
		return b
	}
	return a
}

// band maps the numeric index to its base label. The band only ever
// caps; it never lifts a label past a categorical limit.
func band(hsus int) source.UsePermission {
	switch {
	case hsus >= 85:
		return source.PermissionBPreferred
	case hsus >= 65:
		return source.PermissionBSafeguards
	case hsus >= 45:
		return source.PermissionCContext
	default:
		return source.PermissionDoNotUse
	}
}

// Resolve runs the fixed-priority decision table. First matching rule
// wins; numeric thresholds never override the categorical caps.
func Resolve(in Input) source.UsePermission {
	if in.Gate.AutoReject {
		return source.PermissionDoNotUse
	}
	if in.Completeness == source.CompletenessFailed {
		return source.PermissionManualRetrieval
	}
	if in.Use == source.UseFactual && in.Completeness == source.CompletenessPartial {
		return source.PermissionManualRetrieval
	}

	if in.Gate.AutoRestrict {
		switch in.Use {
		case source.UseContext:
			return source.PermissionCContext
		default: // A stays narrative; B is demoted to narrative
			return source.PermissionANarrative
		}
	}

	switch in.Use {
	case source.UseFactual:
		// Tertiary references aggregate other sources; cite those
		// instead of the aggregation.
		if in.Tertiary {
			return source.PermissionCContext
		}
		spec := in.Criteria[rubric.Specificity]
		if spec.Assessed && spec.Score == 0 {
			return source.PermissionCContext
		}
		specific := spec.Assessed && spec.Score == 2

		switch st := evidenceStrength(in.Criteria); {
		case st == strengthWeak:
			return source.PermissionCContext
		case st == strengthStrong && specific &&
			in.Completeness == source.CompletenessComplete && in.MultiSource:
			return weaker(source.PermissionBPreferred, band(in.HSUS))
		case st == strengthStrong || st == strengthMedium:
			// Single-source corroboration gap or partial specificity
			// caps the ceiling at safeguards.
			return weaker(source.PermissionBSafeguards, band(in.HSUS))
		default:
			return source.PermissionCContext
		}

	case source.UseContext:
		return source.PermissionCContext

	case source.UseNarrative:
		return source.PermissionANarrative
	}

	return source.PermissionDoNotUse
}
