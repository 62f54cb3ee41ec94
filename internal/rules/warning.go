package rules

// Warning is an enumerated field-level diagnostic. Warnings never abort a
// run and are never dropped; every one ends up on the ChangeSet entry it
// belongs to.
type Warning string

const (
	WarnDesignerAliasCollision Warning = "designer_alias_collision"
	WarnSegmentationConflict   Warning = "segmentation_conflict"
	WarnIntendedUseConflict    Warning = "intended_use_conflict"
	WarnAmbiguousLineageToken  Warning = "ambiguous_lineage_token"
	WarnUncommonScaleRatio     Warning = "uncommon_scale_ratio"
	WarnNSFWWeakConfidence     Warning = "nsfw_weak_confidence"
	WarnFactionWithoutSystem   Warning = "faction_without_system"
	WarnPCCandidateConflict    Warning = "pc_candidate_conflict"
	WarnScaleMMRatioConflict   Warning = "scale_mm_ratio_conflict"
	WarnVariantAxisConflict    Warning = "variant_axis_conflict"
)

// AllWarnings returns every known warning in stable order.
func AllWarnings() []Warning {
	return []Warning{
		WarnDesignerAliasCollision,
		WarnSegmentationConflict,
		WarnIntendedUseConflict,
		WarnAmbiguousLineageToken,
		WarnUncommonScaleRatio,
		WarnNSFWWeakConfidence,
		WarnFactionWithoutSystem,
		WarnPCCandidateConflict,
		WarnScaleMMRatioConflict,
		WarnVariantAxisConflict,
	}
}
