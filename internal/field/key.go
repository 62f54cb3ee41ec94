package field

import "strings"

// Key identifies a single derivable catalog field.
type Key string

const (
	KeyDesigner       Key = "designer"
	KeySystem         Key = "system"
	KeyFaction        Key = "faction"
	KeyLineageFamily  Key = "lineage_family"
	KeyLineagePrimary Key = "lineage_primary"
	KeyUnit           Key = "unit"
	KeyFranchise      Key = "franchise"
	KeyCharacter      Key = "character"
	KeyCollection     Key = "collection"
	KeyScaleRatio     Key = "scale_ratio"
	KeyHeightMM       Key = "height_mm"
	KeyVersion        Key = "version"
	KeyPose           Key = "pose"
	KeySegmentation   Key = "segmentation"
	KeyInternalVolume Key = "internal_volume"
	KeySupportState   Key = "support_state"
	KeyPartPackType   Key = "part_pack_type"
	KeyContentFlag    Key = "content_flag"
	KeyIntendedUse    Key = "intended_use"
	KeyPCCandidate    Key = "pc_candidate"
)

var allKeys = []Key{
	KeyDesigner,
	KeySystem,
	KeyFaction,
	KeyLineageFamily,
	KeyLineagePrimary,
	KeyUnit,
	KeyFranchise,
	KeyCharacter,
	KeyCollection,
	KeyScaleRatio,
	KeyHeightMM,
	KeyVersion,
	KeyPose,
	KeySegmentation,
	KeyInternalVolume,
	KeySupportState,
	KeyPartPackType,
	KeyContentFlag,
	KeyIntendedUse,
	KeyPCCandidate,
}

var keySet = func() map[Key]struct{} {
	set := make(map[Key]struct{}, len(allKeys))
	for _, key := range allKeys {
		set[key] = struct{}{}
	}
	return set
}()

// AllKeys returns the ordered list of known field keys.
func AllKeys() []Key {
	cp := make([]Key, len(allKeys))
	copy(cp, allKeys)
	return cp
}

// ParseKey converts a string into a known Key.
func ParseKey(value string) (Key, bool) {
	normalized := Key(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := keySet[normalized]
	return normalized, ok
}
