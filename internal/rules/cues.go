package rules

import "stlcat/internal/field"

// axis maps cue tokens to the value they assert on one variant axis.
// Conflicting assertions force the field to explicit Unknown plus the
// axis's conflict warning instead of picking a winner.
type axis struct {
	key      field.Key
	conflict Warning
	cues     map[string]string
}

var variantAxes = []axis{
	{
		key:      field.KeySegmentation,
		conflict: WarnSegmentationConflict,
		cues: map[string]string{
			"split":     "split",
			"multipart": "split",
			"sectioned": "split",
			"cut":       "split",
			"merged":    "merged",
			"onepiece":  "merged",
			"uncut":     "merged",
			"monopose":  "merged",
		},
	},
	{
		key:      field.KeyInternalVolume,
		conflict: WarnVariantAxisConflict,
		cues: map[string]string{
			"hollow":   "hollow",
			"hollowed": "hollow",
			"solid":    "solid",
			"filled":   "solid",
		},
	},
	{
		key:      field.KeySupportState,
		conflict: WarnVariantAxisConflict,
		cues: map[string]string{
			"supported":    "supported",
			"presupported": "supported",
			"presup":       "supported",
			"unsupported":  "unsupported",
			"raw":          "unsupported",
		},
	},
	{
		key:      field.KeyPartPackType,
		conflict: WarnVariantAxisConflict,
		cues: map[string]string{
			"bases":   "bases",
			"bits":    "bits",
			"bitz":    "bits",
			"heads":   "heads",
			"weapons": "weapons",
			"arms":    "arms",
		},
	},
}

// Content-flag cues. Strong cues are binary, highest-confidence signals;
// weak cues only fire when no strong cue did, and always carry a warning.
var (
	strongNSFWCues = map[string]struct{}{
		"nude":     {},
		"naked":    {},
		"nsfw":     {},
		"explicit": {},
		"topless":  {},
	}
	weakNSFWCues = map[string]struct{}{
		"sexy":   {},
		"pinup":  {},
		"lewd":   {},
		"risque": {},
	}
)

// Intended-use buckets keyed by top-level path segment words only.
var intendedUseBuckets = map[string]string{
	"tabletop":    "tabletop",
	"wargaming":   "tabletop",
	"gaming":      "tabletop",
	"minis":       "tabletop",
	"miniatures":  "tabletop",
	"display":     "display",
	"displays":    "display",
	"collectible": "display",
	"terrain":     "terrain",
	"scenery":     "terrain",
	"scatter":     "terrain",
}

// Role-cue token sets for the player-character candidate heuristic.
var (
	pcPositiveCues = map[string]struct{}{
		"hero":       {},
		"heroine":    {},
		"adventurer": {},
		"rogue":      {},
		"paladin":    {},
		"wizard":     {},
		"sorcerer":   {},
		"barbarian":  {},
	}
	pcNegativeCues = map[string]struct{}{
		"npc":       {},
		"villager":  {},
		"townsfolk": {},
		"merchant":  {},
		"guard":     {},
	}
	pcMonsterCues = map[string]struct{}{
		"monster":  {},
		"beast":    {},
		"creature": {},
		"swarm":    {},
	}
)
