package attrs

import "strings"

// labelToFlag maps the attribute labels the UI sends (including their
// legacy spellings) onto catalog flag fields. Keys are stored lowercased
// and looked up through flagFor, so label matching is case-insensitive.
var labelToFlag = map[string]string{
	"cushion":                 "hasCushions",
	"cushions":                "hasCushions",
	"pillows":                 "hasCushions",
	"with armrest":            "hasArmrest",
	"armrest":                 "hasArmrest",
	"with or without armrest": "hasArmrest",
	"footrest":                "hasFootrest",
	"cabinets":                "hasCabinets",
	"pull out bed":            "hasPullOutBed",
	"pull-out bed":            "hasPullOutBed",
	"glass on top":            "hasGlassTop",
	"padded foam on top":      "hasPaddedFoam",
	"with storage":            "hasStorage",
	"throw pillow":            "hasThrowPillow",
	"decorative tray":         "hasDecorativeTray",
}

func flagFor(label string) (string, bool) {
	field, ok := labelToFlag[strings.ToLower(strings.TrimSpace(label))]
	return field, ok
}
