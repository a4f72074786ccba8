package apikey

// EffectiveDays clamps a requested key lifetime to the group-derived maximum.
// A zero maximum means no group imposes a limit.
func EffectiveDays(requested, groupMax int64) int64 {
	if groupMax > 0 && requested > groupMax {
		return groupMax
	}
	return requested
}
