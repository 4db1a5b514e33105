package configfile

type flagIota int

const (
	// FlagZeroPadding indicates that messages are padded with zero bytes and
	// the original length is needed to strip the padding.
	FlagZeroPadding flagIota = iota
	// FlagHKDF indicates that the scrypt hash is passed through HKDF, bound
	// to the mode and transform names, instead of being used as the key
	// directly.
	FlagHKDF
)

// knownFlags stores the known feature flags and their string representation
var knownFlags = map[flagIota]string{
	FlagZeroPadding: "ZeroPadding",
	FlagHKDF:        "HKDF",
}

// Configs that do not have these feature flags set are not supported.
var requiredFlags = []flagIota{
	FlagZeroPadding,
	FlagHKDF,
}

// isFeatureFlagKnown verifies that we understand a feature flag.
func isFeatureFlagKnown(flag string) bool {
	for _, knownFlag := range knownFlags {
		if knownFlag == flag {
			return true
		}
	}
	return false
}

// IsFeatureFlagSet returns true if the feature flag "flagWant" is enabled.
func (cf *ConfFile) IsFeatureFlagSet(flagWant flagIota) bool {
	flagString := knownFlags[flagWant]
	for _, flag := range cf.FeatureFlags {
		if flag == flagString {
			return true
		}
	}
	return false
}

func (cf *ConfFile) setFeatureFlag(flag flagIota) {
	if cf.IsFeatureFlagSet(flag) {
		return
	}
	cf.FeatureFlags = append(cf.FeatureFlags, knownFlags[flag])
}
