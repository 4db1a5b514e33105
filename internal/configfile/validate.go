package configfile

import (
	"fmt"

	"github.com/modecrypt/modecrypt/internal/blockmode"
)

// Validate that the combination of settings makes sense and is supported
func (cf *ConfFile) Validate() error {
	if cf.Version != CurrentVersion {
		return fmt.Errorf("Unsupported config format %d", cf.Version)
	}
	// scrypt params ok?
	if err := cf.ScryptObject.validateParams(); err != nil {
		return err
	}
	// All feature flags that are in the config file are known?
	for _, flag := range cf.FeatureFlags {
		if !isFeatureFlagKnown(flag) {
			return fmt.Errorf("Unknown feature flag %q", flag)
		}
	}
	for _, i := range requiredFlags {
		if !cf.IsFeatureFlagSet(i) {
			return fmt.Errorf("Required feature flag %q is missing", knownFlags[i])
		}
	}
	// Cipher parameters
	{
		mode, err := blockmode.ParseMode(cf.Mode)
		if err != nil {
			return err
		}
		if cf.BlockSize <= 0 {
			return fmt.Errorf("Invalid block size %d", cf.BlockSize)
		}
		if mode == blockmode.ModeEME && cf.BlockSize != 16 {
			return fmt.Errorf("EME requires block size 16, config has %d", cf.BlockSize)
		}
		if err := validTransform(cf.Transform, cf.BlockSize); err != nil {
			return err
		}
	}
	return nil
}
