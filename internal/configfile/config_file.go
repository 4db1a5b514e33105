// Package configfile reads and writes modecrypt.conf, which stores the
// cipher parameters and the scrypt settings used to turn a password into a
// key.
package configfile

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/modecrypt/modecrypt/internal/cryptocore"
	"github.com/modecrypt/modecrypt/internal/exitcodes"
	"github.com/modecrypt/modecrypt/internal/tlog"
	"github.com/modecrypt/modecrypt/internal/transform"
)

const (
	// ConfDefaultName is the default configuration file name.
	ConfDefaultName = "modecrypt.conf"
	// CurrentVersion is the config file format version we write and accept.
	CurrentVersion = 1
)

// ConfFile is the content of a config file.
type ConfFile struct {
	// Creator is the modecrypt version string.
	// This only documents the config file for humans who look at it. The actual
	// technical info is contained in FeatureFlags.
	Creator string
	// Version is the config file format version
	Version uint16
	// Mode is the block mode name, "ecb", "cbc", ...
	Mode string
	// Transform is the block transform name, "aes", "xor", ...
	Transform string
	// BlockSize in bytes
	BlockSize int
	// ScryptObject stores parameters for scrypt hashing (key derivation)
	ScryptObject ScryptKDF
	// FeatureFlags is a list of feature flags this config has enabled.
	// If modecrypt encounters a feature flag it does not support, it will
	// refuse to use the config.
	FeatureFlags []string
	// filename is the name of the config file. Not exported to JSON.
	filename string
}

// Create - create a new config for "mode", "transform" and "blockSize" and
// write it to "filename". Uses scrypt with cost parameter logN.
func Create(filename string, creator string, mode string, transformName string, blockSize int, logN int) error {
	cf := ConfFile{
		filename:  filename,
		Creator:   creator,
		Version:   CurrentVersion,
		Mode:      mode,
		Transform: transformName,
		BlockSize: blockSize,
	}
	cf.ScryptObject = NewScryptKDF(logN)
	cf.setFeatureFlag(FlagZeroPadding)
	cf.setFeatureFlag(FlagHKDF)
	if err := cf.Validate(); err != nil {
		return exitcodes.Wrap(err, exitcodes.InvalidConfig)
	}
	if err := cf.WriteFile(); err != nil {
		return exitcodes.Wrap(err, exitcodes.WriteConf)
	}
	return nil
}

// Load - read config file from disk and validate it.
func Load(filename string) (*ConfFile, error) {
	var cf ConfFile
	cf.filename = filename

	// Read from disk
	js, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, exitcodes.Wrap(err, exitcodes.OpenConf)
	}
	if len(js) == 0 {
		return nil, exitcodes.NewErr(fmt.Sprintf("Config file %q is empty", filename), exitcodes.LoadConf)
	}

	// Unmarshal
	err = json.Unmarshal(js, &cf)
	if err != nil {
		tlog.Warn.Printf("Failed to unmarshal config file")
		return nil, exitcodes.Wrap(err, exitcodes.LoadConf)
	}

	if err := cf.Validate(); err != nil {
		return nil, exitcodes.Wrap(err, exitcodes.LoadConf)
	}
	return &cf, nil
}

// DeriveKey turns "password" into a key for the configured mode and
// transform. The key is at least cryptocore.KeyLen and at least one block
// long.
func (cf *ConfFile) DeriveKey(password []byte) ([]byte, error) {
	scryptHash, err := cf.ScryptObject.DeriveKey(password)
	if err != nil {
		return nil, exitcodes.Wrap(err, exitcodes.ScryptParams)
	}
	keyLen := cryptocore.KeyLen
	if cf.BlockSize > keyLen {
		keyLen = cf.BlockSize
	}
	if !cf.IsFeatureFlagSet(FlagHKDF) {
		// Validate() makes sure this never happens
		return nil, fmt.Errorf("HKDF feature flag missing")
	}
	info := cryptocore.HKDFInfo(cf.Mode, cf.Transform)
	return cryptocore.HKDFDerive(scryptHash, info, keyLen), nil
}

// WriteFile - write out config in JSON format to file "filename.tmp"
// then rename over "filename".
// This way an update atomically replaces the file.
func (cf *ConfFile) WriteFile() error {
	tmp := cf.filename + ".tmp"
	// 0400 permissions: modecrypt.conf is never written to after creation.
	fd, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0400)
	if err != nil {
		return err
	}
	js, err := json.MarshalIndent(cf, "", "\t")
	if err != nil {
		fd.Close()
		return err
	}
	// For convenience for the user, add a newline at the end.
	js = append(js, '\n')
	_, err = fd.Write(js)
	if err != nil {
		fd.Close()
		return err
	}
	err = fd.Sync()
	if err != nil {
		fd.Close()
		return err
	}
	err = fd.Close()
	if err != nil {
		return err
	}
	err = os.Rename(tmp, cf.filename)
	return err
}

// validTransform checks that the transform exists and can handle the block
// size.
func validTransform(name string, blockSize int) error {
	t, err := transform.ByName(name)
	if err != nil {
		return err
	}
	if bs := t.BlockSize(); bs != 0 && bs != blockSize {
		return fmt.Errorf("transform %q needs block size %d, config has %d", name, bs, blockSize)
	}
	return nil
}
