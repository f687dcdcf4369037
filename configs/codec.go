package configs

import (
	"bytes"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
)

// Decode .
func Decode(raw string, conf *Config) error {
	if _, err := toml.Decode(raw, conf); err != nil {
		return errors.Wrap(err, "decode config")
	}
	return nil
}

// Encode .
func Encode(conf *Config, noIndents ...bool) (string, error) {
	var buf bytes.Buffer
	var enc = toml.NewEncoder(&buf)

	if len(noIndents) < 1 || !noIndents[0] {
		enc.Indent = "    "
	}

	if err := enc.Encode(conf); err != nil {
		return "", errors.Wrap(err, "encode config")
	}

	return buf.String(), nil
}

// DecodeFile .
func DecodeFile(file string, conf *Config) error {
	if _, err := toml.DecodeFile(file, conf); err != nil {
		return errors.Wrapf(err, "decode config %s", file)
	}
	return nil
}
