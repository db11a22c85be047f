package configuration

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/conneroisu/smallgears/pkg/errors"
	"github.com/conneroisu/smallgears/pkg/properties"
)

// LoadProperties reads a configuration stream in the given format ("yaml",
// "json", "toml", ...) and returns a bag with one property per leaf key.
// Nested keys are joined with dots, and, as with viper, are lower-cased.
func LoadProperties(r io.Reader, format string) (*properties.Properties, error) {
	errors.RequireNonNil(r, "stream")

	v := viper.New()
	v.SetConfigType(strings.TrimPrefix(format, "."))
	if err := v.ReadConfig(r); err != nil {
		return nil, errors.Unchecked(errors.ErrCodeLoadFailed, "cannot load configuration", err).
			WithContext("format", format)
	}

	return PropertiesOf(v), nil
}

// LoadPropertiesFile reads the configuration file at path, choosing the
// format by extension.
func LoadPropertiesFile(path string) (*properties.Properties, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Unchecked(errors.ErrCodeLoadFailed, "cannot load configuration", err).
			WithContext("location", path)
	}
	defer f.Close()

	return LoadProperties(f, filepath.Ext(path))
}

// PropertiesOf returns a bag holding every key of v.
func PropertiesOf(v *viper.Viper) *properties.Properties {
	errors.RequireNonNil(v, "viper")

	ps := properties.New()
	for _, key := range v.AllKeys() {
		ps.Add(properties.Prop(key, v.Get(key)))
	}
	return ps
}

// WriteProperties encodes the bag as a nested document: a property named
// "server.port" is written as port under server. Keys are case-insensitive,
// as in viper, so names differing only in case are rejected with a config
// error rather than one silently overwriting the other.
func WriteProperties(ps *properties.Properties, w io.Writer, codec Codec) error {
	errors.RequireNonNil(ps, "properties")
	errors.RequireNonNil(w, "writer")
	errors.RequireNonNil(codec, "codec")

	v := viper.New()
	keys := make(map[string]string, ps.Size())
	for p := range ps.All() {
		key := strings.ToLower(p.Name())
		if previous, ok := keys[key]; ok {
			return errors.NewConfigError(errors.ErrCodeKeyCollision,
				fmt.Sprintf("properties %s and %s map to the same key %s", previous, p.Name(), key)).
				WithContext("key", key)
		}
		keys[key] = p.Name()
		v.Set(p.Name(), p.Value())
	}

	if err := codec.Encode(w, v.AllSettings()); err != nil {
		return errors.Unchecked(errors.ErrCodeSaveFailed, "cannot save configuration", err).
			WithContext("format", codec.Name())
	}
	return nil
}

// SaveProperties writes the bag to the file at path, choosing the format
// by extension. The file is only replaced once the bag has been encoded.
func SaveProperties(ps *properties.Properties, path string) error {
	codec, err := CodecForPath(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := WriteProperties(ps, &buf, codec); err != nil {
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Unchecked(errors.ErrCodeSaveFailed, "cannot save configuration", err).
			WithContext("location", path)
	}
	return nil
}
