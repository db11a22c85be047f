package configuration

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/smallgears/pkg/errors"
)

// Codec decodes and encodes configurations.
type Codec interface {
	Name() string
	Decode(r io.Reader, v any) error
	Encode(w io.Writer, v any) error
}

var (
	// JSON is the default codec.
	JSON Codec = jsonCodec{}
	// YAML reads and writes YAML documents.
	YAML Codec = yamlCodec{}
)

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Decode(r io.Reader, v any) error {
	return jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(r).Decode(v)
}

func (jsonCodec) Encode(w io.Writer, v any) error {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type yamlCodec struct{}

func (yamlCodec) Name() string { return "yaml" }

func (yamlCodec) Decode(r io.Reader, v any) error {
	return yaml.NewDecoder(r).Decode(v)
}

func (yamlCodec) Encode(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// CodecFor picks a codec by format name ("json", "yaml", "yml").
func CodecFor(format string) (Codec, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeLoadFailed,
			fmt.Sprintf("unsupported configuration format %q", format))
	}
}

// CodecForPath picks a codec by file extension.
func CodecForPath(path string) (Codec, error) {
	return CodecFor(filepath.Ext(path))
}

// Binder loads and saves configurations of type C.
type Binder[C any] struct {
	codec Codec
}

// BinderOption modifies a Binder.
type BinderOption func(*binderOptions)

type binderOptions struct {
	codec Codec
}

// WithCodec sets the binder's codec. The default is JSON.
func WithCodec(codec Codec) BinderOption {
	return func(o *binderOptions) { o.codec = codec }
}

// NewBinder creates a binder for configurations of type C.
func NewBinder[C any](opts ...BinderOption) *Binder[C] {
	o := binderOptions{codec: JSON}
	for _, opt := range opts {
		opt(&o)
	}
	errors.RequireNonNil(o.codec, "codec")

	return &Binder[C]{codec: o.codec}
}

// Codec returns the binder's codec.
func (b *Binder[C]) Codec() Codec { return b.codec }

// Load decodes a configuration from r.
func (b *Binder[C]) Load(r io.Reader) (C, error) {
	errors.RequireNonNil(r, "stream")

	var cfg C
	if err := b.codec.Decode(r, &cfg); err != nil {
		var zero C
		return zero, errors.Unchecked(errors.ErrCodeLoadFailed, "cannot load configuration", err).
			WithContext("format", b.codec.Name())
	}
	return cfg, nil
}

// LoadFile decodes the configuration stored at path.
func (b *Binder[C]) LoadFile(path string) (C, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero C
		return zero, errors.Unchecked(errors.ErrCodeLoadFailed, "cannot load configuration", err).
			WithContext("location", path)
	}
	defer f.Close()

	return b.Load(f)
}

// Save encodes cfg into the file at location, replacing its contents.
func (b *Binder[C]) Save(cfg C, location string) (err error) {
	f, err := os.Create(location)
	if err != nil {
		return errors.Unchecked(errors.ErrCodeSaveFailed, "cannot save configuration", err).
			WithContext("location", location)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Unchecked(errors.ErrCodeSaveFailed, "cannot save configuration", cerr).
				WithContext("location", location)
		}
	}()

	if err := b.codec.Encode(f, cfg); err != nil {
		return errors.Unchecked(errors.ErrCodeSaveFailed, "cannot save configuration", err).
			WithContext("location", location)
	}
	return nil
}
