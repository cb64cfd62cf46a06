package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sugawarayuuta/sonnet"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of an options or problem file.
type Format int

// File formats.
const (
	YAML Format = iota
	JSON
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	default:
		return YAML, errors.Errorf(
			"%s: unknown file format %q, want .yaml, .yml or .json", path, ext)
	}
}

// Decode decodes data into v. The input must not carry unknown keys.
func Decode(data []byte, f Format, v any) error {
	if f == JSON {
		dec := sonnet.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()

		err := dec.Decode(v)
		if err != nil && err != io.EOF {
			return errors.Wrap(err, "decoding JSON")
		}

		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err := dec.Decode(v)
	if err != nil && err != io.EOF {
		return errors.Wrap(err, "decoding YAML")
	}

	return nil
}

func decodeFile(path string, v any) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}

	return errors.Wrap(Decode(data, f, v), path)
}

// ParseOptions decodes options over the defaults and validates them.
func ParseOptions(data []byte, f Format) (Options, error) {
	o := DefaultOptions()
	if err := Decode(data, f, &o); err != nil {
		return o, err
	}

	return o, o.Validate()
}

// LoadOptions reads an options file over the defaults and validates it.
func LoadOptions(path string) (Options, error) {
	o := DefaultOptions()
	if err := decodeFile(path, &o); err != nil {
		return o, err
	}

	if err := o.Validate(); err != nil {
		return o, errors.Wrap(err, path)
	}

	return o, nil
}

// LoadProblem reads a problem file.
func LoadProblem(path string) (*Problem, error) {
	p := &Problem{}
	if err := decodeFile(path, p); err != nil {
		return nil, err
	}

	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return p, nil
}
