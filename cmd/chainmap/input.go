package main

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

// pair is one input record.
type pair struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// inputFormat resolves the input format from --format, falling back to the
// file extension and then to text.
func inputFormat(path, format string) (string, error) {
	switch strings.ToLower(format) {
	case formatText, "txt":
		return formatText, nil
	case formatYAML, "yml":
		return formatYAML, nil
	case "":
	default:
		return "", errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	}
	return formatText, nil
}

func (a *app) readInput(stdin io.Reader) ([]pair, error) {
	format, err := inputFormat(a.opts.input, a.opts.format)
	if err != nil {
		return nil, err
	}

	r := stdin
	if a.opts.input != "-" && a.opts.input != "" {
		f, err := os.Open(a.opts.input)
		if err != nil {
			return nil, errors.Wrap(err, "opening input")
		}
		defer f.Close()
		r = f
	}

	a.log.Debug("reading pairs", "input", a.opts.input, "format", format)
	if format == formatYAML {
		return readYAMLPairs(r)
	}
	return readTextPairs(r)
}

// readTextPairs parses one pair per line: the key is the first
// whitespace-separated field and the value is the rest of the line.
// Blank lines and lines starting with # are skipped.
func readTextPairs(r io.Reader) ([]pair, error) {
	var pairs []pair
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key := strings.Fields(line)[0]
		pairs = append(pairs, pair{
			Key:   key,
			Value: strings.TrimSpace(line[len(key):]),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading text pairs")
	}
	return pairs, nil
}

// readYAMLPairs parses a YAML sequence of {key, value} mappings. Order is
// preserved, since it decides chain order.
func readYAMLPairs(r io.Reader) ([]pair, error) {
	var pairs []pair
	if err := yaml.NewDecoder(r).Decode(&pairs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "decoding yaml pairs")
	}
	for i, p := range pairs {
		if p.Key == "" {
			return nil, errors.Wrapf(ErrEmptyKey, "pair %d", i)
		}
	}
	return pairs, nil
}
