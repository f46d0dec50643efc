package gositemapbuilder

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

type batchDocument struct {
	URLs []URLInput `yaml:"urls"`
}

var (
	urlInputFields     = []string{"loc", "lastmod", "changefreq", "priority"}
	batchDocumentField = "urls"
)

// DecodeURLInputs reads a batch of URLs for AddURLs. The data may be YAML, either a
// list of entries or a mapping with a "urls" list, or plain text with one location
// per line where blank lines and lines starting with # are ignored. A list element
// may be a bare location string.
//
// Unknown keys are rejected as *ErrInvalidInput rather than dropped.
func DecodeURLInputs(data []byte) ([]URLInput, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		if looksLikeURLList(data) {
			return readURLList(data)
		}
		return nil, fmt.Errorf("decode URL batch: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		var inputs []URLInput
		if err := doc.Decode(&inputs); err != nil {
			return nil, wrapBatchError(err)
		}
		return inputs, nil
	case yaml.MappingNode:
		if err := checkKeys(doc, batchDocumentField); err != nil {
			return nil, err
		}
		if !hasKey(doc, batchDocumentField) {
			return nil, &ErrInvalidInput{Field: batchDocumentField, Err: errors.New("mapping has no urls list")}
		}
		var batch batchDocument
		if err := doc.Decode(&batch); err != nil {
			return nil, wrapBatchError(err)
		}
		return batch.URLs, nil
	case yaml.ScalarNode:
		return readURLList(data)
	default:
		return nil, errors.New("decode URL batch: unsupported document")
	}
}

// UnmarshalYAML accepts either a mapping with the URLInput keys or a bare
// location string.
func (in *URLInput) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*in = URLInput{Loc: node.Value}
		return nil
	case yaml.MappingNode:
		if err := checkKeys(node, urlInputFields...); err != nil {
			return err
		}
		type plain URLInput
		var decoded plain
		if err := node.Decode(&decoded); err != nil {
			return err
		}
		*in = URLInput(decoded)
		return nil
	default:
		return fmt.Errorf("line %d: expected a location or a mapping", node.Line)
	}
}

func checkKeys(node *yaml.Node, allowed ...string) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if !slices.Contains(allowed, key) {
			return &ErrInvalidInput{
				Field: key,
				Err:   fmt.Errorf("unknown key on line %d (allowed: %s)", node.Content[i].Line, strings.Join(allowed, ", ")),
			}
		}
	}
	return nil
}

func hasKey(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

// wrapBatchError keeps *ErrInvalidInput from UnmarshalYAML visible to errors.As.
func wrapBatchError(err error) error {
	var invalid *ErrInvalidInput
	if errors.As(err, &invalid) {
		return invalid
	}
	return fmt.Errorf("decode URL batch: %w", err)
}

func readURLList(data []byte) ([]URLInput, error) {
	var inputs []URLInput
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		inputs = append(inputs, URLInput{Loc: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read URL list: %w", err)
	}
	return inputs, nil
}

// looksLikeURLList catches plain lists that are not valid YAML, such as a
// location containing ": ".
func looksLikeURLList(data []byte) bool {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.Contains(line, "://") {
			return false
		}
	}
	return true
}
