package translationloader

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/magiconair/properties"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Codec reads and writes a translation document in a file format.
type Codec interface {
	Decode(r io.Reader) (map[string]any, error)
	Encode(w io.Writer, doc map[string]any) error
}

var (
	codecsMu sync.RWMutex
	codecs   = map[string]Codec{
		"yml":        YAMLCodec{},
		"yaml":       YAMLCodec{},
		"properties": PropertiesCodec{},
		"toml":       TOMLCodec{},
	}
)

// CodecFor returns the codec registered for the file extension (without the dot).
func CodecFor(ext string) (Codec, bool) {
	codecsMu.RLock()
	defer codecsMu.RUnlock()

	c, ok := codecs[strings.ToLower(ext)]
	return c, ok
}

// RegisterCodec registers a codec for the file extension, replacing any previous codec.
func RegisterCodec(ext string, c Codec) {
	codecsMu.Lock()
	defer codecsMu.Unlock()

	codecs[strings.ToLower(ext)] = c
}

// YAMLCodec reads and writes yaml documents. Keys are written sorted.
type YAMLCodec struct{}

func (YAMLCodec) Decode(r io.Reader) (map[string]any, error) {
	var root yaml.Node

	err := yaml.NewDecoder(r).Decode(&root)
	if errors.Is(err, io.EOF) {
		return make(map[string]any), nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to decode yaml: %w", err)
	}

	value, err := yamlValue(&root)
	if err != nil {
		return nil, fmt.Errorf("unable to decode yaml: %w", err)
	}

	switch doc := value.(type) {
	case nil:
		return make(map[string]any), nil
	case map[string]any:
		return doc, nil
	}

	return nil, fmt.Errorf("unable to decode yaml: document is a %T, not a mapping", value)
}

// yamlValue converts a node into sections, lists and scalars. Numbers keep their
// written form.
func yamlValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}

		return yamlValue(n.Content[0])
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	case yaml.MappingNode:
		section := make(map[string]any, len(n.Content)/2)

		for i := 0; i+1 < len(n.Content); i += 2 {
			value, err := yamlValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}

			if n.Content[i].ShortTag() == "!!merge" {
				mergeSection(section, value)
				continue
			}

			section[n.Content[i].Value] = value
		}

		return section, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))

		for _, elem := range n.Content {
			value, err := yamlValue(elem)
			if err != nil {
				return nil, err
			}

			list = append(list, value)
		}

		return list, nil
	}

	switch n.ShortTag() {
	case "!!int", "!!float":
		return Number(n.Value), nil
	case "!!null":
		return nil, nil
	}

	var value any
	if err := n.Decode(&value); err != nil {
		return nil, err
	}

	return value, nil
}

func (YAMLCodec) Encode(w io.Writer, doc map[string]any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(yamlNode(doc)); err != nil {
		return fmt.Errorf("unable to encode yaml: %w", err)
	}

	return encoder.Close()
}

// yamlNode builds a mapping node with sorted keys to keep the output stable.
func yamlNode(doc map[string]any) *yaml.Node {
	root := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, k := range sortedKeys(doc) {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: k,
		}

		var valueNode *yaml.Node
		switch v := doc[k].(type) {
		case map[string]any:
			valueNode = yamlNode(v)
		default:
			valueNode = &yaml.Node{}
			if err := valueNode.Encode(v); err != nil {
				valueNode = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: stringify(v)}
			}
		}

		root.Content = append(root.Content, keyNode, valueNode)
	}

	return root
}

// mergeSection adds the keys of a merged (<<) mapping or list of mappings that
// section does not set itself.
func mergeSection(section map[string]any, merged any) {
	switch v := merged.(type) {
	case map[string]any:
		for key, value := range v {
			if _, ok := section[key]; !ok {
				section[key] = value
			}
		}
	case []any:
		for _, elem := range v {
			mergeSection(section, elem)
		}
	}
}

// MarshalYAML writes the number plain, as it was read.
func (n Number) MarshalYAML() (any, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: string(n)}, nil
}

// PropertiesCodec reads and writes java style properties files.
// Properties have no sections, nested keys are written as dotted keys.
type PropertiesCodec struct{}

func (PropertiesCodec) Decode(r io.Reader) (map[string]any, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read properties: %w", err)
	}

	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}

	p, err := loader.LoadBytes(buf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode properties: %w", err)
	}

	doc := make(map[string]any, p.Len())
	for _, key := range p.Keys() {
		value, _ := p.Get(key)
		doc[key] = value
	}

	return doc, nil
}

func (PropertiesCodec) Encode(w io.Writer, doc map[string]any) error {
	p := properties.NewProperties()
	p.DisableExpansion = true

	flat := flattenDocument(doc)
	for _, key := range sortedKeys(flat) {
		if _, _, err := p.Set(key, flat[key]); err != nil {
			return fmt.Errorf("unable to set property %q: %w", key, err)
		}
	}

	if _, err := p.Write(w, properties.UTF8); err != nil {
		return fmt.Errorf("unable to encode properties: %w", err)
	}

	return nil
}

// TOMLCodec reads and writes toml documents.
type TOMLCodec struct{}

func (TOMLCodec) Decode(r io.Reader) (map[string]any, error) {
	doc := make(map[string]any)

	if err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("unable to decode toml: %w", err)
	}

	return doc, nil
}

func (TOMLCodec) Encode(w io.Writer, doc map[string]any) error {
	if err := toml.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("unable to encode toml: %w", err)
	}

	return nil
}
