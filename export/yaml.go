package export

import (
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/nbt-editor/errors"
)

// Node converts plain data from Value into a YAML node tree. Numeric
// sequences use flow style.
func Node(v any) *yaml.Node {
	switch x := v.(type) {
	case *OrderedMap:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range x.Keys {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				Node(x.Values[k]))
		}
		return n
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		flow := len(x) > 0
		for _, e := range x {
			if _, ok := e.(int64); !ok {
				flow = false
			}
			n.Content = append(n.Content, Node(e))
		}
		if flow || len(x) == 0 {
			n.Style = yaml.FlowStyle
		}
		return n
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(x, 10)}
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: yamlFloat(x)}
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: x}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Node(v)); err != nil {
		return errors.Wrap(errors.PhaseExport, errors.KindIO, err, "encode yaml")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(errors.PhaseExport, errors.KindIO, err, "close yaml")
	}
	return nil
}
