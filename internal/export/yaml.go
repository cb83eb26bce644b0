package export

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/sells-group/leaderboard-cli/internal/leaderboard"
)

func writeYAML(w io.Writer, entries []leaderboard.Entry, layout Layout) error {
	var root *yaml.Node
	if layout == LayoutMap {
		root = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range collapse(entries) {
			root.Content = append(root.Content, addressNode(e.Address), pointsNode(e))
		}
	} else {
		root = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range entries {
			root.Content = append(root.Content, &yaml.Node{
				Kind: yaml.MappingNode,
				Tag:  "!!map",
				Content: []*yaml.Node{
					strNode("address"), addressNode(e.Address),
					strNode("points"), pointsNode(e),
				},
			})
		}
	}
	if len(root.Content) == 0 {
		root.Style = yaml.FlowStyle
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return err
	}
	return enc.Close()
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// Addresses such as 0xAA would otherwise read back as hex integers.
func addressNode(addr string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: addr, Style: yaml.DoubleQuotedStyle}
}

func pointsNode(e leaderboard.Entry) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: e.Points.String()}
}
