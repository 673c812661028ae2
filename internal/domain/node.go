package domain

import (
	"errors"
	"strings"
)

// NodeRef names an archive node: a network, a station or a channel.
// Station is empty for a network node and Channel is empty for a station node.
type NodeRef struct {
	Network string `json:"network"`
	Station string `json:"station,omitempty"`
	Channel string `json:"channel,omitempty"`
}

// ParseNodeRef parses "NET", "NET.STA" or "NET.STA.CHA".
func ParseNodeRef(s string) (NodeRef, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) > 3 {
		return NodeRef{}, errors.New("too many components in node reference")
	}
	var ref NodeRef
	fields := []*string{&ref.Network, &ref.Station, &ref.Channel}
	for i, p := range parts {
		*fields[i] = p
	}
	return ref, ref.Validate()
}

// Validate checks that every present component is a usable path segment and
// that no component follows an empty one.
func (r NodeRef) Validate() error {
	segs := []string{r.Network, r.Station, r.Channel}
	for i, s := range segs {
		if s == "" {
			if i == 0 {
				return errors.New("node reference has no network")
			}
			for _, rest := range segs[i+1:] {
				if rest != "" {
					return errors.New("node reference skips a level")
				}
			}
			return nil
		}
		if !ValidSegment(s) {
			return ErrOutsideArchive
		}
	}
	return nil
}

// Lineage returns the segment lists of the node and each of its ancestors,
// from the network down to the node itself.
func (r NodeRef) Lineage() [][]string {
	var out [][]string
	segs := []string{r.Network, r.Station, r.Channel}
	for i := 1; i <= len(segs) && segs[i-1] != ""; i++ {
		out = append(out, segs[:i:i])
	}
	return out
}

func (r NodeRef) String() string {
	s := r.Network
	if r.Station != "" {
		s += "." + r.Station
	}
	if r.Channel != "" {
		s += "." + r.Channel
	}
	return s
}
