package json

import (
	"fmt"
	"time"

	"github.com/fwojciec/mdstream"
)

// nodeDTO is the JSON representation of a Node with a type discriminator.
type nodeDTO struct {
	Type         string        `json:"type"`
	Text         *string       `json:"text,omitempty"`
	Tag          *string       `json:"tag,omitempty"`
	Name         *string       `json:"name,omitempty"`
	Attrs        []attrDTO     `json:"attrs,omitempty"`
	StreamStatus *string       `json:"stream_status,omitempty"`
	ClassName    *string       `json:"class_name,omitempty"`
	Animation    *animationDTO `json:"animation,omitempty"`
	Children     []nodeDTO     `json:"children,omitempty"`
}

type attrDTO struct {
	Key string `json:"key"`
	Val string `json:"val"`
}

type animationDTO struct {
	Enabled        bool   `json:"enabled"`
	FadeDurationMS int64  `json:"fade_duration_ms"`
	Easing         string `json:"easing,omitempty"`
}

func marshalNodes(nodes []mdstream.Node) ([]nodeDTO, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	result := make([]nodeDTO, len(nodes))
	for i, n := range nodes {
		dto, err := marshalNode(n)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		result[i] = dto
	}
	return result, nil
}

func marshalNode(n mdstream.Node) (nodeDTO, error) {
	switch v := n.(type) {
	case *mdstream.TextNode:
		return nodeDTO{Type: "text", Text: &v.Text}, nil
	case *mdstream.AnimatedTextNode:
		return nodeDTO{
			Type: "animated_text",
			Text: &v.Text,
			Animation: &animationDTO{
				Enabled:        v.Animation.Enabled,
				FadeDurationMS: v.Animation.FadeDuration.Milliseconds(),
				Easing:         v.Animation.Easing,
			},
		}, nil
	case *mdstream.ElementNode:
		children, err := marshalNodes(v.Children)
		if err != nil {
			return nodeDTO{}, err
		}
		return nodeDTO{Type: "element", Tag: &v.Tag, Attrs: marshalAttrs(v.Attrs), Children: children}, nil
	case *mdstream.ComponentNode:
		children, err := marshalNodes(v.Children)
		if err != nil {
			return nodeDTO{}, err
		}
		status := string(v.StreamStatus)
		return nodeDTO{
			Type:         "component",
			Name:         &v.Name,
			Tag:          &v.Tag,
			Attrs:        marshalAttrs(v.Attrs),
			StreamStatus: &status,
			ClassName:    &v.ClassName,
			Children:     children,
		}, nil
	default:
		return nodeDTO{}, fmt.Errorf("unknown node type: %T", n)
	}
}

func marshalAttrs(attrs []mdstream.Attr) []attrDTO {
	if len(attrs) == 0 {
		return nil
	}
	result := make([]attrDTO, len(attrs))
	for i, a := range attrs {
		result[i] = attrDTO{Key: a.Key, Val: a.Val}
	}
	return result
}

func unmarshalNodes(dtos []nodeDTO) ([]mdstream.Node, error) {
	if len(dtos) == 0 {
		return nil, nil
	}
	result := make([]mdstream.Node, len(dtos))
	for i, dto := range dtos {
		n, err := unmarshalNode(dto)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		result[i] = n
	}
	return result, nil
}

func unmarshalNode(dto nodeDTO) (mdstream.Node, error) {
	switch dto.Type {
	case "text":
		return &mdstream.TextNode{Text: deref(dto.Text)}, nil
	case "animated_text":
		var anim mdstream.Animation
		if dto.Animation != nil {
			anim = mdstream.Animation{
				Enabled:      dto.Animation.Enabled,
				FadeDuration: time.Duration(dto.Animation.FadeDurationMS) * time.Millisecond,
				Easing:       dto.Animation.Easing,
			}
		}
		return &mdstream.AnimatedTextNode{Text: deref(dto.Text), Animation: anim}, nil
	case "element":
		children, err := unmarshalNodes(dto.Children)
		if err != nil {
			return nil, err
		}
		return &mdstream.ElementNode{Tag: deref(dto.Tag), Attrs: unmarshalAttrs(dto.Attrs), Children: children}, nil
	case "component":
		children, err := unmarshalNodes(dto.Children)
		if err != nil {
			return nil, err
		}
		status := mdstream.StreamStatus(deref(dto.StreamStatus))
		switch status {
		case mdstream.StatusLoading, mdstream.StatusDone:
		default:
			return nil, fmt.Errorf("unknown stream status: %q", status)
		}
		return &mdstream.ComponentNode{
			Name: deref(dto.Name),
			ComponentProps: mdstream.ComponentProps{
				Tag:          deref(dto.Tag),
				Attrs:        unmarshalAttrs(dto.Attrs),
				StreamStatus: status,
				ClassName:    deref(dto.ClassName),
				Children:     children,
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown node type: %q", dto.Type)
	}
}

func unmarshalAttrs(dtos []attrDTO) []mdstream.Attr {
	if len(dtos) == 0 {
		return nil
	}
	result := make([]mdstream.Attr, len(dtos))
	for i, a := range dtos {
		result[i] = mdstream.Attr{Key: a.Key, Val: a.Val}
	}
	return result
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
