package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/mdstream"
	"github.com/fwojciec/mdstream/html"
	mdjson "github.com/fwojciec/mdstream/json"
	"github.com/fwojciec/mdstream/lipgloss"
)

// printer writes rendered passes in one output format. Every pass ends
// with a newline; with --every, passes are separated by a blank line.
type printer struct {
	out    io.Writer
	format string
	width  int
	theme  mdstream.Theme
	passes int
}

func (p *printer) separate() error {
	p.passes++
	if p.passes == 1 {
		return nil
	}
	_, err := io.WriteString(p.out, "\n")
	return err
}

// header names the input when several are rendered.
func (p *printer) header(name string) error {
	_, err := fmt.Fprintf(p.out, "==> %s <==\n", name)
	return err
}

func (p *printer) nodes(nodes []mdstream.Node) error {
	if err := p.separate(); err != nil {
		return err
	}
	switch p.format {
	case "html":
		var b strings.Builder
		if err := html.Serialize(&b, nodes); err != nil {
			return err
		}
		return p.line(b.String())
	case "json":
		data, err := mdjson.MarshalNodes(nodes)
		if err != nil {
			return err
		}
		return p.line(string(data))
	default:
		return p.line(lipgloss.Render(nodes, p.width, p.theme))
	}
}

func (p *printer) markdown(md string) error {
	if err := p.separate(); err != nil {
		return err
	}
	return p.line(md)
}

func (p *printer) line(s string) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := io.WriteString(p.out, s)
	return err
}
