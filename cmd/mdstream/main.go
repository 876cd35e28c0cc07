// Command mdstream renders streaming markdown incrementally.
//
// Usage:
//
//	mdstream [flags] [file-or-glob ...]
//	GEMINI_API_KEY=gk-... mdstream --prompt "Explain SSE" --tui
//
// Files and doublestar globs are streamed in chunks to simulate token
// arrival; without arguments stdin is read. With --prompt the text is
// streamed from a model provider instead.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/fwojciec/mdstream"
	bt "github.com/fwojciec/mdstream/bubbletea"
	"github.com/fwojciec/mdstream/classify"
	"github.com/fwojciec/mdstream/goldmark"
	"github.com/fwojciec/mdstream/html"
	mdjson "github.com/fwojciec/mdstream/json"
	"github.com/fwojciec/mdstream/reader"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Getenv, os.Stdin, os.Stdout, os.Stderr)
	stop()
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "mdstream: %v\n", err)
		os.Exit(1)
	}
}

// options are the parsed command line flags.
type options struct {
	configPath string
	format     string
	chunkSize  int
	delay      time.Duration
	width      int
	every      bool
	tui        bool
	provider   string
	apiKey     string
	prompt     string
	model      string
	logLevel   string
	save       string
	files      []string

	flags *pflag.FlagSet
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := pflag.NewFlagSet("mdstream", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "Path to YAML config file (default $MDSTREAM_CONFIG or ~/.config/mdstream/config.yml)")
	fs.StringVarP(&o.format, "format", "f", "text", "Output format: html, json, text, markdown")
	fs.IntVar(&o.chunkSize, "chunk-size", reader.DefaultChunkSize, "Runes per simulated chunk")
	fs.DurationVar(&o.delay, "delay", 0, "Pause between simulated chunks")
	fs.IntVarP(&o.width, "width", "w", 80, "Wrap width for text output")
	fs.BoolVar(&o.every, "every", false, "Print every intermediate pass, not only the final one")
	fs.BoolVar(&o.tui, "tui", false, "Show a live preview instead of printing")
	fs.StringVar(&o.provider, "provider", "", "Provider: anthropic, gemini (auto-detected from API keys if omitted)")
	fs.StringVar(&o.apiKey, "api-key", "", "API key (overrides the provider's env var)")
	fs.StringVarP(&o.prompt, "prompt", "p", "", "Stream the model's answer to this prompt")
	fs.StringVar(&o.model, "model", "", "Model ID (provider-specific)")
	fs.StringVar(&o.logLevel, "log-level", "warning", "Log level: debug, info, warning, error")
	fs.StringVar(&o.save, "save", "", "Write the final node tree of the last stream as JSON to this path")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	o.files = fs.Args()
	o.flags = fs
	return o, nil
}

// apply overrides cfg with every flag set explicitly, and fills fields the
// config left empty from the flag defaults.
func (o options) apply(cfg *Config) {
	set := func(name string) bool { return o.flags.Changed(name) }
	if set("format") || cfg.Format == "" {
		cfg.Format = o.format
	}
	if set("chunk-size") || cfg.ChunkSize == 0 {
		cfg.ChunkSize = o.chunkSize
	}
	if set("delay") {
		cfg.Delay = o.delay
	}
	if set("width") || cfg.Width == 0 {
		cfg.Width = o.width
	}
	if set("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = o.logLevel
	}
	if set("provider") {
		cfg.Provider = o.provider
	}
	if set("model") {
		cfg.Model = o.model
	}
}

func newLogger(level string, w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if lvl, err := logrus.ParseLevel(level); err == nil {
		l.SetLevel(lvl)
	}
	return l
}

// stack holds the stages shared by every stream. Each stream gets its own
// classifier session.
type stack struct {
	components   mdstream.Components
	placeholders map[mdstream.TokenKind]string
	compiler     *goldmark.Compiler
	renderer     *html.Renderer
	logger       logrus.FieldLogger
}

func newStack(cfg *Config, logger logrus.FieldLogger) *stack {
	components := cfg.ComponentRegistry()

	var gopts []goldmark.Option
	if cfg.WrapperTag != "" {
		gopts = append(gopts, goldmark.WithWrapperTag(cfg.WrapperTag))
	}
	if cfg.OpenLinksInNewTab {
		gopts = append(gopts, goldmark.WithOpenLinksInNewTab())
	}

	renderer := html.NewRenderer(components,
		html.WithSanitizerConfig(cfg.SanitizerConfig()),
		html.WithAnimation(cfg.AnimationSettings()),
	)
	logger.WithField("components", components.Names()).
		WithField("allowed_tags", renderer.SanitizerConfig().AllowedTags).
		Debug("pipeline configured")

	return &stack{
		components:   components,
		placeholders: cfg.PlaceholderOverrides(),
		compiler:     goldmark.New(gopts...),
		renderer:     renderer,
		logger:       logger,
	}
}

func (s *stack) classifier(name string) *classify.Session {
	return classify.New(
		classify.WithPlaceholders(s.components, s.placeholders),
		classify.WithLogger(s.logger.WithField("stream", name)),
	)
}

func (s *stack) pipeline(name string) *mdstream.Pipeline {
	return mdstream.NewPipeline(s.classifier(name), s.compiler, s.renderer)
}

func run(ctx context.Context, args []string, getenv func(string) string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(opts.configPath, getenv)
	if err != nil {
		return err
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := newLogger(cfg.LogLevel, stderr)
	st := newStack(cfg, logger)
	readerOpts := []reader.Option{reader.WithChunkSize(cfg.ChunkSize), reader.WithDelay(cfg.Delay)}
	req := mdstream.Request{
		Model:        cfg.Model,
		SystemPrompt: cfg.SystemPrompt,
		MaxTokens:    cfg.MaxTokens,
	}

	var inputs []input
	var provider mdstream.Provider
	switch {
	case opts.prompt != "":
		if len(opts.files) > 0 {
			return errors.New("--prompt cannot be combined with input files")
		}
		provider, err = resolveProvider(ctx, cfg.Provider, opts.apiKey, cfg.AnthropicAPIKey, cfg.GeminiAPIKey)
		if err != nil {
			return err
		}
		req.Prompt = opts.prompt
		inputs = append(inputs, promptInput(provider, req))
	case len(opts.files) > 0:
		files, err := expandInputs(opts.files)
		if err != nil {
			return err
		}
		for _, f := range files {
			inputs = append(inputs, fileInput(f, readerOpts))
		}
	case opts.tui && cfg.Provider != "":
		provider, err = resolveProvider(ctx, cfg.Provider, opts.apiKey, cfg.AnthropicAPIKey, cfg.GeminiAPIKey)
		if err != nil {
			return err
		}
	default:
		inputs = append(inputs, readerInput("stdin", stdin, readerOpts))
	}

	if opts.tui {
		return runTUI(ctx, st, inputs, provider, req, opts.save, logger)
	}

	if opts.save != "" && len(inputs) > 1 {
		return errors.New("--save needs a single input")
	}
	p := &printer{out: stdout, format: cfg.Format, width: cfg.Width, theme: mdstream.DefaultTheme()}
	var final []mdstream.Node
	for i, in := range inputs {
		if len(inputs) > 1 {
			if i > 0 {
				if _, err := io.WriteString(stdout, "\n"); err != nil {
					return err
				}
			}
			if err := p.header(in.name); err != nil {
				return err
			}
			p.passes = 0
		}
		nodes, err := stream(ctx, st, in, p, opts.every, logger)
		if err != nil {
			return fmt.Errorf("%s: %w", in.name, err)
		}
		final = nodes
	}

	if opts.save != "" {
		if err := mdjson.Save(opts.save, final); err != nil {
			return fmt.Errorf("save: %w", err)
		}
		logger.WithField("path", opts.save).Info("saved final tree")
	}
	return nil
}

// stream renders one input, printing the final pass and, with every, each
// intermediate pass.
func stream(ctx context.Context, st *stack, in input, p *printer, every bool, logger logrus.FieldLogger) ([]mdstream.Node, error) {
	log := logger.WithField("stream", in.name)
	src, err := in.open(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug("stream opened")

	if p.format == "markdown" {
		return nil, streamMarkdown(ctx, st.classifier(in.name), src, p, every)
	}

	var printErr error
	updates := 0
	onUpdate := func(nodes []mdstream.Node) {
		updates++
		if every && printErr == nil {
			printErr = p.nodes(nodes)
		}
	}
	nodes, err := st.pipeline(in.name).Run(ctx, src, onUpdate)
	if err != nil {
		return nil, err
	}
	if printErr != nil {
		return nil, printErr
	}
	// With every, Run already reported the final tree.
	if !every {
		if err := p.nodes(nodes); err != nil {
			return nil, err
		}
	}
	log.WithField("updates", updates).Info("stream done")
	return nodes, nil
}

// streamMarkdown prints the classifier's display markdown without
// compiling it.
func streamMarkdown(ctx context.Context, session *classify.Session, src mdstream.Source, p *printer, every bool) error {
	defer src.Close()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		delta, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if delta == "" {
			continue
		}
		md := session.Feed(delta)
		if every {
			if err := p.markdown(md); err != nil {
				return err
			}
		}
	}
	return p.markdown(session.Finish())
}

func runTUI(ctx context.Context, st *stack, inputs []input, provider mdstream.Provider, req mdstream.Request, save string, logger logrus.FieldLogger) error {
	if len(inputs) > 1 {
		return errors.New("--tui needs a single input")
	}
	var src mdstream.Source
	name := "prompt"
	if len(inputs) == 1 {
		name = inputs[0].name
		var err error
		if src, err = inputs[0].open(ctx); err != nil {
			return err
		}
	}

	var opts []bt.Option
	if provider != nil && src == nil {
		opts = append(opts, bt.WithProvider(provider, req))
	}
	m := bt.New(src, st.pipeline(name), mdstream.DefaultTheme(), opts...)
	final, err := bt.Run(ctx, m)
	if err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	if err := final.Err(); err != nil {
		logger.WithError(err).WithField("stream", name).Warn("stream failed")
	}
	if save != "" {
		if err := mdjson.Save(save, final.Nodes()); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}
	return nil
}
