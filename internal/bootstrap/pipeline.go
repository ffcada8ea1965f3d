package bootstrap

import (
	"context"
	"errors"
	"strings"

	"resume-parser/internal/extract"
	"resume-parser/internal/llm"
	"resume-parser/internal/llm/gemini"
	"resume-parser/internal/llm/openai"
	"resume-parser/internal/ocr"
	"resume-parser/internal/parsing"
	"resume-parser/internal/shared/config"
	"resume-parser/internal/shared/telemetry"
)

// Pipeline is the parsing stack without storage or HTTP.
type Pipeline struct {
	OCR    *ocr.Tesseract
	Parser *parsing.Service
	// Enhancer answers free-text prompts; Parser's model is asked for JSON.
	Enhancer llm.Completer

	closers []func() error
}

// BuildPipeline wires OCR, extraction and the configured model provider.
// A missing provider key yields placeholder clients rather than an error.
func BuildPipeline(ctx context.Context, cfg config.Config) (*Pipeline, error) {
	p := &Pipeline{}

	structured, enhancer, err := p.buildModels(ctx, cfg)
	if err != nil {
		p.Close()
		return nil, err
	}
	p.Enhancer = enhancer

	p.OCR = ocr.NewTesseract(ocr.Config{
		Binary:      cfg.TesseractPath,
		Language:    cfg.OCRLang,
		TessdataDir: cfg.TessdataDir,
	})
	extractor := extract.New(extract.WithOCR(p.OCR, cfg.OCRLang))
	p.Parser = parsing.NewService(extractor, llm.NewRequester(structured))
	return p, nil
}

// Close releases provider clients.
func (p *Pipeline) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return errors.Join(errs...)
}

func (p *Pipeline) buildModels(ctx context.Context, cfg config.Config) (llm.Completer, llm.Completer, error) {
	switch cfg.LLMProvider {
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return placeholderModels(cfg.LLMProvider, "OPENAI_API_KEY empty")
		}
		base := openai.Options{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.LLMModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.OpenAITimeout,
		}
		structured := base
		structured.JSONMode = true
		structured.System = llm.SystemPrompt
		parser, err := openai.NewClient(structured)
		if err != nil {
			return nil, nil, err
		}
		enhancer, err := openai.NewClient(base)
		if err != nil {
			return nil, nil, err
		}
		return parser, enhancer, nil
	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			return placeholderModels(cfg.LLMProvider, "GEMINI_API_KEY empty")
		}
		parser, err := gemini.NewClient(ctx, gemini.Options{
			APIKey:   cfg.GeminiAPIKey,
			Model:    cfg.LLMModel,
			JSONMode: true,
			System:   llm.SystemPrompt,
		})
		if err != nil {
			return nil, nil, err
		}
		p.closers = append(p.closers, parser.Close)
		enhancer, err := gemini.NewClient(ctx, gemini.Options{APIKey: cfg.GeminiAPIKey, Model: cfg.LLMModel})
		if err != nil {
			return nil, nil, err
		}
		p.closers = append(p.closers, enhancer.Close)
		return parser, enhancer, nil
	default:
		return placeholderModels(cfg.LLMProvider, "LLM_PROVIDER=none")
	}
}

func placeholderModels(provider, reason string) (llm.Completer, llm.Completer, error) {
	telemetry.Warn("bootstrap.llm_unconfigured", map[string]any{
		"provider": provider,
		"reason":   reason,
	})
	return llm.PlaceholderClient{}, llm.PlaceholderClient{}, nil
}
