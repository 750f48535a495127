package main

import (
	"benefits-assistant/internal/common/logger"

	bc "benefits-assistant/internal/workers/ai-conversation/benefits-chat"
	ci "benefits-assistant/internal/workers/ai-conversation/classify-intent"
	cr "benefits-assistant/internal/workers/ai-conversation/compose-response"
	ews "benefits-assistant/internal/workers/ai-conversation/enrich-web-search"
	ge "benefits-assistant/internal/workers/ai-conversation/gather-evidence"
	gc "benefits-assistant/internal/workers/ai-conversation/generate-chart"
	na "benefits-assistant/internal/workers/ai-conversation/notepad-assist"
	se "benefits-assistant/internal/workers/ai-conversation/summarize-evidence"
	ss "benefits-assistant/internal/workers/ai-conversation/summarize-search"
)

// Each worker package declares its own Logger with a With method returning
// that package's type, so the shared logger is wrapped once per package.

type chatLoggerAdapter struct{ logger.Logger }

func (a *chatLoggerAdapter) With(fields map[string]interface{}) bc.Logger {
	return &chatLoggerAdapter{a.Logger.With(fields)}
}

type classifyLoggerAdapter struct{ logger.Logger }

func (a *classifyLoggerAdapter) With(fields map[string]interface{}) ci.Logger {
	return &classifyLoggerAdapter{a.Logger.With(fields)}
}

type gatherLoggerAdapter struct{ logger.Logger }

func (a *gatherLoggerAdapter) With(fields map[string]interface{}) ge.Logger {
	return &gatherLoggerAdapter{a.Logger.With(fields)}
}

type composeLoggerAdapter struct{ logger.Logger }

func (a *composeLoggerAdapter) With(fields map[string]interface{}) cr.Logger {
	return &composeLoggerAdapter{a.Logger.With(fields)}
}

type summarizeLoggerAdapter struct{ logger.Logger }

func (a *summarizeLoggerAdapter) With(fields map[string]interface{}) se.Logger {
	return &summarizeLoggerAdapter{a.Logger.With(fields)}
}

type chartLoggerAdapter struct{ logger.Logger }

func (a *chartLoggerAdapter) With(fields map[string]interface{}) gc.Logger {
	return &chartLoggerAdapter{a.Logger.With(fields)}
}

type enrichWebSearchLoggerAdapter struct{ logger.Logger }

func (a *enrichWebSearchLoggerAdapter) With(fields map[string]interface{}) ews.Logger {
	return &enrichWebSearchLoggerAdapter{a.Logger.With(fields)}
}

type researchLoggerAdapter struct{ logger.Logger }

func (a *researchLoggerAdapter) With(fields map[string]interface{}) ss.Logger {
	return &researchLoggerAdapter{a.Logger.With(fields)}
}

type notepadLoggerAdapter struct{ logger.Logger }

func (a *notepadLoggerAdapter) With(fields map[string]interface{}) na.Logger {
	return &notepadLoggerAdapter{a.Logger.With(fields)}
}
