package pipeline

import "context"

// ScreenBatch runs each video's pipeline independently. A failed video
// records its error and never aborts its siblings. onDone, when non-nil, is
// called after each video, in order, for progress reporting.
func (p *Pipeline) ScreenBatch(ctx context.Context, inputs []string, onDone func(BatchItem)) []BatchItem {
	items := make([]BatchItem, 0, len(inputs))

	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			items = append(items, BatchItem{Source: input, Err: err})
			continue
		}

		rep, err := p.Screen(ctx, input)
		item := BatchItem{Source: input, Report: rep, Err: err}

		if err != nil {
			p.logger.Error().Err(err).Str("input", input).Msg("batch item failed")
		}

		items = append(items, item)
		if onDone != nil {
			onDone(item)
		}
	}

	return items
}
