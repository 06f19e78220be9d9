package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"timetabler/internal/domain"
	"timetabler/internal/logger"
	"timetabler/internal/port"
	"timetabler/internal/timetable"
)

// MergeParser wraps two DocumentParsers, runs both in parallel, and merges results.
type MergeParser struct {
	primary   port.DocumentParser
	secondary port.DocumentParser
	log       zerolog.Logger
}

// NewMergeParser creates a MergeParser from primary and secondary parsers.
func NewMergeParser(primary, secondary port.DocumentParser, log zerolog.Logger) *MergeParser {
	return &MergeParser{
		primary:   primary,
		secondary: secondary,
		log:       logger.Component(log, "parser.merge"),
	}
}

func (m *MergeParser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	type result struct {
		output *port.ParseOutput
		err    error
	}

	var wg sync.WaitGroup
	primaryCh := make(chan result, 1)
	secondaryCh := make(chan result, 1)

	wg.Add(2)
	go func() {
		defer wg.Done()
		out, err := m.primary.Parse(ctx, input)
		primaryCh <- result{out, err}
	}()
	go func() {
		defer wg.Done()
		out, err := m.secondary.Parse(ctx, input)
		secondaryCh <- result{out, err}
	}()

	wg.Wait()
	close(primaryCh)
	close(secondaryCh)

	pResult := <-primaryCh
	sResult := <-secondaryCh

	if pResult.err != nil && sResult.err != nil {
		return nil, fmt.Errorf("both parsers failed: primary: %v; secondary: %w", pResult.err, sResult.err)
	}

	if pResult.err != nil {
		m.log.Warn().Err(pResult.err).Msg("primary parser failed, using secondary only")
		sResult.output.FieldProvenance = map[string]string{"_source": "secondary_only"}
		sResult.output.SecondaryModel = sResult.output.ModelUsed
		return sResult.output, nil
	}

	if sResult.err != nil {
		m.log.Warn().Err(sResult.err).Msg("secondary parser failed, using primary only")
		pResult.output.FieldProvenance = map[string]string{"_source": "primary_only"}
		return pResult.output, nil
	}

	return mergeOutputs(pResult.output, sResult.output), nil
}

// mergeOutputs combines two extractions of the same document. Scalar fields
// come from the primary unless it left them empty; the day grid and the
// recurring templates are each taken whole from whichever side found more.
func mergeOutputs(primary, secondary *port.ParseOutput) *port.ParseOutput {
	pDoc, pErr := timetable.Decode(primary.RawJSON)
	sDoc, sErr := timetable.Decode(secondary.RawJSON)
	switch {
	case pErr != nil && sErr == nil:
		secondary.FieldProvenance = map[string]string{"_source": "secondary_only"}
		secondary.SecondaryModel = secondary.ModelUsed
		return secondary
	case pErr != nil || sErr != nil:
		primary.FieldProvenance = map[string]string{"_source": "primary_only"}
		return primary
	}

	provenance := make(map[string]string)
	merged := *pDoc

	switch {
	case pDoc.Title == sDoc.Title:
		provenance["title"] = "agree"
	case pDoc.Title == "" && sDoc.Title != "":
		merged.Title = sDoc.Title
		provenance["title"] = "secondary"
	default:
		provenance["title"] = "primary"
	}

	pBlocks, sBlocks := countBlocks(pDoc.Days), countBlocks(sDoc.Days)
	switch {
	case sBlocks > pBlocks:
		merged.Days = sDoc.Days
		provenance["days"] = "secondary"
	case sBlocks == pBlocks && len(sDoc.Days) > len(pDoc.Days):
		merged.Days = sDoc.Days
		provenance["days"] = "secondary"
	default:
		provenance["days"] = "primary"
	}

	if len(sDoc.RecurringBlocks) > len(pDoc.RecurringBlocks) {
		merged.RecurringBlocks = sDoc.RecurringBlocks
		provenance["recurringBlocks"] = "secondary"
	} else {
		provenance["recurringBlocks"] = "primary"
	}

	if len(sDoc.Metadata) > 0 {
		meta := make(map[string]any, len(pDoc.Metadata)+len(sDoc.Metadata))
		for k, v := range sDoc.Metadata {
			meta[k] = v
		}
		for k, v := range pDoc.Metadata {
			meta[k] = v
		}
		merged.Metadata = meta
	}

	raw, err := json.Marshal(&merged)
	if err != nil {
		primary.FieldProvenance = map[string]string{"_source": "primary_only"}
		return primary
	}

	return &port.ParseOutput{
		RawJSON:         raw,
		ModelUsed:       primary.ModelUsed,
		PromptUsed:      primary.PromptUsed,
		FieldProvenance: provenance,
		SecondaryModel:  secondary.ModelUsed,
	}
}

func countBlocks(days []domain.DaySchedule) int {
	n := 0
	for i := range days {
		n += len(days[i].Blocks)
	}
	return n
}
