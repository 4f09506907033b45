package httpadapter

import (
	"context"
	"log/slog"

	"funnelforge/contexts/growth-experiments/ab-testing-service/application/commands"
	"funnelforge/contexts/growth-experiments/ab-testing-service/application/queries"
	"funnelforge/contexts/growth-experiments/ab-testing-service/domain/entities"
	httptransport "funnelforge/contexts/growth-experiments/ab-testing-service/transport/http"
)

type Handler struct {
	Experiments commands.ExperimentUseCase
	Queries     queries.ExperimentQueryUseCase
	Logger      *slog.Logger
}

func (h Handler) AssignHandler(ctx context.Context, req httptransport.AssignRequest) (httptransport.AssignmentResponse, error) {
	variants := make([]entities.Variant, 0, len(req.Variants))
	for _, variant := range req.Variants {
		variants = append(variants, entities.Variant{
			VariantID: variant.VariantID,
			Weight:    variant.Weight,
		})
	}
	assignment, err := h.Experiments.Assign(ctx, commands.AssignCommand{
		VisitorID: req.VisitorID,
		TestName:  req.TestName,
		Variants:  variants,
	})
	if err != nil {
		return httptransport.AssignmentResponse{}, err
	}
	return mapAssignment(assignment), nil
}

func (h Handler) TrackConversionHandler(ctx context.Context, req httptransport.TrackConversionRequest) error {
	return h.Experiments.TrackConversion(ctx, commands.TrackConversionCommand{
		VisitorID: req.VisitorID,
		TestName:  req.TestName,
		VariantID: req.VariantID,
		Label:     req.Label,
	})
}

func (h Handler) GetAssignmentHandler(ctx context.Context, visitorID, testName string) (httptransport.AssignmentResponse, error) {
	assignment, err := h.Queries.VisitorAssignment(ctx, visitorID, testName)
	if err != nil {
		return httptransport.AssignmentResponse{}, err
	}
	return mapAssignment(assignment), nil
}

func (h Handler) ExperimentResultsHandler(ctx context.Context, testName string) (httptransport.ExperimentResultResponse, error) {
	result, err := h.Queries.ExperimentResults(ctx, testName)
	if err != nil {
		return httptransport.ExperimentResultResponse{}, err
	}
	variants := make([]httptransport.VariantStatsView, 0, len(result.Variants))
	for _, variant := range result.Variants {
		variants = append(variants, httptransport.VariantStatsView{
			VariantID:   variant.VariantID,
			Views:       variant.Views,
			Conversions: variant.Conversions,
			Rate:        variant.Rate,
			CILower:     variant.CILower,
			CIUpper:     variant.CIUpper,
		})
	}
	return httptransport.ExperimentResultResponse{
		TestName:         result.TestName,
		Variants:         variants,
		LeadingVariantID: result.LeadingVariantID,
		ConfidenceLevel:  result.ConfidenceLevel,
		Confident:        result.Confident,
		ComputedAt:       result.ComputedAt,
	}, nil
}

func mapAssignment(assignment entities.Assignment) httptransport.AssignmentResponse {
	return httptransport.AssignmentResponse{
		VisitorID:  assignment.VisitorID,
		TestName:   assignment.TestName,
		VariantID:  assignment.VariantID,
		AssignedAt: assignment.AssignedAt,
	}
}
