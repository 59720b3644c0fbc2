package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/broiler/internal/config"
)

// RangeReader reads several value ranges from a spreadsheet in one round trip.
// The result holds one row set per requested range, in request order.
type RangeReader interface {
	ReadRanges(ctx context.Context, sheetRanges ...string) ([][][]interface{}, error)
}

// GoogleSheetRepository implements RangeReader using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed reader with read-only scope.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// ReadRanges fetches every range with a single values.batchGet call.
func (r *GoogleSheetRepository) ReadRanges(ctx context.Context, sheetRanges ...string) ([][][]interface{}, error) {
	if len(sheetRanges) == 0 {
		return nil, fmt.Errorf("at least one sheet range is required")
	}
	for _, rng := range sheetRanges {
		if rng == "" {
			return nil, fmt.Errorf("sheet ranges must not be empty")
		}
	}

	resp, err := r.service.Spreadsheets.Values.BatchGet(r.spreadsheetID).
		Ranges(sheetRanges...).
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("batch read ranges %v: %w", sheetRanges, err)
	}
	if len(resp.ValueRanges) != len(sheetRanges) {
		return nil, fmt.Errorf("batch read returned %d ranges, asked for %d", len(resp.ValueRanges), len(sheetRanges))
	}

	out := make([][][]interface{}, len(sheetRanges))
	for i, vr := range resp.ValueRanges {
		out[i] = vr.Values
		r.logger.Debug("sheet range read", zap.String("range", sheetRanges[i]), zap.Int("rows", len(vr.Values)))
	}
	return out, nil
}
