package importer

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=importer
type Suggester interface {
	Suggest(ctx context.Context, userID uuid.UUID, note string) (*uuid.UUID, error)
}

type Recorder interface {
	ImportBatch(ctx context.Context, userID uuid.UUID, params transaction.ImportParams) (*transaction.ImportResult, error)
}

type Request struct {
	WalletID uuid.UUID
	// CategoryID files rows no rule matches.
	CategoryID      *uuid.UUID
	File            io.Reader
	AllowDuplicates bool
}

type Service struct {
	rules    Suggester
	recorder Recorder
	log      *slog.Logger
}

func NewService(rules Suggester, recorder Recorder, log *slog.Logger) *Service {
	return &Service{rules: rules, recorder: recorder, log: log}
}

// Import parses the statement, files each row under the category its note
// matches and records the batch against the wallet.
func (s *Service) Import(ctx context.Context, userID uuid.UUID, req Request) (*transaction.ImportResult, error) {
	rows, err := Parse(req.File)
	if err != nil {
		return nil, err
	}

	matched := 0

	for i := range rows {
		categoryID, err := s.rules.Suggest(ctx, userID, rows[i].Note)
		if err != nil {
			return nil, err
		}

		if categoryID != nil {
			rows[i].CategoryID = categoryID
			matched++
		}
	}

	s.log.InfoContext(ctx, "statement parsed",
		slog.String("wallet_id", req.WalletID.String()),
		slog.Int("rows", len(rows)),
		slog.Int("matched", matched),
	)

	return s.recorder.ImportBatch(ctx, userID, transaction.ImportParams{
		WalletID:        req.WalletID,
		CategoryID:      req.CategoryID,
		Rows:            rows,
		AllowDuplicates: req.AllowDuplicates,
	})
}
