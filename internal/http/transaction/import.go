package transaction

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/http/middleware"
	"github.com/MrJamesThe3rd/pennywise/internal/http/respond"
	"github.com/MrJamesThe3rd/pennywise/internal/importer"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

const maxUpload = 10 << 20

type Importer interface {
	Import(ctx context.Context, userID uuid.UUID, req importer.Request) (*transaction.ImportResult, error)
}

// importStatement takes a multipart form with file, wallet_id, an optional
// default category_id and allow_duplicates. Duplicates of existing
// transactions are answered with 409 and nothing is recorded; resending with
// allow_duplicates=true imports them anyway.
func (h *Handler) importStatement(w http.ResponseWriter, r *http.Request) {
	const op = "importing transactions"

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		respond.Error(w, r, op, apperr.Validation("Invalid multipart form"))
		return
	}

	req, err := importRequest(r)
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, op, apperr.Validation("file is required"))
		return
	}
	defer file.Close()

	req.File = file

	res, err := h.importer.Import(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	if len(res.Conflicts) > 0 {
		respond.JSON(w, http.StatusConflict, "Statement contains transactions that already exist", respond.Payload{
			"conflicts": toConflicts(res.Conflicts),
		})

		return
	}

	respond.JSON(w, http.StatusCreated, "Transactions imported successfully", respond.Payload{
		"imported":        len(res.Imported),
		"transactions":    toList(res.Imported),
		"budget_overruns": res.BudgetOverruns,
	})
}

func importRequest(r *http.Request) (importer.Request, error) {
	walletID, err := uuid.Parse(r.FormValue("wallet_id"))
	if err != nil {
		return importer.Request{}, apperr.Validation("wallet_id is required")
	}

	req := importer.Request{WalletID: walletID}

	if s := r.FormValue("category_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return importer.Request{}, apperr.Validation("Invalid category_id")
		}

		req.CategoryID = &id
	}

	req.AllowDuplicates, _ = strconv.ParseBool(r.FormValue("allow_duplicates"))

	return req, nil
}
