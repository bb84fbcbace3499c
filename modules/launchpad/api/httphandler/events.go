package httphandler

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/modules/launchpad/internal/entity"
	"github.com/gaze-network/launchpad/modules/launchpad/sale"
	"github.com/gaze-network/launchpad/modules/launchpad/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type getEventsRequest struct {
	SaleID string `params:"saleId"`
	Caller string `query:"caller"`
	Limit  int32  `query:"limit"`
	Offset int32  `query:"offset"`
}

func (r getEventsRequest) Validate() error {
	var errList []error
	if r.SaleID == "" {
		errList = append(errList, errors.New("'saleId' is required"))
	}
	if r.Limit < 0 || r.Limit > usecase.MaxEventsLimit {
		errList = append(errList, errors.Errorf("'limit' must be between 0 and %d", usecase.MaxEventsLimit))
	}
	if r.Offset < 0 {
		errList = append(errList, errors.New("'offset' must not be negative"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type eventResult struct {
	ID        int64           `json:"id"`
	Action    string          `json:"action"`
	Caller    string          `json:"caller"`
	Valid     bool            `json:"valid"`
	Reason    string          `json:"reason,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (h *HttpHandler) GetEvents(ctx *fiber.Ctx) error {
	var req getEventsRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	events, err := h.usecase.GetEvents(ctx.UserContext(), usecase.GetEventsParams{
		SaleID: req.SaleID,
		Caller: sale.NewAddress(req.Caller),
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		return errors.Wrap(err, "error during GetEvents")
	}
	result := lo.Map(events, func(e *entity.Event, _ int) eventResult {
		return eventResult{
			ID:        e.ID,
			Action:    e.Action,
			Caller:    e.Caller,
			Valid:     e.Valid,
			Reason:    e.Reason,
			Payload:   e.Payload,
			CreatedAt: e.CreatedAt,
		}
	})
	return errors.WithStack(ctx.JSON(ok(result)))
}

type exportResult struct {
	ID        int64     `json:"id"`
	ObjectKey string    `json:"objectKey"`
	SHA256    string    `json:"sha256"`
	Signature string    `json:"signature"`
	PublicKey string    `json:"publicKey"`
	Rows      int64     `json:"rows"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *HttpHandler) GetExports(ctx *fiber.Ctx) error {
	var req saleRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	exports, err := h.usecase.GetExports(ctx.UserContext(), req.SaleID)
	if err != nil {
		return errors.Wrap(err, "error during GetExports")
	}
	result := lo.Map(exports, func(e *entity.Export, _ int) exportResult {
		return exportResult{
			ID:        e.ID,
			ObjectKey: e.ObjectKey,
			SHA256:    e.SHA256,
			Signature: e.Signature,
			PublicKey: e.PublicKey,
			Rows:      e.Rows,
			CreatedAt: e.CreatedAt,
		}
	})
	return errors.WithStack(ctx.JSON(ok(result)))
}
