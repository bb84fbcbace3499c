package postgres

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/modules/launchpad/internal/entity"
	"github.com/gaze-network/launchpad/modules/launchpad/repository/postgres/gen"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/lo"
)

func toUUID(id string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, errors.Wrapf(errs.InvalidArgument, "invalid sale id %q", id)
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

func fromUUID(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

func toTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t.UTC(), Valid: !t.IsZero()}
}

func mapSaleModelToType(src gen.LaunchpadSale) (entity.Sale, error) {
	sale := entity.Sale{
		ID:        fromUUID(src.ID),
		Admin:     src.Admin,
		Version:   src.Version,
		CreatedAt: src.CreatedAt.Time.UTC(),
		UpdatedAt: src.UpdatedAt.Time.UTC(),
	}
	if err := json.Unmarshal(src.State, &sale.State); err != nil {
		return entity.Sale{}, errors.Wrapf(err, "failed to parse state of sale %s", sale.ID)
	}
	return sale, nil
}

func mapEventTypeToParams(src *entity.Event) (gen.AddEventParams, error) {
	saleID, err := toUUID(src.SaleID)
	if err != nil {
		return gen.AddEventParams{}, errors.WithStack(err)
	}
	payload := []byte(src.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	return gen.AddEventParams{
		SaleID:    saleID,
		Action:    src.Action,
		Caller:    src.Caller,
		Valid:     src.Valid,
		Reason:    src.Reason,
		Payload:   payload,
		CreatedAt: toTimestamptz(utcNow(src.CreatedAt)),
	}, nil
}

func mapEventModelsToTypes(src []gen.LaunchpadEvent) []*entity.Event {
	return lo.Map(src, func(item gen.LaunchpadEvent, _ int) *entity.Event {
		return &entity.Event{
			ID:        item.ID,
			SaleID:    fromUUID(item.SaleID),
			Action:    item.Action,
			Caller:    item.Caller,
			Valid:     item.Valid,
			Reason:    item.Reason,
			Payload:   json.RawMessage(item.Payload),
			CreatedAt: item.CreatedAt.Time.UTC(),
		}
	})
}

func mapExportModelsToTypes(src []gen.LaunchpadExport) []*entity.Export {
	return lo.Map(src, func(item gen.LaunchpadExport, _ int) *entity.Export {
		return &entity.Export{
			ID:        item.ID,
			SaleID:    fromUUID(item.SaleID),
			ObjectKey: item.ObjectKey,
			SHA256:    item.Sha256,
			Signature: item.Signature,
			PublicKey: item.PublicKey,
			Rows:      item.Rows,
			CreatedAt: item.CreatedAt.Time.UTC(),
		}
	})
}
