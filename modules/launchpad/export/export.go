// Package export writes the allocation report of a sale as a signed parquet
// file to object storage.
package export

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/modules/launchpad/internal/entity"
	"github.com/gaze-network/launchpad/modules/launchpad/sale"
	"github.com/gaze-network/launchpad/pkg/crypto"
	"github.com/gaze-network/launchpad/pkg/decimals"
	"github.com/gaze-network/launchpad/pkg/logger"
	"github.com/gaze-network/launchpad/pkg/logger/slogx"
	"github.com/gaze-network/launchpad/pkg/parquetutils"
	cstream "github.com/planxnx/concurrent-stream"
	"github.com/samber/lo"
)

const (
	rowsPerChunk      = 500
	streamConcurrency = 4
)

// Source provides the sale data of an export and records finished exports.
type Source interface {
	GetSaleInfo(ctx context.Context, saleID string) (sale.Info, error)
	GetAllocations(ctx context.Context, saleID string) ([]sale.Allocation, error)
	AddExport(ctx context.Context, export *entity.Export) (int64, error)
}

// Uploader is satisfied by *manager.Uploader.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Row is one participant of a sale.
type Row struct {
	Address                  string `parquet:"name=address, type=BYTE_ARRAY, convertedtype=UTF8"`
	TierID                   int32  `parquet:"name=tier_id, type=INT32"`
	QuoteDeposited           string `parquet:"name=quote_deposited, type=BYTE_ARRAY, convertedtype=UTF8"`
	Round1Deposited          string `parquet:"name=round1_deposited, type=BYTE_ARRAY, convertedtype=UTF8"`
	Round2Deposited          string `parquet:"name=round2_deposited, type=BYTE_ARRAY, convertedtype=UTF8"`
	TokensPurchased          string `parquet:"name=tokens_purchased, type=BYTE_ARRAY, convertedtype=UTF8"`
	TokensPurchasedFormatted string `parquet:"name=tokens_purchased_formatted, type=BYTE_ARRAY, convertedtype=UTF8"`
	TokensClaimed            string `parquet:"name=tokens_claimed, type=BYTE_ARRAY, convertedtype=UTF8"`
	PortionsClaimed          int32  `parquet:"name=portions_claimed, type=INT32"`
}

type Exporter struct {
	source   Source
	uploader Uploader
	signer   *crypto.Client
	bucket   string
	prefix   string
	now      func() time.Time
}

func New(source Source, uploader Uploader, signer *crypto.Client, config Config) *Exporter {
	return &Exporter{
		source:   source,
		uploader: uploader,
		signer:   signer,
		bucket:   config.Bucket,
		prefix:   config.Prefix,
		now:      time.Now,
	}
}

// Export uploads the allocation report of a sale and records it.
func (e *Exporter) Export(ctx context.Context, saleID string) (*entity.Export, error) {
	ctx = logger.WithContext(ctx, slogx.String("package", "export"), slogx.String("sale_id", saleID))
	if e.bucket == "" {
		return nil, errors.Wrap(errs.InvalidArgument, "export bucket is not configured")
	}

	info, err := e.source.GetSaleInfo(ctx, saleID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sale info")
	}
	allocations, err := e.source.GetAllocations(ctx, saleID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get allocations")
	}
	var tokenDecimals uint8 = sale.DefaultTokenDecimals
	if info.Params != nil {
		tokenDecimals = info.Params.TokenDecimals
	}

	rows, err := BuildRows(ctx, allocations, tokenDecimals)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build rows")
	}
	data, err := parquetutils.WriteAll(rows)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode allocations")
	}

	digest := hex.EncodeToString(chainhash.HashB(data))
	export := &entity.Export{
		SaleID:    saleID,
		ObjectKey: e.objectKey(saleID),
		SHA256:    digest,
		Rows:      int64(len(rows)),
		CreatedAt: e.now().UTC(),
	}
	if e.signer != nil && e.signer.CanSign() {
		export.Signature = e.signer.Sign(digest)
		export.PublicKey = e.signer.PublicKey()
	} else {
		logger.WarnContext(ctx, "export signer key is not configured, uploading unsigned export")
	}

	if _, err := e.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(export.ObjectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/vnd.apache.parquet"),
		Metadata: lo.PickBy(map[string]string{
			"sale-id":    saleID,
			"sha256":     digest,
			"signature":  export.Signature,
			"public-key": export.PublicKey,
		}, func(_ string, v string) bool { return v != "" }),
	}); err != nil {
		return nil, errors.Wrapf(err, "failed to upload %q to bucket %q", export.ObjectKey, e.bucket)
	}

	id, err := e.source.AddExport(ctx, export)
	if err != nil {
		return nil, errors.Wrap(err, "failed to record export")
	}
	export.ID = id
	logger.InfoContext(ctx, "allocations exported",
		slogx.String("object_key", export.ObjectKey),
		slogx.Int64("rows", export.Rows),
		slogx.String("sha256", digest),
	)
	return export, nil
}

func (e *Exporter) objectKey(saleID string) string {
	return path.Join(e.prefix, saleID, fmt.Sprintf("allocations-%d.parquet", e.now().Unix()))
}

// BuildRows converts allocations to rows ordered by address.
func BuildRows(ctx context.Context, allocations []sale.Allocation, tokenDecimals uint8) ([]Row, error) {
	out := make(chan []Row)
	stream := cstream.NewStream(ctx, streamConcurrency, out)

	go func() {
		defer close(out)
		_ = stream.Wait()
	}()

	go func() {
		defer stream.Close()
		for _, chunk := range lo.Chunk(allocations, rowsPerChunk) {
			select {
			case <-ctx.Done():
				return
			default:
				stream.Go(func() []Row {
					return lo.Map(chunk, func(a sale.Allocation, _ int) Row {
						return newRow(a, tokenDecimals)
					})
				})
			}
		}
	}()

	rows := make([]Row, 0, len(allocations))
	for chunk := range out {
		rows = append(rows, chunk...)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "context done")
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Address < rows[j].Address })
	return rows, nil
}

func newRow(a sale.Allocation, tokenDecimals uint8) Row {
	return Row{
		Address:                  a.Address.String(),
		TierID:                   int32(a.TierID),
		QuoteDeposited:           a.QuoteDeposited.String(),
		Round1Deposited:          a.Round1Deposited.String(),
		Round2Deposited:          a.Round2Deposited.String(),
		TokensPurchased:          a.TokensPurchased.String(),
		TokensPurchasedFormatted: decimals.FromUint128(a.TokensPurchased, tokenDecimals).String(),
		TokensClaimed:            a.TokensClaimed.String(),
		PortionsClaimed:          int32(a.PortionsClaimed),
	}
}
