package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/studio-inventory/constants"
	"github.com/joseph-ayodele/studio-inventory/internal/common"
	"github.com/joseph-ayodele/studio-inventory/internal/entity"
	"github.com/joseph-ayodele/studio-inventory/internal/identity"
	"github.com/joseph-ayodele/studio-inventory/internal/labels"
	"github.com/joseph-ayodele/studio-inventory/internal/ledger"
	"github.com/joseph-ayodele/studio-inventory/internal/normalize"
	"github.com/joseph-ayodele/studio-inventory/internal/pdftext"
	"github.com/joseph-ayodele/studio-inventory/internal/repository"
	"github.com/joseph-ayodele/studio-inventory/internal/vendors"
	"github.com/joseph-ayodele/studio-inventory/internal/workspace"
)

type service struct {
	db        *sql.DB
	cfg       *common.Config
	logger    *slog.Logger
	extractor pdftext.Extractor
	registry  *vendors.Registry
	ledger    *ledger.Service

	orders    repository.OrderRepository
	lineItems repository.LineItemRepository
	files     repository.IngestedFileRepository
	events    repository.EventRepository

	now func() time.Time
}

// NewService builds the default ingest pipeline. A non-nil extractor
// overrides PDF text extraction, which tests use to feed captured text.
func NewService(db *sql.DB, cfg *common.Config, lgr *ledger.Service, logger *slog.Logger, extractor pdftext.Extractor) Ingestor {
	if extractor == nil {
		extractor = pdftext.NewReader()
	}
	return &service{
		db:        db,
		cfg:       cfg,
		logger:    logger,
		extractor: extractor,
		registry:  vendors.NewRegistry(),
		ledger:    lgr,
		orders:    repository.NewOrderRepository(logger),
		lineItems: repository.NewLineItemRepository(logger),
		files:     repository.NewIngestedFileRepository(logger),
		events:    repository.NewEventRepository(logger),
		now:       time.Now,
	}
}

func (s *service) IngestDir(ctx context.Context, dir string) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, common.WrapError(err, "read receipts dir")
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := constants.NormalizeExt(filepath.Ext(e.Name()))
		if _, ok := constants.AllowedExtensions[ext]; !ok {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return s.IngestFiles(ctx, paths)
}

// IngestFiles processes each file independently in sorted order; one bad
// PDF never aborts the batch.
func (s *service) IngestFiles(ctx context.Context, paths []string) (*Result, error) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	res := &Result{}
	seen := map[string]bool{}

	for _, path := range sorted {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		outcome, err := s.processFile(ctx, path, seen)
		switch {
		case err != nil:
			s.logger.Error("ingest.file.failed", "path", path, "error", err)
			res.Errors = append(res.Errors, FileError{Path: path, Reason: err.Error()})
		case outcome.duplicate:
			res.DuplicatesSkipped++
		case outcome.unmatched:
			res.UnmatchedSkipped++
		default:
			res.OrdersAdded++
			res.LineItemsAdded += outcome.lineItems
			seen[outcome.fileHash] = true
		}
	}

	s.logger.Info("ingest.batch.done",
		"orders", res.OrdersAdded,
		"line_items", res.LineItemsAdded,
		"duplicates", res.DuplicatesSkipped,
		"unmatched", res.UnmatchedSkipped,
		"errors", len(res.Errors))
	return res, nil
}

type fileOutcome struct {
	duplicate bool
	unmatched bool
	fileHash  string
	lineItems int
}

func (s *service) processFile(ctx context.Context, path string, seen map[string]bool) (out fileOutcome, err error) {
	// A panicking extractor or parser fails this file only.
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("parse panic: %v", p)
		}
	}()

	hash, err := identity.HashFile(path)
	if err != nil {
		return out, err
	}
	out.fileHash = hash

	dup := seen[hash]
	if !dup {
		dup, err = s.files.Exists(ctx, s.db, hash)
		if err != nil {
			return out, err
		}
	}
	if dup {
		moved, mvErr := workspace.MoveToDuplicates(path)
		if mvErr != nil {
			s.logger.Warn("ingest.duplicate.move_failed", "path", path, "error", mvErr)
		} else {
			s.logger.Info("ingest.duplicate.skipped", "path", path, "moved_to", moved)
		}
		out.duplicate = true
		return out, nil
	}

	pages, err := s.extractor.PageText(path)
	if err != nil {
		return out, err
	}
	if len(pages) == 0 {
		return out, fmt.Errorf("no text extracted from %s", filepath.Base(path))
	}

	ex := s.registry.Pick(pages[0])
	if ex == nil {
		s.logger.Info("ingest.unmatched.skipped", "path", path)
		out.unmatched = true
		return out, nil
	}

	fullText := strings.Join(pages, "\n")
	of := ex.ParseOrder(fullText)
	rows := ex.ParseLineItems(fullText)

	order, items := s.buildEntities(ex.Vendor(), of, rows, path, hash)
	if err := s.persist(ctx, order, items); err != nil {
		return out, err
	}

	out.lineItems = len(items)
	s.logger.Info("ingest.file.ok",
		"path", path, "vendor", order.Vendor, "order_ref", order.OrderRef, "line_items", len(items))
	return out, nil
}

// buildEntities normalizes raw extractor output into persistable rows:
// ISO dates, decimal money, pack-aware units, label fields and
// deterministic identities.
func (s *service) buildEntities(vendor constants.Vendor, of vendors.OrderFields, rows []vendors.LineItemFields, path, hash string) (*entity.Order, []*entity.LineItem) {
	now := s.now().UTC().Format("2006-01-02T15:04:05Z")

	orderRef := strings.TrimSpace(of.Invoice)
	if orderRef == "" {
		orderRef = strings.TrimSpace(of.PurchaseOrder)
	}
	if orderRef == "" {
		orderRef = "unknown"
	}

	order := &entity.Order{
		OrderUID:          identity.OrderUID(string(vendor), orderRef, hash),
		Vendor:            string(vendor),
		Invoice:           of.Invoice,
		PurchaseOrder:     of.PurchaseOrder,
		OrderRef:          orderRef,
		AccountNumber:     of.AccountNumber,
		PaymentInstrument: of.PaymentInstrument,
		Merchandise:       of.Merchandise,
		Shipping:          of.Shipping,
		Tax:               of.Tax,
		Total:             of.Total,
		SourceFile:        filepath.Base(path),
		SourcePath:        path,
		FileHash:          hash,
		UpdatedUTC:        now,
	}
	if iso, ok := normalize.DateTimeISO(of.OrderDate); ok {
		order.OrderDate = iso
	}
	if iso, ok := normalize.DateTimeISO(of.PaymentDate); ok {
		order.PaymentDate = iso
	}

	items := make([]*entity.LineItem, 0, len(rows))
	for i, row := range rows {
		li := s.buildLineItem(vendor, order, row, i+1)
		items = append(items, li)
	}
	return order, items
}

func (s *service) buildLineItem(vendor constants.Vendor, order *entity.Order, row vendors.LineItemFields, index int) *entity.LineItem {
	packQty := normalize.PackQty(row.Description)

	var unitsReceived decimal.Decimal
	switch {
	case row.Shipped != nil:
		unitsReceived = decimal.NewFromInt(*row.Shipped * packQty)
	case row.Ordered != nil:
		unitsReceived = decimal.NewFromInt(*row.Ordered * packQty)
	}

	lineTotal := row.LineTotal
	if lineTotal == nil && row.UnitPrice != nil && row.Ordered != nil {
		t := row.UnitPrice.Mul(decimal.NewFromInt(*row.Ordered))
		lineTotal = &t
	}

	partKey := identity.PartKey(string(vendor), row.SKU, row.MfgPartNumber, row.Description)
	descClean, line1, line2 := labels.Fields(vendor, row.SKU, row.Description, row.MfgPartNumber)
	purchaseURL := labels.PurchaseURL(vendor, row.SKU)
	airtableURL := labels.AirtableURL(s.cfg.Labels.AirtableItemURLTemplate, partKey, vendor, row.SKU)

	unitPriceKey := ""
	if row.UnitPrice != nil {
		unitPriceKey = row.UnitPrice.String()
	}
	orderedKey := ""
	if row.Ordered != nil {
		orderedKey = fmt.Sprintf("%d", *row.Ordered)
	}

	return &entity.LineItem{
		LineItemUID: identity.LineItemUID(string(vendor), order.OrderRef, order.FileHash,
			index, row.SKU, row.Description, unitPriceKey, orderedKey),
		OrderUID:      order.OrderUID,
		Vendor:        string(vendor),
		Invoice:       order.Invoice,
		PurchaseOrder: order.PurchaseOrder,
		PartKey:       partKey,

		Line:          row.Line,
		SKU:           row.SKU,
		Manufacturer:  row.Manufacturer,
		MfgPartNumber: row.MfgPartNumber,
		CountryOfOrig: row.CountryOfOrigin,
		Description:   row.Description,
		DescClean:     descClean,

		Ordered:   row.Ordered,
		Shipped:   row.Shipped,
		Balance:   row.Balance,
		UnitPrice: row.UnitPrice,
		LineTotal: lineTotal,

		PackQty:       packQty,
		UnitsReceived: unitsReceived,

		LabelLine1:  line1,
		LabelLine2:  line2,
		LabelShort:  labels.Short(line1, line2, row.SKU, row.MfgPartNumber),
		PurchaseURL: purchaseURL,
		AirtableURL: airtableURL,
		QRTargetURL: labels.PickQRURL(s.cfg.Labels.QRTarget, purchaseURL, airtableURL),

		FileHash:   order.FileHash,
		UpdatedUTC: order.UpdatedUTC,
	}
}

// persist writes one parsed PDF atomically. The hash registers last, inside
// the same transaction, so a crash mid-file leaves it eligible for re-ingest.
func (s *service) persist(ctx context.Context, order *entity.Order, items []*entity.LineItem) error {
	now := order.UpdatedUTC
	return repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.orders.Upsert(ctx, tx, order); err != nil {
			return err
		}
		for _, li := range items {
			if err := s.lineItems.Upsert(ctx, tx, li); err != nil {
				return err
			}
			qty := li.UnitsReceived
			if err := s.events.Append(ctx, tx, &repository.Event{
				EventType: constants.EventReceive,
				PartKey:   li.PartKey,
				OrderUID:  order.OrderUID,
				Qty:       &qty,
				Detail:    order.OrderRef,
				TsUTC:     now,
			}); err != nil {
				return err
			}
		}
		if err := s.ledger.ApplyLineItems(ctx, tx, items, now); err != nil {
			return err
		}
		return s.files.Register(ctx, tx, &entity.IngestedFile{
			FileHash:     order.FileHash,
			FirstSeenUTC: now,
			OriginalPath: order.SourcePath,
			Vendor:       order.Vendor,
			OrderRef:     order.OrderRef,
		})
	})
}
